package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/addissystems/erp-dashboard/internal/cache"
	"github.com/addissystems/erp-dashboard/internal/dashboard"
)

func newTestServer(load cache.Loader) *Server {
	store := cache.NewStore(load, time.Minute, zap.NewNop())
	return New(Config{Host: "127.0.0.1", Port: 0}, store, zap.NewNop())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestEndpointsServeSnapshotViews(t *testing.T) {
	snap := &dashboard.Snapshot{
		Invoices: []dashboard.IncompleteOrder{
			{ID: 1, Name: "SO001", Ref: "N/A", State: "draft", Issue: "Not Invoiced"},
		},
		Journals: []dashboard.BankingEntry{
			{ID: "move_9", Source: "journal", Model: "account.move", RecordID: 9},
		},
		Overshoot: []dashboard.PartnerExposure{
			{ID: 10, PartnerName: "Over Ltd", Delta: -200},
		},
		LastUpdated: time.Now(),
	}
	s := newTestServer(func() *dashboard.Snapshot { return snap })

	w := get(t, s, "/api/invoices")
	require.Equal(t, http.StatusOK, w.Code)

	var invoices []dashboard.IncompleteOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoices))
	require.Len(t, invoices, 1)
	assert.Equal(t, "Not Invoiced", invoices[0].Issue)

	w = get(t, s, "/api/journals")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"move_9"`)

	w = get(t, s, "/api/overshoot")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Over Ltd"`)
}

func TestQuotationsWrappedInDataEnvelope(t *testing.T) {
	s := newTestServer(func() *dashboard.Snapshot {
		return &dashboard.Snapshot{LastUpdated: time.Now()}
	})

	w := get(t, s, "/api/quotations/pending")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `[]`, string(body["data"]))
}

func TestEndpointsNeverReturnErrors(t *testing.T) {
	// The loader producing nothing stands in for a dead ERP
	// connection; every endpoint still answers 200 with empty data.
	s := newTestServer(func() *dashboard.Snapshot { return nil })

	for _, path := range []string{
		"/api/invoices",
		"/api/journals",
		"/api/quotations/pending",
		"/api/customers",
		"/api/overshoot",
		"/api/reconciliation",
	} {
		w := get(t, s, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEqual(t, "null", w.Body.String(), path)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(func() *dashboard.Snapshot { return nil })

	w := get(t, s, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(func() *dashboard.Snapshot { return nil })

	req := httptest.NewRequest(http.MethodOptions, "/api/invoices", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
