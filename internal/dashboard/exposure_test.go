package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addissystems/erp-dashboard/internal/odoo"
)

func TestAggregateExposureRetainsOnlyNegativeDelta(t *testing.T) {
	orders := []odoo.Record{
		{"id": int64(1), "partner_id": []interface{}{int64(10), "Over Ltd"}, "amount_total": 500.0, "create_date": "2024-03-02"},
		{"id": int64(2), "partner_id": []interface{}{int64(10), "Over Ltd"}, "amount_total": 700.0, "create_date": "2024-03-01"},
		{"id": int64(3), "partner_id": []interface{}{int64(20), "Even Ltd"}, "amount_total": 300.0, "create_date": "2024-03-01"},
		{"id": int64(4), "partner_id": []interface{}{int64(30), "Under Ltd"}, "amount_total": 100.0, "create_date": "2024-03-01"},
	}
	partners := []odoo.Record{
		{"id": int64(10), "name": "Over Ltd", "current_balance": 1000.0},
		{"id": int64(20), "name": "Even Ltd", "current_balance": 300.0},
		{"id": int64(30), "name": "Under Ltd", "current_balance": 500.0},
	}

	exposed := AggregateExposure(orders, partners)
	require.Len(t, exposed, 1, "only strictly negative deltas are retained")

	entry := exposed[0]
	assert.Equal(t, int64(10), entry.ID)
	assert.Equal(t, "Over Ltd", entry.PartnerName)
	assert.Equal(t, 2, entry.OrderCount)
	assert.Equal(t, 1200.0, entry.TotalAmount)
	assert.Equal(t, 1000.0, entry.CustomerLimit)
	assert.Equal(t, -200.0, entry.Delta)
}

func TestAggregateExposureBalanceEqualToTotalNotEmitted(t *testing.T) {
	orders := []odoo.Record{
		{"id": int64(1), "partner_id": []interface{}{int64(10), "Exact Ltd"}, "amount_total": 250.0},
	}
	partners := []odoo.Record{
		{"id": int64(10), "name": "Exact Ltd", "current_balance": 250.0},
	}

	assert.Empty(t, AggregateExposure(orders, partners))
}

func TestAggregateExposureSkipsUnresolvedPartners(t *testing.T) {
	orders := []odoo.Record{
		{"id": int64(1), "partner_id": []interface{}{int64(10), "Ghost Ltd"}, "amount_total": 900.0},
		{"id": int64(2), "partner_id": false, "amount_total": 900.0},
	}

	// Partner lookup returned nothing for id 10: skipped, not an error.
	assert.Empty(t, AggregateExposure(orders, nil))
}

func TestAggregateExposureLatestDateFollowsSourceOrder(t *testing.T) {
	// Source order is most-recent-first; the date is overwritten by
	// every later record that carries one, so the last dated record in
	// source order wins.
	orders := []odoo.Record{
		{"id": int64(1), "partner_id": []interface{}{int64(10), "Over Ltd"}, "amount_total": 600.0, "create_date": "2024-03-05"},
		{"id": int64(2), "partner_id": []interface{}{int64(10), "Over Ltd"}, "amount_total": 600.0, "create_date": "2024-03-01"},
		{"id": int64(3), "partner_id": []interface{}{int64(10), "Over Ltd"}, "amount_total": 600.0, "create_date": false},
	}
	partners := []odoo.Record{
		{"id": int64(10), "name": "Over Ltd", "current_balance": 0.0},
	}

	exposed := AggregateExposure(orders, partners)
	require.Len(t, exposed, 1)
	assert.Equal(t, "2024-03-01", exposed[0].LatestDate)
	assert.Equal(t, 3, exposed[0].OrderCount)
}

func TestAggregateExposureMoneyPrecision(t *testing.T) {
	// 0.1+0.2 style float drift must not leak into totals.
	orders := []odoo.Record{
		{"id": int64(1), "partner_id": []interface{}{int64(10), "Penny Ltd"}, "amount_total": 0.1},
		{"id": int64(2), "partner_id": []interface{}{int64(10), "Penny Ltd"}, "amount_total": 0.2},
	}
	partners := []odoo.Record{
		{"id": int64(10), "name": "Penny Ltd", "current_balance": 0.0},
	}

	exposed := AggregateExposure(orders, partners)
	require.Len(t, exposed, 1)
	assert.Equal(t, 0.3, exposed[0].TotalAmount)
	assert.Equal(t, -0.3, exposed[0].Delta)
}
