package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyOrdersSkipsCancelled(t *testing.T) {
	orders := []SalesOrder{
		{ID: 1, Name: "SO001", State: "cancel"},
		{ID: 2, Name: "SO002", State: "cancel", AmountTax: 100, InvoiceIDs: []int64{1}},
	}

	result := ClassifyOrders(orders, InvoiceMap{})
	assert.Empty(t, result, "cancelled orders must never appear in output")
}

func TestClassifyOrdersVerdict(t *testing.T) {
	tests := []struct {
		name       string
		order      SalesOrder
		invoices   InvoiceMap
		incomplete bool
		issue      string
	}{
		{
			name:       "draft order with no invoice is always shown",
			order:      SalesOrder{ID: 1, State: "draft"},
			invoices:   InvoiceMap{},
			incomplete: true,
			issue:      "Not Invoiced",
		},
		{
			name:       "taxable draft with reference and no invoice is still shown",
			order:      SalesOrder{ID: 1, State: "sent", AmountTax: 10, ClientOrderRef: "PO9"},
			invoices:   InvoiceMap{},
			incomplete: true,
			issue:      "Not Invoiced",
		},
		{
			name:       "non-taxable draft with any invoice is complete",
			order:      SalesOrder{ID: 1, State: "draft", InvoiceIDs: []int64{5}},
			invoices:   InvoiceMap{5: {State: "open", Type: "out_invoice"}},
			incomplete: false,
		},
		{
			name:       "taxable draft with unpaid invoice is shown",
			order:      SalesOrder{ID: 1, State: "draft", AmountTax: 10, InvoiceIDs: []int64{5}},
			invoices:   InvoiceMap{5: {State: "open", Type: "out_invoice"}},
			incomplete: true,
			issue:      "Open Invoice",
		},
		{
			name:       "taxable draft with reference and unpaid invoice",
			order:      SalesOrder{ID: 1, State: "draft", AmountTax: 10, ClientOrderRef: "PO1", InvoiceIDs: []int64{5}},
			invoices:   InvoiceMap{5: {State: "open", Type: "out_invoice"}},
			incomplete: true,
			issue:      "Draft with Reference",
		},
		{
			name:       "taxable draft with a paid invoice is complete",
			order:      SalesOrder{ID: 1, State: "draft", AmountTax: 10, InvoiceIDs: []int64{5}},
			invoices:   InvoiceMap{5: {State: "paid", Type: "out_invoice"}},
			incomplete: false,
		},
		{
			name:       "confirmed taxable with ref and single paid invoice is complete",
			order:      SalesOrder{ID: 1, State: "sale", AmountTax: 50, ClientOrderRef: "PO1", InvoiceIDs: []int64{7}},
			invoices:   InvoiceMap{7: {State: "paid", Type: "out_invoice"}},
			incomplete: false,
		},
		{
			name:       "confirmed taxable with ref and single open invoice is shown",
			order:      SalesOrder{ID: 1, State: "sale", AmountTax: 50, ClientOrderRef: "PO1", InvoiceIDs: []int64{7}},
			invoices:   InvoiceMap{7: {State: "open", Type: "out_invoice"}},
			incomplete: true,
			issue:      "Invoice Not Paid",
		},
		{
			name:       "confirmed taxable without ref is shown",
			order:      SalesOrder{ID: 1, State: "done", AmountTax: 50, InvoiceIDs: []int64{7}},
			invoices:   InvoiceMap{7: {State: "paid", Type: "out_invoice"}},
			incomplete: true,
			issue:      "No Ref",
		},
		{
			name:  "confirmed taxable with one paid and rest cancelled is complete",
			order: SalesOrder{ID: 1, State: "sale", AmountTax: 50, ClientOrderRef: "PO1", InvoiceIDs: []int64{7, 8, 9}},
			invoices: InvoiceMap{
				7: {State: "paid", Type: "out_invoice"},
				8: {State: "cancel", Type: "out_invoice"},
				9: {State: "cancel", Type: "out_invoice"},
			},
			incomplete: false,
		},
		{
			name:  "confirmed taxable with one paid and one open is shown",
			order: SalesOrder{ID: 1, State: "sale", AmountTax: 50, ClientOrderRef: "PO1", InvoiceIDs: []int64{7, 8}},
			invoices: InvoiceMap{
				7: {State: "paid", Type: "out_invoice"},
				8: {State: "open", Type: "out_invoice"},
			},
			incomplete: true,
			issue:      "Multiple Invoices",
		},
		{
			name:       "confirmed taxable with no invoice is shown",
			order:      SalesOrder{ID: 1, State: "sale", AmountTax: 50, ClientOrderRef: "PO1"},
			invoices:   InvoiceMap{},
			incomplete: true,
			issue:      "Not Invoiced",
		},
		{
			name:       "confirmed non-taxable with no invoice is complete",
			order:      SalesOrder{ID: 1, State: "sale"},
			invoices:   InvoiceMap{},
			incomplete: false,
		},
		{
			name:       "confirmed non-taxable with a paid invoice is complete",
			order:      SalesOrder{ID: 1, State: "sale", InvoiceIDs: []int64{3}},
			invoices:   InvoiceMap{3: {State: "paid", Type: "out_invoice"}},
			incomplete: false,
		},
		{
			name:  "confirmed non-taxable with paid invoice but draft refund is shown",
			order: SalesOrder{ID: 1, State: "sale", InvoiceIDs: []int64{3, 4}},
			invoices: InvoiceMap{
				3: {State: "paid", Type: "out_invoice"},
				4: {State: "draft", Type: "out_refund"},
			},
			incomplete: true,
			issue:      "Invoice Issue",
		},
		{
			name:       "confirmed non-taxable with only an open invoice is shown",
			order:      SalesOrder{ID: 1, State: "sale", InvoiceIDs: []int64{3}},
			invoices:   InvoiceMap{3: {State: "open", Type: "out_invoice"}},
			incomplete: true,
			issue:      "Invoice Issue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyOrders([]SalesOrder{tt.order}, tt.invoices)

			if !tt.incomplete {
				assert.Empty(t, result)
				return
			}

			require.Len(t, result, 1)
			assert.Equal(t, tt.issue, result[0].Issue)
		})
	}
}

// A taxable confirmed order with a single draft invoice matches no
// label branch and keeps the default.
func TestClassifyOrdersDefaultLabel(t *testing.T) {
	order := SalesOrder{ID: 1, State: "sale", AmountTax: 50, ClientOrderRef: "PO1", InvoiceIDs: []int64{7}}
	invoices := InvoiceMap{7: {State: "draft", Type: "out_invoice"}}

	result := ClassifyOrders([]SalesOrder{order}, invoices)
	require.Len(t, result, 1)
	assert.Equal(t, "Action Required", result[0].Issue)
}

func TestClassifyOrdersEmptyInvoiceMap(t *testing.T) {
	// A failed invoice lookup leaves the map empty; linked ids then
	// resolve to nothing and the rules must not panic.
	order := SalesOrder{ID: 1, State: "sale", AmountTax: 50, ClientOrderRef: "PO1", InvoiceIDs: []int64{7, 8}}

	result := ClassifyOrders([]SalesOrder{order}, InvoiceMap{})
	require.Len(t, result, 1)
	assert.Equal(t, "Multiple Invoices", result[0].Issue)
}

func TestClassifyOrdersRefFallback(t *testing.T) {
	order := SalesOrder{ID: 1, Name: "SO010", State: "draft", DateOrder: "2024-01-05", AmountTotal: 99.5}

	result := ClassifyOrders([]SalesOrder{order}, InvoiceMap{})
	require.Len(t, result, 1)
	assert.Equal(t, "N/A", result[0].Ref)
	assert.Equal(t, "2024-01-05", result[0].DateInvoice)
	assert.Equal(t, 99.5, result[0].AmountTotal)
}

func TestClassifyOrdersIdempotent(t *testing.T) {
	orders := []SalesOrder{
		{ID: 1, State: "draft"},
		{ID: 2, State: "sale", AmountTax: 10, InvoiceIDs: []int64{5}},
		{ID: 3, State: "cancel"},
	}
	invoices := InvoiceMap{5: {State: "open", Type: "out_invoice"}}

	first := ClassifyOrders(orders, invoices)
	second := ClassifyOrders(orders, invoices)
	assert.Equal(t, first, second)
}
