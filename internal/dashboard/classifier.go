package dashboard

// Issue labels shown on the incomplete-orders view. Display only; the
// verdict never depends on them.
const (
	issueActionRequired     = "Action Required"
	issueNotInvoiced        = "Not Invoiced"
	issueDraftWithReference = "Draft with Reference"
	issueOpenInvoice        = "Open Invoice"
	issueNoRef              = "No Ref"
	issueMultipleInvoices   = "Multiple Invoices"
	issueInvoiceNotPaid     = "Invoice Not Paid"
	issueInvoiceIssue       = "Invoice Issue"
)

// Order buckets: draft/sent quotations vs confirmed sale orders.
const (
	bucketDraft = "D/C"
	bucketSale  = "SO"
)

// orderFacts are the derived variables both decision trees run on.
type orderFacts struct {
	bucket      string
	taxable     bool
	hasRef      bool
	invCount    int
	paidCount   int
	cancelCount int
	refundDraft bool
	// singleState is the normalized state of the linked invoice when
	// exactly one is linked and resolvable; "-" otherwise.
	singleState string
}

// deriveFacts scans an order's invoice list against the invoice map.
// Unresolvable invoice ids still count toward invCount but contribute
// nothing else, which keeps a failed invoice fetch safe.
func deriveFacts(o SalesOrder, invoices InvoiceMap) orderFacts {
	f := orderFacts{
		taxable:     o.AmountTax > 0,
		hasRef:      o.ClientOrderRef != "",
		invCount:    len(o.InvoiceIDs),
		singleState: "-",
	}

	if o.State == "draft" || o.State == "sent" {
		f.bucket = bucketDraft
	} else {
		f.bucket = bucketSale
	}

	for _, id := range o.InvoiceIDs {
		inv, ok := invoices[id]
		if !ok {
			continue
		}
		if inv.State == "paid" {
			f.paidCount++
		}
		if inv.State == "cancel" {
			f.cancelCount++
		}
		if inv.Type == "out_refund" && inv.State == "draft" {
			f.refundDraft = true
		}
	}

	if f.invCount == 1 {
		if inv, ok := invoices[o.InvoiceIDs[0]]; ok {
			f.singleState = inv.State
		}
	}

	return f
}

// isComplete applies the completeness rule table. A complete ("Valid")
// order is hidden from the dashboard; everything else is shown.
func isComplete(f orderFacts) bool {
	if f.bucket == bucketDraft {
		// A quotation with no invoice must always be shown.
		if f.invCount == 0 {
			return false
		}
		if !f.taxable {
			return true
		}
		// Taxable: at least one fully paid invoice settles it.
		return f.paidCount >= 1
	}

	// Confirmed orders.
	if f.taxable {
		if f.hasRef && f.invCount == 1 && f.singleState == "paid" {
			return true
		}
		// Multiple invoices resolve when exactly one is paid and the
		// rest were cancelled.
		if f.hasRef && f.invCount > 1 && f.paidCount == 1 && f.cancelCount == f.invCount-1 {
			return true
		}
		return false
	}

	// Non-taxable confirmed orders need no invoice at all.
	if f.invCount == 0 {
		return true
	}
	return f.paidCount >= 1 && !f.refundDraft
}

// issueLabel walks the display decision tree for an incomplete order.
// The conditions deliberately overlap the verdict table without
// mirroring it; see DESIGN.md for the known asymmetries.
func issueLabel(f orderFacts) string {
	if f.bucket == bucketDraft {
		switch {
		case f.invCount == 0:
			return issueNotInvoiced
		case f.taxable && f.hasRef:
			return issueDraftWithReference
		default:
			return issueOpenInvoice
		}
	}

	if f.taxable {
		switch {
		case !f.hasRef:
			return issueNoRef
		case f.invCount > 1:
			return issueMultipleInvoices
		case f.invCount == 0:
			return issueNotInvoiced
		case f.singleState != "draft":
			return issueInvoiceNotPaid
		}
		return issueActionRequired
	}

	if f.invCount == 0 {
		return issueNotInvoiced
	}
	return issueInvoiceIssue
}

// ClassifyOrders runs the verdict over every order and returns the
// incomplete ones in input order. Cancelled orders are skipped
// unconditionally. The function is pure; calling it twice on the same
// input yields the same output.
func ClassifyOrders(orders []SalesOrder, invoices InvoiceMap) []IncompleteOrder {
	incomplete := make([]IncompleteOrder, 0)
	for _, o := range orders {
		if o.State == "cancel" {
			continue
		}

		facts := deriveFacts(o, invoices)
		if isComplete(facts) {
			continue
		}

		ref := o.ClientOrderRef
		if ref == "" {
			ref = "N/A"
		}
		incomplete = append(incomplete, IncompleteOrder{
			ID:          o.ID,
			Name:        o.Name,
			Ref:         ref,
			Partner:     o.Partner,
			DateInvoice: o.DateOrder,
			AmountTotal: o.AmountTotal,
			State:       o.State,
			Issue:       issueLabel(facts),
		})
	}
	return incomplete
}
