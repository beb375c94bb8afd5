// Package dashboard contains the classification and reconciliation
// engine behind the finance dashboard: the order completeness verdict,
// the banking source merge, and the partner exposure aggregation.
package dashboard

import (
	"time"

	"github.com/addissystems/erp-dashboard/internal/odoo"
)

// SalesOrder is an immutable snapshot of a sale.order record for one
// classification pass.
type SalesOrder struct {
	ID             int64
	Name           string
	Partner        odoo.Ref
	DateOrder      string
	State          string // draft|sent|cancel|sale|done
	AmountTax      float64
	ClientOrderRef string
	AmountTotal    float64
	InvoiceIDs     []int64
}

// InvoiceRecord is an invoice in its normalized form, regardless of
// which schema the server exposed it through.
type InvoiceRecord struct {
	State string // draft|open|paid|cancel
	Type  string // out_invoice|out_refund|...
}

// InvoiceMap indexes normalized invoices by id for O(1) lookup from a
// sales order's invoice list.
type InvoiceMap map[int64]InvoiceRecord

// IncompleteOrder is an order the verdict classified as Invalid,
// annotated with a display label explaining why.
type IncompleteOrder struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Ref         string   `json:"ref"`
	Partner     odoo.Ref `json:"partner_id"`
	DateInvoice string   `json:"date_invoice"`
	AmountTotal float64  `json:"amount_total"`
	State       string   `json:"state"`
	Issue       string   `json:"issue"`
}

// BankingEntry is the normalized union of a bank deposit and a draft
// journal move. Journal-sourced ids carry a "move_" prefix so the two
// id spaces cannot collide.
type BankingEntry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Partner  odoo.Ref `json:"partner"`
	Date     string   `json:"date"`
	Amount   float64  `json:"amount"`
	State    string   `json:"state"`
	Journal  odoo.Ref `json:"journal_id"`
	Source   string   `json:"source"` // deposit|journal
	Model    string   `json:"model"`
	RecordID int64    `json:"record_id"`
}

// PartnerExposure is a partner whose aggregate order total exceeds
// their available balance (delta strictly negative).
type PartnerExposure struct {
	ID            int64   `json:"id"`
	PartnerName   string  `json:"partner_name"`
	OrderCount    int     `json:"order_count"`
	TotalAmount   float64 `json:"total_amount"`
	CustomerLimit float64 `json:"customer_limit"`
	Delta         float64 `json:"delta"`
	LatestDate    string  `json:"latest_date"`
}

// Customer is a recently created customer with its order count.
type Customer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CreateDate  string `json:"create_date"`
	PartnerCode string `json:"partner_code"`
	OrderCount  int    `json:"order_count"`
}

// Snapshot holds every computed view for one refresh cycle. It is
// built once, never mutated, and handed to readers as a whole.
type Snapshot struct {
	Invoices       []IncompleteOrder `json:"invoices"`
	Journals       []BankingEntry    `json:"journals"`
	Quotations     []odoo.Record     `json:"quotations"`
	Customers      []Customer        `json:"customers"`
	Overshoot      []PartnerExposure `json:"overshoot"`
	Reconciliation []odoo.Record     `json:"reconciliation"`
	LastUpdated    time.Time         `json:"last_updated"`
}
