package dashboard

import (
	"github.com/addissystems/erp-dashboard/internal/odoo"
)

// InvoiceSchema identifies which invoice collection the server
// exposes. Odoo 12 and earlier answer account.invoice; Odoo 13+
// replaced it with account.move.
type InvoiceSchema int

const (
	SchemaAccountInvoice InvoiceSchema = iota
	SchemaAccountMove
)

// Model returns the remote collection name for the schema.
func (s InvoiceSchema) Model() string {
	if s == SchemaAccountInvoice {
		return "account.invoice"
	}
	return "account.move"
}

// NegotiateInvoiceSchema probes which invoice schema the server
// supports. Runs once per refresh cycle so the per-call fallback
// branch stays out of the fetch path.
func NegotiateInvoiceSchema(client odoo.QueryClient) InvoiceSchema {
	if _, err := client.SearchCount("account.invoice", odoo.Domain{}); err == nil {
		return SchemaAccountInvoice
	}
	return SchemaAccountMove
}

// schemaFields lists the fields each schema needs for normalization.
func schemaFields(s InvoiceSchema) []string {
	if s == SchemaAccountInvoice {
		return []string{"id", "state", "type"}
	}
	return []string{"id", "state", "move_type", "payment_state"}
}

// normalizeInvoice maps a raw invoice record to the unified
// draft|open|paid|cancel state space. account.move reports payment
// through a separate payment_state field, with not_paid standing in
// for the old open state.
func normalizeInvoice(s InvoiceSchema, rec odoo.Record) InvoiceRecord {
	if s == SchemaAccountInvoice {
		return InvoiceRecord{
			State: rec.Str("state"),
			Type:  rec.Str("type"),
		}
	}

	state := rec.Str("payment_state")
	if state == "" {
		state = rec.Str("state")
	}
	if state == "not_paid" {
		state = "open"
	}
	return InvoiceRecord{
		State: state,
		Type:  rec.Str("move_type"),
	}
}
