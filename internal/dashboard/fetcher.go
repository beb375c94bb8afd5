package dashboard

import (
	"time"

	"go.uber.org/zap"

	"github.com/addissystems/erp-dashboard/internal/odoo"
)

// Per-view fetch limits. These bound each remote query; the read API
// has no pagination beyond them.
const (
	orderFetchLimit      = 100
	depositFetchLimit    = 50
	moveFetchLimit       = 15500
	quotationFetchLimit  = 11050
	customerFetchLimit   = 50
	overshootFetchLimit  = 10000
	reconcileFetchLimit  = 15
	backfillLinesPerMove = 5
)

// Fetcher runs the six dashboard sub-fetches against the remote ERP.
// Every fetch is independently fault-tolerant: a failed query degrades
// that view to an empty list and never aborts the siblings.
type Fetcher struct {
	client   odoo.QueryClient
	journals JournalAllowList
	logger   *zap.Logger
}

// NewFetcher creates a fetcher bound to a query client and the bank
// journal allow-list.
func NewFetcher(client odoo.QueryClient, journals JournalAllowList, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		journals: journals,
		logger:   logger,
	}
}

// BuildSnapshot computes every view for one refresh cycle. The invoice
// schema is negotiated once here and reused for the whole cycle.
func (f *Fetcher) BuildSnapshot() *Snapshot {
	schema := NegotiateInvoiceSchema(f.client)

	return &Snapshot{
		Invoices:       f.FetchIncompleteOrders(schema),
		Journals:       f.FetchBankingEntries(),
		Quotations:     f.FetchPendingQuotations(),
		Customers:      f.FetchCustomers(),
		Overshoot:      f.FetchOvershoot(),
		Reconciliation: f.FetchReconciliation(),
		LastUpdated:    time.Now(),
	}
}

// FetchIncompleteOrders pulls recent sale orders with their invoices
// and runs the verdict classifier over them.
func (f *Fetcher) FetchIncompleteOrders(schema InvoiceSchema) []IncompleteOrder {
	records, err := f.client.SearchRead("sale.order",
		odoo.Domain{odoo.Cond("state", "in", []string{"draft", "sent", "cancel", "sale", "done"})},
		odoo.Options{
			Fields: []string{"id", "name", "partner_id", "date_order", "state",
				"amount_tax", "client_order_ref", "invoice_ids", "amount_total"},
			Limit: orderFetchLimit,
			Order: "date_order desc",
		})
	if err != nil {
		f.logger.Error("Incomplete orders fetch failed", zap.Error(err))
		return []IncompleteOrder{}
	}

	orders := make([]SalesOrder, 0, len(records))
	invoiceIDs := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, rec := range records {
		o := salesOrderFromRecord(rec)
		orders = append(orders, o)
		for _, id := range o.InvoiceIDs {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				invoiceIDs = append(invoiceIDs, id)
			}
		}
	}

	return ClassifyOrders(orders, f.fetchInvoiceMap(schema, invoiceIDs))
}

// fetchInvoiceMap resolves invoice ids through the negotiated schema.
// A failed lookup yields an empty map, which the rule table handles as
// zero resolved invoices.
func (f *Fetcher) fetchInvoiceMap(schema InvoiceSchema, ids []int64) InvoiceMap {
	invoices := make(InvoiceMap, len(ids))
	if len(ids) == 0 {
		return invoices
	}

	records, err := f.client.SearchRead(schema.Model(),
		odoo.Domain{odoo.Cond("id", "in", ids)},
		odoo.Options{Fields: schemaFields(schema)})
	if err != nil {
		f.logger.Error("Invoice detail fetch failed",
			zap.String("model", schema.Model()), zap.Error(err))
		return invoices
	}

	for _, rec := range records {
		invoices[rec.Int("id")] = normalizeInvoice(schema, rec)
	}
	return invoices
}

// FetchBankingEntries merges unresolved bank deposits with draft moves
// from the allow-listed bank journals.
func (f *Fetcher) FetchBankingEntries() []BankingEntry {
	deposits, err := f.client.SearchRead(modelBankDeposit,
		odoo.Domain{odoo.Cond("state", "in", []string{"draft", "approved"})},
		odoo.Options{
			Fields: []string{"id", "name", "partner", "date", "amount",
				"amount_total", "state", "journal_id"},
			Limit: depositFetchLimit,
			Order: "date desc",
		})
	if err != nil {
		f.logger.Warn("Bank deposit fetch failed", zap.Error(err))
		deposits = nil
	}

	moves := f.fetchDraftMoves()
	return MergeBanking(deposits, moves, f.fetchLinePartners(moves), f.journals)
}

// fetchDraftMoves resolves the allow-listed journal names to ids, then
// pulls draft moves restricted to those journals.
func (f *Fetcher) fetchDraftMoves() []odoo.Record {
	journals, err := f.client.SearchRead("account.journal",
		odoo.Domain{
			odoo.Cond("type", "=", "bank"),
			odoo.Cond("name", "in", f.journals.Names()),
		},
		odoo.Options{Fields: []string{"id", "name"}})
	if err != nil {
		f.logger.Warn("Bank journal lookup failed", zap.Error(err))
		return nil
	}

	journalIDs := make([]int64, 0, len(journals))
	for _, j := range journals {
		journalIDs = append(journalIDs, j.Int("id"))
	}
	if len(journalIDs) == 0 {
		return nil
	}

	moves, err := f.client.SearchRead(modelAccountMove,
		odoo.Domain{
			odoo.Cond("state", "=", "draft"),
			odoo.Cond("journal_id", "in", journalIDs),
		},
		odoo.Options{
			Fields: []string{"id", "partner", "amount", "date", "state",
				"journal_id", "name", "ref"},
			Limit: moveFetchLimit,
			Order: "date desc",
		})
	if err != nil {
		f.logger.Warn("Account move fetch failed", zap.Error(err))
		return nil
	}

	f.logger.Debug("Fetched draft moves from matched journals",
		zap.Int("count", len(moves)))
	return moves
}

// fetchLinePartners backfills partners for moves that lack one, from
// the first move line carrying a partner. Moves whose partner is
// merely named unknown are not requeried; only truly empty ones are.
func (f *Fetcher) fetchLinePartners(moves []odoo.Record) map[int64]odoo.Ref {
	missing := make([]int64, 0)
	for _, m := range moves {
		if !m.Ref("partner").Valid {
			missing = append(missing, m.Int("id"))
		}
	}
	if len(missing) == 0 {
		return nil
	}

	lines, err := f.client.SearchRead("account.move.line",
		odoo.Domain{
			odoo.Cond("move_id", "in", missing),
			odoo.Cond("partner_id", "!=", false),
		},
		odoo.Options{
			Fields: []string{"move_id", "partner_id"},
			Limit:  len(missing) * backfillLinesPerMove,
		})
	if err != nil {
		f.logger.Warn("Move line partner backfill failed", zap.Error(err))
		return nil
	}

	partners := make(map[int64]odoo.Ref)
	for _, line := range lines {
		moveRef := line.Ref("move_id")
		if !moveRef.Valid {
			continue
		}
		// First matching line per move wins.
		if _, done := partners[moveRef.ID]; !done {
			partners[moveRef.ID] = line.Ref("partner_id")
		}
	}
	return partners
}

// FetchPendingQuotations returns draft/sent quotations with warehouse
// info, passed through unmodified.
func (f *Fetcher) FetchPendingQuotations() []odoo.Record {
	records, err := f.client.SearchRead("sale.order",
		odoo.Domain{odoo.Cond("state", "in", []string{"draft", "sent"})},
		odoo.Options{
			Fields: []string{"id", "name", "partner_id", "date_order",
				"warehouse_id", "amount_total"},
			Limit: quotationFetchLimit,
			Order: "date_order desc",
		})
	if err != nil {
		f.logger.Warn("Quotation fetch failed", zap.Error(err))
		return []odoo.Record{}
	}
	return records
}

// FetchCustomers returns recently created customers with their order
// counts. Customers missing a partner code or VAT number are skipped.
func (f *Fetcher) FetchCustomers() []Customer {
	records, err := f.client.SearchRead("res.partner",
		odoo.Domain{odoo.Cond("customer", "=", true)},
		odoo.Options{
			Fields: []string{"id", "name", "create_date", "partner_code", "vat"},
			Limit:  customerFetchLimit,
			Order:  "create_date desc",
		})
	if err != nil {
		f.logger.Warn("Customer fetch failed", zap.Error(err))
		return []Customer{}
	}

	customers := make([]Customer, 0, len(records))
	for _, rec := range records {
		if rec.Str("partner_code") == "" || rec.Str("vat") == "" {
			continue
		}

		count, err := f.client.SearchCount("sale.order", odoo.Domain{
			odoo.Cond("partner_id", "=", rec.Int("id")),
			odoo.Cond("state", "in", []string{"draft", "sent", "sale", "done"}),
		})
		if err != nil {
			f.logger.Warn("Customer order count failed", zap.Error(err))
			return []Customer{}
		}

		customers = append(customers, Customer{
			ID:          rec.Int("id"),
			Name:        rec.Str("name"),
			CreateDate:  rec.Str("create_date"),
			PartnerCode: rec.Str("partner_code"),
			OrderCount:  count,
		})
	}
	return customers
}

// FetchOvershoot aggregates order exposure per partner and returns the
// over-exposed ones.
func (f *Fetcher) FetchOvershoot() []PartnerExposure {
	orders, err := f.client.SearchRead("sale.order",
		odoo.Domain{odoo.Cond("partner_id", "!=", false)},
		odoo.Options{
			Fields: []string{"id", "partner_id", "amount_total", "create_date"},
			Limit:  overshootFetchLimit,
			Order:  "create_date desc",
		})
	if err != nil {
		f.logger.Warn("Overshoot order fetch failed", zap.Error(err))
		return []PartnerExposure{}
	}

	partnerIDs := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, o := range orders {
		partner := o.Ref("partner_id")
		if !partner.Valid {
			continue
		}
		if _, dup := seen[partner.ID]; !dup {
			seen[partner.ID] = struct{}{}
			partnerIDs = append(partnerIDs, partner.ID)
		}
	}
	if len(partnerIDs) == 0 {
		return []PartnerExposure{}
	}

	partners, err := f.client.SearchRead("res.partner",
		odoo.Domain{odoo.Cond("id", "in", partnerIDs)},
		odoo.Options{Fields: []string{"id", "name", "credit_limit", "current_balance"}})
	if err != nil {
		f.logger.Warn("Partner balance fetch failed", zap.Error(err))
		return []PartnerExposure{}
	}

	return AggregateExposure(orders, partners)
}

// FetchReconciliation returns unreconciled bank statement lines,
// passed through unmodified.
func (f *Fetcher) FetchReconciliation() []odoo.Record {
	records, err := f.client.SearchRead("account.bank.statement.line",
		odoo.Domain{odoo.Cond("is_reconciled", "=", false)},
		odoo.Options{
			Fields: []string{"id", "name", "date", "amount", "partner_id"},
			Limit:  reconcileFetchLimit,
			Order:  "date desc",
		})
	if err != nil {
		f.logger.Warn("Reconciliation fetch failed", zap.Error(err))
		return []odoo.Record{}
	}
	return records
}

func salesOrderFromRecord(r odoo.Record) SalesOrder {
	return SalesOrder{
		ID:             r.Int("id"),
		Name:           r.Str("name"),
		Partner:        r.Ref("partner_id"),
		DateOrder:      r.Str("date_order"),
		State:          r.Str("state"),
		AmountTax:      r.Float("amount_tax"),
		ClientOrderRef: r.Str("client_order_ref"),
		AmountTotal:    r.Float("amount_total"),
		InvoiceIDs:     r.IDs("invoice_ids"),
	}
}
