package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/addissystems/erp-dashboard/internal/odoo"
)

// Source models feeding the banking merge.
const (
	modelBankDeposit = "bank.deposit"
	modelAccountMove = "account.move"
)

// MergeBanking fuses the two banking sources into one normalized list:
// deposits first, then journal moves, each list in source query order.
// linePartners carries the move-line backfill for moves whose own
// partner field is empty.
func MergeBanking(deposits, moves []odoo.Record, linePartners map[int64]odoo.Ref, allowed JournalAllowList) []BankingEntry {
	merged := make([]BankingEntry, 0, len(deposits)+len(moves))

	for _, d := range deposits {
		journal := d.Ref("journal_id")
		// Defensive re-check: the query is state-filtered, not
		// journal-filtered, so unlisted journals can still slip in.
		if journal.Valid && !allowed.Contains(journal.Name) {
			continue
		}

		partner := d.Ref("partner")
		if !partner.Valid {
			partner = d.Ref("partner_id")
		}

		amount := d.Float("amount")
		if d.Has("amount_total") {
			amount = d.Float("amount_total")
		}

		id := d.Int("id")
		merged = append(merged, BankingEntry{
			ID:       strconv.FormatInt(id, 10),
			Name:     d.Str("name"),
			Partner:  partner,
			Date:     d.Str("date"),
			Amount:   amount,
			State:    stateOrDraft(d),
			Journal:  journal,
			Source:   "deposit",
			Model:    modelBankDeposit,
			RecordID: id,
		})
	}

	for _, m := range moves {
		id := m.Int("id")
		merged = append(merged, BankingEntry{
			ID:       fmt.Sprintf("move_%d", id),
			Name:     m.Str("name"),
			Partner:  resolveMovePartner(m, linePartners),
			Date:     m.Str("date"),
			Amount:   m.Float("amount"),
			State:    stateOrDraft(m),
			Journal:  m.Ref("journal_id"),
			Source:   "journal",
			Model:    modelAccountMove,
			RecordID: id,
		})
	}

	return merged
}

// resolveMovePartner fills in a usable partner for a journal move.
// A partner counts as unknown when the field is empty or its display
// name contains "unknown". Resolution order: backfilled line partner,
// then a placeholder synthesized from the ref field, then the literal
// Unknown placeholder. A present partner is never overwritten.
func resolveMovePartner(m odoo.Record, linePartners map[int64]odoo.Ref) odoo.Ref {
	partner := m.Ref("partner")

	unknown := !partner.Valid ||
		strings.Contains(strings.ToLower(partner.Name), "unknown")
	if !unknown {
		return partner
	}

	if backfilled, ok := linePartners[m.Int("id")]; ok {
		return backfilled
	}

	if ref := m.Str("ref"); ref != "" && ref != m.Str("name") {
		return odoo.PlaceholderRef(ref)
	}

	if !partner.Valid {
		return odoo.PlaceholderRef("Unknown")
	}
	return partner
}

func stateOrDraft(r odoo.Record) string {
	if state := r.Str("state"); state != "" {
		return state
	}
	return "draft"
}
