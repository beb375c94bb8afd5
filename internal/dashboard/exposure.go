package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/addissystems/erp-dashboard/internal/odoo"
)

// partnerAccum is the running aggregate for one partner.
type partnerAccum struct {
	partner    odoo.Ref
	orderCount int
	total      decimal.Decimal
	latestDate string
}

// AggregateExposure totals all orders per partner, joins the partner
// balance data, and keeps only partners whose available balance no
// longer covers their order total (strictly negative delta).
//
// The source order list arrives most-recent-first; latestDate starts
// from the first occurrence and is overwritten whenever a later record
// carries a date, matching the established view behavior.
func AggregateExposure(orders, partners []odoo.Record) []PartnerExposure {
	accums := make(map[int64]*partnerAccum)
	order := make([]int64, 0)

	for _, o := range orders {
		partner := o.Ref("partner_id")
		if !partner.Valid {
			continue
		}

		acc, ok := accums[partner.ID]
		if !ok {
			acc = &partnerAccum{
				partner:    partner,
				latestDate: o.Str("create_date"),
			}
			accums[partner.ID] = acc
			order = append(order, partner.ID)
		}

		acc.orderCount++
		acc.total = acc.total.Add(decimal.NewFromFloat(o.Float("amount_total")))
		if o.Has("create_date") {
			acc.latestDate = o.Str("create_date")
		}
	}

	balances := make(map[int64]odoo.Record, len(partners))
	for _, p := range partners {
		balances[p.Int("id")] = p
	}

	exposed := make([]PartnerExposure, 0)
	for _, pid := range order {
		acc := accums[pid]
		partner, ok := balances[pid]
		if !ok {
			// Partner lookup came back partial; skip silently.
			continue
		}

		available := decimal.NewFromFloat(partner.Float("current_balance"))
		delta := available.Sub(acc.total)
		if delta.Sign() >= 0 {
			continue
		}

		exposed = append(exposed, PartnerExposure{
			ID:            pid,
			PartnerName:   partner.Str("name"),
			OrderCount:    acc.orderCount,
			TotalAmount:   acc.total.InexactFloat64(),
			CustomerLimit: available.InexactFloat64(),
			Delta:         delta.InexactFloat64(),
			LatestDate:    acc.latestDate,
		})
	}
	return exposed
}
