package catalog

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/trademint/backend/pkg/metrics"
	"github.com/trademint/backend/pkg/types"
)

// ServiceRow is one row as returned by the listing query, in server order.
type ServiceRow struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	SubscriberCount int64  `json:"subscriber_count"`
	// PricingTiers is the raw jsonb blob; empty means the row carries no tiers.
	PricingTiers []byte `json:"pricing_tiers,omitempty"`
}

// Offering is one logical service after reconciliation: a group of rows
// sharing a name, with their tier maps merged.
type Offering struct {
	ServiceID       string        `json:"service_id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	SubscriberCount int64         `json:"subscriber_count"`
	Tiers           types.TierMap `json:"tiers"`
}

// Reconcile groups rows by exact name equality and merges their tier maps in
// iteration order, later rows winning tier-key collisions. Names are not
// trimmed or case-folded before grouping; "Equity Intraday" and
// "equity intraday " stay separate offerings.
//
// The representative id, description and subscriber count come from the first
// row of each group. A row whose tier blob does not parse contributes no
// tiers and is logged; it never aborts the merge. Pure function of its input,
// idempotent, safe to run on every request.
func Reconcile(log *zap.SugaredLogger, rows []ServiceRow) []*Offering {
	index := make(map[string]int, len(rows))
	out := make([]*Offering, 0, len(rows))

	for _, row := range rows {
		i, ok := index[row.Name]
		if !ok {
			i = len(out)
			index[row.Name] = i
			out = append(out, &Offering{
				ServiceID:       row.ID,
				Name:            row.Name,
				Description:     row.Description,
				SubscriberCount: row.SubscriberCount,
				Tiers:           types.TierMap{},
			})
		}

		if len(row.PricingTiers) == 0 {
			continue
		}
		var tiers map[types.TierName]types.Tier
		if err := json.Unmarshal(row.PricingTiers, &tiers); err != nil {
			metrics.MalformedTierRows.Inc()
			log.Warnw("unparseable pricing tiers, row contributes nothing",
				"service_id", row.ID, "service_name", row.Name, "err", err)
			continue
		}
		for name, tier := range tiers {
			if !name.Valid() {
				metrics.MalformedTierRows.Inc()
				log.Warnw("unknown pricing tier name, skipped",
					"service_id", row.ID, "tier", name)
				continue
			}
			// last-write-wins: the later row's value replaces the earlier one
			out[i].Tiers[name] = tier
		}
	}

	return out
}
