package types

import "fmt"

// TierName is the closed enumeration of subscription durations a service may
// offer. The days value stored alongside a tier is authoritative; it is never
// recomputed from the tier name.
type TierName string

const (
	TierWeekly    TierName = "weekly"
	TierMonthly   TierName = "monthly"
	TierQuarterly TierName = "quarterly"
	TierYearly    TierName = "yearly"
)

// TierNames lists all valid tier names in display order.
var TierNames = []TierName{TierWeekly, TierMonthly, TierQuarterly, TierYearly}

func (t TierName) Valid() bool {
	switch t {
	case TierWeekly, TierMonthly, TierQuarterly, TierYearly:
		return true
	}
	return false
}

// Tier is one duration/price pairing. Price is in whole INR.
type Tier struct {
	Price int64 `json:"price"`
	Days  int   `json:"days"`
}

// TierMap maps tier names to their pricing. Stored as jsonb on the services
// table and validated on write; reads tolerate bad rows (they contribute no
// tiers, logged as a data-quality signal).
type TierMap map[TierName]Tier

// Validate rejects unknown tier names and non-positive price or days.
// Applied at the write boundary only.
func (m TierMap) Validate() error {
	for name, tier := range m {
		if !name.Valid() {
			return fmt.Errorf("unknown pricing tier %q", name)
		}
		if tier.Price <= 0 {
			return fmt.Errorf("tier %s: price must be positive, got %d", name, tier.Price)
		}
		if tier.Days <= 0 {
			return fmt.Errorf("tier %s: days must be positive, got %d", name, tier.Days)
		}
	}
	return nil
}
