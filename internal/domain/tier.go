package domain

import "math"

// Tier is an ordered volume band bounding daily send counts for an account.
type Tier string

const (
	TierMinimal   Tier = "MINIMAL"
	TierLite      Tier = "LITE"
	TierStandard  Tier = "STANDARD"
	TierHighValue Tier = "HIGH_VALUE"
	TierPremium   Tier = "PREMIUM"
)

// SendRange is an inclusive per-day send count range for one content category.
type SendRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// TierSpec binds a tier to its revenue band and per-day category ranges.
type TierSpec struct {
	Tier       Tier      `json:"tier"`
	MinRevenue float64   `json:"min_revenue"`
	MaxRevenue float64   `json:"max_revenue"`
	Revenue    SendRange `json:"revenue_range"`
	Engagement SendRange `json:"engagement_range"`
	Retention  SendRange `json:"retention_range"`
}

// hysteresisBuffer dampens one-step downgrades: a creator keeps the previous
// tier as long as revenue stays within 15% of that tier's floor.
const hysteresisBuffer = 0.85

// tierOrder lists tiers by ascending minimum-revenue threshold.
var tierOrder = []Tier{TierMinimal, TierLite, TierStandard, TierHighValue, TierPremium}

var tierSpecs = map[Tier]TierSpec{
	TierMinimal: {
		Tier:       TierMinimal,
		MinRevenue: 0,
		MaxRevenue: 250,
		Revenue:    SendRange{Min: 1, Max: 2},
		Engagement: SendRange{Min: 1, Max: 2},
		Retention:  SendRange{Min: 0, Max: 1},
	},
	TierLite: {
		Tier:       TierLite,
		MinRevenue: 250,
		MaxRevenue: 800,
		Revenue:    SendRange{Min: 2, Max: 4},
		Engagement: SendRange{Min: 2, Max: 3},
		Retention:  SendRange{Min: 1, Max: 2},
	},
	TierStandard: {
		Tier:       TierStandard,
		MinRevenue: 800,
		MaxRevenue: 3000,
		Revenue:    SendRange{Min: 4, Max: 6},
		Engagement: SendRange{Min: 3, Max: 5},
		Retention:  SendRange{Min: 1, Max: 2},
	},
	TierHighValue: {
		Tier:       TierHighValue,
		MinRevenue: 3000,
		MaxRevenue: 10000,
		Revenue:    SendRange{Min: 6, Max: 9},
		Engagement: SendRange{Min: 4, Max: 6},
		Retention:  SendRange{Min: 2, Max: 3},
	},
	TierPremium: {
		Tier:       TierPremium,
		MinRevenue: 10000,
		MaxRevenue: math.MaxFloat64,
		Revenue:    SendRange{Min: 8, Max: 12},
		Engagement: SendRange{Min: 5, Max: 8},
		Retention:  SendRange{Min: 2, Max: 4},
	},
}

// Valid reports whether t names a known tier.
func (t Tier) Valid() bool {
	_, ok := tierSpecs[t]
	return ok
}

// orderIndex returns the tier's position in ascending revenue order, -1 when unknown.
func (t Tier) orderIndex() int {
	for i, candidate := range tierOrder {
		if candidate == t {
			return i
		}
	}
	return -1
}

// TierSpecFor returns the spec for a tier, falling back to MINIMAL for unknown names.
func TierSpecFor(t Tier) TierSpec {
	if spec, ok := tierSpecs[t]; ok {
		return spec
	}
	return tierSpecs[TierMinimal]
}

// ClassifyTier maps monthly revenue to a tier, with downgrade hysteresis
// against the immediately previous tier. Negative revenue is treated as 0.
// Hysteresis never blocks an upgrade: it only keeps the previous tier when a
// revenue dip stays within the 15% buffer under that tier's floor.
func ClassifyTier(monthlyRevenue float64, previousTier Tier) Tier {
	if monthlyRevenue < 0 {
		monthlyRevenue = 0
	}

	computed := TierMinimal
	for _, t := range tierOrder {
		if monthlyRevenue >= tierSpecs[t].MinRevenue {
			computed = t
		}
	}

	if !previousTier.Valid() {
		return computed
	}
	if previousTier.orderIndex() <= computed.orderIndex() {
		return computed
	}
	if monthlyRevenue >= tierSpecs[previousTier].MinRevenue*hysteresisBuffer {
		return previousTier
	}
	return computed
}
