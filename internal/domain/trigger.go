package domain

import (
	"fmt"
	"time"
)

// TriggerType names a short-lived performance-driven volume adjustment.
type TriggerType string

const (
	TriggerHighPerformer   TriggerType = "HIGH_PERFORMER"
	TriggerEmergingWinner  TriggerType = "EMERGING_WINNER"
	TriggerTrendingUp      TriggerType = "TRENDING_UP"
	TriggerSaturating      TriggerType = "SATURATING"
	TriggerAudienceFatigue TriggerType = "AUDIENCE_FATIGUE"
)

// Confidence grades a trigger by the sample size behind it.
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidenceModerate Confidence = "moderate"
	ConfidenceLow      Confidence = "low"
)

// Trigger is a time-limited multiplicative adjustment to volume targets.
type Trigger struct {
	ContentType          string      `json:"content_type"`
	TriggerType          TriggerType `json:"trigger_type"`
	AdjustmentMultiplier float64     `json:"adjustment_multiplier"`
	Confidence           Confidence  `json:"confidence"`
	Reason               string      `json:"reason"`
	ExpiresAt            time.Time   `json:"expires_at"`
}

// PerformanceMetrics is one content type's recent performance snapshot.
// Rates are fractions: ConversionRate 0.06 means 6%. Absent numeric fields
// default to zero values that cannot trip any rule.
type PerformanceMetrics struct {
	ContentType            string  `json:"content_type"`
	RevenuePerSend         float64 `json:"revenue_per_send"`
	ConversionRate         float64 `json:"conversion_rate"`
	SendsLast30Days        int     `json:"sends_last_30_days"`
	RPSChangeWeekOverWeek  float64 `json:"rps_change_wow"`
	OpenRateChange7Day     float64 `json:"open_rate_change_7d"`
	ConsecutiveDeclineDays int     `json:"consecutive_decline_days"`
	SampleSize             int     `json:"sample_size"`
}

// TriggerTTL bounds how long a detected trigger remains active.
const TriggerTTL = 7 * 24 * time.Hour

const (
	highPerformerRPS        = 200.0
	highPerformerConversion = 0.06
	emergingWinnerRPS       = 150.0
	emergingWinnerMaxUses   = 3
	trendingUpChange        = 0.15
	saturatingDeclineDays   = 3
	fatigueOpenRateDrop     = -0.10
)

// DetectTriggers classifies each content type into at most one trigger.
// Rules are checked in priority order and the first match wins.
func DetectTriggers(metrics []PerformanceMetrics, now time.Time) []Trigger {
	triggers := make([]Trigger, 0, len(metrics))
	expiresAt := now.Add(TriggerTTL)
	for _, m := range metrics {
		trigger, ok := classify(m)
		if !ok {
			continue
		}
		trigger.ExpiresAt = expiresAt
		triggers = append(triggers, trigger)
	}
	return triggers
}

func classify(m PerformanceMetrics) (Trigger, bool) {
	base := Trigger{ContentType: m.ContentType, Confidence: confidenceFor(m.SampleSize)}

	switch {
	case m.RevenuePerSend > highPerformerRPS && m.ConversionRate > highPerformerConversion:
		base.TriggerType = TriggerHighPerformer
		base.AdjustmentMultiplier = 1.20
		base.Reason = fmt.Sprintf("rps %.2f with conversion %.1f%%", m.RevenuePerSend, m.ConversionRate*100)
	case m.RevenuePerSend > emergingWinnerRPS && m.SendsLast30Days < emergingWinnerMaxUses:
		base.TriggerType = TriggerEmergingWinner
		base.AdjustmentMultiplier = 1.30
		base.Reason = fmt.Sprintf("rps %.2f with only %d sends in 30d", m.RevenuePerSend, m.SendsLast30Days)
	case m.RPSChangeWeekOverWeek >= trendingUpChange:
		base.TriggerType = TriggerTrendingUp
		base.AdjustmentMultiplier = 1.10
		base.Reason = fmt.Sprintf("rps up %.1f%% week over week", m.RPSChangeWeekOverWeek*100)
	case m.ConsecutiveDeclineDays >= saturatingDeclineDays:
		base.TriggerType = TriggerSaturating
		base.AdjustmentMultiplier = 0.85
		base.Confidence = ConfidenceModerate
		base.Reason = fmt.Sprintf("rps declining %d consecutive days", m.ConsecutiveDeclineDays)
	case m.OpenRateChange7Day <= fatigueOpenRateDrop:
		base.TriggerType = TriggerAudienceFatigue
		base.AdjustmentMultiplier = 0.75
		base.Confidence = ConfidenceModerate
		base.Reason = fmt.Sprintf("open rate down %.1f%% over 7d", -m.OpenRateChange7Day*100)
	default:
		return Trigger{}, false
	}
	return base, true
}

func confidenceFor(sampleSize int) Confidence {
	switch {
	case sampleSize > 10:
		return ConfidenceHigh
	case sampleSize >= 5:
		return ConfidenceModerate
	default:
		return ConfidenceLow
	}
}
