package domain

import "math"

// HealthLevel classifies account trajectory from recent performance trends.
type HealthLevel string

const (
	HealthHealthy     HealthLevel = "HEALTHY"
	HealthWarning     HealthLevel = "WARNING"
	HealthDeathSpiral HealthLevel = "DEATH_SPIRAL"
)

// HealthStatus is recomputed fresh on every invocation and never persisted.
type HealthStatus struct {
	Status                  HealthLevel `json:"status"`
	Score                   float64     `json:"score"`
	SaturationScore         float64     `json:"saturation_score"`
	OpportunityScore        float64     `json:"opportunity_score"`
	ConsecutiveDeclineWeeks int         `json:"consecutive_decline_weeks"`
	VolumeAdjustment        int         `json:"volume_adjustment"`
}

// TrendInputs carries optional trend fields from the performance-trends fetch.
// Nil fields take safe defaults instead of failing (saturation 50, weeks 0).
type TrendInputs struct {
	SaturationScore         *float64 `json:"saturation_score"`
	OpportunityScore        *float64 `json:"opportunity_score"`
	ConsecutiveDeclineWeeks *int     `json:"consecutive_decline_weeks"`
}

const (
	defaultSaturationScore  = 50.0
	declineWeeksWarning     = 2
	declineWeeksDeathSpiral = 4
	lowSaturationThreshold  = 30.0
)

// EvaluateHealth maps saturation and decline-week trends to a health status
// and a signed volume adjustment in {-1, 0, +1}.
func EvaluateHealth(in TrendInputs) HealthStatus {
	saturation := defaultSaturationScore
	if in.SaturationScore != nil {
		saturation = *in.SaturationScore
	}
	opportunity := 0.0
	if in.OpportunityScore != nil {
		opportunity = *in.OpportunityScore
	}
	declineWeeks := 0
	if in.ConsecutiveDeclineWeeks != nil && *in.ConsecutiveDeclineWeeks > 0 {
		declineWeeks = *in.ConsecutiveDeclineWeeks
	}

	status := HealthStatus{
		SaturationScore:         saturation,
		OpportunityScore:        opportunity,
		ConsecutiveDeclineWeeks: declineWeeks,
	}

	switch {
	case declineWeeks >= declineWeeksDeathSpiral:
		status.Status = HealthDeathSpiral
		status.VolumeAdjustment = -1
	case declineWeeks >= declineWeeksWarning:
		status.Status = HealthWarning
		status.VolumeAdjustment = 0
	default:
		status.Status = HealthHealthy
		if saturation < lowSaturationThreshold {
			status.VolumeAdjustment = 1
		}
	}

	raw := 100 - float64(declineWeeks)*15 - saturation*0.3
	status.Score = math.Round(clampFloat(raw, 0, 100)*10) / 10
	return status
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
