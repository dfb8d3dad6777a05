package domain

import (
	"math"
	"strings"
	"time"
)

// DayVolume is the emitted per-day send count for each content category.
type DayVolume struct {
	Revenue    int `json:"revenue"`
	Engagement int `json:"engagement"`
	Retention  int `json:"retention"`
}

// CalendarBoostEntry records a day whose volume was lifted by the calendar.
type CalendarBoostEntry struct {
	Date       string  `json:"date"`
	Kind       string  `json:"kind"`
	Multiplier float64 `json:"multiplier"`
}

// VolumeConfig is the fully resolved send-volume plan for one target week.
// Base targets are clamped into the tier ranges before calendar/weekend
// boosts, so boosted revenue and engagement counts may exceed the range.
// That is intentional: boosts model temporary demand spikes.
type VolumeConfig struct {
	Tier               Tier                 `json:"tier"`
	MonthlyRevenue     float64              `json:"monthly_revenue"`
	RevenueRange       SendRange            `json:"revenue_range"`
	EngagementRange    SendRange            `json:"engagement_range"`
	RetentionRange     SendRange            `json:"retention_range"`
	WeeklyDistribution map[string]DayVolume `json:"weekly_distribution"`
	BumpMultiplier     float64              `json:"bump_multiplier"`
	CalendarBoosts     []CalendarBoostEntry `json:"calendar_boosts"`
	TriggerMultiplier  float64              `json:"trigger_multiplier"`
	HealthAdjustment   int                  `json:"health_adjustment"`
}

const (
	holidayBoost       = 1.30
	paydayBoost        = 1.20
	weekendMultiplier  = 1.10
	boostKindHoliday   = "holiday"
	boostKindPayday    = "payday"
	defaultBumpCap     = 1.5
	defaultBumpUnknown = "softcore"
)

// bumpMultipliers maps content categories to their base bump factor.
var bumpMultipliers = map[string]float64{
	"lifestyle": 1.0,
	"softcore":  1.5,
	"amateur":   2.0,
	"explicit":  2.67,
}

// CompoundMultiplier is the product of every active trigger's multiplier,
// irrespective of which content type produced it. The single scalar scales
// the revenue and engagement targets uniformly; this global stacking is
// inherited behavior confirmed against the source system.
func CompoundMultiplier(triggers []Trigger) float64 {
	compound := 1.0
	for _, t := range triggers {
		if t.AdjustmentMultiplier > 0 {
			compound *= t.AdjustmentMultiplier
		}
	}
	return compound
}

// BuildVolumeConfig combines tier ranges, health adjustment, trigger stacking
// and calendar arithmetic into the per-weekday distribution.
func BuildVolumeConfig(spec TierSpec, monthlyRevenue float64, health HealthStatus, triggers []Trigger, weekStart time.Time, contentCategory string) VolumeConfig {
	compound := CompoundMultiplier(triggers)

	revenueTarget := categoryTarget(spec.Revenue, compound, health.VolumeAdjustment)
	engagementTarget := categoryTarget(spec.Engagement, compound, health.VolumeAdjustment)
	retentionTarget := categoryTarget(spec.Retention, 1.0, 0)

	distribution := make(map[string]DayVolume, 7)
	boosts := make([]CalendarBoostEntry, 0, 2)
	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		dayName := strings.ToLower(date.Weekday().String())

		calBoost, kind := calendarBoostFor(date)
		weekend := 1.0
		if isWeekendDay(date.Weekday()) {
			weekend = weekendMultiplier
		}

		distribution[dayName] = DayVolume{
			Revenue:    roundCount(float64(revenueTarget) * calBoost * weekend),
			Engagement: roundCount(float64(engagementTarget) * weekend),
			Retention:  retentionTarget,
		}
		if calBoost > 1 {
			boosts = append(boosts, CalendarBoostEntry{
				Date:       date.Format("2006-01-02"),
				Kind:       kind,
				Multiplier: calBoost,
			})
		}
	}

	return VolumeConfig{
		Tier:               spec.Tier,
		MonthlyRevenue:     monthlyRevenue,
		RevenueRange:       spec.Revenue,
		EngagementRange:    spec.Engagement,
		RetentionRange:     spec.Retention,
		WeeklyDistribution: distribution,
		BumpMultiplier:     BumpMultiplier(contentCategory, spec.Tier),
		CalendarBoosts:     boosts,
		TriggerMultiplier:  compound,
		HealthAdjustment:   health.VolumeAdjustment,
	}
}

// categoryTarget clamps round(midpoint * multiplier + adjustment) into the range.
func categoryTarget(r SendRange, multiplier float64, adjustment int) int {
	midpoint := float64(r.Min+r.Max) / 2
	target := roundCount(midpoint*multiplier + float64(adjustment))
	return clampInt(target, r.Min, r.Max)
}

// BumpMultiplier resolves the content-category bump factor. Every tier caps
// the factor at 1.5 except MINIMAL, which is left uncapped. Unknown
// categories fall back to the softcore factor.
func BumpMultiplier(category string, tier Tier) float64 {
	factor, ok := bumpMultipliers[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		factor = bumpMultipliers[defaultBumpUnknown]
	}
	if tier != TierMinimal && factor > defaultBumpCap {
		factor = defaultBumpCap
	}
	return factor
}

// calendarBoostFor returns the boost multiplier and kind for a date.
// Holiday takes precedence over payday when both apply (e.g. Jan 1).
func calendarBoostFor(date time.Time) (float64, string) {
	if isHoliday(date) {
		return holidayBoost, boostKindHoliday
	}
	if isPayday(date) {
		return paydayBoost, boostKindPayday
	}
	return 1.0, ""
}

// fixedHolidays keys are "month-day".
var fixedHolidays = map[string]bool{
	"1-1":   true, // New Year's Day
	"2-14":  true, // Valentine's Day
	"7-4":   true, // Independence Day
	"10-31": true, // Halloween
	"12-25": true, // Christmas
}

func isHoliday(date time.Time) bool {
	if fixedHolidays[date.Format("1-2")] {
		return true
	}
	thanksgiving := thanksgivingDay(date.Year())
	if date.Month() == time.November {
		if date.Day() == thanksgiving || date.Day() == thanksgiving+1 {
			return true
		}
	}
	return false
}

// thanksgivingDay returns the day-of-month of the 4th Thursday of November.
func thanksgivingDay(year int) int {
	first := time.Date(year, time.November, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Thursday) - int(first.Weekday()) + 7) % 7
	return 1 + offset + 21
}

func isPayday(date time.Time) bool {
	if date.Day() == 1 || date.Day() == 15 {
		return true
	}
	lastDay := time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return date.Day() == lastDay
}

func isWeekendDay(d time.Weekday) bool {
	return d == time.Friday || d == time.Saturday || d == time.Sunday
}

func roundCount(v float64) int {
	return int(math.Round(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
