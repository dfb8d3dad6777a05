package domain

import (
	"math/rand"
	"sort"
	"strings"
	"time"
)

// TimingSlot is a concrete (hour, minute) send slot on a given date.
// Priority is a 1-based rank by ascending (hour, minute) within the day,
// across all categories combined.
type TimingSlot struct {
	Date     string `json:"date"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

const (
	CategoryRevenue    = "revenue"
	CategoryEngagement = "engagement"
	CategoryRetention  = "retention"
)

// The dead zone [3,7) never receives sends; picked hours inside it shift out.
const (
	deadZoneStart = 3
	deadZoneEnd   = 7
)

type hourWindow struct {
	start int // inclusive
	end   int // exclusive; may exceed 24, hours wrap past midnight
}

// primeWindows holds the per-weekday prime-hour windows. Revenue slots use
// the first two windows of the day; engagement uses the remainder plus the
// fixed fallback windows.
var primeWindows = map[time.Weekday][]hourWindow{
	time.Sunday:    {{10, 13}, {19, 22}, {21, 24}},
	time.Monday:    {{10, 12}, {20, 23}, {12, 14}},
	time.Tuesday:   {{11, 13}, {20, 23}, {15, 17}},
	time.Wednesday: {{10, 12}, {19, 22}, {13, 15}},
	time.Thursday:  {{11, 13}, {20, 24}, {16, 18}},
	time.Friday:    {{12, 14}, {21, 26}, {17, 19}},
	time.Saturday:  {{11, 14}, {21, 25}, {18, 20}},
}

var (
	engagementFallbackWindows = []hourWindow{{9, 12}, {14, 17}}
	retentionWindows          = []hourWindow{{8, 10}, {18, 20}}
)

// AllocateWeek converts the per-weekday category counts into concrete timing
// slots for each of the 7 days starting at weekStart. The random source is
// injected so deterministic replays can fix the seed.
func AllocateWeek(weekStart time.Time, distribution map[string]DayVolume, rng *rand.Rand) map[string][]TimingSlot {
	slots := make(map[string][]TimingSlot, 7)
	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		dayName := strings.ToLower(date.Weekday().String())
		slots[date.Format("2006-01-02")] = allocateDay(date, distribution[dayName], rng)
	}
	return slots
}

func allocateDay(date time.Time, volume DayVolume, rng *rand.Rand) []TimingSlot {
	prime := primeWindows[date.Weekday()]
	revenueWindows := prime
	if len(revenueWindows) > 2 {
		revenueWindows = prime[:2]
	}
	engagementWindows := append([]hourWindow{}, prime[min(len(prime), 2):]...)
	engagementWindows = append(engagementWindows, engagementFallbackWindows...)

	day := make([]TimingSlot, 0, volume.Revenue+volume.Engagement+volume.Retention)
	day = append(day, slotsFor(date, CategoryRevenue, volume.Revenue, revenueWindows, rng)...)
	day = append(day, slotsFor(date, CategoryEngagement, volume.Engagement, engagementWindows, rng)...)
	day = append(day, slotsFor(date, CategoryRetention, volume.Retention, retentionWindows, rng)...)

	sort.SliceStable(day, func(i, j int) bool {
		if day[i].Hour != day[j].Hour {
			return day[i].Hour < day[j].Hour
		}
		return day[i].Minute < day[j].Minute
	})
	for i := range day {
		day[i].Priority = i + 1
	}
	return day
}

func slotsFor(date time.Time, category string, count int, windows []hourWindow, rng *rand.Rand) []TimingSlot {
	if count <= 0 {
		return nil
	}
	hours := candidateHours(windows)
	if len(hours) == 0 {
		return nil
	}

	slots := make([]TimingSlot, 0, count)
	for i := 0; i < count; i++ {
		hour := hours[i%len(hours)]
		if hour >= 24 {
			hour -= 24
		}
		hour = shiftDeadZone(hour)
		slots = append(slots, TimingSlot{
			Date:     date.Format("2006-01-02"),
			Hour:     hour,
			Minute:   jitterMinute(i*17%60, rng),
			Category: category,
		})
	}
	return slots
}

func candidateHours(windows []hourWindow) []int {
	hours := make([]int, 0, 8)
	for _, w := range windows {
		for h := w.start; h < w.end; h++ {
			hours = append(hours, h)
		}
	}
	return hours
}

// shiftDeadZone moves hours out of [3,7): late dead-zone hours land at 7,
// early ones at 23.
func shiftDeadZone(hour int) int {
	if hour < deadZoneStart || hour >= deadZoneEnd {
		return hour
	}
	if hour >= 5 {
		return deadZoneEnd
	}
	return 23
}

// jitterMinute offsets the base minute so slots never land on a quarter-hour
// boundary. Up to 10 random draws in [-7,+8]; if all collide with a multiple
// of 15 the fallback is deterministic.
func jitterMinute(base int, rng *rand.Rand) int {
	for attempt := 0; attempt < 10; attempt++ {
		offset := rng.Intn(16) - 7
		candidate := ((base+offset)%60 + 60) % 60
		if candidate%15 != 0 {
			return candidate
		}
	}
	if base%15 == 0 {
		return (base + 3) % 60
	}
	return base
}
