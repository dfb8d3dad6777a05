package domain

import "testing"

func TestClassifyTierByRevenue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		revenue float64
		want    Tier
	}{
		{name: "zero revenue", revenue: 0, want: TierMinimal},
		{name: "negative revenue treated as zero", revenue: -120, want: TierMinimal},
		{name: "just below lite", revenue: 249.99, want: TierMinimal},
		{name: "lite floor", revenue: 250, want: TierLite},
		{name: "standard floor", revenue: 800, want: TierStandard},
		{name: "high value floor", revenue: 3000, want: TierHighValue},
		{name: "premium floor", revenue: 10000, want: TierPremium},
		{name: "far above premium", revenue: 250000, want: TierPremium},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyTier(tc.revenue, "")
			if got != tc.want {
				t.Fatalf("ClassifyTier(%v) = %s, want %s", tc.revenue, got, tc.want)
			}
		})
	}
}

func TestClassifyTierDowngradeHysteresis(t *testing.T) {
	t.Parallel()

	// STANDARD floor is 800; the buffer keeps the tier down to 680.
	if got := ClassifyTier(680, TierStandard); got != TierStandard {
		t.Fatalf("revenue at buffer edge should hold STANDARD, got %s", got)
	}
	if got := ClassifyTier(679.99, TierStandard); got != TierLite {
		t.Fatalf("revenue below buffer should drop to LITE, got %s", got)
	}

	// The buffer only spans one tier's floor: a collapse falls through.
	if got := ClassifyTier(100, TierPremium); got != TierMinimal {
		t.Fatalf("collapsed revenue should ignore hysteresis, got %s", got)
	}
}

func TestClassifyTierUpgradesNeverDampened(t *testing.T) {
	t.Parallel()

	if got := ClassifyTier(12000, TierLite); got != TierPremium {
		t.Fatalf("upgrade should never be dampened, got %s", got)
	}
	if got := ClassifyTier(900, TierStandard); got != TierStandard {
		t.Fatalf("same-tier revenue should stay put, got %s", got)
	}
}

func TestClassifyTierUnknownPreviousIgnored(t *testing.T) {
	t.Parallel()

	if got := ClassifyTier(500, Tier("GOLD")); got != TierLite {
		t.Fatalf("unknown previous tier should be ignored, got %s", got)
	}
}

func TestTierSpecForFallsBackToMinimal(t *testing.T) {
	t.Parallel()

	spec := TierSpecFor(Tier("nope"))
	if spec.Tier != TierMinimal {
		t.Fatalf("unknown tier should resolve to MINIMAL spec, got %s", spec.Tier)
	}
	if spec := TierSpecFor(TierHighValue); spec.Revenue.Min != 6 || spec.Revenue.Max != 9 {
		t.Fatalf("unexpected HIGH_VALUE revenue range %+v", spec.Revenue)
	}
}
