package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/domain"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/ports"
)

type fakeBundleReader struct {
	bundle ports.CreatorBundle
	err    error
}

func (f *fakeBundleReader) FetchBundle(ctx context.Context, creatorID string) (ports.CreatorBundle, error) {
	if f.err != nil {
		return ports.CreatorBundle{}, f.err
	}
	return f.bundle, nil
}

type fakeTrendReader struct {
	trends domain.TrendInputs
	err    error
}

func (f *fakeTrendReader) FetchPerformanceTrends(ctx context.Context, creatorID, period string) (domain.TrendInputs, error) {
	if f.err != nil {
		return domain.TrendInputs{}, f.err
	}
	return f.trends, nil
}

type fakeTriggerStore struct {
	active []domain.Trigger
	err    error
	stored []domain.Trigger
}

func (f *fakeTriggerStore) GetActive(ctx context.Context, creatorID string) ([]domain.Trigger, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.active, nil
}

func (f *fakeTriggerStore) Put(ctx context.Context, creatorID string, triggers []domain.Trigger) error {
	f.stored = append(f.stored, triggers...)
	return nil
}

type fakeTierState struct {
	previous domain.Tier
	saved    domain.Tier
	savedFor string
}

func (f *fakeTierState) GetPreviousTier(ctx context.Context, creatorID string) (domain.Tier, error) {
	if f.previous == "" {
		return "", domain.ErrNotFound
	}
	return f.previous, nil
}

func (f *fakeTierState) SaveTier(ctx context.Context, creatorID string, tier domain.Tier, at time.Time) error {
	f.saved = tier
	f.savedFor = creatorID
	return nil
}

type fakeAuditRepo struct {
	records []ports.AuditRecord
}

func (f *fakeAuditRepo) Create(ctx context.Context, record ports.AuditRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAuditRepo) ListByCreator(ctx context.Context, creatorID string, limit int) ([]ports.AuditRecord, error) {
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fakeOutbox struct {
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(ctx context.Context, event ports.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ClaimUnpublished(ctx context.Context, batchSize int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, reason string, at time.Time) error {
	return nil
}

func (f *fakeOutbox) MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, reason string, at time.Time) error {
	return nil
}

type fixture struct {
	service   *Service
	bundles   *fakeBundleReader
	trends    *fakeTrendReader
	triggers  *fakeTriggerStore
	tierState *fakeTierState
	audits    *fakeAuditRepo
	outbox    *fakeOutbox
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func seedPtr(v int64) *int64      { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		bundles: &fakeBundleReader{
			bundle: ports.CreatorBundle{
				CreatorID:           "creator-1",
				IsActive:            true,
				PageType:            "paid",
				MonthlyRevenue:      1500,
				ContentCategory:     "softcore",
				AllowedContentTypes: []string{"ppv_video", "teaser"},
				AvoidContentTypes:   []string{"explicit"},
				ContentTypeRankings: []domain.ContentTypeRank{{ContentType: "ppv_video", Rank: 1, Score: 0.92}},
			},
		},
		trends: &fakeTrendReader{
			trends: domain.TrendInputs{
				SaturationScore:         floatPtr(45),
				ConsecutiveDeclineWeeks: intPtr(0),
			},
		},
		triggers:  &fakeTriggerStore{},
		tierState: &fakeTierState{},
		audits:    &fakeAuditRepo{},
		outbox:    &fakeOutbox{},
	}
	f.service = NewService(Dependencies{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Bundles:   f.bundles,
		Trends:    f.trends,
		Triggers:  f.triggers,
		TierState: f.tierState,
		Audits:    f.audits,
		Outbox:    f.outbox,
	})
	f.service.nowFn = func() time.Time {
		return time.Date(2026, time.February, 25, 10, 30, 0, 0, time.UTC)
	}
	return f
}

func TestComputeContextHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	got, err := f.service.ComputeContext(context.Background(), ComputeInput{
		CreatorID:  "creator-1",
		WeekStart:  "2026-03-02",
		JitterSeed: seedPtr(777),
	})
	if err != nil {
		t.Fatalf("ComputeContext: %v", err)
	}

	if got.Volume.Tier != domain.TierStandard {
		t.Fatalf("tier = %s, want STANDARD for $1500", got.Volume.Tier)
	}
	if got.Health.Status != domain.HealthHealthy {
		t.Fatalf("health = %s, want HEALTHY", got.Health.Status)
	}
	if got.Health.VolumeAdjustment != 0 {
		t.Fatalf("adjustment = %d, want 0 at saturation 45", got.Health.VolumeAdjustment)
	}
	if got.FetchOperations != 3 {
		t.Fatalf("fetch operations = %d, want 3", got.FetchOperations)
	}
	if got.WeekStart != "2026-03-02" {
		t.Fatalf("week start = %s", got.WeekStart)
	}

	monday := got.Volume.WeeklyDistribution["monday"]
	if monday.Revenue < 4 || monday.Revenue > 6 {
		t.Fatalf("monday revenue %d outside STANDARD range", monday.Revenue)
	}
	if len(got.TimingSlots) != 7 {
		t.Fatalf("timing slots cover %d days, want 7", len(got.TimingSlots))
	}
	if got.AuditHash == "" {
		t.Fatal("audit hash must be populated")
	}

	if f.tierState.saved != domain.TierStandard || f.tierState.savedFor != "creator-1" {
		t.Fatalf("tier state not persisted: %+v", f.tierState)
	}
	if len(f.audits.records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(f.audits.records))
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != "schedule_context.computed" {
		t.Fatalf("expected one outbox event, got %+v", f.outbox.events)
	}
}

func TestComputeContextInactiveCreator(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.bundles.bundle.IsActive = false

	_, err := f.service.ComputeContext(context.Background(), ComputeInput{CreatorID: "creator-1"})
	if !errors.Is(err, domain.ErrCreatorInactive) {
		t.Fatalf("err = %v, want ErrCreatorInactive", err)
	}
	if len(f.audits.records) != 0 {
		t.Fatal("ineligible creator must not produce an audit record")
	}
}

func TestComputeContextBundleFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.bundles.err = errors.New("upstream timeout")

	_, err := f.service.ComputeContext(context.Background(), ComputeInput{CreatorID: "creator-1"})
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestComputeContextSecondaryFailuresDegrade(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.trends.err = errors.New("trends down")
	f.triggers.err = errors.New("cache down")

	got, err := f.service.ComputeContext(context.Background(), ComputeInput{CreatorID: "creator-1", WeekStart: "2026-03-02"})
	if err != nil {
		t.Fatalf("secondary failures must not be fatal: %v", err)
	}
	// Defaults: saturation 50, no declines -> HEALTHY with no adjustment.
	if got.Health.Status != domain.HealthHealthy || got.Health.SaturationScore != 50 {
		t.Fatalf("degraded health = %+v", got.Health)
	}
	if len(got.ActiveTriggers) != 0 {
		t.Fatalf("degraded trigger fetch should carry none, got %d", len(got.ActiveTriggers))
	}
	if got.FetchOperations != 3 {
		t.Fatalf("fetch operations = %d, want 3 even when degraded", got.FetchOperations)
	}
}

func TestComputeContextValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.service.ComputeContext(context.Background(), ComputeInput{CreatorID: "  "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank creator id: err = %v", err)
	}
	if _, err := f.service.ComputeContext(context.Background(), ComputeInput{CreatorID: "creator-1", WeekStart: "03/02/2026"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("malformed week start: err = %v", err)
	}
}

func TestComputeContextDeterministicWithFixedSeed(t *testing.T) {
	t.Parallel()

	input := ComputeInput{CreatorID: "creator-1", WeekStart: "2026-03-02", JitterSeed: seedPtr(424242)}

	first, err := newFixture(t).service.ComputeContext(context.Background(), input)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := newFixture(t).service.ComputeContext(context.Background(), input)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.AuditHash != second.AuditHash {
		t.Fatalf("audit hash differs: %s vs %s", first.AuditHash, second.AuditHash)
	}
	if !reflect.DeepEqual(first.TimingSlots, second.TimingSlots) {
		t.Fatal("fixed seed must reproduce identical timing slots")
	}
	if !reflect.DeepEqual(first.Volume, second.Volume) {
		t.Fatal("fixed seed must reproduce identical volume config")
	}
}

func TestComputeContextCarriedTriggersStack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.triggers.active = []domain.Trigger{{
		ContentType:          "teaser",
		TriggerType:          domain.TriggerTrendingUp,
		AdjustmentMultiplier: 1.10,
		Confidence:           domain.ConfidenceHigh,
		ExpiresAt:            time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
	}}
	f.bundles.bundle.ContentPerformance = []domain.PerformanceMetrics{{
		ContentType:    "ppv_video",
		RevenuePerSend: 250,
		ConversionRate: 0.08,
		SampleSize:     12,
	}}

	got, err := f.service.ComputeContext(context.Background(), ComputeInput{CreatorID: "creator-1", WeekStart: "2026-03-02"})
	if err != nil {
		t.Fatalf("ComputeContext: %v", err)
	}

	if len(got.ActiveTriggers) != 2 {
		t.Fatalf("active triggers = %d, want carried + detected", len(got.ActiveTriggers))
	}
	// 1.10 carried * 1.20 detected = 1.32 applied globally.
	if diff := got.Volume.TriggerMultiplier - 1.32; diff > 0.0001 || diff < -0.0001 {
		t.Fatalf("compound multiplier = %v, want 1.32", got.Volume.TriggerMultiplier)
	}
	// Only freshly detected triggers are written back to the store.
	if len(f.triggers.stored) != 1 || f.triggers.stored[0].TriggerType != domain.TriggerHighPerformer {
		t.Fatalf("stored triggers = %+v", f.triggers.stored)
	}
}

func TestComputeContextHysteresisUsesPreviousTier(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.tierState.previous = domain.TierStandard
	f.bundles.bundle.MonthlyRevenue = 700 // inside the 15% buffer under 800

	got, err := f.service.ComputeContext(context.Background(), ComputeInput{CreatorID: "creator-1", WeekStart: "2026-03-02"})
	if err != nil {
		t.Fatalf("ComputeContext: %v", err)
	}
	if got.Volume.Tier != domain.TierStandard {
		t.Fatalf("tier = %s, want STANDARD held by hysteresis", got.Volume.Tier)
	}
}

func TestListAudits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.service.ListAudits(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank creator id: err = %v", err)
	}

	if _, err := f.service.ComputeContext(context.Background(), ComputeInput{CreatorID: "creator-1", WeekStart: "2026-03-02"}); err != nil {
		t.Fatalf("ComputeContext: %v", err)
	}
	records, err := f.service.ListAudits(context.Background(), "creator-1")
	if err != nil {
		t.Fatalf("ListAudits: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
}

func TestResolveWeekStartDefaultsToUpcomingMonday(t *testing.T) {
	t.Parallel()

	// Wednesday -> next Monday.
	now := time.Date(2026, time.February, 25, 10, 30, 0, 0, time.UTC)
	got, err := resolveWeekStart("", now)
	if err != nil {
		t.Fatalf("resolveWeekStart: %v", err)
	}
	if got.Format("2006-01-02") != "2026-03-02" {
		t.Fatalf("week start = %s, want 2026-03-02", got.Format("2006-01-02"))
	}

	// Already Monday -> the following Monday, never today.
	now = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	got, err = resolveWeekStart("", now)
	if err != nil {
		t.Fatalf("resolveWeekStart: %v", err)
	}
	if got.Format("2006-01-02") != "2026-03-09" {
		t.Fatalf("week start = %s, want 2026-03-09", got.Format("2006-01-02"))
	}
}
