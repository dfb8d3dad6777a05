package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/domain"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/ports"
)

const eventContextComputed = "schedule_context.computed"

// ComputeContext assembles the full creator context for the target week.
// One primary bundle fetch is required; the trigger and trend fetches run
// concurrently and degrade to empty defaults on failure. The result is
// immutable and reproducible given identical inputs and a fixed jitter seed.
func (s *Service) ComputeContext(ctx context.Context, input ComputeInput) (domain.CreatorContext, error) {
	creatorID := strings.TrimSpace(input.CreatorID)
	if creatorID == "" {
		return domain.CreatorContext{}, fmt.Errorf("%w: creator_id is required", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	weekStart, err := resolveWeekStart(input.WeekStart, now)
	if err != nil {
		return domain.CreatorContext{}, err
	}

	bundle, err := s.bundles.FetchBundle(ctx, creatorID)
	if err != nil {
		return domain.CreatorContext{}, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if !bundle.IsActive {
		return domain.CreatorContext{}, domain.ErrCreatorInactive
	}
	fetchOps := 1

	carried, trendInputs := s.fetchSecondary(ctx, creatorID)
	fetchOps += 2

	previousTier := s.previousTier(ctx, creatorID)
	tier := domain.ClassifyTier(bundle.MonthlyRevenue, previousTier)
	spec := domain.TierSpecFor(tier)

	health := domain.EvaluateHealth(trendInputs)
	detected := domain.DetectTriggers(bundle.ContentPerformance, now)
	active := make([]domain.Trigger, 0, len(carried)+len(detected))
	active = append(active, carried...)
	active = append(active, detected...)

	volume := domain.BuildVolumeConfig(spec, bundle.MonthlyRevenue, health, active, weekStart, bundle.ContentCategory)

	rng := rand.New(rand.NewSource(s.jitterSeed(input, now)))
	slots := domain.AllocateWeek(weekStart, volume.WeeklyDistribution, rng)

	creatorContext := domain.CreatorContext{
		CreatorID:           creatorID,
		PageType:            bundle.PageType,
		AllowedContentTypes: bundle.AllowedContentTypes,
		AvoidContentTypes:   bundle.AvoidContentTypes,
		ContentTypeRankings: bundle.ContentTypeRankings,
		Volume:              volume,
		Persona:             bundle.Persona,
		ActiveTriggers:      active,
		Pricing:             bundle.Pricing,
		TimingSlots:         slots,
		Health:              health,
		WeekStart:           weekStart.Format("2006-01-02"),
		GeneratedAt:         now,
		FetchOperations:     fetchOps,
		AuditHash:           domain.ComputeAuditHash(tier, volume.TriggerMultiplier, health.VolumeAdjustment, weekStart, volume.CalendarBoosts),
	}

	s.persistOutputs(ctx, creatorContext, tier, detected, now)

	s.logger.InfoContext(ctx, "creator context computed",
		"module", "application",
		"layer", "service",
		"operation", "compute_context",
		"outcome", "success",
		"creator_id", creatorID,
		"week_start", creatorContext.WeekStart,
		"tier", tier,
		"health_status", health.Status,
		"trigger_count", len(active),
		"audit_hash", creatorContext.AuditHash,
	)
	return creatorContext, nil
}

// fetchSecondary dispatches the trigger and trend fetches concurrently.
// They depend only on the creator id, so ordering between them is irrelevant
// and either failure degrades to an empty default.
func (s *Service) fetchSecondary(ctx context.Context, creatorID string) ([]domain.Trigger, domain.TrendInputs) {
	var (
		wg          sync.WaitGroup
		carried     []domain.Trigger
		trendInputs domain.TrendInputs
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		triggers, err := s.triggers.GetActive(ctx, creatorID)
		if err != nil {
			s.logger.WarnContext(ctx, "active trigger fetch degraded",
				"module", "application",
				"layer", "service",
				"operation", "fetch_active_triggers",
				"outcome", "degraded",
				"creator_id", creatorID,
				"error", err,
			)
			return
		}
		carried = triggers
	}()
	go func() {
		defer wg.Done()
		trends, err := s.trends.FetchPerformanceTrends(ctx, creatorID, s.cfg.TrendsPeriod)
		if err != nil {
			s.logger.WarnContext(ctx, "performance trend fetch degraded",
				"module", "application",
				"layer", "service",
				"operation", "fetch_performance_trends",
				"outcome", "degraded",
				"creator_id", creatorID,
				"error", err,
			)
			return
		}
		trendInputs = trends
	}()
	wg.Wait()

	if carried == nil {
		carried = []domain.Trigger{}
	}
	return carried, trendInputs
}

func (s *Service) previousTier(ctx context.Context, creatorID string) domain.Tier {
	tier, err := s.tierState.GetPreviousTier(ctx, creatorID)
	if err != nil {
		if !isNotFound(err) {
			s.logger.WarnContext(ctx, "previous tier lookup degraded",
				"module", "application",
				"layer", "service",
				"operation", "get_previous_tier",
				"outcome", "degraded",
				"creator_id", creatorID,
				"error", err,
			)
		}
		return ""
	}
	return tier
}

// persistOutputs records the operational byproducts of a computation: the
// new tier for the next invocation's hysteresis, the detected triggers until
// expiry, the audit row, and the outbox event. All are best-effort; the
// computed context is already final.
func (s *Service) persistOutputs(ctx context.Context, creatorContext domain.CreatorContext, tier domain.Tier, detected []domain.Trigger, now time.Time) {
	creatorID := creatorContext.CreatorID

	if err := s.tierState.SaveTier(ctx, creatorID, tier, now); err != nil {
		s.warnPersist(ctx, "save_tier_state", creatorID, err)
	}
	if len(detected) > 0 {
		if err := s.triggers.Put(ctx, creatorID, detected); err != nil {
			s.warnPersist(ctx, "store_detected_triggers", creatorID, err)
		}
	}

	payload, err := json.Marshal(creatorContext)
	if err != nil {
		s.warnPersist(ctx, "encode_context", creatorID, err)
		return
	}
	if err := s.audits.Create(ctx, ports.AuditRecord{
		AuditID:            uuid.New(),
		CreatorID:          creatorID,
		WeekStart:          creatorContext.WeekStart,
		Tier:               tier,
		CompoundMultiplier: creatorContext.Volume.TriggerMultiplier,
		HealthAdjustment:   creatorContext.Volume.HealthAdjustment,
		AuditHash:          creatorContext.AuditHash,
		Context:            payload,
		CreatedAt:          now,
	}); err != nil {
		s.warnPersist(ctx, "create_audit_record", creatorID, err)
	}
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventContextComputed,
		PartitionKey: creatorID,
		Payload:      payload,
		OccurredAt:   now,
	}); err != nil {
		s.warnPersist(ctx, "enqueue_outbox_event", creatorID, err)
	}
}

func (s *Service) warnPersist(ctx context.Context, operation, creatorID string, err error) {
	s.logger.WarnContext(ctx, "context byproduct persistence degraded",
		"module", "application",
		"layer", "service",
		"operation", operation,
		"outcome", "degraded",
		"creator_id", creatorID,
		"error", err,
	)
}

// ListAudits returns the most recent audit rows for a creator.
func (s *Service) ListAudits(ctx context.Context, creatorID string) ([]ports.AuditRecord, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, fmt.Errorf("%w: creator_id is required", domain.ErrInvalidInput)
	}
	return s.audits.ListByCreator(ctx, creatorID, s.cfg.AuditListLimit)
}

func (s *Service) jitterSeed(input ComputeInput, now time.Time) int64 {
	if input.JitterSeed != nil {
		return *input.JitterSeed
	}
	if s.cfg.JitterSeed != 0 {
		return s.cfg.JitterSeed
	}
	return now.UnixNano()
}

// resolveWeekStart parses the requested week start, defaulting to the
// upcoming Monday in UTC.
func resolveWeekStart(raw string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		return day.AddDate(0, 0, offset), nil
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: week_start must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	return parsed.UTC(), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
