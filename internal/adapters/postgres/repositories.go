package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/domain"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repositories struct {
	TierState *TierStateRepository
	Audits    *AuditRepository
	Outbox    *OutboxRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		TierState: &TierStateRepository{db: db},
		Audits:    &AuditRepository{db: db},
		Outbox:    &OutboxRepository{db: db},
	}
}

type TierStateRepository struct {
	db *gorm.DB
}

func (r *TierStateRepository) GetPreviousTier(ctx context.Context, creatorID string) (domain.Tier, error) {
	var rec tierStateModel
	if err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return domain.Tier(rec.Tier), nil
}

func (r *TierStateRepository) SaveTier(ctx context.Context, creatorID string, tier domain.Tier, at time.Time) error {
	rec := tierStateModel{CreatorID: creatorID, Tier: string(tier), UpdatedAt: at}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "creator_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tier", "updated_at"}),
		}).
		Create(&rec).Error
}

type AuditRepository struct {
	db *gorm.DB
}

func (r *AuditRepository) Create(ctx context.Context, record ports.AuditRecord) error {
	rec := contextAuditModel{
		AuditID:            record.AuditID,
		CreatorID:          record.CreatorID,
		WeekStart:          record.WeekStart,
		Tier:               string(record.Tier),
		CompoundMultiplier: record.CompoundMultiplier,
		HealthAdjustment:   record.HealthAdjustment,
		AuditHash:          record.AuditHash,
		Context:            string(record.Context),
		CreatedAt:          record.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *AuditRepository) ListByCreator(ctx context.Context, creatorID string, limit int) ([]ports.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []contextAuditModel
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]ports.AuditRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ports.AuditRecord{
			AuditID:            row.AuditID,
			CreatorID:          row.CreatorID,
			WeekStart:          row.WeekStart,
			Tier:               domain.Tier(row.Tier),
			CompoundMultiplier: row.CompoundMultiplier,
			HealthAdjustment:   row.HealthAdjustment,
			AuditHash:          row.AuditHash,
			Context:            []byte(row.Context),
			CreatedAt:          row.CreatedAt,
		})
	}
	return records, nil
}

type OutboxRepository struct {
	db *gorm.DB
}

func (r *OutboxRepository) Enqueue(ctx context.Context, event ports.OutboxEvent) error {
	rec := contextOutboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      string(event.Payload),
		CreatedAt:    event.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *OutboxRepository) ClaimUnpublished(ctx context.Context, batchSize int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	if batchSize <= 0 {
		return nil, nil
	}
	if claimToken == "" {
		return nil, fmt.Errorf("claim token is required")
	}

	now := time.Now().UTC()
	var rows []contextOutboxModel
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subquery := tx.Model(&contextOutboxModel{}).
			Select("outbox_id").
			Where("published_at IS NULL").
			Where("dead_lettered_at IS NULL").
			Where("claim_until IS NULL OR claim_until < ?", now).
			Order("created_at ASC").
			Limit(batchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})

		if err := tx.Model(&contextOutboxModel{}).
			Where("outbox_id IN (?)", subquery).
			Updates(map[string]any{
				"claim_token": claimToken,
				"claim_until": claimUntil,
			}).Error; err != nil {
			return err
		}

		return tx.Where("claim_token = ?", claimToken).
			Where("published_at IS NULL").
			Where("dead_lettered_at IS NULL").
			Order("created_at ASC").
			Find(&rows).Error
	}); err != nil {
		return nil, err
	}

	records := make([]ports.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ports.OutboxRecord{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      []byte(row.Payload),
			RetryCount:   row.RetryCount,
		})
	}
	return records, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&contextOutboxModel{}).
		Where("outbox_id = ?", outboxID).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"published_at": at,
			"claim_token":  nil,
			"claim_until":  nil,
		}).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&contextOutboxModel{}).
		Where("outbox_id = ?", outboxID).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_error":    reason,
			"last_error_at": at,
			"claim_token":   nil,
			"claim_until":   nil,
		}).Error
}

func (r *OutboxRepository) MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&contextOutboxModel{}).
		Where("outbox_id = ?", outboxID).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"retry_count":      gorm.Expr("retry_count + 1"),
			"last_error":       reason,
			"last_error_at":    at,
			"dead_lettered_at": at,
			"claim_token":      nil,
			"claim_until":      nil,
		}).Error
}
