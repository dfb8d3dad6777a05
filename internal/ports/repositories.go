package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/domain"
)

// TierStateRepository persists the last classified tier per creator. The
// classifier itself is stateless; the previous tier is an explicit input
// sourced from here by the assembler.
type TierStateRepository interface {
	// GetPreviousTier returns domain.ErrNotFound when the creator has no
	// recorded tier yet.
	GetPreviousTier(ctx context.Context, creatorID string) (domain.Tier, error)
	SaveTier(ctx context.Context, creatorID string, tier domain.Tier, at time.Time) error
}

// AuditRecord is one computed context's durable audit row.
type AuditRecord struct {
	AuditID            uuid.UUID
	CreatorID          string
	WeekStart          string
	Tier               domain.Tier
	CompoundMultiplier float64
	HealthAdjustment   int
	AuditHash          string
	Context            []byte
	CreatedAt          time.Time
}

type AuditRepository interface {
	Create(ctx context.Context, record AuditRecord) error
	ListByCreator(ctx context.Context, creatorID string, limit int) ([]AuditRecord, error)
}

// OutboxEvent is a pending event written in the same transaction scope as
// the state change it announces.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord is a claimed outbox row handed to the publish worker.
type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, batchSize int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, reason string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, reason string, at time.Time) error
}
