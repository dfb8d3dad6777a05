package ports

import (
	"context"

	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/domain"
)

// TriggerStore holds active triggers between invocations. Reads are the
// optional secondary trigger fetch (failure-tolerant); writes persist newly
// detected triggers until their expiry.
type TriggerStore interface {
	GetActive(ctx context.Context, creatorID string) ([]domain.Trigger, error)
	Put(ctx context.Context, creatorID string, triggers []domain.Trigger) error
}
