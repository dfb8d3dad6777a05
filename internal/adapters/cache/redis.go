package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/domain"
)

func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

const triggerKeyPrefix = "sched:triggers:"

// RedisTriggerStore keeps active triggers per creator with a TTL matched to
// the latest trigger expiry, so expired triggers age out without a sweeper.
type RedisTriggerStore struct {
	client *redis.Client
}

func NewRedisTriggerStore(client *redis.Client) *RedisTriggerStore {
	return &RedisTriggerStore{client: client}
}

func (s *RedisTriggerStore) GetActive(ctx context.Context, creatorID string) ([]domain.Trigger, error) {
	raw, err := s.client.Get(ctx, triggerKeyPrefix+creatorID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Trigger{}, nil
		}
		return nil, err
	}
	var stored []domain.Trigger
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	active := make([]domain.Trigger, 0, len(stored))
	for _, t := range stored {
		if t.ExpiresAt.After(now) {
			active = append(active, t)
		}
	}
	return active, nil
}

func (s *RedisTriggerStore) Put(ctx context.Context, creatorID string, triggers []domain.Trigger) error {
	if len(triggers) == 0 {
		return nil
	}
	raw, err := json.Marshal(triggers)
	if err != nil {
		return err
	}

	latest := triggers[0].ExpiresAt
	for _, t := range triggers[1:] {
		if t.ExpiresAt.After(latest) {
			latest = t.ExpiresAt
		}
	}
	ttl := time.Until(latest)
	if ttl <= 0 {
		ttl = time.Hour
	}
	return s.client.Set(ctx, triggerKeyPrefix+creatorID, raw, ttl).Err()
}
