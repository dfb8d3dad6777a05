package postgres

import (
	"time"

	"github.com/google/uuid"
)

type tierStateModel struct {
	CreatorID string    `gorm:"column:creator_id;primaryKey"`
	Tier      string    `gorm:"column:tier"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (tierStateModel) TableName() string { return "creator_tier_state" }

type contextAuditModel struct {
	AuditID            uuid.UUID `gorm:"column:audit_id;type:uuid;primaryKey"`
	CreatorID          string    `gorm:"column:creator_id"`
	WeekStart          string    `gorm:"column:week_start"`
	Tier               string    `gorm:"column:tier"`
	CompoundMultiplier float64   `gorm:"column:compound_multiplier"`
	HealthAdjustment   int       `gorm:"column:health_adjustment"`
	AuditHash          string    `gorm:"column:audit_hash"`
	Context            string    `gorm:"column:context;type:jsonb"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (contextAuditModel) TableName() string { return "schedule_context_audit" }

type contextOutboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (contextOutboxModel) TableName() string { return "schedule_context_outbox" }
