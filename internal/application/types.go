package application

import (
	"log/slog"
	"time"

	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/ports"
)

type Config struct {
	ServiceName string
	// TrendsPeriod is passed through to the performance-trends fetch.
	TrendsPeriod string
	// JitterSeed fixes the minute-jitter random source for deterministic
	// replays; 0 seeds from the clock per request.
	JitterSeed     int64
	AuditListLimit int
}

// ComputeInput identifies the (creator, week) a context is requested for.
type ComputeInput struct {
	CreatorID string
	// WeekStart is a YYYY-MM-DD date; empty selects the upcoming Monday.
	WeekStart string
	// JitterSeed overrides the configured seed for this request.
	JitterSeed *int64
}

type Service struct {
	cfg    Config
	logger *slog.Logger

	bundles  ports.BundleReader
	trends   ports.TrendReader
	triggers ports.TriggerStore

	tierState ports.TierStateRepository
	audits    ports.AuditRepository
	outbox    ports.OutboxRepository

	nowFn func() time.Time
}

type Dependencies struct {
	Config Config
	Logger *slog.Logger

	Bundles  ports.BundleReader
	Trends   ports.TrendReader
	Triggers ports.TriggerStore

	TierState ports.TierStateRepository
	Audits    ports.AuditRepository
	Outbox    ports.OutboxRepository
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "M59-Schedule-Context-Service"
	}
	if cfg.TrendsPeriod == "" {
		cfg.TrendsPeriod = "30d"
	}
	if cfg.AuditListLimit <= 0 {
		cfg.AuditListLimit = 50
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		logger:    logger,
		bundles:   deps.Bundles,
		trends:    deps.Trends,
		triggers:  deps.Triggers,
		tierState: deps.TierState,
		audits:    deps.Audits,
		outbox:    deps.Outbox,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}
