package ports

import (
	"context"

	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/domain"
)

// CreatorBundle is the primary fetch result: the creator's profile, vault
// and performance surface, already coerced to safe values at the provider
// boundary.
type CreatorBundle struct {
	CreatorID           string
	IsActive            bool
	PageType            string
	MonthlyRevenue      float64
	ContentCategory     string
	AllowedContentTypes []string
	AvoidContentTypes   []string
	ContentTypeRankings []domain.ContentTypeRank
	ContentPerformance  []domain.PerformanceMetrics
	Persona             domain.PersonaProfile
	Pricing             domain.PricingConfig
}

// BundleReader is the required primary fetch. Failure is fatal to assembly.
type BundleReader interface {
	FetchBundle(ctx context.Context, creatorID string) (CreatorBundle, error)
}

// TrendReader is an optional secondary fetch; failures degrade to defaults.
type TrendReader interface {
	FetchPerformanceTrends(ctx context.Context, creatorID, period string) (domain.TrendInputs, error)
}
