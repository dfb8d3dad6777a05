package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PersonaProfile is an opaque pass-through from the data provider.
type PersonaProfile map[string]any

// PricingConfig is an opaque pass-through from the data provider.
type PricingConfig map[string]any

// ContentTypeRank is one entry of the provider's content-type ranking list.
type ContentTypeRank struct {
	ContentType string  `json:"content_type"`
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
}

// CreatorContext is the immutable root output consumed by the external
// generation and validation collaborators. Created once per (creator, week)
// request and never mutated after construction.
type CreatorContext struct {
	CreatorID           string                  `json:"creator_id"`
	PageType            string                  `json:"page_type"`
	AllowedContentTypes []string                `json:"allowed_content_types"`
	AvoidContentTypes   []string                `json:"avoid_content_types"`
	ContentTypeRankings []ContentTypeRank       `json:"content_type_rankings"`
	Volume              VolumeConfig            `json:"volume_config"`
	Persona             PersonaProfile          `json:"persona"`
	ActiveTriggers      []Trigger               `json:"active_triggers"`
	Pricing             PricingConfig           `json:"pricing"`
	TimingSlots         map[string][]TimingSlot `json:"timing_slots"`
	Health              HealthStatus            `json:"health"`
	WeekStart           string                  `json:"week_start"`
	GeneratedAt         time.Time               `json:"generated_at"`
	FetchOperations     int                     `json:"fetch_operations"`
	AuditHash           string                  `json:"audit_hash"`
}

// ComputeAuditHash derives the deterministic audit artifact over the context's
// decision inputs. Boost dates are sorted so the hash is order-independent,
// and identical inputs always yield the identical hash string.
func ComputeAuditHash(tier Tier, compoundMultiplier float64, healthAdjustment int, weekStart time.Time, boosts []CalendarBoostEntry) string {
	dates := make([]string, 0, len(boosts))
	for _, b := range boosts {
		dates = append(dates, b.Date)
	}
	sort.Strings(dates)

	canonical := fmt.Sprintf("%s|%.4f|%d|%s|%s",
		tier,
		compoundMultiplier,
		healthAdjustment,
		weekStart.Format("2006-01-02"),
		strings.Join(dates, ","),
	)
	sum := sha256.Sum256([]byte(canonical))
	return "sha256:" + hex.EncodeToString(sum[:])[:16]
}
