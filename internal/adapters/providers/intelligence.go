package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/domain"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/ports"
)

// fanRevenueRate derives a monthly-revenue estimate when the provider omits
// the figure: fan count times a fixed per-fan dollar rate.
const fanRevenueRate = 2.5

// Client talks to the creator-intelligence service. Payloads arrive loosely
// typed; every numeric field is decoded into an optional-field struct and
// defaulted here so nothing past this boundary has to re-check.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewClient(baseURL, authToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rawRanking struct {
	ContentType string   `json:"content_type"`
	Rank        *int     `json:"rank"`
	Score       *float64 `json:"score"`
}

type rawPerformance struct {
	ContentType            string   `json:"content_type"`
	RevenuePerSend         *float64 `json:"revenue_per_send"`
	ConversionRate         *float64 `json:"conversion_rate"`
	SendsLast30Days        *int     `json:"sends_last_30_days"`
	RPSChangeWeekOverWeek  *float64 `json:"rps_change_wow"`
	OpenRateChange7Day     *float64 `json:"open_rate_change_7d"`
	ConsecutiveDeclineDays *int     `json:"consecutive_decline_days"`
	SampleSize             *int     `json:"sample_size"`
}

type rawBundle struct {
	CreatorID           string                `json:"creator_id"`
	IsActive            *bool                 `json:"is_active"`
	PageType            string                `json:"page_type"`
	MonthlyRevenue      *float64              `json:"monthly_revenue"`
	FanCount            *int                  `json:"fan_count"`
	ContentCategory     string                `json:"content_category"`
	AllowedContentTypes []string              `json:"allowed_content_types"`
	AvoidContentTypes   []string              `json:"avoid_content_types"`
	ContentTypeRankings []rawRanking          `json:"content_type_rankings"`
	ContentPerformance  []rawPerformance      `json:"content_performance"`
	Persona             domain.PersonaProfile `json:"persona"`
	Pricing             domain.PricingConfig  `json:"pricing"`
}

func (c *Client) FetchBundle(ctx context.Context, creatorID string) (ports.CreatorBundle, error) {
	var raw rawBundle
	if err := c.get(ctx, fmt.Sprintf("/api/v1/creators/%s/bundle", url.PathEscape(creatorID)), &raw); err != nil {
		return ports.CreatorBundle{}, err
	}
	return coerceBundle(creatorID, raw), nil
}

func (c *Client) FetchPerformanceTrends(ctx context.Context, creatorID, period string) (domain.TrendInputs, error) {
	var trends domain.TrendInputs
	path := fmt.Sprintf("/api/v1/creators/%s/trends?period=%s", url.PathEscape(creatorID), url.QueryEscape(period))
	if err := c.get(ctx, path, &trends); err != nil {
		return domain.TrendInputs{}, err
	}
	return trends, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("intelligence service returned %d for %s", resp.StatusCode, path)
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response for %s: %w", path, err)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("empty data payload for %s", path)
	}
	return json.Unmarshal(envelope.Data, out)
}

func coerceBundle(creatorID string, raw rawBundle) ports.CreatorBundle {
	bundle := ports.CreatorBundle{
		CreatorID:           creatorID,
		PageType:            raw.PageType,
		ContentCategory:     raw.ContentCategory,
		AllowedContentTypes: raw.AllowedContentTypes,
		AvoidContentTypes:   raw.AvoidContentTypes,
		Persona:             raw.Persona,
		Pricing:             raw.Pricing,
	}
	if raw.CreatorID != "" {
		bundle.CreatorID = raw.CreatorID
	}
	if raw.IsActive != nil {
		bundle.IsActive = *raw.IsActive
	}

	switch {
	case raw.MonthlyRevenue != nil && *raw.MonthlyRevenue > 0:
		bundle.MonthlyRevenue = *raw.MonthlyRevenue
	case raw.FanCount != nil && *raw.FanCount > 0:
		bundle.MonthlyRevenue = float64(*raw.FanCount) * fanRevenueRate
	}

	bundle.ContentTypeRankings = make([]domain.ContentTypeRank, 0, len(raw.ContentTypeRankings))
	for i, r := range raw.ContentTypeRankings {
		rank := domain.ContentTypeRank{ContentType: r.ContentType, Rank: i + 1}
		if r.Rank != nil {
			rank.Rank = *r.Rank
		}
		if r.Score != nil {
			rank.Score = *r.Score
		}
		bundle.ContentTypeRankings = append(bundle.ContentTypeRankings, rank)
	}

	bundle.ContentPerformance = make([]domain.PerformanceMetrics, 0, len(raw.ContentPerformance))
	for _, p := range raw.ContentPerformance {
		bundle.ContentPerformance = append(bundle.ContentPerformance, coercePerformance(p))
	}
	return bundle
}

// coercePerformance defaults absent fields to values that cannot trip any
// trigger rule.
func coercePerformance(raw rawPerformance) domain.PerformanceMetrics {
	m := domain.PerformanceMetrics{ContentType: raw.ContentType}
	if raw.RevenuePerSend != nil {
		m.RevenuePerSend = *raw.RevenuePerSend
	}
	if raw.ConversionRate != nil {
		m.ConversionRate = *raw.ConversionRate
	}
	if raw.SendsLast30Days != nil {
		m.SendsLast30Days = *raw.SendsLast30Days
	} else {
		// an unknown usage count must not look "fresh" to the
		// emerging-winner rule
		m.SendsLast30Days = emergingWinnerSafeUses
	}
	if raw.RPSChangeWeekOverWeek != nil {
		m.RPSChangeWeekOverWeek = *raw.RPSChangeWeekOverWeek
	}
	if raw.OpenRateChange7Day != nil {
		m.OpenRateChange7Day = *raw.OpenRateChange7Day
	}
	if raw.ConsecutiveDeclineDays != nil {
		m.ConsecutiveDeclineDays = *raw.ConsecutiveDeclineDays
	}
	if raw.SampleSize != nil {
		m.SampleSize = *raw.SampleSize
	}
	return m
}

// emergingWinnerSafeUses sits above the emerging-winner freshness cutoff.
const emergingWinnerSafeUses = 99
