package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func bundleServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchBundleCoercion(t *testing.T) {
	t.Parallel()

	srv := bundleServer(t, `{
		"status": "success",
		"data": {
			"creator_id": "creator-9",
			"is_active": true,
			"page_type": "paid",
			"monthly_revenue": 0,
			"fan_count": 400,
			"content_category": "amateur",
			"allowed_content_types": ["ppv_video"],
			"content_type_rankings": [
				{"content_type": "ppv_video", "rank": 2, "score": 0.8},
				{"content_type": "teaser"}
			],
			"content_performance": [
				{"content_type": "ppv_video", "revenue_per_send": 210.5, "conversion_rate": 0.07, "sample_size": 12},
				{"content_type": "teaser"}
			]
		}
	}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", time.Second)
	bundle, err := client.FetchBundle(context.Background(), "creator-9")
	if err != nil {
		t.Fatalf("FetchBundle: %v", err)
	}

	if !bundle.IsActive {
		t.Fatal("bundle should be active")
	}
	// Zero stated revenue falls back to fan count times the per-fan rate.
	if bundle.MonthlyRevenue != 1000 {
		t.Fatalf("monthly revenue = %v, want 400 * 2.5 = 1000", bundle.MonthlyRevenue)
	}

	if len(bundle.ContentTypeRankings) != 2 {
		t.Fatalf("rankings = %d, want 2", len(bundle.ContentTypeRankings))
	}
	if bundle.ContentTypeRankings[0].Rank != 2 {
		t.Fatalf("explicit rank = %d, want 2", bundle.ContentTypeRankings[0].Rank)
	}
	// A missing rank falls back to list position.
	if bundle.ContentTypeRankings[1].Rank != 2 {
		t.Fatalf("fallback rank = %d, want positional 2", bundle.ContentTypeRankings[1].Rank)
	}

	if len(bundle.ContentPerformance) != 2 {
		t.Fatalf("performance rows = %d, want 2", len(bundle.ContentPerformance))
	}
	if bundle.ContentPerformance[0].RevenuePerSend != 210.5 {
		t.Fatalf("rps = %v", bundle.ContentPerformance[0].RevenuePerSend)
	}
	// An absent send count must read as heavily used, not freshly introduced.
	if bundle.ContentPerformance[1].SendsLast30Days != 99 {
		t.Fatalf("defaulted sends = %d, want 99", bundle.ContentPerformance[1].SendsLast30Days)
	}
}

func TestFetchBundleInactiveDefault(t *testing.T) {
	t.Parallel()

	srv := bundleServer(t, `{"status": "success", "data": {"creator_id": "creator-9"}}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", time.Second)
	bundle, err := client.FetchBundle(context.Background(), "creator-9")
	if err != nil {
		t.Fatalf("FetchBundle: %v", err)
	}
	if bundle.IsActive {
		t.Fatal("absent is_active must coerce to inactive")
	}
	if bundle.MonthlyRevenue != 0 {
		t.Fatalf("revenue = %v, want 0 with no fan count", bundle.MonthlyRevenue)
	}
}

func TestFetchBundleUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	if _, err := client.FetchBundle(context.Background(), "creator-9"); err == nil {
		t.Fatal("expected error on non-200 upstream response")
	}
}

func TestFetchPerformanceTrends(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("period"); got != "30d" {
			t.Errorf("period = %q, want 30d", got)
		}
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {"saturation_score": 62.5, "consecutive_decline_weeks": 2}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	trends, err := client.FetchPerformanceTrends(context.Background(), "creator-9", "30d")
	if err != nil {
		t.Fatalf("FetchPerformanceTrends: %v", err)
	}
	if trends.SaturationScore == nil || *trends.SaturationScore != 62.5 {
		t.Fatalf("saturation = %v", trends.SaturationScore)
	}
	if trends.ConsecutiveDeclineWeeks == nil || *trends.ConsecutiveDeclineWeeks != 2 {
		t.Fatalf("decline weeks = %v", trends.ConsecutiveDeclineWeeks)
	}
	if trends.OpportunityScore != nil {
		t.Fatalf("opportunity should stay nil, got %v", *trends.OpportunityScore)
	}
}
