package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkbound/inkbound-backend/internal/analytics/types"
)

type testAnalyticsService struct {
	trendingFn func(ctx context.Context, req types.TrendingStylesRequest) (*types.TrendingStylesResponse, error)
}

func (s *testAnalyticsService) TrendingStyles(ctx context.Context, req types.TrendingStylesRequest) (*types.TrendingStylesResponse, error) {
	if s.trendingFn != nil {
		return s.trendingFn(ctx, req)
	}
	return &types.TrendingStylesResponse{}, nil
}

func TestResolveRangeDefaultsToThirtyDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trending-styles", nil)

	start, end, err := resolveRange(req, now)
	if err != nil {
		t.Fatalf("resolve range: %v", err)
	}
	if !end.Equal(now) {
		t.Fatalf("unexpected end %s", end)
	}
	if !start.Equal(now.Add(-30 * 24 * time.Hour)) {
		t.Fatalf("unexpected start %s", start)
	}
}

func TestResolveRangeExplicitPair(t *testing.T) {
	now := time.Now().UTC()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trending-styles?from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z", nil)

	start, end, err := resolveRange(req, now)
	if err != nil {
		t.Fatalf("resolve range: %v", err)
	}
	if start.Month() != time.January || end.Month() != time.February {
		t.Fatalf("unexpected range %s..%s", start, end)
	}
}

func TestResolveRangeRejectsHalfPair(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trending-styles?from=2026-01-01T00:00:00Z", nil)
	if _, _, err := resolveRange(req, time.Now().UTC()); err == nil {
		t.Fatal("expected error for missing to")
	}
}

func TestResolveRangeRejectsUnknownPreset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trending-styles?window=1y", nil)
	if _, _, err := resolveRange(req, time.Now().UTC()); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestAnalyticsTrendingStylesForwardsWindow(t *testing.T) {
	var got types.TrendingStylesRequest
	svc := &testAnalyticsService{
		trendingFn: func(ctx context.Context, req types.TrendingStylesRequest) (*types.TrendingStylesResponse, error) {
			got = req
			return &types.TrendingStylesResponse{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trending-styles?window=7d&limit=5", nil)
	resp := httptest.NewRecorder()
	AnalyticsTrendingStyles(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Limit != 5 {
		t.Fatalf("unexpected limit %d", got.Limit)
	}
	if want := 7 * 24 * time.Hour; got.End.Sub(got.Start) != want {
		t.Fatalf("unexpected window %s", got.End.Sub(got.Start))
	}
}
