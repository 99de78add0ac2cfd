package analytics

import (
	"context"
	"fmt"

	"github.com/inkbound/inkbound-backend/internal/analytics/query"
	"github.com/inkbound/inkbound-backend/internal/analytics/types"
	"github.com/inkbound/inkbound-backend/pkg/bigquery"
)

// Service provides analytics reports based on post events.
type Service interface {
	// TrendingStyles returns the most-posted styles for the provided window.
	TrendingStyles(ctx context.Context, req types.TrendingStylesRequest) (*types.TrendingStylesResponse, error)
}

type service struct {
	trending query.TrendingService
}

// NewService builds an analytics service backed by BigQuery.
func NewService(client *bigquery.Client, project, dataset, table string) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}

	trending, err := query.NewTrendingService(client, project, dataset, table)
	if err != nil {
		return nil, err
	}

	return &service{trending: trending}, nil
}

func (s *service) TrendingStyles(ctx context.Context, req types.TrendingStylesRequest) (*types.TrendingStylesResponse, error) {
	return s.trending.TrendingStyles(ctx, req)
}
