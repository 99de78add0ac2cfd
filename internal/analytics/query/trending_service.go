package query

import (
	"context"
	"fmt"

	cloudbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/inkbound/inkbound-backend/internal/analytics/types"
	"github.com/inkbound/inkbound-backend/pkg/bigquery"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
)

const (
	defaultStyleLimit = 10
	maxStyleLimit     = 50

	trendingStylesSQL = `
SELECT
  style,
  COUNT(DISTINCT post_id) AS post_count
FROM %s, UNNEST(styles) AS style
WHERE event_type = 'post.created'
  AND occurred_at BETWEEN @start AND @end
GROUP BY style
ORDER BY post_count DESC, style ASC
LIMIT @limit
`
)

// TrendingService reports which styles are gaining posts from BigQuery post_events.
type TrendingService interface {
	TrendingStyles(ctx context.Context, req types.TrendingStylesRequest) (*types.TrendingStylesResponse, error)
}

type trendingService struct {
	client   *bigquery.Client
	tableRef string
}

// NewTrendingService builds a service backed by BigQuery.
func NewTrendingService(client *bigquery.Client, project, dataset, table string) (TrendingService, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	if project == "" || dataset == "" || table == "" {
		return nil, fmt.Errorf("project, dataset, and table are required")
	}
	return &trendingService{
		client:   client,
		tableRef: fmt.Sprintf("`%s.%s.%s`", project, dataset, table),
	}, nil
}

func (s *trendingService) TrendingStyles(ctx context.Context, req types.TrendingStylesRequest) (*types.TrendingStylesResponse, error) {
	limit, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	params := []cloudbigquery.QueryParameter{
		{Name: "start", Value: req.Start},
		{Name: "end", Value: req.End},
		{Name: "limit", Value: int64(limit)},
	}

	iter, err := s.client.Query(ctx, fmt.Sprintf(trendingStylesSQL, s.tableRef), params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "querying trending styles")
	}

	var styles []types.StyleCount
	for {
		var row struct {
			Style     string `bigquery:"style"`
			PostCount int64  `bigquery:"post_count"`
		}
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading trending style row")
		}
		styles = append(styles, types.StyleCount{Style: row.Style, PostCount: row.PostCount})
	}

	return &types.TrendingStylesResponse{
		Start:  req.Start,
		End:    req.End,
		Styles: styles,
	}, nil
}

func validateRequest(req types.TrendingStylesRequest) (int, error) {
	if req.Start.IsZero() || req.End.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if req.End.Before(req.Start) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultStyleLimit
	}
	if limit > maxStyleLimit {
		limit = maxStyleLimit
	}
	return limit, nil
}
