package types

import "time"

// PostEventRow is the BigQuery row shape for the post_events table.
type PostEventRow struct {
	EventID    string    `bigquery:"event_id"`
	EventType  string    `bigquery:"event_type"`
	PostID     string    `bigquery:"post_id"`
	AuthorID   string    `bigquery:"author_id"`
	ActorID    string    `bigquery:"actor_id"`
	ActorRole  string    `bigquery:"actor_role"`
	Styles     []string  `bigquery:"styles"`
	Tags       []string  `bigquery:"tags"`
	OccurredAt time.Time `bigquery:"occurred_at"`
}

// TrendingStylesRequest bounds the reporting window for the styles report.
type TrendingStylesRequest struct {
	Start time.Time
	End   time.Time
	Limit int
}

// StyleCount is one entry in the trending styles report.
type StyleCount struct {
	Style     string `json:"style"`
	PostCount int64  `json:"post_count"`
}

// TrendingStylesResponse is the styles report for a window.
type TrendingStylesResponse struct {
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Styles []StyleCount `json:"styles"`
}
