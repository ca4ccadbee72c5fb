package ingestion

import (
	"context"
	"time"
)

// Writer persists a normalized batch. Rows are upserted by id, players and
// matches before the stats that reference them, all in one transaction.
type Writer interface {
	WriteBatch(ctx context.Context, batch Batch) error
}

// Response is one decoded provider response together with its raw body.
type Response struct {
	Endpoint  string
	Body      map[string]any
	Raw       []byte
	FetchedAt time.Time
}

// Provider fetches documents from the external cricket data service.
// Failures after the retry budget is spent wrap ErrUnavailable; a record
// the provider does not know wraps ErrNotFound.
type Provider interface {
	LiveMatches(ctx context.Context) (Response, error)
	RecentMatches(ctx context.Context) (Response, error)
	MatchInfo(ctx context.Context, matchID string) (Response, error)
	Scorecard(ctx context.Context, matchID string) (Response, error)
	Commentary(ctx context.Context, matchID string) (Response, error)
	Player(ctx context.Context, playerID string) (Response, error)
	Rankings(ctx context.Context, category, format string) (Response, error)
}
