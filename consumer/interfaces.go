package consumer

import (
	"context"

	"aggregator/domain"
)

// FeedScheduler is the subset of scheduler operations commands map to.
type FeedScheduler interface {
	Add(ctx context.Context, cfg domain.FeedConfig) error
	Remove(ctx context.Context, url string) error
	Replace(ctx context.Context, cfg domain.FeedConfig) error
}

// ErrorSink receives boundary validation errors worth surfacing as events.
type ErrorSink interface {
	Error(ctx context.Context, ferr *domain.FeedError)
}
