package scheduler

import (
	"context"

	"aggregator/domain"
	"aggregator/pipeline"
)

// TickProcessor runs the item pipeline for one tick's parse output. The
// pipeline processor is the production implementation.
type TickProcessor interface {
	Process(ctx context.Context, cfg domain.FeedConfig, items []domain.FeedItem) (pipeline.Result, error)
}

// ErrorSink receives every error the scheduler surfaces. The events emitter
// is the production implementation.
type ErrorSink interface {
	Error(ctx context.Context, ferr *domain.FeedError)
}
