package fetcher

import (
	"context"

	"aggregator/domain"
)

//go:generate mockgen -source=interfaces.go -destination=../test/mocks/fetcher_mocks.go -package=mocks

// Fetcher retrieves the current contents of one feed and normalizes them
// into domain items.
type Fetcher interface {
	Fetch(ctx context.Context, cfg domain.FeedConfig) ([]domain.FeedItem, error)
}
