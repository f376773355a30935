package repository

import (
	"context"
	"time"

	"aggregator/domain"
)

//go:generate mockgen -source=interfaces.go -destination=../test/mocks/repository_mocks.go -package=mocks

// FeedRepository handles feed configuration persistence. The store is the
// source of truth on restart; the scheduler's runtime view is only ever
// eventually consistent with it.
type FeedRepository interface {
	// GetAll returns every stored feed configuration.
	GetAll(ctx context.Context) ([]domain.FeedConfig, error)
	// GetByURL returns the config for url, or domain.ErrFeedNotFound.
	GetByURL(ctx context.Context, url string) (*domain.FeedConfig, error)
	// Upsert inserts a new config keyed by URL or updates the existing
	// row in place, preserving its id. ID and CreatedAt are written back
	// into cfg.
	Upsert(ctx context.Context, cfg *domain.FeedConfig) error
	// UpdateRefresh persists a new polling interval for url.
	UpdateRefresh(ctx context.Context, url string, refresh int64) error
	// RemoveByURL deletes the row for url and reports affected rows.
	RemoveByURL(ctx context.Context, url string) (int64, error)
}

// ItemRepository handles feed item persistence. The unique (website, url)
// constraint is what makes the whole pipeline idempotent across workers.
type ItemRepository interface {
	// BulkInsertIgnoringDuplicates submits all rows in one statement and
	// silently skips rows violating the (website, url) constraint. The
	// number of rows actually inserted is not reported.
	BulkInsertIgnoringDuplicates(ctx context.Context, items []domain.FeedItem) error
	// FindInsertedSince returns the rows for website whose url is in urls
	// and whose stored date is at or after since. This probe is the
	// linearization point deciding which items count as new for this
	// worker.
	FindInsertedSince(ctx context.Context, website int64, urls []string, since time.Time) ([]domain.PersistedItem, error)
}

// ErrorRepository persists structured error records. Logging must never fail
// outward: internal failures are reported on stderr and swallowed so the
// worker cannot enter an error loop.
type ErrorRepository interface {
	Log(ctx context.Context, record domain.ErrorRecord)
}
