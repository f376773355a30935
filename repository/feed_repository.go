package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aggregator/domain"
)

// FeedRepository implementation.
type feedRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewFeedRepository creates a new feed repository.
func NewFeedRepository(db *pgxpool.Pool, logger *slog.Logger) FeedRepository {
	return &feedRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll returns every stored feed configuration.
func (r *feedRepository) GetAll(ctx context.Context) ([]domain.FeedConfig, error) {
	query := `
		SELECT id, name, url, category, refresh, created_at
		FROM   feeds
		ORDER  BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to query feeds", "error", err)
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	var configs []domain.FeedConfig

	for rows.Next() {
		var cfg domain.FeedConfig
		if err := rows.Scan(&cfg.ID, &cfg.Name, &cfg.URL, &cfg.Category, &cfg.Refresh, &cfg.CreatedAt); err != nil {
			r.logger.ErrorContext(ctx, "failed to scan feed row", "error", err)
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed rows: %w", err)
	}

	return configs, nil
}

// GetByURL returns the config for url, or domain.ErrFeedNotFound.
func (r *feedRepository) GetByURL(ctx context.Context, url string) (*domain.FeedConfig, error) {
	query := `
		SELECT id, name, url, category, refresh, created_at
		FROM   feeds
		WHERE  url = $1
	`

	var cfg domain.FeedConfig

	err := r.db.QueryRow(ctx, query, url).Scan(&cfg.ID, &cfg.Name, &cfg.URL, &cfg.Category, &cfg.Refresh, &cfg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFeedNotFound
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to get feed by url", "url", url, "error", err)
		return nil, fmt.Errorf("failed to get feed by url: %w", err)
	}

	return &cfg, nil
}

// Upsert inserts or updates the row for cfg.URL, preserving the id of an
// existing row. The store-assigned id and created_at are written back.
func (r *feedRepository) Upsert(ctx context.Context, cfg *domain.FeedConfig) error {
	query := `
		INSERT INTO feeds (name, url, category, refresh)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO UPDATE SET
			name     = EXCLUDED.name,
			category = EXCLUDED.category,
			refresh  = EXCLUDED.refresh
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, cfg.Name, cfg.URL, cfg.Category, cfg.Refresh).Scan(&cfg.ID, &cfg.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to upsert feed", "url", cfg.URL, "error", err)
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	r.logger.InfoContext(ctx, "feed upserted", "url", cfg.URL, "id", cfg.ID, "refresh", cfg.Refresh)

	return nil
}

// UpdateRefresh persists a new polling interval for url.
func (r *feedRepository) UpdateRefresh(ctx context.Context, url string, refresh int64) error {
	query := `
		UPDATE feeds SET refresh = $2 WHERE url = $1
	`

	if _, err := r.db.Exec(ctx, query, url, refresh); err != nil {
		r.logger.ErrorContext(ctx, "failed to update feed refresh", "url", url, "error", err)
		return fmt.Errorf("failed to update feed refresh: %w", err)
	}

	return nil
}

// RemoveByURL deletes the row for url and reports how many rows went away.
func (r *feedRepository) RemoveByURL(ctx context.Context, url string) (int64, error) {
	query := `
		DELETE FROM feeds WHERE url = $1
	`

	tag, err := r.db.Exec(ctx, query, url)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to remove feed", "url", url, "error", err)
		return 0, fmt.Errorf("failed to remove feed: %w", err)
	}

	return tag.RowsAffected(), nil
}
