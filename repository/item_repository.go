package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aggregator/domain"
)

// ItemRepository implementation.
type itemRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewItemRepository creates a new item repository.
func NewItemRepository(db *pgxpool.Pool, logger *slog.Logger) ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger,
	}
}

// BulkInsertIgnoringDuplicates inserts all rows in a single statement.
// Rows violating the (website, url) unique constraint are skipped by the
// store; the item date column is assigned by the store at insert time, which
// is what scopes the post-insert probe to this worker's rows.
func (r *itemRepository) BulkInsertIgnoringDuplicates(ctx context.Context, items []domain.FeedItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO items (
			title, url, category, website
		) VALUES `

	values := make([]interface{}, 0, len(items)*4)
	placeholders := make([]string, 0, len(items))

	for i, item := range items {
		placeholder := fmt.Sprintf(
			"($%d, $%d, $%d, $%d)",
			i*4+1, i*4+2, i*4+3, i*4+4,
		)
		placeholders = append(placeholders, placeholder)

		values = append(values,
			item.Title,
			item.URL,
			item.Category,
			item.Website,
		)
	}

	query += strings.Join(placeholders, ", ")
	query += ` ON CONFLICT (website, url) DO NOTHING`

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, query, values...); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			r.logger.ErrorContext(ctx, "failed to rollback transaction", "error", rollbackErr)
		}
		r.logger.ErrorContext(ctx, "failed to bulk insert items", "error", err, "count", len(items))
		return fmt.Errorf("failed to bulk insert items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "bulk insert submitted", "count", len(items))

	return nil
}

// FindInsertedSince returns rows for website whose url is in urls and whose
// stored date is at or after since.
func (r *itemRepository) FindInsertedSince(ctx context.Context, website int64, urls []string, since time.Time) ([]domain.PersistedItem, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, title, url, category, website, date
		FROM   items
		WHERE  website = $1
		AND    url = ANY($2)
		AND    date >= $3
	`

	rows, err := r.db.Query(ctx, query, website, urls, since)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to query inserted items", "website", website, "error", err)
		return nil, fmt.Errorf("failed to query inserted items: %w", err)
	}
	defer rows.Close()

	var items []domain.PersistedItem

	for rows.Next() {
		var item domain.PersistedItem
		if err := rows.Scan(&item.ID, &item.Title, &item.URL, &item.Category, &item.Website, &item.Date); err != nil {
			r.logger.ErrorContext(ctx, "failed to scan item row", "error", err)
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read item rows: %w", err)
	}

	return items, nil
}
