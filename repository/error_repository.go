package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"aggregator/domain"
)

// ErrorRepository implementation.
type errorRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewErrorRepository creates a new error log repository.
func NewErrorRepository(db *pgxpool.Pool, logger *slog.Logger) ErrorRepository {
	return &errorRepository{
		db:     db,
		logger: logger,
	}
}

// Log persists record. A failure here is complained about on stderr and
// swallowed: error logging must never itself become an error source.
func (r *errorRepository) Log(ctx context.Context, record domain.ErrorRecord) {
	query := `
		INSERT INTO error_log (type, feed_id, message, date)
		VALUES ($1, $2, $3, COALESCE($4, CURRENT_TIMESTAMP))
	`

	var date interface{}
	if !record.Date.IsZero() {
		date = record.Date
	}

	if _, err := r.db.Exec(ctx, query, string(record.Kind), record.FeedID, record.Message, date); err != nil {
		fmt.Fprintf(os.Stderr, "error_log insert failed: %v (kind=%s message=%q)\n", err, record.Kind, record.Message)
		r.logger.ErrorContext(ctx, "failed to persist error record", "kind", record.Kind, "error", err)
	}
}
