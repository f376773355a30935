// ABOUTME: This file implements the outbound event surface of the worker.
// ABOUTME: New items fan out to per-category channels, errors to the shared error channel and store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"aggregator/domain"
	"aggregator/metrics"
	"aggregator/pubsub"
	"aggregator/repository"
)

// itemEnvelope is the wire format for new-item events.
type itemEnvelope struct {
	Event string               `json:"event"`
	Data  domain.PersistedItem `json:"data"`
}

// errorEnvelope is the wire format for error events. Feed and FeedID are
// null when the error is not tied to a stored feed.
type errorEnvelope struct {
	Type    string  `json:"type"`
	Message string  `json:"message"`
	Feed    *string `json:"feed"`
	FeedID  *int64  `json:"feedId"`
}

// statusEnvelope is the wire format for worker status notices.
type statusEnvelope struct {
	Worker string    `json:"worker"`
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Emitter publishes the worker's outbound events. It is the only component
// allowed to write to the error channel, which keeps the critical-error
// shutdown path in one place.
type Emitter struct {
	publisher  pubsub.Publisher
	errorStore repository.ErrorRepository
	logger     *slog.Logger
	fatal      chan domain.ErrorKind
}

// NewEmitter creates an emitter over publisher and errorStore.
func NewEmitter(publisher pubsub.Publisher, errorStore repository.ErrorRepository, logger *slog.Logger) *Emitter {
	return &Emitter{
		publisher:  publisher,
		errorStore: errorStore,
		logger:     logger,
		fatal:      make(chan domain.ErrorKind, 1),
	}
}

// Fatal is signalled at most once, when a critical error kind passes through
// Error. The bootstrap watches it to begin graceful shutdown.
func (e *Emitter) Fatal() <-chan domain.ErrorKind {
	return e.fatal
}

// NewItem publishes item on its category channel. A publish failure is
// surfaced as an item_save_error event and does not stop the caller's loop.
func (e *Emitter) NewItem(ctx context.Context, item domain.PersistedItem) {
	channel := pubsub.ItemChannel(item.Category)

	payload, err := json.Marshal(itemEnvelope{Event: channel, Data: item})
	if err != nil {
		e.Error(ctx, domain.NewFeedError(domain.KindInternalError, item.URL, &item.Website, fmt.Errorf("failed to marshal item envelope: %w", err)))
		return
	}

	if err := e.publisher.Publish(ctx, channel, payload); err != nil {
		e.Error(ctx, domain.NewFeedError(domain.KindItemSaveError, item.URL, &item.Website, fmt.Errorf("failed to publish item: %w", err)))
		return
	}

	metrics.ItemsPublished.Inc()

	e.logger.InfoContext(ctx, "item published", "channel", channel, "url", item.URL, "id", item.ID)
}

// Error publishes ferr on the error channel and mirrors it to the error
// store. Critical kinds additionally signal the fatal channel.
func (e *Emitter) Error(ctx context.Context, ferr *domain.FeedError) {
	envelope := errorEnvelope{
		Type:    string(ferr.Kind),
		Message: ferr.Message(),
		FeedID:  ferr.FeedID,
	}
	if ferr.FeedURL != "" {
		url := ferr.FeedURL
		envelope.Feed = &url
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to marshal error envelope", "kind", ferr.Kind, "error", err)
	} else if err := e.publisher.Publish(ctx, pubsub.ChannelErrors, payload); err != nil {
		e.logger.ErrorContext(ctx, "failed to publish error event", "kind", ferr.Kind, "error", err)
	}

	e.errorStore.Log(ctx, domain.ErrorRecord{
		Date:    time.Now(),
		Kind:    ferr.Kind,
		Message: ferr.Message(),
		FeedID:  ferr.FeedID,
	})

	e.logger.ErrorContext(ctx, "error event emitted", "kind", ferr.Kind, "feed", ferr.FeedURL, "message", ferr.Message())

	if ferr.Kind.Critical() {
		select {
		case e.fatal <- ferr.Kind:
		default:
		}
	}
}

// Status publishes a worker status notice, currently only the shutdown one.
func (e *Emitter) Status(ctx context.Context, worker, status string) {
	payload, err := json.Marshal(statusEnvelope{
		Worker: worker,
		Status: status,
		Time:   time.Now().UTC(),
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to marshal status envelope", "error", err)
		return
	}

	if err := e.publisher.Publish(ctx, pubsub.ChannelStatus, payload); err != nil {
		e.logger.ErrorContext(ctx, "failed to publish status notice", "status", status, "error", err)
	}
}
