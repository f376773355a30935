// ABOUTME: Error taxonomy for the aggregation worker
// ABOUTME: FeedError carries the kind tag plus feed identity for the outbound error channel
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of error tags used in ErrorRecord.Kind and in
// outbound error envelopes.
type ErrorKind string

const (
	// KindTypeError indicates an invalid feed config on add or replace.
	KindTypeError ErrorKind = "type_error"
	// KindFetchURLError indicates a non-200 response or transport failure.
	KindFetchURLError ErrorKind = "fetch_url_error"
	// KindParseURLError indicates the body could not be parsed as a feed
	// or yielded zero items.
	KindParseURLError ErrorKind = "parse_url_error"
	// KindDBError indicates a persistence failure in the core pipeline.
	KindDBError ErrorKind = "db_error"
	// KindItemSaveError indicates a failure while persisting a new item.
	KindItemSaveError ErrorKind = "item_save_error"
	// KindPermanentFailure indicates the backoff threshold was exceeded
	// and the feed has been removed.
	KindPermanentFailure ErrorKind = "permanent_failure"
	// KindInternalError covers anything else surfaced as an event.
	KindInternalError ErrorKind = "internal_error"
	// KindRedisError is critical and triggers graceful shutdown.
	KindRedisError ErrorKind = "redis_error"
	// KindDBConnectError is critical and triggers graceful shutdown.
	KindDBConnectError ErrorKind = "db_connect_error"
)

// Critical reports whether the kind must trigger graceful shutdown.
func (k ErrorKind) Critical() bool {
	return k == KindRedisError || k == KindDBConnectError
}

// Transient reports whether the kind feeds the scheduler's backoff counter.
func (k ErrorKind) Transient() bool {
	return k == KindFetchURLError || k == KindParseURLError
}

// Sentinel errors checked with errors.Is.
var (
	// ErrUncanonicalizable indicates a URL that cannot be reduced to a
	// canonical form; items carrying one are dropped silently.
	ErrUncanonicalizable = errors.New("url cannot be canonicalized")

	// ErrInvalidFeedConfig indicates an add/replace command with a missing
	// URL or a non-positive refresh interval.
	ErrInvalidFeedConfig = errors.New("invalid feed config")

	// ErrFeedNotFound indicates the requested feed is not active.
	ErrFeedNotFound = errors.New("feed not found")

	// ErrUnknownCommand indicates an inbound message whose cmd field is
	// outside the supported set.
	ErrUnknownCommand = errors.New("unknown command")
)

// FeedError is the structured error surfaced on the outbound error channel.
// FeedID is nil when the error is not tied to a stored feed.
type FeedError struct {
	Err     error
	FeedID  *int64
	Kind    ErrorKind
	FeedURL string
}

// NewFeedError wraps err with the given kind and feed identity.
func NewFeedError(kind ErrorKind, feedURL string, feedID *int64, err error) *FeedError {
	return &FeedError{
		Kind:    kind,
		FeedURL: feedURL,
		FeedID:  feedID,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *FeedError) Error() string {
	if e.FeedURL != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.FeedURL, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *FeedError) Unwrap() error {
	return e.Err
}

// Message returns the underlying error text for envelopes and store records.
func (e *FeedError) Message() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// KindOf extracts the error kind from err, defaulting to internal_error for
// errors that did not originate as a FeedError.
func KindOf(err error) ErrorKind {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternalError
}
