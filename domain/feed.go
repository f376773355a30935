package domain

import (
	"time"
)

// FeedConfig is the persistent configuration of one syndication source.
// URL is unique across all configs and is the external identity of a feed;
// ID is assigned by the store on insert.
type FeedConfig struct {
	CreatedAt time.Time `db:"created_at"`
	Name      string    `db:"name"`
	URL       string    `db:"url"`
	ID        int64     `db:"id"`
	Category  int64     `db:"category"`
	// Refresh is the polling interval in milliseconds. The stored value
	// always reflects the currently applied interval, including after
	// backoff has scaled it.
	Refresh int64 `db:"refresh"`
}

// RefreshInterval returns the polling interval as a time.Duration.
func (c FeedConfig) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh) * time.Millisecond
}

// FeedItem is one parsed entry before persistence. URL is canonicalized
// before any store interaction; Date is the publication time as reported by
// the feed and may be the zero value when the feed reported none.
type FeedItem struct {
	Date     time.Time
	Title    string
	URL      string
	Category int64
	Website  int64
}

// PersistedItem is a FeedItem after the store has assigned identity. Date is
// the publication time, or the processing time when publication time was
// unusable.
type PersistedItem struct {
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	ID       int64     `json:"id"`
	Category int64     `json:"category"`
	Website  int64     `json:"website"`
}

// ErrorRecord is a structured error log entry persisted to the store.
type ErrorRecord struct {
	Date    time.Time
	Kind    ErrorKind
	Message string
	// FeedID links the record to a FeedConfig when the error is
	// feed-scoped; nil otherwise.
	FeedID *int64
}
