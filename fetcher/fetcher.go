// ABOUTME: This file fetches one feed over HTTP and normalizes its items.
// ABOUTME: Items without a usable date or older than the freshness window are dropped.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"aggregator/config"
	"aggregator/domain"
)

const acceptHeader = "text/html, application/xhtml+xml, application/xml, text/xml, application/atom+xml, application/rss+xml"

// freshnessWindow is how far back an item's publication date may lie before
// the item is considered stale and skipped.
const freshnessWindow = 24 * time.Hour

// Client is the shared feed fetcher. One instance serves every active feed;
// per-host pacing keeps concurrent feeds on the same origin polite.
type Client struct {
	httpClient  *http.Client
	limiter     *HostLimiter
	logger      *slog.Logger
	userAgent   string
	maxBodySize int64
}

// NewClient creates a fetcher from config.
func NewClient(cfg config.FetchConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:     NewHostLimiter(rate.Every(cfg.HostInterval), 1),
		logger:      logger,
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
	}
}

// Fetch retrieves cfg.URL and returns its normalized items. Transport and
// status failures come back as fetch_url_error; an unparseable or empty body
// comes back as parse_url_error.
func (c *Client) Fetch(ctx context.Context, cfg domain.FeedConfig) ([]domain.FeedItem, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, domain.NewFeedError(domain.KindFetchURLError, cfg.URL, &cfg.ID, fmt.Errorf("invalid feed url: %w", err))
	}

	if err := c.limiter.Wait(ctx, parsed.Hostname()); err != nil {
		return nil, domain.NewFeedError(domain.KindFetchURLError, cfg.URL, &cfg.ID, fmt.Errorf("rate limit wait aborted: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, domain.NewFeedError(domain.KindFetchURLError, cfg.URL, &cfg.ID, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "feed fetch failed", "url", cfg.URL, "error", err)
		return nil, domain.NewFeedError(domain.KindFetchURLError, cfg.URL, &cfg.ID, fmt.Errorf("failed to fetch feed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "feed fetch returned non-200", "url", cfg.URL, "status", resp.StatusCode)
		return nil, domain.NewFeedError(domain.KindFetchURLError, cfg.URL, &cfg.ID, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	parser := gofeed.NewParser()

	feed, err := parser.Parse(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		c.logger.ErrorContext(ctx, "feed parse failed", "url", cfg.URL, "error", err)
		return nil, domain.NewFeedError(domain.KindParseURLError, cfg.URL, &cfg.ID, fmt.Errorf("failed to parse feed: %w", err))
	}

	if len(feed.Items) == 0 {
		return nil, domain.NewFeedError(domain.KindParseURLError, cfg.URL, &cfg.ID, fmt.Errorf("feed contains no items"))
	}

	items := c.normalizeItems(cfg, feed.Items)

	c.logger.InfoContext(ctx, "feed fetched", "url", cfg.URL, "raw_items", len(feed.Items), "fresh_items", len(items))

	return items, nil
}

// normalizeItems maps raw gofeed items to domain items, skipping items with
// no link, no usable date, or a date outside the freshness window.
func (c *Client) normalizeItems(cfg domain.FeedConfig, raw []*gofeed.Item) []domain.FeedItem {
	cutoff := time.Now().Add(-freshnessWindow)

	items := make([]domain.FeedItem, 0, len(raw))

	for _, entry := range raw {
		link := strings.TrimSpace(entry.Link)
		if link == "" {
			continue
		}

		date := itemDate(entry)
		if date == nil || date.Before(cutoff) {
			continue
		}

		items = append(items, domain.FeedItem{
			Title:    strings.TrimSpace(entry.Title),
			URL:      link,
			Date:     *date,
			Category: cfg.Category,
			Website:  cfg.ID,
		})
	}

	return items
}

// itemDate picks the item's publication time, preferring the published
// timestamp over updated, and nil when neither parses.
func itemDate(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil && !entry.PublishedParsed.IsZero() {
		return entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil && !entry.UpdatedParsed.IsZero() {
		return entry.UpdatedParsed
	}
	return nil
}
