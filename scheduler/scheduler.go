// ABOUTME: This file owns the set of live feeds, their timers and backoff state.
// ABOUTME: One goroutine per feed; ticks run inline so they never overlap.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"aggregator/domain"
	"aggregator/fetcher"
	"aggregator/metrics"
	"aggregator/repository"
)

const (
	// maxBackoffMs caps the backed-off polling interval at 24 hours.
	maxBackoffMs = 86_400_000
	// maxConsecutiveFailures is the threshold at which a feed is
	// permanently removed.
	maxConsecutiveFailures = 5
)

type activeFeed struct {
	cfg    domain.FeedConfig
	cancel context.CancelFunc
}

type failureState struct {
	consecutive     int
	originalRefresh int64
}

// Scheduler owns the runtime view of all feeds. The store remains the source
// of truth; every mutation here is persisted before the timer state changes.
type Scheduler struct {
	feeds      repository.FeedRepository
	fetcher    fetcher.Fetcher
	processor  TickProcessor
	emitter    ErrorSink
	logger     *slog.Logger
	minRefresh time.Duration

	mu          sync.Mutex
	activeFeeds map[string]*activeFeed
	failures    map[int64]*failureState
	wg          sync.WaitGroup
}

// New creates a scheduler. minRefresh is the floor applied to configured
// polling intervals.
func New(feeds repository.FeedRepository, fetch fetcher.Fetcher, processor TickProcessor, emitter ErrorSink, logger *slog.Logger, minRefresh time.Duration) *Scheduler {
	return &Scheduler{
		feeds:       feeds,
		fetcher:     fetch,
		processor:   processor,
		emitter:     emitter,
		logger:      logger,
		minRefresh:  minRefresh,
		activeFeeds: make(map[string]*activeFeed),
		failures:    make(map[int64]*failureState),
	}
}

// Init loads every stored feed config and starts its timer. Returns the
// number of feeds started; a store failure emits db_error and returns 0.
func (s *Scheduler) Init(ctx context.Context) int {
	configs, err := s.feeds.GetAll(ctx)
	if err != nil {
		s.emitter.Error(ctx, domain.NewFeedError(domain.KindDBError, "", nil, fmt.Errorf("failed to load feeds: %w", err)))
		return 0
	}

	s.mu.Lock()
	for _, cfg := range configs {
		s.startLocked(cfg, true)
	}
	count := len(s.activeFeeds)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "scheduler initialized", "feeds", count)

	return count
}

// Add validates cfg, upserts it into the store keyed by URL and (re)starts
// its timer. An invalid config emits type_error and is skipped.
func (s *Scheduler) Add(ctx context.Context, cfg domain.FeedConfig) error {
	if cfg.URL == "" || cfg.Refresh <= 0 {
		err := fmt.Errorf("%w: url=%q refresh=%d", domain.ErrInvalidFeedConfig, cfg.URL, cfg.Refresh)
		s.emitter.Error(ctx, domain.NewFeedError(domain.KindTypeError, cfg.URL, nil, err))
		return err
	}

	if floor := s.minRefresh.Milliseconds(); cfg.Refresh < floor {
		s.logger.WarnContext(ctx, "refresh below floor, clamping", "url", cfg.URL, "refresh", cfg.Refresh, "floor", floor)
		cfg.Refresh = floor
	}

	if err := s.feeds.Upsert(ctx, &cfg); err != nil {
		s.emitter.Error(ctx, domain.NewFeedError(domain.KindDBError, cfg.URL, nil, err))
		return err
	}

	s.mu.Lock()
	if existing, ok := s.activeFeeds[cfg.URL]; ok {
		existing.cancel()
	}
	s.startLocked(cfg, true)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "feed added", "url", cfg.URL, "id", cfg.ID, "refresh", cfg.Refresh)

	return nil
}

// Remove cancels the feed's timer, clears its runtime and backoff state and
// deletes its store row. Removing an unknown URL is a no-op that still
// attempts the store delete.
func (s *Scheduler) Remove(ctx context.Context, url string) error {
	s.mu.Lock()
	if af, ok := s.activeFeeds[url]; ok {
		af.cancel()
		delete(s.activeFeeds, url)
		delete(s.failures, af.cfg.ID)
		metrics.ActiveFeeds.Set(float64(len(s.activeFeeds)))
	}
	s.mu.Unlock()

	affected, err := s.feeds.RemoveByURL(ctx, url)
	if err != nil {
		s.emitter.Error(ctx, domain.NewFeedError(domain.KindDBError, url, nil, err))
		return err
	}

	s.logger.InfoContext(ctx, "feed removed", "url", url, "rows", affected)

	return nil
}

// Replace is remove followed by add; the two-phase ordering is observable
// through the store.
func (s *Scheduler) Replace(ctx context.Context, cfg domain.FeedConfig) error {
	if err := s.Remove(ctx, cfg.URL); err != nil {
		return err
	}
	return s.Add(ctx, cfg)
}

// UpdateInterval persists newMs as the feed's refresh and restarts its timer
// with the new period. Unlike Add, the restarted timer does not tick
// immediately.
func (s *Scheduler) UpdateInterval(ctx context.Context, url string, newMs int64) error {
	if err := s.feeds.UpdateRefresh(ctx, url, newMs); err != nil {
		s.emitter.Error(ctx, domain.NewFeedError(domain.KindDBError, url, nil, err))
		return err
	}

	s.mu.Lock()
	if af, ok := s.activeFeeds[url]; ok {
		af.cancel()
		cfg := af.cfg
		cfg.Refresh = newMs
		s.startLocked(cfg, false)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "feed interval updated", "url", url, "refresh_ms", newMs)

	return nil
}

// ReloadFeeds stops every timer, clears runtime state and re-initializes
// from the store. Returns the number of feeds started.
func (s *Scheduler) ReloadFeeds(ctx context.Context) int {
	s.Destroy()
	return s.Init(ctx)
}

// Destroy cancels every timer, clears all runtime state and waits for
// in-flight ticks to finish.
func (s *Scheduler) Destroy() {
	s.mu.Lock()
	for _, af := range s.activeFeeds {
		af.cancel()
	}
	s.activeFeeds = make(map[string]*activeFeed)
	s.failures = make(map[int64]*failureState)
	metrics.ActiveFeeds.Set(0)
	s.mu.Unlock()

	s.wg.Wait()

	s.logger.Info("scheduler destroyed")
}

// GetFeedConfig returns the runtime view of url's config, including the
// currently applied refresh, or nil when the feed is not active.
func (s *Scheduler) GetFeedConfig(url string) *domain.FeedConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	af, ok := s.activeFeeds[url]
	if !ok {
		return nil
	}

	cfg := af.cfg
	return &cfg
}

// ActiveCount returns the number of feeds with a live timer.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeFeeds)
}

// startLocked registers cfg and starts its feed goroutine. Callers hold s.mu.
func (s *Scheduler) startLocked(cfg domain.FeedConfig, immediate bool) {
	if cfg.Refresh <= 0 {
		cfg.Refresh = s.minRefresh.Milliseconds()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.activeFeeds[cfg.URL] = &activeFeed{cfg: cfg, cancel: cancel}
	metrics.ActiveFeeds.Set(float64(len(s.activeFeeds)))

	s.wg.Add(1)
	go s.run(ctx, cfg, immediate)
}

// run is the per-feed loop: an optional immediate tick, then ticker-driven
// ticks executed inline so they can never overlap. Missed ticks coalesce.
func (s *Scheduler) run(ctx context.Context, cfg domain.FeedConfig, immediate bool) {
	defer s.wg.Done()

	if immediate {
		s.tick(ctx, cfg.URL)
	}

	ticker := time.NewTicker(cfg.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, cfg.URL)
		}
	}
}

// tick fetches and processes one feed once.
func (s *Scheduler) tick(ctx context.Context, url string) {
	s.mu.Lock()
	af, ok := s.activeFeeds[url]
	if !ok {
		s.mu.Unlock()
		return
	}
	cfg := af.cfg
	s.mu.Unlock()

	items, err := s.fetcher.Fetch(ctx, cfg)
	if err != nil {
		s.handleTickError(ctx, cfg, err)
		return
	}

	if _, err := s.processor.Process(ctx, cfg, items); err != nil {
		s.handleTickError(ctx, cfg, err)
		return
	}

	s.mu.Lock()
	delete(s.failures, cfg.ID)
	s.mu.Unlock()

	metrics.TicksTotal.WithLabelValues("success").Inc()
}

// handleTickError emits the error and, for transient kinds, advances the
// backoff state.
func (s *Scheduler) handleTickError(ctx context.Context, cfg domain.FeedConfig, err error) {
	if ctx.Err() != nil {
		// The feed was cancelled mid-tick; the result is discarded.
		return
	}

	var ferr *domain.FeedError
	if !errors.As(err, &ferr) {
		ferr = domain.NewFeedError(domain.KindInternalError, cfg.URL, &cfg.ID, err)
	}

	s.emitter.Error(ctx, ferr)

	if !ferr.Kind.Transient() {
		metrics.TicksTotal.WithLabelValues(string(ferr.Kind)).Inc()
		return
	}

	metrics.TicksTotal.WithLabelValues("transient_error").Inc()
	s.applyBackoff(ctx, cfg)
}

// applyBackoff doubles the feed's interval from its original refresh on each
// consecutive transient failure, capped at maxBackoffMs. The fifth failure
// removes the feed permanently.
func (s *Scheduler) applyBackoff(ctx context.Context, cfg domain.FeedConfig) {
	// Backoff cancels the feed's own context partway through; the store
	// and emitter calls below must survive that.
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	state, ok := s.failures[cfg.ID]
	if !ok {
		state = &failureState{originalRefresh: cfg.Refresh}
		s.failures[cfg.ID] = state
	}
	state.consecutive++
	failures := state.consecutive
	original := state.originalRefresh
	s.mu.Unlock()

	if failures >= maxConsecutiveFailures {
		if err := s.Remove(ctx, cfg.URL); err != nil {
			s.logger.ErrorContext(ctx, "failed to remove permanently failing feed", "url", cfg.URL, "error", err)
		}
		s.emitter.Error(ctx, domain.NewFeedError(domain.KindPermanentFailure, cfg.URL, &cfg.ID,
			fmt.Errorf("feed removed after %d consecutive failures", failures)))

		s.mu.Lock()
		delete(s.failures, cfg.ID)
		s.mu.Unlock()

		return
	}

	newInterval := original << (failures - 1)
	if newInterval > maxBackoffMs {
		newInterval = maxBackoffMs
	}

	s.logger.WarnContext(ctx, "backing off failing feed",
		"url", cfg.URL,
		"consecutive_failures", failures,
		"refresh_ms", newInterval)

	if err := s.UpdateInterval(ctx, cfg.URL, newInterval); err != nil {
		s.logger.ErrorContext(ctx, "failed to apply backoff interval", "url", cfg.URL, "error", err)
	}
}
