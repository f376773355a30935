package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"aggregator/domain"
	"aggregator/pipeline"
	"aggregator/test/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeSink struct {
	mu   sync.Mutex
	errs []*domain.FeedError
}

func (f *fakeSink) Error(_ context.Context, ferr *domain.FeedError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, ferr)
}

func (f *fakeSink) kinds() []domain.ErrorKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]domain.ErrorKind, len(f.errs))
	for i, e := range f.errs {
		kinds[i] = e.Kind
	}
	return kinds
}

type fakeProcessor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeProcessor) Process(_ context.Context, _ domain.FeedConfig, _ []domain.FeedItem) (pipeline.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return pipeline.Result{}, f.err
}

func (f *fakeProcessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (s *Scheduler) trackerEntry(feedID int64) *failureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[feedID]
}

func TestBackoffProgressionAndPermanentRemoval(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	cfg := domain.FeedConfig{ID: 1, Name: "flaky", URL: "https://flaky.test/feed", Category: 1, Refresh: 60000}

	s.mu.Lock()
	s.startLocked(cfg, false)
	s.mu.Unlock()

	fetchErr := domain.NewFeedError(domain.KindFetchURLError, cfg.URL, &cfg.ID, errors.New("unexpected status 500"))
	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, fetchErr).Times(5)

	// min(60000 * 2^(n-1), 86_400_000) for failures 1..4.
	gomock.InOrder(
		feeds.EXPECT().UpdateRefresh(gomock.Any(), cfg.URL, int64(60000)).Return(nil),
		feeds.EXPECT().UpdateRefresh(gomock.Any(), cfg.URL, int64(120000)).Return(nil),
		feeds.EXPECT().UpdateRefresh(gomock.Any(), cfg.URL, int64(240000)).Return(nil),
		feeds.EXPECT().UpdateRefresh(gomock.Any(), cfg.URL, int64(480000)).Return(nil),
		feeds.EXPECT().RemoveByURL(gomock.Any(), cfg.URL).Return(int64(1), nil),
	)

	for i := 0; i < 4; i++ {
		s.tick(context.Background(), cfg.URL)
	}

	applied := s.GetFeedConfig(cfg.URL)
	require.NotNil(t, applied)
	assert.Equal(t, int64(480000), applied.Refresh)

	// Fifth consecutive failure removes the feed permanently.
	s.tick(context.Background(), cfg.URL)

	assert.Nil(t, s.GetFeedConfig(cfg.URL))
	assert.Nil(t, s.trackerEntry(cfg.ID))
	assert.Contains(t, sink.kinds(), domain.KindPermanentFailure)
}

func TestBackoffIsCappedAtTwentyFourHours(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	// A refresh large enough that one doubling crosses the cap.
	cfg := domain.FeedConfig{ID: 2, URL: "https://slow.test/feed", Category: 1, Refresh: 50_000_000}

	s.mu.Lock()
	s.startLocked(cfg, false)
	s.mu.Unlock()

	fetchErr := domain.NewFeedError(domain.KindParseURLError, cfg.URL, &cfg.ID, errors.New("empty feed"))
	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, fetchErr).Times(2)

	gomock.InOrder(
		feeds.EXPECT().UpdateRefresh(gomock.Any(), cfg.URL, int64(50_000_000)).Return(nil),
		feeds.EXPECT().UpdateRefresh(gomock.Any(), cfg.URL, int64(86_400_000)).Return(nil),
	)

	s.tick(context.Background(), cfg.URL)
	s.tick(context.Background(), cfg.URL)

	applied := s.GetFeedConfig(cfg.URL)
	require.NotNil(t, applied)
	assert.Equal(t, int64(86_400_000), applied.Refresh)
}

func TestSuccessfulTickClearsFailureTracker(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	cfg := domain.FeedConfig{ID: 3, URL: "https://recovers.test/feed", Category: 1, Refresh: 60000}

	s.mu.Lock()
	s.startLocked(cfg, false)
	s.mu.Unlock()

	fetchErr := domain.NewFeedError(domain.KindFetchURLError, cfg.URL, &cfg.ID, errors.New("timeout"))
	gomock.InOrder(
		fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, fetchErr),
		fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]domain.FeedItem{}, nil),
	)
	feeds.EXPECT().UpdateRefresh(gomock.Any(), cfg.URL, int64(60000)).Return(nil)

	s.tick(context.Background(), cfg.URL)
	require.NotNil(t, s.trackerEntry(cfg.ID))

	s.tick(context.Background(), cfg.URL)
	assert.Nil(t, s.trackerEntry(cfg.ID))
}

func TestNonTransientErrorLeavesTrackerUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	processor := &fakeProcessor{err: domain.NewFeedError(domain.KindDBError, "https://db.test/feed", nil, errors.New("insert failed"))}

	s := New(feeds, fetch, processor, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	cfg := domain.FeedConfig{ID: 4, URL: "https://db.test/feed", Category: 1, Refresh: 60000}

	s.mu.Lock()
	s.startLocked(cfg, false)
	s.mu.Unlock()

	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]domain.FeedItem{}, nil)

	s.tick(context.Background(), cfg.URL)

	// db_error is emitted but never feeds the backoff counter.
	assert.Equal(t, []domain.ErrorKind{domain.KindDBError}, sink.kinds())
	assert.Nil(t, s.trackerEntry(cfg.ID))
	require.NotNil(t, s.GetFeedConfig(cfg.URL))
	assert.Equal(t, int64(60000), s.GetFeedConfig(cfg.URL).Refresh)
}

func TestAddRejectsInvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	tests := map[string]domain.FeedConfig{
		"empty url":        {Name: "x", Refresh: 60000},
		"zero refresh":     {Name: "x", URL: "https://example.com/feed"},
		"negative refresh": {Name: "x", URL: "https://example.com/feed", Refresh: -5},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			err := s.Add(context.Background(), cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidFeedConfig)
		})
	}

	assert.Equal(t, []domain.ErrorKind{domain.KindTypeError, domain.KindTypeError, domain.KindTypeError}, sink.kinds())
	assert.Equal(t, 0, s.ActiveCount())
}

func TestAddUpsertsAndStartsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}
	processor := &fakeProcessor{}

	s := New(feeds, fetch, processor, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	cfg := domain.FeedConfig{Name: "wire", URL: "https://example.com/feed", Category: 2, Refresh: 60000}

	feeds.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *domain.FeedConfig) error {
			c.ID = 21
			return nil
		})
	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]domain.FeedItem{}, nil).AnyTimes()

	require.NoError(t, s.Add(context.Background(), cfg))

	applied := s.GetFeedConfig(cfg.URL)
	require.NotNil(t, applied)
	assert.Equal(t, int64(21), applied.ID)

	// The first tick fires without waiting for the refresh interval.
	assert.Eventually(t, func() bool {
		return processor.callCount() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestAddClampsRefreshToFloor(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), 30*time.Second)
	defer s.Destroy()

	feeds.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *domain.FeedConfig) error {
			assert.Equal(t, int64(30000), c.Refresh)
			return nil
		})
	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]domain.FeedItem{}, nil).AnyTimes()

	cfg := domain.FeedConfig{Name: "fast", URL: "https://example.com/feed", Category: 1, Refresh: 10}
	require.NoError(t, s.Add(context.Background(), cfg))

	applied := s.GetFeedConfig(cfg.URL)
	require.NotNil(t, applied)
	assert.Equal(t, int64(30000), applied.Refresh)
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	// Removing an unknown URL still attempts the store delete.
	feeds.EXPECT().RemoveByURL(gomock.Any(), "https://gone.test/feed").Return(int64(0), nil)

	require.NoError(t, s.Remove(context.Background(), "https://gone.test/feed"))
	assert.Empty(t, sink.kinds())
}

func TestReplaceRemovesThenAdds(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	cfg := domain.FeedConfig{Name: "n", URL: "https://example.com/feed", Category: 7, Refresh: 30000}

	gomock.InOrder(
		feeds.EXPECT().RemoveByURL(gomock.Any(), cfg.URL).Return(int64(1), nil),
		feeds.EXPECT().
			Upsert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *domain.FeedConfig) error {
				c.ID = 5
				return nil
			}),
	)
	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]domain.FeedItem{}, nil).AnyTimes()

	require.NoError(t, s.Replace(context.Background(), cfg))

	applied := s.GetFeedConfig(cfg.URL)
	require.NotNil(t, applied)
	assert.Equal(t, int64(30000), applied.Refresh)
}

func TestUpdateIntervalDoesNotTickImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}
	processor := &fakeProcessor{}

	s := New(feeds, fetch, processor, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	cfg := domain.FeedConfig{ID: 6, URL: "https://example.com/feed", Category: 1, Refresh: 60000}

	s.mu.Lock()
	s.startLocked(cfg, false)
	s.mu.Unlock()

	feeds.EXPECT().UpdateRefresh(gomock.Any(), cfg.URL, int64(120000)).Return(nil)

	require.NoError(t, s.UpdateInterval(context.Background(), cfg.URL, 120000))

	applied := s.GetFeedConfig(cfg.URL)
	require.NotNil(t, applied)
	assert.Equal(t, int64(120000), applied.Refresh)

	// No fetch expectation is registered; an immediate tick would fail the
	// controller. Give a restarted timer a moment to misbehave.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, processor.callCount())
}

func TestInitStartsAllStoredFeeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	stored := []domain.FeedConfig{
		{ID: 1, URL: "https://a.test/feed", Category: 1, Refresh: 60000},
		{ID: 2, URL: "https://b.test/feed", Category: 2, Refresh: 90000},
	}

	feeds.EXPECT().GetAll(gomock.Any()).Return(stored, nil)
	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]domain.FeedItem{}, nil).AnyTimes()

	count := s.Init(context.Background())
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, s.ActiveCount())
}

func TestInitStoreFailureEmitsDBErrorAndStartsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	feeds.EXPECT().GetAll(gomock.Any()).Return(nil, errors.New("connection refused"))

	count := s.Init(context.Background())
	assert.Equal(t, 0, count)
	assert.Equal(t, []domain.ErrorKind{domain.KindDBError}, sink.kinds())
}

func TestReloadFeedsMatchesDestroyThenInit(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)
	defer s.Destroy()

	stored := []domain.FeedConfig{
		{ID: 1, URL: "https://a.test/feed", Category: 1, Refresh: 60000},
	}

	feeds.EXPECT().GetAll(gomock.Any()).Return(stored, nil).Times(2)
	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]domain.FeedItem{}, nil).AnyTimes()

	require.Equal(t, 1, s.Init(context.Background()))

	// Seed some backoff state; reload must clear it.
	s.mu.Lock()
	s.failures[1] = &failureState{consecutive: 2, originalRefresh: 60000}
	s.mu.Unlock()

	count := s.ReloadFeeds(context.Background())
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, s.ActiveCount())
	assert.Nil(t, s.trackerEntry(1))
}

func TestDestroyStopsEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mocks.NewMockFeedRepository(ctrl)
	fetch := mocks.NewMockFetcher(ctrl)
	sink := &fakeSink{}

	s := New(feeds, fetch, &fakeProcessor{}, sink, testLogger(), time.Millisecond)

	stored := []domain.FeedConfig{
		{ID: 1, URL: "https://a.test/feed", Category: 1, Refresh: 60000},
		{ID: 2, URL: "https://b.test/feed", Category: 2, Refresh: 60000},
	}

	feeds.EXPECT().GetAll(gomock.Any()).Return(stored, nil)
	fetch.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]domain.FeedItem{}, nil).AnyTimes()

	s.Init(context.Background())
	s.Destroy()

	assert.Equal(t, 0, s.ActiveCount())
	assert.Nil(t, s.GetFeedConfig("https://a.test/feed"))
}
