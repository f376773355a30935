package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aggregator/config"
	"aggregator/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "aggregator/1.0 (+feed aggregation worker)",
		MaxBodySize:  10 * 1024 * 1024,
		HostInterval: time.Millisecond,
	}
}

func rssFixture(pubDates ...string) string {
	items := ""
	for i, date := range pubDates {
		pub := ""
		if date != "" {
			pub = fmt.Sprintf("<pubDate>%s</pubDate>", date)
		}
		items += fmt.Sprintf(`
			<item>
				<title>Item %d</title>
				<link>https://example.com/post/%d</link>
				%s
			</item>`, i, i, pub)
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
		<rss version="2.0">
			<channel>
				<title>Test Feed</title>
				<link>https://example.com</link>%s
			</channel>
		</rss>`, items)
}

func TestFetch(t *testing.T) {
	fresh := time.Now().Add(-1 * time.Hour).Format(time.RFC1123Z)
	stale := time.Now().Add(-48 * time.Hour).Format(time.RFC1123Z)

	tests := map[string]struct {
		handler   http.HandlerFunc
		wantKind  domain.ErrorKind
		wantItems int
		wantErr   bool
	}{
		"returns fresh items": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, rssFixture(fresh, fresh))
			},
			wantItems: 2,
		},
		"drops stale items": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, rssFixture(fresh, stale))
			},
			wantItems: 1,
		},
		"drops items without a date": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, rssFixture(fresh, ""))
			},
			wantItems: 1,
		},
		"non-200 is a fetch error": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantErr:  true,
			wantKind: domain.KindFetchURLError,
		},
		"unparseable body is a parse error": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "this is not a feed")
			},
			wantErr:  true,
			wantKind: domain.KindParseURLError,
		},
		"feed with zero items is a parse error": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, rssFixture())
			},
			wantErr:  true,
			wantKind: domain.KindParseURLError,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(testFetchConfig(), testLogger())

			cfg := domain.FeedConfig{
				ID:       42,
				Name:     "test feed",
				URL:      server.URL,
				Category: 7,
				Refresh:  60000,
			}

			items, err := client.Fetch(context.Background(), cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
				return
			}

			require.NoError(t, err)
			require.Len(t, items, tt.wantItems)

			for _, item := range items {
				assert.Equal(t, int64(7), item.Category)
				assert.Equal(t, int64(42), item.Website)
				assert.NotEmpty(t, item.URL)
				assert.False(t, item.Date.IsZero())
			}
		})
	}
}

func TestFetchSendsIdentifyingHeaders(t *testing.T) {
	fresh := time.Now().Add(-1 * time.Hour).Format(time.RFC1123Z)

	var gotUserAgent, gotAccept string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, rssFixture(fresh))
	}))
	defer server.Close()

	client := NewClient(testFetchConfig(), testLogger())

	_, err := client.Fetch(context.Background(), domain.FeedConfig{ID: 1, URL: server.URL, Category: 1, Refresh: 60000})
	require.NoError(t, err)

	assert.Equal(t, "aggregator/1.0 (+feed aggregation worker)", gotUserAgent)
	assert.Equal(t, "text/html, application/xhtml+xml, application/xml, text/xml, application/atom+xml, application/rss+xml", gotAccept)
}

func TestFetchAtomFeed(t *testing.T) {
	fresh := time.Now().Add(-2 * time.Hour).Format(time.RFC3339)

	atom := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<feed xmlns="http://www.w3.org/2005/Atom">
			<title>Atom Feed</title>
			<entry>
				<title>Entry</title>
				<link href="https://example.com/atom/1"/>
				<updated>%s</updated>
			</entry>
		</feed>`, fresh)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atom)
	}))
	defer server.Close()

	client := NewClient(testFetchConfig(), testLogger())

	items, err := client.Fetch(context.Background(), domain.FeedConfig{ID: 3, URL: server.URL, Category: 2, Refresh: 60000})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/atom/1", items[0].URL)
	assert.Equal(t, "Entry", items[0].Title)
}
