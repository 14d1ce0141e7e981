package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rssarchiver/internal/cache"
	"rssarchiver/internal/logger"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>http://example.com</link>
    %s
  </channel>
</rss>`

func rssItem(title, link, pubDate string) string {
	item := fmt.Sprintf("<item><title>%s</title><link>%s</link>", title, link)
	if pubDate != "" {
		item += fmt.Sprintf("<pubDate>%s</pubDate>", pubDate)
	}

	return item + "</item>"
}

func rssServer(t *testing.T, items ...string) *httptest.Server {
	t.Helper()

	body := ""
	for _, item := range items {
		body += item
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rssTemplate, body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func emptyCache(t *testing.T) *cache.Cache {
	t.Helper()

	c, err := cache.Load(t.TempDir() + "/cache.json")
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	return c
}

func TestDiscoverer_SkipsCachedURLs(t *testing.T) {
	srv := rssServer(t,
		rssItem("New", "http://example.com/new", ""),
		rssItem("Seen", "http://example.com/seen", ""),
	)

	seen := emptyCache(t)
	seen.Add("http://example.com/seen")

	d := NewDiscoverer(logger.NewLogger("error"))

	entries := d.Discover(context.Background(), []string{srv.URL}, seen)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 new entry, got %d", len(entries))
	}

	if entries[0].Link != "http://example.com/new" {
		t.Errorf("Expected the uncached entry, got %s", entries[0].Link)
	}

	if entries[0].FeedURL != srv.URL {
		t.Errorf("Expected entry to carry its source feed, got %s", entries[0].FeedURL)
	}
}

func TestDiscoverer_CollectsAcrossFeeds(t *testing.T) {
	first := rssServer(t, rssItem("A", "http://example.com/a", ""))
	second := rssServer(t, rssItem("B", "http://example.com/b", ""))

	d := NewDiscoverer(logger.NewLogger("error"))

	entries := d.Discover(context.Background(), []string{first.URL, second.URL}, emptyCache(t))
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries across feeds, got %d", len(entries))
	}
}

func TestDiscoverer_FailedFeedDoesNotAbortBatch(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	healthy := rssServer(t, rssItem("A", "http://example.com/a", ""))

	d := NewDiscoverer(logger.NewLogger("error"))

	entries := d.Discover(context.Background(), []string{broken.URL, healthy.URL}, emptyCache(t))
	if len(entries) != 1 {
		t.Fatalf("Expected the healthy feed's entry despite the broken feed, got %d entries", len(entries))
	}
}

func TestDiscoverer_ParsesPublishedTime(t *testing.T) {
	srv := rssServer(t, rssItem("A", "http://example.com/a", "Fri, 01 Mar 2024 10:30:00 GMT"))

	d := NewDiscoverer(logger.NewLogger("error"))

	entries := d.Discover(context.Background(), []string{srv.URL}, emptyCache(t))
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	if entries[0].Published == nil {
		t.Fatal("Expected a parsed publish time")
	}

	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	if !entries[0].Published.Equal(want) {
		t.Errorf("Published = %v, want %v", entries[0].Published, want)
	}
}

func TestDiscoverer_EntryWithoutLinkIgnored(t *testing.T) {
	srv := rssServer(t, "<item><title>No link</title></item>")

	d := NewDiscoverer(logger.NewLogger("error"))

	entries := d.Discover(context.Background(), []string{srv.URL}, emptyCache(t))
	if len(entries) != 0 {
		t.Errorf("Expected no entries for a link-less item, got %d", len(entries))
	}
}
