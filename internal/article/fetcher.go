// Package article downloads and parses the pages that discovered feed
// entries point at.
package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rssarchiver/internal/config"
	"rssarchiver/internal/models"
)

// Fetch errors.
var (
	// ErrEmptyArticle indicates the page fetched cleanly but yielded
	// neither a title nor body text.
	ErrEmptyArticle = errors.New("article yielded no content")
	// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
)

// Fetcher downloads one article per call. There is no retry: an entry that
// fails stays out of the seen-URL cache and is picked up again next run.
type Fetcher struct {
	client    *http.Client
	now       func() time.Time
	userAgent string
	maxBodyKb int
}

// NewFetcher creates a fetcher from the fetch configuration.
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		now:       time.Now,
		userAgent: cfg.UserAgent,
		maxBodyKb: cfg.MaxBodyKb,
	}
}

// Fetch downloads and parses the entry's page into an Article. The publish
// timestamp is resolved by priority: the date extracted from the page, then
// the feed's structured publish time, then the wall clock at download time.
func (f *Fetcher) Fetch(ctx context.Context, entry models.FeedEntry) (*models.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.Link, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", entry.Link, err)
	}

	// Set user agent to avoid being blocked
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", entry.Link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatusCode, resp.StatusCode, entry.Link)
	}

	limit := int64(f.maxBodyKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s: %w", entry.Link, err)
	}

	extracted, err := extractDocument(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", entry.Link, err)
	}

	if extracted.Title == "" && extracted.Body == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyArticle, entry.Link)
	}

	publishedAt := f.now().UTC()
	if entry.Published != nil {
		publishedAt = entry.Published.UTC()
	}

	if extracted.Published != nil {
		publishedAt = extracted.Published.UTC()
	}

	return &models.Article{
		URL:         entry.Link,
		Title:       extracted.Title,
		Body:        extracted.Body,
		PublishedAt: publishedAt,
	}, nil
}
