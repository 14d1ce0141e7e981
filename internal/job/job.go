// Package job sequences one scraping run: discover new entries, fetch them
// one at a time with random jitter, then persist the cache and the per-day
// archives.
package job

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"rssarchiver/internal/archive"
	"rssarchiver/internal/article"
	"rssarchiver/internal/cache"
	"rssarchiver/internal/config"
	"rssarchiver/internal/feed"
	"rssarchiver/internal/logger"
	"rssarchiver/internal/models"
)

// EntryDiscoverer finds feed entries not yet in the seen-URL cache.
type EntryDiscoverer interface {
	Discover(ctx context.Context, sources []string, seen *cache.Cache) []models.FeedEntry
}

// ArticleFetcher downloads and parses one entry's page.
type ArticleFetcher interface {
	Fetch(ctx context.Context, entry models.FeedEntry) (*models.Article, error)
}

// Job runs one complete scraping pass.
type Job struct {
	cfg        *config.Config
	log        *logger.Logger
	discoverer EntryDiscoverer
	fetcher    ArticleFetcher
	archive    *archive.Writer
	rng        *rand.Rand
	rngMu      sync.Mutex
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a job with default dependencies.
func New(cfg *config.Config, log *logger.Logger) *Job {
	return NewWithDeps(cfg, log,
		feed.NewDiscoverer(log),
		article.NewFetcher(cfg.Scraper.Fetch),
		archive.NewWriter(cfg.Scraper.ArticlesDir),
	)
}

// NewWithDeps creates a job with injected dependencies.
func NewWithDeps(cfg *config.Config, log *logger.Logger, d EntryDiscoverer, f ArticleFetcher, w *archive.Writer) *Job {
	return &Job{
		cfg:        cfg,
		log:        log,
		discoverer: d,
		fetcher:    f,
		archive:    w,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:      sleepContext,
	}
}

// Run executes one pass. Per-entry failures are logged and skipped; cache
// and archive I/O failures are fatal and returned to the caller.
func (j *Job) Run(ctx context.Context) error {
	sources, err := feed.LoadSources(j.cfg.Scraper.FeedsFile)
	if err != nil {
		return err
	}

	seen, err := cache.Load(j.cfg.Scraper.CacheFile)
	if err != nil {
		return fmt.Errorf("failed to load seen-URL cache: %w", err)
	}

	entries := j.discoverer.Discover(ctx, sources, seen)
	j.log.Info("discovered new entries", "feeds", len(sources), "entries", len(entries))

	// Shuffle so no single origin sees a predictable burst of requests.
	j.rng.Shuffle(len(entries), func(a, b int) {
		entries[a], entries[b] = entries[b], entries[a]
	})

	var batch []models.Article
	if j.cfg.Scraper.Throttle.Concurrency > 1 {
		batch = j.fetchConcurrent(ctx, entries, seen)
	} else {
		batch = j.fetchSerial(ctx, entries, seen)
	}

	if err := seen.Save(); err != nil {
		return fmt.Errorf("failed to save seen-URL cache: %w", err)
	}

	j.log.Info("updated scraped URLs cache", "size", seen.Len())

	if err := j.archive.Append(batch); err != nil {
		return fmt.Errorf("failed to flush article archive: %w", err)
	}

	j.log.Info("updated article data files", "articles", len(batch))
	j.logSummary(len(entries), batch)

	return nil
}

// fetchSerial is the default fully serial fetch loop: sleep a random
// duration, then fetch, one entry at a time.
func (j *Job) fetchSerial(ctx context.Context, entries []models.FeedEntry, seen *cache.Cache) []models.Article {
	var batch []models.Article

	for _, entry := range entries {
		if err := j.throttle(ctx); err != nil {
			j.log.Warn("run cancelled, stopping fetch loop", "error", err)

			break
		}

		if a := j.fetchOne(ctx, entry, seen); a != nil {
			batch = append(batch, *a)
		}
	}

	return batch
}

// fetchConcurrent runs the same jittered fetch through a bounded worker
// group. Cache and batch mutation stay on the collecting side.
func (j *Job) fetchConcurrent(ctx context.Context, entries []models.FeedEntry, seen *cache.Cache) []models.Article {
	type result struct {
		article *models.Article
		err     error
		entry   models.FeedEntry
	}

	sem := make(chan struct{}, j.cfg.Scraper.Throttle.Concurrency)
	results := make(chan result)

	var wg sync.WaitGroup

	for _, entry := range entries {
		wg.Add(1)

		go func(entry models.FeedEntry) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := j.throttle(ctx); err != nil {
				results <- result{entry: entry, err: err}

				return
			}

			j.log.Info("downloading article", "url", entry.Link)

			a, err := j.fetcher.Fetch(ctx, entry)
			results <- result{entry: entry, article: a, err: err}
		}(entry)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var batch []models.Article

	for r := range results {
		switch {
		case errors.Is(r.err, article.ErrEmptyArticle):
			j.log.Warn("failed to download article", "url", r.entry.Link)
		case r.err != nil:
			j.log.Error("error downloading article", "url", r.entry.Link, "error", r.err)
		default:
			batch = append(batch, *r.article)
			seen.Add(r.entry.Link)
			j.log.Info("article downloaded successfully", "url", r.entry.Link)
		}
	}

	return batch
}

// fetchOne fetches a single entry and applies the per-entry failure policy:
// an empty result is a warning, any error is logged with detail, and only a
// fully successful fetch marks the URL seen.
func (j *Job) fetchOne(ctx context.Context, entry models.FeedEntry, seen *cache.Cache) *models.Article {
	j.log.Info("downloading article", "url", entry.Link)

	a, err := j.fetcher.Fetch(ctx, entry)

	switch {
	case errors.Is(err, article.ErrEmptyArticle):
		j.log.Warn("failed to download article", "url", entry.Link)

		return nil
	case err != nil:
		j.log.Error("error downloading article", "url", entry.Link, "error", err)

		return nil
	}

	seen.Add(entry.Link)
	j.log.Info("article downloaded successfully", "url", entry.Link)

	return a
}

// throttle sleeps a random duration drawn uniformly from the configured
// interval, respecting context cancellation.
func (j *Job) throttle(ctx context.Context) error {
	minDelay := j.cfg.Scraper.Throttle.MinDelaySec
	maxDelay := j.cfg.Scraper.Throttle.MaxDelaySec

	j.rngMu.Lock()
	delay := time.Duration(minDelay+j.rng.Intn(maxDelay-minDelay+1)) * time.Second
	j.rngMu.Unlock()

	return j.sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
