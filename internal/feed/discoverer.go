package feed

import (
	"context"

	"github.com/mmcdole/gofeed"

	"rssarchiver/internal/cache"
	"rssarchiver/internal/logger"
	"rssarchiver/internal/models"
)

// Discoverer finds feed entries whose URL is not in the seen-URL cache.
type Discoverer struct {
	parser *gofeed.Parser
	log    *logger.Logger
}

// NewDiscoverer creates a discoverer with a default gofeed parser.
func NewDiscoverer(log *logger.Logger) *Discoverer {
	return &Discoverer{
		parser: gofeed.NewParser(),
		log:    log,
	}
}

// Discover fetches every source feed and collects the entries whose link is
// absent from the cache. A feed that fails to fetch or parse contributes
// zero entries and is logged as a warning; it never aborts the batch, and
// the log line distinguishes it from a feed that simply had nothing new.
func (d *Discoverer) Discover(ctx context.Context, sources []string, seen *cache.Cache) []models.FeedEntry {
	var entries []models.FeedEntry

	for _, source := range sources {
		parsed, err := d.parser.ParseURLWithContext(source, ctx)
		if err != nil {
			d.log.Warn("feed failed to parse, skipping", "feed", source, "error", err)

			continue
		}

		newForFeed := 0

		for _, item := range parsed.Items {
			if item.Link == "" || seen.Contains(item.Link) {
				continue
			}

			entries = append(entries, models.FeedEntry{
				Link:      item.Link,
				Title:     item.Title,
				Published: item.PublishedParsed,
				FeedURL:   source,
			})
			newForFeed++
		}

		d.log.Debug("feed parsed", "feed", source, "items", len(parsed.Items), "new", newForFeed)
	}

	return entries
}
