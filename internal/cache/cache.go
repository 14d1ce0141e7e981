// Package cache persists the set of already-scraped article URLs between
// runs. The set only ever grows; there is no expiry.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"rssarchiver/pkg/utils"
)

// ErrCorruptCache indicates the cache file exists but cannot be decoded.
// This is fatal for the run: silently resetting the cache would re-fetch
// every article ever seen.
var ErrCorruptCache = errors.New("cache file is corrupt")

// cacheVersion is the on-disk format version.
const cacheVersion = 1

// cacheDocument is the persisted form of the cache.
type cacheDocument struct {
	Version int      `json:"version"`
	URLs    []string `json:"urls"`
}

// Cache is the in-memory seen-URL set for one run.
type Cache struct {
	urls  map[string]struct{}
	path  string
	dirty bool
}

// Load reads the cache file at path. A missing file is the valid first-run
// state and yields an empty cache; an unreadable or undecodable file returns
// ErrCorruptCache.
func Load(path string) (*Cache, error) {
	c := &Cache{
		urls: make(map[string]struct{}),
		path: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}

		return nil, fmt.Errorf("failed to read cache file %s: %w", path, err)
	}

	var doc cacheDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCache, path, err)
	}

	for _, u := range doc.URLs {
		c.urls[u] = struct{}{}
	}

	return c, nil
}

// Contains reports whether url has already been scraped.
func (c *Cache) Contains(url string) bool {
	_, ok := c.urls[url]

	return ok
}

// Add marks url as scraped. Only genuinely new URLs make the cache dirty.
func (c *Cache) Add(url string) {
	if _, ok := c.urls[url]; ok {
		return
	}

	c.urls[url] = struct{}{}
	c.dirty = true
}

// Len returns the number of cached URLs.
func (c *Cache) Len() int {
	return len(c.urls)
}

// Dirty reports whether any URL was added since Load.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// Save persists the cache. It is a no-op when the set is empty or when no
// URL was added this run, so a degenerate run never clobbers a prior
// non-empty cache file. The write goes to a temp file first and is renamed
// into place so a crash mid-write cannot leave a half-written file.
func (c *Cache) Save() error {
	if len(c.urls) == 0 || !c.dirty {
		return nil
	}

	urls := make([]string, 0, len(c.urls))
	for u := range c.urls {
		urls = append(urls, u)
	}

	sort.Strings(urls)

	data, err := json.MarshalIndent(cacheDocument{Version: cacheVersion, URLs: urls}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache: %w", err)
	}

	if err := utils.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", c.path, err)
	}

	c.dirty = false

	return nil
}
