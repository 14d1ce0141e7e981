package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func cachePath(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "scraped_urls_cache.json")
}

func TestLoad_MissingFileIsEmptyCache(t *testing.T) {
	c, err := Load(cachePath(t))
	if err != nil {
		t.Fatalf("Load failed for missing file: %v", err)
	}

	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}
}

func TestLoad_CorruptFileIsFatal(t *testing.T) {
	path := cachePath(t)
	if err := os.WriteFile(path, []byte("not json at all{{"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt cache: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrCorruptCache) {
		t.Fatalf("Expected ErrCorruptCache, got %v", err)
	}
}

func TestCache_AddContains(t *testing.T) {
	c, err := Load(cachePath(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Contains("http://example.com/a") {
		t.Error("Empty cache must not contain anything")
	}

	c.Add("http://example.com/a")

	if !c.Contains("http://example.com/a") {
		t.Error("Expected added URL to be contained")
	}

	if !c.Dirty() {
		t.Error("Expected cache to be dirty after Add")
	}
}

func TestCache_AddExistingDoesNotDirty(t *testing.T) {
	path := cachePath(t)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	c.Add("http://example.com/a")

	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	reloaded.Add("http://example.com/a")

	if reloaded.Dirty() {
		t.Error("Re-adding a known URL must not dirty the cache")
	}
}

func TestCache_SaveRoundTrip(t *testing.T) {
	path := cachePath(t)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	c.Add("http://example.com/b")
	c.Add("http://example.com/a")

	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if reloaded.Len() != 2 {
		t.Fatalf("Expected 2 entries after reload, got %d", reloaded.Len())
	}

	for _, u := range []string{"http://example.com/a", "http://example.com/b"} {
		if !reloaded.Contains(u) {
			t.Errorf("Expected reloaded cache to contain %s", u)
		}
	}
}

func TestCache_SaveEmptyIsNoOp(t *testing.T) {
	path := cachePath(t)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Saving an empty cache must not create a file")
	}
}

func TestCache_SaveUnchangedLeavesFileUntouched(t *testing.T) {
	path := cachePath(t)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	c.Add("http://example.com/a")

	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if err := reloaded.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Error("Save with no additions must leave the file untouched")
	}
}

func TestCache_SaveOverwritesPriorFile(t *testing.T) {
	path := cachePath(t)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	c.Add("http://example.com/a")

	if err := c.Save(); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	second, err := Load(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	second.Add("http://example.com/b")

	if err := second.Save(); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	final, err := Load(path)
	if err != nil {
		t.Fatalf("Final load failed: %v", err)
	}

	// The set only grows: both runs' URLs survive.
	if final.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", final.Len())
	}
}
