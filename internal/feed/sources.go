// Package feed loads the feed source list and discovers entries that have
// not been scraped before.
package feed

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadSources reads the plain-text feed list: one feed URL per line, blank
// lines skipped, order preserved.
func LoadSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed list %s: %w", path, err)
	}
	defer f.Close()

	var sources []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sources = append(sources, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed list %s: %w", path, err)
	}

	return sources, nil
}

// EnsureSourcesFile creates an empty feed list when none exists, so a fresh
// checkout runs without manual setup.
func EnsureSourcesFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat feed list %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create feed list %s: %w", path, err)
	}

	return f.Close()
}
