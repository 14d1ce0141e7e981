// Package archive persists fetched articles into per-day files. Each UTC
// calendar date owns exactly one file; new articles for a date are appended
// to the existing records, never replacing them.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"rssarchiver/internal/models"
	"rssarchiver/pkg/utils"
)

// Writer appends articles to per-day archive files under a base directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir. The directory is created on the
// first append.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// FilePath returns the archive file path for an ISO calendar date string.
// The filename is the only place the publish date is recorded.
func (w *Writer) FilePath(date string) string {
	return filepath.Join(w.dir, date+".json")
}

// Append groups the batch by each article's resolved publish date and merges
// every group into its date's archive file. Dates are processed in sorted
// order; the first failing date aborts the flush, leaving earlier dates
// written. An empty batch touches nothing.
func (w *Writer) Append(articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory %s: %w", w.dir, err)
	}

	byDate := make(map[string][]models.StoredArticle)
	for _, a := range articles {
		date := a.ArchiveDate()
		byDate[date] = append(byDate[date], a.Stored())
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}

	sort.Strings(dates)

	for _, date := range dates {
		if err := w.appendDate(date, byDate[date]); err != nil {
			return err
		}
	}

	return nil
}

// Read returns the records stored for an ISO calendar date string. A missing
// file yields an empty slice.
func (w *Writer) Read(date string) ([]models.StoredArticle, error) {
	data, err := os.ReadFile(w.FilePath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read archive for %s: %w", date, err)
	}

	var records []models.StoredArticle
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode archive for %s: %w", date, err)
	}

	return records, nil
}

func (w *Writer) appendDate(date string, records []models.StoredArticle) error {
	existing, err := w.Read(date)
	if err != nil {
		return err
	}

	merged := append(existing, records...)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize archive for %s: %w", date, err)
	}

	if err := utils.WriteFileAtomic(w.FilePath(date), data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive for %s: %w", date, err)
	}

	return nil
}
