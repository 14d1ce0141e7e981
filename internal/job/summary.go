package job

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"rssarchiver/internal/models"
	"rssarchiver/pkg/utils"
)

// maxSummaryTitle caps headline length in the summary table.
const maxSummaryTitle = 60

// logSummary logs a per-run report: counts plus an aligned table of the
// articles that made it into the archive. Headlines are frequently CJK, so
// alignment uses display width rather than byte length.
func (j *Job) logSummary(discovered int, batch []models.Article) {
	j.log.Info("run summary",
		"discovered", discovered,
		"archived", len(batch),
		"skipped", discovered-len(batch),
	)

	if len(batch) == 0 {
		return
	}

	for _, line := range summaryTable(batch) {
		j.log.Info(line)
	}
}

// summaryTable renders one aligned "date | title | url" row per archived
// article.
func summaryTable(batch []models.Article) []string {
	helper := utils.NewStringHelper()

	rows := make([][2]string, 0, len(batch))
	dateWidth, titleWidth := 0, 0

	for _, a := range batch {
		date := a.ArchiveDate()
		title := helper.TruncateString(a.Title, maxSummaryTitle)

		if w := runewidth.StringWidth(date); w > dateWidth {
			dateWidth = w
		}

		if w := runewidth.StringWidth(title); w > titleWidth {
			titleWidth = w
		}

		rows = append(rows, [2]string{date, title})
	}

	lines := make([]string, 0, len(batch))

	for i, row := range rows {
		lines = append(lines, fmt.Sprintf("  %s | %s | %s",
			pad(row[0], dateWidth),
			pad(row[1], titleWidth),
			batch[i].URL,
		))
	}

	return lines
}

// pad right-pads by display width.
func pad(s string, width int) string {
	if padding := width - runewidth.StringWidth(s); padding > 0 {
		return s + strings.Repeat(" ", padding)
	}

	return s
}
