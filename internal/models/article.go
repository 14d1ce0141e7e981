// Package models defines data structures shared by the discoverer, fetcher,
// and archive writer.
package models

import "time"

// FeedEntry is one item from a parsed feed, before its article is fetched.
// The Link is the de-duplication key.
type FeedEntry struct {
	Published *time.Time
	Link      string
	Title     string
	FeedURL   string
}

// Article is the fully fetched and parsed content for one entry.
type Article struct {
	PublishedAt time.Time
	URL         string
	Title       string
	Body        string
}

// ArchiveDate returns the UTC calendar date the article is archived under.
func (a Article) ArchiveDate() string {
	return a.PublishedAt.UTC().Format(time.DateOnly)
}

// StoredArticle is the persisted form of an Article. The publish timestamp is
// intentionally absent: the archive filename carries the date.
type StoredArticle struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Stored converts an Article to its persisted form.
func (a Article) Stored() StoredArticle {
	return StoredArticle{URL: a.URL, Title: a.Title, Body: a.Body}
}
