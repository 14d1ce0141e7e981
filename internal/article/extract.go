package article

import (
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"

	"rssarchiver/pkg/utils"
)

// extracted holds what the HTML extractor pulled out of one page.
type extracted struct {
	Published *time.Time
	Title     string
	Body      string
}

// Publish-date layouts seen in the wild, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.DateOnly,
}

// Meta tag keys (property/name/itemprop) that announce a publish date.
var dateMetaKeys = map[string]bool{
	"article:published_time":    true,
	"og:article:published_time": true,
	"datepublished":             true,
	"date":                      true,
}

// extractDocument parses an HTML page into title, body text, and an optional
// publish date.
//
// Title prefers og:title over <title>. Body prefers the text of the first
// <article> element; when there is none, all paragraph text is used.
// The publish date comes from a known meta tag or a <time datetime=...>
// attribute.
func extractDocument(r io.Reader) (*extracted, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	w := &walker{strings: utils.NewStringHelper()}
	w.walk(doc)

	title := w.ogTitle
	if title == "" {
		title = w.docTitle
	}

	body := w.articleText
	if body == "" {
		body = strings.Join(w.paragraphs, "\n\n")
	}

	out := &extracted{
		Title: w.strings.NormalizeWhitespace(title),
		Body:  strings.TrimSpace(body),
	}

	if w.dateStr != "" {
		if parsed, ok := parseDate(w.dateStr); ok {
			out.Published = &parsed
		}
	}

	return out, nil
}

// walker accumulates extraction state over one pass of the node tree.
type walker struct {
	strings     *utils.StringHelper
	docTitle    string
	ogTitle     string
	dateStr     string
	articleText string
	paragraphs  []string
}

func (w *walker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if w.docTitle == "" {
				w.docTitle = textContent(n)
			}
		case "meta":
			w.handleMeta(n)
		case "time":
			if w.dateStr == "" {
				if dt := attr(n, "datetime"); dt != "" {
					w.dateStr = dt
				}
			}
		case "article":
			if w.articleText == "" {
				w.articleText = blockText(n)
			}
		case "p":
			if text := w.strings.NormalizeWhitespace(textContent(n)); text != "" {
				w.paragraphs = append(w.paragraphs, text)
			}
		case "script", "style", "noscript", "template":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) handleMeta(n *html.Node) {
	key := strings.ToLower(attr(n, "property"))
	if key == "" {
		key = strings.ToLower(attr(n, "name"))
	}

	if key == "" {
		key = strings.ToLower(attr(n, "itemprop"))
	}

	content := attr(n, "content")
	if content == "" {
		return
	}

	switch {
	case key == "og:title":
		if w.ogTitle == "" {
			w.ogTitle = content
		}
	case dateMetaKeys[key]:
		if w.dateStr == "" {
			w.dateStr = content
		}
	}
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}

	return ""
}

// textContent returns the concatenated text of a node's subtree, skipping
// script and style content.
func textContent(n *html.Node) string {
	var sb strings.Builder

	collectText(n, &sb)

	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)

		return
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// blockText renders a container's paragraphs and headings as text blocks
// separated by blank lines.
func blockText(n *html.Node) string {
	var blocks []string

	helper := utils.NewStringHelper()

	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote":
				if text := helper.NormalizeWhitespace(textContent(node)); text != "" {
					blocks = append(blocks, text)
				}

				return
			case "script", "style", "noscript", "template", "nav", "aside", "footer":
				return
			}
		}

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)

	return strings.Join(blocks, "\n\n")
}

// parseDate tries each known layout and normalizes to UTC.
func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}

	return time.Time{}, false
}
