package rss

import (
	"bytes"
	"fmt"

	gofeedrss "github.com/mmcdole/gofeed/rss"
)

// GofeedParser parses RSS 2.0 documents with a real XML parser. It is
// stricter than RegexParser: a malformed document yields an error and no
// items.
type GofeedParser struct{}

func NewGofeedParser() *GofeedParser {
	return &GofeedParser{}
}

func (p *GofeedParser) Parse(raw []byte, category string) ([]Item, error) {
	fp := &gofeedrss.Parser{}
	feed, err := fp.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse rss document: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		fields := EntryFields{
			Title:       entry.Title,
			Link:        entry.Link,
			PubDate:     entry.PubDate,
			Description: entry.Description,
		}
		if entry.Source != nil {
			fields.Source = entry.Source.Title
			fields.SourceURL = entry.Source.URL
		}

		item, err := BuildItem(fields, category)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// NewParser picks a parser implementation by name: "gofeed" or the
// default regex parser.
func NewParser(name string) Parser {
	if name == "gofeed" {
		return NewGofeedParser()
	}
	return NewRegexParser(nil)
}
