package rss

import (
	"errors"
	"strings"
)

// ErrEmptyField marks an entry dropped for a missing title or link.
var ErrEmptyField = errors.New("entry has empty title or link")

// Item is one normalized feed entry.
type Item struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	PubDate     *string `json:"pubDate"`
	Timestamp   int64   `json:"timestamp"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
	SourceURL   *string `json:"sourceUrl"`
	Category    string  `json:"category,omitempty"`
	Edition     string  `json:"edition,omitempty"`
}

// Parser turns a raw feed document into items tagged with category.
type Parser interface {
	Parse(raw []byte, category string) ([]Item, error)
}

// RegexParser extracts items through a FieldReader.
type RegexParser struct {
	reader FieldReader
}

// NewRegexParser returns a parser backed by reader, or by a fresh
// RegexReader when reader is nil.
func NewRegexParser(reader FieldReader) *RegexParser {
	if reader == nil {
		reader = NewRegexReader()
	}
	return &RegexParser{reader: reader}
}

func (p *RegexParser) Parse(raw []byte, category string) ([]Item, error) {
	blocks := ItemBlocks(string(raw))
	items := make([]Item, 0, len(blocks))
	for _, block := range blocks {
		item, err := p.extract(block, category)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *RegexParser) extract(block, category string) (Item, error) {
	title := p.reader.Field(block, "title")
	link := p.reader.Field(block, "link")
	if title == "" || link == "" {
		return Item{}, ErrEmptyField
	}

	return BuildItem(EntryFields{
		Title:       title,
		Link:        link,
		PubDate:     p.reader.Field(block, "pubDate"),
		Description: p.reader.Field(block, "description"),
		Source:      p.reader.Field(block, "source"),
		SourceURL:   p.reader.Attribute(block, "source", "url"),
	}, category)
}

// EntryFields are the raw, still-encoded values of one entry.
type EntryFields struct {
	Title       string
	Link        string
	PubDate     string
	Description string
	Source      string
	SourceURL   string
}

// BuildItem normalizes raw entry fields into an Item. Entries whose
// normalized title or link is empty are rejected with ErrEmptyField.
func BuildItem(fields EntryFields, category string) (Item, error) {
	link := strings.TrimSpace(fields.Link)
	title := NormalizeTitle(DecodeEntities(fields.Title))
	if title == "" || link == "" {
		return Item{}, ErrEmptyField
	}

	item := Item{
		Title:    title,
		Link:     link,
		Category: category,
	}

	if pubDate := strings.TrimSpace(fields.PubDate); pubDate != "" {
		item.PubDate = &pubDate
		item.Timestamp = ParseTimestamp(pubDate)
	}
	if fields.Description != "" {
		item.Description = StripHTML(DecodeEntities(fields.Description))
	}
	if source := strings.TrimSpace(fields.Source); source != "" {
		item.Source = DecodeEntities(source)
	} else {
		item.Source = ExtractDomain(link)
	}
	if sourceURL := strings.TrimSpace(fields.SourceURL); sourceURL != "" {
		item.SourceURL = &sourceURL
	}

	return item, nil
}
