package pipeline

import (
	"context"
	"time"

	"github.com/gonzacha/qsd/internal/catalog"
	"github.com/gonzacha/qsd/internal/ingest"
	"github.com/gonzacha/qsd/internal/rss"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func testDictionaries() *Dictionaries {
	return NewDictionaries(catalog.Default().Lexicon)
}

func newItem(title, link string, published time.Time) rss.Item {
	pubDate := published.Format(time.RFC1123Z)
	return rss.Item{
		Title:     title,
		Link:      link,
		PubDate:   &pubDate,
		Timestamp: rss.ParseTimestamp(pubDate),
		Source:    rss.ExtractDomain(link),
	}
}

func withEdition(items []rss.Item, edition string) []rss.Item {
	out := make([]rss.Item, len(items))
	for i, item := range items {
		item.Edition = edition
		out[i] = item
	}
	return out
}

type fakeFetcher struct {
	byURL     map[string][]rss.Item
	calls     [][]catalog.Source
	panicWith any
}

func (f *fakeFetcher) FetchAll(_ context.Context, sources []catalog.Source) []ingest.Result {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.calls = append(f.calls, sources)
	results := make([]ingest.Result, len(sources))
	for i, source := range sources {
		items := make([]rss.Item, 0, len(f.byURL[source.URL]))
		for _, item := range f.byURL[source.URL] {
			item.Category = source.Category
			items = append(items, item)
		}
		results[i] = ingest.Result{Source: source, Items: items, Status: 200}
	}
	return results
}
