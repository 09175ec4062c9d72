package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gonzacha/qsd/internal/catalog"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Feed</title>
<item>
  <title>Polich inauguró obras en la costanera - El Litoral</title>
  <link>https://ellitoral.example/obras</link>
  <pubDate>Fri, 16 Oct 2026 09:00:00 GMT</pubDate>
  <description>Obras</description>
  <source url="https://ellitoral.example">El Litoral</source>
</item>
</channel></rss>`

func TestFetchAll_SettlesEveryFeed(t *testing.T) {
	t.Parallel()

	var (
		mu               sync.Mutex
		gotUA, gotAccept string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte(sampleFeed))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	svc := NewService(Options{Client: server.Client(), Timeout: 200 * time.Millisecond}, zerolog.Nop())
	sources := []catalog.Source{
		{URL: server.URL + "/missing", Category: "portada"},
		{URL: server.URL + "/ok", Category: "corrientes"},
		{URL: server.URL + "/slow", Category: "mundo"},
	}

	results := svc.FetchAll(context.Background(), sources)
	if len(results) != 3 {
		t.Fatalf("unexpected result count: %d", len(results))
	}

	if results[0].Status != http.StatusNotFound || results[0].Err == nil || len(results[0].Items) != 0 {
		t.Fatalf("unexpected not-found result: %+v", results[0])
	}
	if results[2].Err == nil || len(results[2].Items) != 0 {
		t.Fatalf("expected slow feed to time out empty, got %+v", results[2])
	}

	ok := results[1]
	if ok.Err != nil || ok.Status != http.StatusOK {
		t.Fatalf("unexpected ok result: %+v", ok)
	}
	if ok.Source.Category != "corrientes" || len(ok.Items) != 1 {
		t.Fatalf("unexpected ok items: %+v", ok)
	}
	item := ok.Items[0]
	if item.Title != "Polich inauguró obras en la costanera" || item.Category != "corrientes" || item.Source != "El Litoral" {
		t.Fatalf("unexpected parsed item: %+v", item)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.HasPrefix(gotUA, "Mozilla/5.0") {
		t.Fatalf("unexpected user agent: %q", gotUA)
	}
	if !strings.HasPrefix(gotAccept, "application/rss+xml") {
		t.Fatalf("unexpected accept header: %q", gotAccept)
	}

	if got := Items(results); len(got) != 1 {
		t.Fatalf("expected flattened items to hold one entry, got %d", len(got))
	}
}

func TestFetchOne_Latin1Feed(t *testing.T) {
	t.Parallel()

	// "Económica" encoded as ISO-8859-1.
	body := "<rss><channel><item><title>Agenda Econ\xf3mica del d\xeda</title><link>https://a.example/1</link></item></channel></rss>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=ISO-8859-1")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	svc := NewService(Options{Client: server.Client()}, zerolog.Nop())
	result := svc.FetchOne(context.Background(), catalog.Source{URL: server.URL, Category: "economia"})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Items) != 1 || result.Items[0].Title != "Agenda Económica del día" {
		t.Fatalf("unexpected items: %+v", result.Items)
	}
}

func TestFetchAll_Empty(t *testing.T) {
	t.Parallel()

	svc := NewService(Options{}, zerolog.Nop())
	if results := svc.FetchAll(context.Background(), nil); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
