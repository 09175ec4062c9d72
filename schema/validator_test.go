package payloadschema

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateResolveRequest_Valid(t *testing.T) {
	t.Parallel()

	req, err := ValidateResolveRequest([]byte(`{"urls":[" https://news.google.com/rss/articles/abc ","https://example.com/x"]}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if len(req.URLs) != 2 {
		t.Fatalf("unexpected url count: got %d want 2", len(req.URLs))
	}
	if req.URLs[0] != "https://news.google.com/rss/articles/abc" {
		t.Fatalf("expected trimmed url, got %q", req.URLs[0])
	}
}

func TestValidateResolveRequest_EmptyList(t *testing.T) {
	t.Parallel()

	_, err := ValidateResolveRequest([]byte(`{"urls":[]}`))
	if err == nil {
		t.Fatalf("expected validation to fail for empty urls")
	}
	if errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("expected schema error, got malformed JSON error: %v", err)
	}
}

func TestValidateResolveRequest_WrongShape(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`{"url":"https://example.com"}`, `{"urls":"https://example.com"}`, `[1,2]`, `{"urls":[1]}`} {
		_, err := ValidateResolveRequest([]byte(payload))
		if err == nil {
			t.Fatalf("expected validation to fail for %s", payload)
		}
		if errors.Is(err, ErrMalformedJSON) {
			t.Fatalf("expected schema error for %s, got %v", payload, err)
		}
	}
}

func TestValidateResolveRequest_MalformedJSON(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{``, `{"urls":`, `{"urls":["a"]} trailing`} {
		_, err := ValidateResolveRequest([]byte(payload))
		if !errors.Is(err, ErrMalformedJSON) {
			t.Fatalf("expected ErrMalformedJSON for %q, got %v", payload, err)
		}
	}
}

func TestValidateCatalogDocument_Valid(t *testing.T) {
	t.Parallel()

	payload := `{
		"categories":[{"key":"portada","label":"Portada","accent":"#c9953a","feeds":["https://news.google.com/rss?hl=es-419"]}],
		"rank_sources":[{"url":"https://news.google.com/rss?hl=es-419","category":"portada"}],
		"lexicon":{"capital_terms":["intendente"],"province_terms":["gobernador"],"cluster_stopwords":["para"],"blocked_domains":null}
	}`
	if err := ValidateCatalogDocument([]byte(payload)); err != nil {
		t.Fatalf("expected catalog to be valid, got error: %v", err)
	}
}

func TestValidateCatalogDocument_RejectsNonHTTPFeed(t *testing.T) {
	t.Parallel()

	payload := `{
		"categories":[{"key":"portada","label":"Portada","feeds":["ftp://example.com/rss"]}],
		"rank_sources":[],
		"lexicon":{"capital_terms":[],"province_terms":[],"cluster_stopwords":[]}
	}`
	err := ValidateCatalogDocument([]byte(payload))
	if err == nil {
		t.Fatalf("expected ftp feed to be rejected")
	}
	if !strings.Contains(err.Error(), "http") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCatalogDocument_RejectsBadCategoryKey(t *testing.T) {
	t.Parallel()

	payload := `{
		"categories":[{"key":"Portada Principal","label":"Portada","feeds":["https://example.com/rss"]}],
		"rank_sources":[],
		"lexicon":{"capital_terms":[],"province_terms":[],"cluster_stopwords":[]}
	}`
	if err := ValidateCatalogDocument([]byte(payload)); err == nil {
		t.Fatalf("expected invalid key to be rejected")
	}
}
