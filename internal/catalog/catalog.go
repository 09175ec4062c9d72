package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	payloadschema "github.com/gonzacha/qsd/schema"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// ErrUnknownCategory is returned when a category key is not in the catalog.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one feed listing section.
type Category struct {
	Key    string   `yaml:"key" json:"key"`
	Label  string   `yaml:"label" json:"label"`
	Accent string   `yaml:"accent,omitempty" json:"accent,omitempty"`
	Feeds  []string `yaml:"feeds" json:"feeds"`
}

// Source is a single feed URL tagged with the category its items belong to.
type Source struct {
	URL      string `yaml:"url" json:"url"`
	Category string `yaml:"category" json:"category"`
}

// Lexicon holds the fixed vocabularies used by edition detection,
// clustering, trending and the feed gate.
type Lexicon struct {
	CapitalTerms       []string `yaml:"capital_terms" json:"capital_terms"`
	ProvinceTerms      []string `yaml:"province_terms" json:"province_terms"`
	ClusterStopwords   []string `yaml:"cluster_stopwords" json:"cluster_stopwords"`
	TrendingStopwords  []string `yaml:"trending_stopwords" json:"trending_stopwords"`
	SpanishStopwords   []string `yaml:"spanish_stopwords" json:"spanish_stopwords"`
	ContradictionWords []string `yaml:"contradiction_words" json:"contradiction_words"`
	BlockedDomains     []string `yaml:"blocked_domains" json:"blocked_domains"`
	AllowedDomains     []string `yaml:"allowed_domains" json:"allowed_domains"`
}

// Catalog is immutable after Load; share it freely between requests.
type Catalog struct {
	Categories  []Category `yaml:"categories" json:"categories"`
	RankSources []Source   `yaml:"rank_sources" json:"rank_sources"`
	Lexicon     Lexicon    `yaml:"lexicon" json:"lexicon"`

	index map[string]int
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Parse(embeddedCatalog)
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", trimmed, err)
	}
	cat, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", trimmed, err)
	}
	return cat, nil
}

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which the package tests rule out.
func Default() *Catalog {
	cat, err := Parse(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return cat
}

// Parse decodes and validates a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	doc, err := json.Marshal(&cat)
	if err != nil {
		return nil, fmt.Errorf("encode catalog json: %w", err)
	}
	if err := payloadschema.ValidateCatalogDocument(doc); err != nil {
		return nil, err
	}

	cat.index = make(map[string]int, len(cat.Categories))
	for i, category := range cat.Categories {
		if _, exists := cat.index[category.Key]; exists {
			return nil, fmt.Errorf("duplicate category key %q", category.Key)
		}
		cat.index[category.Key] = i
	}
	for i, source := range cat.RankSources {
		if _, exists := cat.index[source.Category]; !exists {
			return nil, fmt.Errorf("rank_sources[%d] references unknown category %q", i, source.Category)
		}
	}

	return &cat, nil
}

// Category looks up a category by key.
func (c *Catalog) Category(key string) (Category, bool) {
	if c == nil {
		return Category{}, false
	}
	i, ok := c.index[key]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

// Keys lists category keys in catalog order.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Categories))
	for _, category := range c.Categories {
		keys = append(keys, category.Key)
	}
	return keys
}

// FeedSources returns the listing feeds of one category as sources.
func (c *Catalog) FeedSources(key string) ([]Source, error) {
	category, ok := c.Category(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, key)
	}
	sources := make([]Source, 0, len(category.Feeds))
	for _, feed := range category.Feeds {
		sources = append(sources, Source{URL: feed, Category: category.Key})
	}
	return sources, nil
}

// RankSourcesFor returns the rank pool, restricted to one category when
// category is non-empty. An unknown category yields an empty pool.
func (c *Catalog) RankSourcesFor(category string) []Source {
	if c == nil {
		return nil
	}
	out := make([]Source, 0, len(c.RankSources))
	for _, source := range c.RankSources {
		if category != "" && source.Category != category {
			continue
		}
		out = append(out, source)
	}
	return out
}

// AllSources returns every distinct feed URL in the catalog, rank pool first.
func (c *Catalog) AllSources() []Source {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	out := make([]Source, 0, len(c.RankSources)+len(c.Categories))
	add := func(src Source) {
		if _, exists := seen[src.URL]; exists {
			return
		}
		seen[src.URL] = struct{}{}
		out = append(out, src)
	}
	for _, source := range c.RankSources {
		add(source)
	}
	for _, category := range c.Categories {
		for _, feed := range category.Feeds {
			add(Source{URL: feed, Category: category.Key})
		}
	}
	return out
}
