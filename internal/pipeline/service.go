package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/gonzacha/qsd/internal/catalog"
	"github.com/gonzacha/qsd/internal/globaltime"
	"github.com/gonzacha/qsd/internal/ingest"
	"github.com/gonzacha/qsd/internal/rss"
)

const (
	DefaultListingCategory = "portada"
	maxListingItems        = 50
	unknownEdition         = "unknown"
)

// FeedFetcher fetches feeds concurrently and returns one settled result per
// source, in source order.
type FeedFetcher interface {
	FetchAll(ctx context.Context, sources []catalog.Source) []ingest.Result
}

type Service struct {
	fetcher         FeedFetcher
	catalog         *catalog.Catalog
	dict            *Dictionaries
	prefilter       Prefilter
	gate            *Gate
	excludeGovHosts bool
	logger          zerolog.Logger
}

type Options struct {
	ExcludeGovHosts bool
	// Language overrides the stopword heuristic of the feed gate.
	Language LanguageDetector
}

func NewService(fetcher FeedFetcher, cat *catalog.Catalog, opts Options, logger zerolog.Logger) *Service {
	dict := NewDictionaries(cat.Lexicon)
	return &Service{
		fetcher:         fetcher,
		catalog:         cat,
		dict:            dict,
		prefilter:       Prefilter{ExcludeGovHosts: opts.ExcludeGovHosts},
		gate:            NewGate(dict, opts.Language, logger),
		excludeGovHosts: opts.ExcludeGovHosts,
		logger:          logger,
	}
}

// Dictionaries exposes the lexicon the service was built with.
func (s *Service) Dictionaries() *Dictionaries {
	return s.dict
}

type RankQuery struct {
	Category string
	Limit    int
	MinScore float64
}

type RankResult struct {
	GeneratedAt time.Time
	Items       []RankedItem
}

// Rank runs fetch, prefilter, clustering, enrichment, dedup and ranking for
// the rank pool. A panic in any CPU stage is returned as an error so the
// caller never writes a partial response.
func (s *Service) Rank(ctx context.Context, query RankQuery) (result RankResult, err error) {
	if s == nil || s.fetcher == nil || s.catalog == nil {
		return RankResult{}, fmt.Errorf("pipeline service is not initialized")
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			result = RankResult{}
			err = fmt.Errorf("rank pipeline panic: %v", recovered)
		}
	}()

	started := globaltime.Now()
	sources := s.catalog.RankSourcesFor(query.Category)
	results := s.fetcher.FetchAll(ctx, sources)

	items := make([]rss.Item, 0)
	for _, fetched := range results {
		for _, item := range s.prefilter.Apply(fetched.Items) {
			if item.Category == "" {
				item.Category = fetched.Source.Category
			}
			item.Edition = s.dict.EditionFor(item.Category, item.Title, item.Description)
			items = append(items, item)
		}
	}

	if query.Category != "" {
		filtered := items[:0]
		for _, item := range items {
			if item.Category == query.Category {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	sortNewestFirst(items)
	for i := range items {
		items[i].Edition = firstNonEmpty(items[i].Edition, items[i].Category, query.Category, unknownEdition)
	}

	enriched := s.dict.Enrich(items)
	deduped := Deduplicate(enriched, func(item EnrichedItem) string { return item.Title })
	now := globaltime.UTC()
	ranked := SelectRanked(RankItems(deduped, now), query.MinScore, query.Limit)

	s.logger.Info().
		Str("category", query.Category).
		Int("sources", len(sources)).
		Int("candidates", len(items)).
		Int("deduped", len(deduped)).
		Int("ranked", len(ranked)).
		Dur("took", globaltime.Since(started)).
		Msg("rank pipeline completed")

	return RankResult{GeneratedAt: now, Items: ranked}, nil
}

// CategoryRef is the short category descriptor sent with feed listings.
type CategoryRef struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type FeedListing struct {
	Category   string         `json:"category"`
	Label      string         `json:"label"`
	Items      []rss.Item     `json:"items"`
	Trending   []TrendingWord `json:"trending"`
	Total      int            `json:"total"`
	Timestamp  time.Time      `json:"-"`
	Categories []CategoryRef  `json:"categories"`
}

// Feed builds the listing of one category. An unknown key returns an error
// wrapping catalog.ErrUnknownCategory.
func (s *Service) Feed(ctx context.Context, key string) (listing FeedListing, err error) {
	if s == nil || s.fetcher == nil || s.catalog == nil {
		return FeedListing{}, fmt.Errorf("pipeline service is not initialized")
	}
	if key == "" {
		key = DefaultListingCategory
	}
	category, ok := s.catalog.Category(key)
	if !ok {
		return FeedListing{}, fmt.Errorf("%w: %s", catalog.ErrUnknownCategory, key)
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			listing = FeedListing{}
			err = fmt.Errorf("feed listing panic: %v", recovered)
		}
	}()

	sources, err := s.catalog.FeedSources(key)
	if err != nil {
		return FeedListing{}, err
	}
	results := s.fetcher.FetchAll(ctx, sources)

	items := make([]rss.Item, 0)
	for _, fetched := range results {
		for _, item := range s.gate.Filter(fetched.Items) {
			if Validate(item, s.excludeGovHosts) {
				items = append(items, item)
			}
		}
	}

	sortNewestFirst(items)
	items = Deduplicate(items, func(item rss.Item) string { return item.Title })
	trending := s.dict.Trending(items, DefaultTrendingWords)

	if len(items) > maxListingItems {
		items = items[:maxListingItems]
	}
	for i := range items {
		items[i].Edition = s.dict.EditionFor(key, items[i].Title, items[i].Description)
	}

	return FeedListing{
		Category:   key,
		Label:      category.Label,
		Items:      items,
		Trending:   trending,
		Total:      len(items),
		Timestamp:  globaltime.UTC(),
		Categories: s.CategoryRefs(),
	}, nil
}

// CategoryRefs lists the catalog categories in catalog order.
func (s *Service) CategoryRefs() []CategoryRef {
	refs := make([]CategoryRef, 0, len(s.catalog.Categories))
	for _, category := range s.catalog.Categories {
		refs = append(refs, CategoryRef{Key: category.Key, Label: category.Label})
	}
	return refs
}

func sortNewestFirst(items []rss.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
