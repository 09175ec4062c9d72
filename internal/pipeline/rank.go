package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/gonzacha/qsd/internal/rss"
)

const (
	DefaultRankLimit = 30

	staleHours            = 24.0
	contradictionPenalty  = 0.4
	convergenceBaseWeight = 0.4
	agreementWeight       = 0.4
	freshnessWeight       = 0.2
	editorialFactosWeight = 0.7
	editorialFreshWeight  = 0.3
)

// RankedItem is the public record of the rank endpoint. Field order is
// the wire order.
type RankedItem struct {
	Rank              int      `json:"rank"`
	FactosFinal       float64  `json:"factos_final"`
	EditorialScore    float64  `json:"editorial_score"`
	HoursSincePublish float64  `json:"hours_since_publish"`
	SourcesCount      int      `json:"sources_count"`
	SourcesEffective  int      `json:"sources_effective"`
	QualityFlags      []string `json:"quality_flags"`
	QualityPenalty    int      `json:"quality_penalty"`
	Edition           string   `json:"edition"`
	Title             string   `json:"title"`
	URL               string   `json:"url"`
	PublishedAt       *string  `json:"publishedAt"`
	Source            string   `json:"source"`
}

// hoursSince is the non-negative age of publishedAt. A missing or
// unparseable date counts as a full day old.
func hoursSince(publishedAt *string, now time.Time) float64 {
	if publishedAt == nil {
		return staleHours
	}
	ts, ok := rss.ParseTime(*publishedAt)
	if !ok {
		return staleHours
	}
	return math.Max(0, now.Sub(ts).Hours())
}

func freshness(hours float64) float64 {
	return clamp01(1 - math.Max(0, hours)/staleHours)
}

// convergenceScore rewards stories corroborated by several sources and
// recent ones. Retraction or denial headlines lose a fixed 0.4.
func convergenceScore(sourcesCount int, agreementRatio float64, contradiction bool, hours float64) float64 {
	if sourcesCount <= 0 {
		return 0
	}
	base := math.Min(float64(sourcesCount)/maxEffectiveSources, 1)
	penalty := 0.0
	if contradiction {
		penalty = contradictionPenalty
	}
	score := convergenceBaseWeight*base +
		agreementWeight*clamp01(agreementRatio) +
		freshnessWeight*freshness(hours) -
		penalty
	return clamp01(score)
}

// RankItems scores items against now and orders them by editorial score.
// Equal scores keep their input order; ranks are 1-based and dense.
func RankItems(items []EnrichedItem, now time.Time) []RankedItem {
	ranked := make([]RankedItem, len(items))
	for i, item := range items {
		hours := hoursSince(item.PublishedAt, now)
		factos := convergenceScore(item.SourcesEffective, item.AgreementRatio, item.ContradictionFlag, hours)
		flags := item.QualityFlags
		if flags == nil {
			flags = []string{}
		}
		ranked[i] = RankedItem{
			FactosFinal:       factos,
			EditorialScore:    editorialFactosWeight*factos + editorialFreshWeight*freshness(hours),
			HoursSincePublish: hours,
			SourcesCount:      item.SourcesCount,
			SourcesEffective:  item.SourcesEffective,
			QualityFlags:      flags,
			QualityPenalty:    item.QualityPenalty,
			Edition:           item.Edition,
			Title:             item.Title,
			URL:               item.Link,
			PublishedAt:       item.PublishedAt,
			Source:            item.Source,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EditorialScore > ranked[j].EditorialScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// SelectRanked drops items under minScore when minScore is positive, then
// caps the result at limit (DefaultRankLimit when limit < 1).
func SelectRanked(ranked []RankedItem, minScore float64, limit int) []RankedItem {
	if limit < 1 {
		limit = DefaultRankLimit
	}
	out := ranked
	if minScore > 0 {
		out = make([]RankedItem, 0, len(ranked))
		for _, item := range ranked {
			if item.EditorialScore >= minScore {
				out = append(out, item)
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
