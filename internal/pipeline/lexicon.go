package pipeline

import (
	"strings"

	"github.com/gonzacha/qsd/internal/catalog"
)

// Dictionaries is the read-only view of a catalog lexicon used by the
// pipeline stages. Terms are normalized once here, never per item.
type Dictionaries struct {
	capitalTerms       []string
	provinceTerms      []string
	contradictionWords []string
	clusterStopwords   map[string]struct{}
	trendingStopwords  map[string]struct{}
	spanishStopwords   map[string]struct{}
	blockedDomains     map[string]struct{}
	allowedDomains     map[string]struct{}
}

func NewDictionaries(lex catalog.Lexicon) *Dictionaries {
	return &Dictionaries{
		capitalTerms:       normalizeTerms(lex.CapitalTerms),
		provinceTerms:      normalizeTerms(lex.ProvinceTerms),
		contradictionWords: lowerTerms(lex.ContradictionWords),
		clusterStopwords:   termSet(lex.ClusterStopwords),
		trendingStopwords:  termSet(lex.TrendingStopwords),
		spanishStopwords:   termSet(lex.SpanishStopwords),
		blockedDomains:     termSet(lex.BlockedDomains),
		allowedDomains:     termSet(lex.AllowedDomains),
	}
}

// SpanishStopwords returns a copy of the stopword set used by the language
// heuristic of the feed gate.
func (d *Dictionaries) SpanishStopwords() map[string]struct{} {
	out := make(map[string]struct{}, len(d.spanishStopwords))
	for word := range d.spanishStopwords {
		out[word] = struct{}{}
	}
	return out
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if normalized := normalizeText(term); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

func lowerTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if lowered := strings.ToLower(strings.TrimSpace(term)); lowered != "" {
			out = append(out, lowered)
		}
	}
	return out
}

func termSet(terms []string) map[string]struct{} {
	out := make(map[string]struct{}, len(terms))
	for _, term := range lowerTerms(terms) {
		out[term] = struct{}{}
	}
	return out
}

func countHits(normalized string, terms []string) int {
	hits := 0
	for _, term := range terms {
		if strings.Contains(normalized, term) {
			hits++
		}
	}
	return hits
}
