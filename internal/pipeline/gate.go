package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/gonzacha/qsd/internal/rss"
)

// GateReason names why the feed gate rejected an item.
type GateReason string

const (
	ReasonNoURL          GateReason = "no_url"
	ReasonDuplicateURL   GateReason = "duplicate_url"
	ReasonBlockedDomain  GateReason = "blocked_domain"
	ReasonNotInAllowlist GateReason = "not_in_allowlist"
	ReasonNotSpanish     GateReason = "lang_en"

	minListingTitleRunes = 15
	minHeuristicWords    = 4
	minStopwordHits      = 2
	portalDelCiudadano   = "portal del ciudadano"
)

// LanguageDetector decides whether a headline is written in Spanish.
type LanguageDetector interface {
	IsSpanish(text string) bool
}

// StopwordDetector is the dependency-free heuristic: a headline of four or
// more words must contain at least two Spanish stopwords.
type StopwordDetector struct {
	stopwords map[string]struct{}
}

func NewStopwordDetector(stopwords map[string]struct{}) *StopwordDetector {
	return &StopwordDetector{stopwords: stopwords}
}

func (d *StopwordDetector) IsSpanish(text string) bool {
	if text == "" {
		return true
	}
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), "")
	words := make([]string, 0, 16)
	for _, word := range strings.Fields(cleaned) {
		if len(word) > 1 {
			words = append(words, word)
		}
	}
	if len(words) < minHeuristicWords {
		return true
	}
	hits := 0
	for _, word := range words {
		if _, ok := d.stopwords[word]; ok {
			hits++
		}
	}
	return hits >= minStopwordHits
}

// Gate is the first filter of the listing pipeline. It only answers whether
// an item deserves processing; editorial rules live in Validate.
type Gate struct {
	dict     *Dictionaries
	language LanguageDetector
	logger   zerolog.Logger
}

func NewGate(dict *Dictionaries, language LanguageDetector, logger zerolog.Logger) *Gate {
	if language == nil {
		language = NewStopwordDetector(dict.spanishStopwords)
	}
	return &Gate{dict: dict, language: language, logger: logger}
}

// Filter applies the gate to the items of one feed. Duplicate links are
// tracked per call, so each feed starts with an empty seen set.
func (g *Gate) Filter(items []rss.Item) []rss.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]rss.Item, 0, len(items))
	for _, item := range items {
		if reason, ok := g.check(item, seen); !ok {
			g.logger.Debug().
				Str("reason", string(reason)).
				Str("url", item.Link).
				Msg("feed gate rejected item")
			continue
		}
		out = append(out, item)
	}
	return out
}

func (g *Gate) check(item rss.Item, seen map[string]struct{}) (GateReason, bool) {
	link := item.Link
	if link == "" {
		return ReasonNoURL, false
	}
	if _, dup := seen[link]; dup {
		return ReasonDuplicateURL, false
	}
	seen[link] = struct{}{}

	if domain := rss.Hostname(link); domain != "" {
		if _, blocked := g.dict.blockedDomains[domain]; blocked {
			return ReasonBlockedDomain, false
		}
		if len(g.dict.allowedDomains) > 0 {
			if _, allowed := g.dict.allowedDomains[domain]; !allowed {
				return ReasonNotInAllowlist, false
			}
		}
	}

	if !g.language.IsSpanish(item.Title) {
		return ReasonNotSpanish, false
	}
	return "", true
}

// Validate holds the deterministic editorial rules a listing item must pass
// after the gate.
func Validate(item rss.Item, excludeGovHosts bool) bool {
	title := strings.TrimSpace(item.Title)
	if utf8.RuneCountInString(title) < minListingTitleRunes {
		return false
	}
	host, ok := httpHost(item.Link)
	if !ok {
		return false
	}
	if excludeGovHosts && IsGovHost(host) {
		return false
	}
	if strings.Contains(strings.ToLower(title), portalDelCiudadano) {
		return false
	}
	return !IsRepeatedTitle(title)
}
