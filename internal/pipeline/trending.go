package pipeline

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gonzacha/qsd/internal/rss"
)

const (
	DefaultTrendingWords = 12
	minTrendingRunes     = 3
	minTrendingCount     = 2
)

type TrendingWord struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Trending counts, once per headline, the content words of items and
// returns those seen in at least two headlines, most frequent first.
func (d *Dictionaries) Trending(items []rss.Item, maxWords int) []TrendingWord {
	if maxWords <= 0 {
		maxWords = DefaultTrendingWords
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, item := range items {
		cleaned := trendingStripRegex.ReplaceAllString(strings.ToLower(item.Title), "")
		inTitle := make(map[string]struct{})
		for _, word := range strings.Fields(cleaned) {
			if !d.isTrendingWord(word) {
				continue
			}
			if _, dup := inTitle[word]; dup {
				continue
			}
			inTitle[word] = struct{}{}
			if _, known := counts[word]; !known {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	words := make([]TrendingWord, 0, len(order))
	for _, word := range order {
		if counts[word] >= minTrendingCount {
			words = append(words, TrendingWord{Word: word, Count: counts[word]})
		}
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].Count > words[j].Count })
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return words
}

func (d *Dictionaries) isTrendingWord(word string) bool {
	if utf8.RuneCountInString(word) < minTrendingRunes {
		return false
	}
	if _, stop := d.trendingStopwords[word]; stop {
		return false
	}
	return !digitsOnlyPattern.MatchString(word)
}
