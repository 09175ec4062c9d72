package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordPattern     = regexp.MustCompile(`[^\w\s]`)
	trendingStripRegex = regexp.MustCompile(`[^\wáéíóúñü\s]`)
	digitsOnlyPattern  = regexp.MustCompile(`^\d+$`)
)

// normalizeText lower-cases text, strips accents and replaces every
// non-word character with a space. The result is what dictionary terms are
// matched against, so "Gustavo Valdés" and "gustavo valdes" compare equal.
func normalizeText(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)
	// transform.Chain holds state, so it is built per call.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(stripper, lowered)
	if err != nil {
		stripped = lowered
	}
	return collapseSpace(nonWordPattern.ReplaceAllString(stripped, " "))
}

// wordSet lower-cases title, removes punctuation outright and keeps the
// distinct words of at least minLen bytes.
func wordSet(title string, minLen int) map[string]struct{} {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(title), "")
	words := make(map[string]struct{})
	for _, word := range strings.Fields(cleaned) {
		if len(word) >= minLen {
			words[word] = struct{}{}
		}
	}
	return words
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
