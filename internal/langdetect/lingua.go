package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

const minLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the two-letter code of the language of text, or ""
// when the text is too short or the detector is not confident.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// Detector is the lingua-backed feed gate language check. Headlines the
// model cannot place are let through.
type Detector struct{}

func (Detector) IsSpanish(text string) bool {
	code := DetectISO6391(text)
	return code == "" || code == "es"
}

// The candidate set covers the languages the configured feeds actually mix:
// Spanish copy, English wire stories and Brazilian coverage of the region.
func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.Spanish, lingua.English, lingua.Portuguese).
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	return detector
}
