package rss

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	entities = [][2]string{
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
		{"&#39;", "'"},
		{"&#x27;", "'"},
		{"&#x2F;", "/"},
		{"&apos;", "'"},
	}

	nbspPattern         = regexp.MustCompile(`(?i)&nbsp;`)
	ampPattern          = regexp.MustCompile(`(?i)&amp;`)
	attributionSuffix   = regexp.MustCompile(`\s[-|]\s[^-|]+$`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]*>`)
	fallbackSourceLabel = "Fuente"
)

// DecodeEntities replaces the handful of entities feeds actually emit.
// Replacements run in sequence starting with &amp;, so a double-escaped
// "&amp;lt;" ends up as "<".
func DecodeEntities(s string) string {
	for _, pair := range entities {
		s = strings.ReplaceAll(s, pair[0], pair[1])
	}
	return s
}

// NormalizeTitle cleans a decoded headline: stray &nbsp;/&amp; are fixed,
// whitespace is collapsed, pipe-heavy titles keep their first segment and
// one trailing " - Outlet" or " | Outlet" attribution is removed.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}
	cleaned := nbspPattern.ReplaceAllString(title, " ")
	cleaned = ampPattern.ReplaceAllString(cleaned, "&")
	cleaned = collapseSpace(cleaned)

	if strings.Count(cleaned, "|") > 2 {
		cleaned = strings.TrimSpace(cleaned[:strings.Index(cleaned, "|")])
	}

	return strings.TrimSpace(attributionSuffix.ReplaceAllString(cleaned, ""))
}

// StripHTML removes markup tags and trims the result.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

// ExtractDomain returns the hostname of rawURL without a leading "www.",
// or "Fuente" when the URL cannot be parsed.
func ExtractDomain(rawURL string) string {
	host := Hostname(rawURL)
	if host == "" {
		return fallbackSourceLabel
	}
	return host
}

// Hostname returns the hostname of an absolute URL without "www.", or "".
func Hostname(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// ParseTime parses the publish date formats seen in feeds.
func ParseTime(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339, time.RFC822Z, time.RFC822} {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, true
		}
	}
	ts, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// ParseTimestamp returns epoch milliseconds for raw, or 0 when unparseable.
func ParseTimestamp(raw string) int64 {
	ts, ok := ParseTime(raw)
	if !ok {
		return 0
	}
	return ts.UnixMilli()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
