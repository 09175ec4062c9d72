package pipeline

import (
	"net/url"
	"strings"

	"github.com/gonzacha/qsd/internal/rss"
)

var repeatedTitleSeparators = []string{" - ", " | ", " — ", " – ", " · "}

// Prefilter drops structurally broken items before clustering.
type Prefilter struct {
	// ExcludeGovHosts rejects links served from government domains.
	ExcludeGovHosts bool
}

// Accept reports whether item has a usable http(s) link and a title that is
// not a feed artifact.
func (p Prefilter) Accept(item rss.Item) bool {
	host, ok := httpHost(item.Link)
	if !ok {
		return false
	}
	if p.ExcludeGovHosts && IsGovHost(host) {
		return false
	}
	return !IsRepeatedTitle(item.Title)
}

// Apply returns the accepted items in their original order.
func (p Prefilter) Apply(items []rss.Item) []rss.Item {
	out := make([]rss.Item, 0, len(items))
	for _, item := range items {
		if p.Accept(item) {
			out = append(out, item)
		}
	}
	return out
}

// IsRepeatedTitle catches feeds that emit "Headline - Headline": the title
// splits on one separator into exactly two identical parts.
func IsRepeatedTitle(title string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, sep := range repeatedTitleSeparators {
		if !strings.Contains(normalized, sep) {
			continue
		}
		parts := make([]string, 0, 2)
		for _, part := range strings.Split(normalized, sep) {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) == 2 && parts[0] == parts[1] {
			return true
		}
	}
	return false
}

// IsGovHost matches Argentine and generic government hostnames.
func IsGovHost(host string) bool {
	host = strings.ToLower(host)
	return strings.HasSuffix(host, ".gob.ar") ||
		strings.HasSuffix(host, ".gov.ar") ||
		strings.Contains(host, ".gob.") ||
		strings.Contains(host, ".gov.")
}

func httpHost(link string) (string, bool) {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return "", false
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	return strings.ToLower(parsed.Hostname()), true
}
