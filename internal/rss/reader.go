package rss

import (
	"regexp"
	"strings"
	"sync"
)

// FieldReader extracts text from one feed entry block. Implementations
// must be safe for concurrent use.
type FieldReader interface {
	// Field returns the trimmed text content of the first tag element,
	// unwrapping CDATA sections. It returns "" when the tag is absent.
	Field(block, tag string) string
	// Attribute returns the raw value of attr on the first tag element.
	Attribute(block, tag, attr string) string
}

// RegexReader is a tolerant FieldReader built on regular expressions. It
// accepts the slightly broken markup that aggregator feeds often emit.
type RegexReader struct {
	patterns sync.Map
}

var itemBlockPattern = regexp.MustCompile(`(?is)<item>(.*?)</item>`)

// NewRegexReader returns a reader with an empty pattern cache.
func NewRegexReader() *RegexReader {
	return &RegexReader{}
}

func (r *RegexReader) Field(block, tag string) string {
	if m := r.pattern("cdata:"+tag, `(?is)<`+regexp.QuoteMeta(tag)+`[^>]*>\s*<!\[CDATA\[(.*?)\]\]>\s*</`+regexp.QuoteMeta(tag)+`>`).FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := r.pattern("plain:"+tag, `(?is)<`+regexp.QuoteMeta(tag)+`[^>]*>(.*?)</`+regexp.QuoteMeta(tag)+`>`).FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func (r *RegexReader) Attribute(block, tag, attr string) string {
	key := "attr:" + tag + ":" + attr
	expr := `(?i)<` + regexp.QuoteMeta(tag) + `[^>]*` + regexp.QuoteMeta(attr) + `="([^"]*)"`
	if m := r.pattern(key, expr).FindStringSubmatch(block); m != nil {
		return m[1]
	}
	return ""
}

func (r *RegexReader) pattern(key, expr string) *regexp.Regexp {
	if cached, ok := r.patterns.Load(key); ok {
		return cached.(*regexp.Regexp)
	}
	compiled := regexp.MustCompile(expr)
	actual, _ := r.patterns.LoadOrStore(key, compiled)
	return actual.(*regexp.Regexp)
}

// ItemBlocks splits a raw RSS document into the inner markup of its
// <item> elements, in document order.
func ItemBlocks(raw string) []string {
	matches := itemBlockPattern.FindAllStringSubmatch(raw, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return blocks
}
