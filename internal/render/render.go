package render

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/gonzacha/qsd/internal/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Renderer produces the share page and the SVG cards. Templates are parsed
// once; a Renderer is safe for concurrent use.
type Renderer struct {
	catalog *catalog.Catalog
	share   *htmltemplate.Template
	og      *template.Template
	thumb   *template.Template
	zone    *time.Location
}

func New(cat *catalog.Catalog) (*Renderer, error) {
	if cat == nil {
		cat = catalog.Default()
	}

	share, err := htmltemplate.ParseFS(templateFS, "templates/share.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse share template: %w", err)
	}

	funcs := template.FuncMap{
		"xml": xmlEscape,
		"num": formatNumber,
	}
	og, err := template.New("og.svg.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/og.svg.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse og template: %w", err)
	}
	thumb, err := template.New("thumb.svg.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/thumb.svg.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse thumb template: %w", err)
	}

	return &Renderer{
		catalog: cat,
		share:   share,
		og:      og,
		thumb:   thumb,
		zone:    argentinaTime,
	}, nil
}

func execute(name string, run func(*bytes.Buffer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := run(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// wrapWords greedily packs words into lines of at most width runes. A word
// longer than width gets a line of its own. Past maxLines the output is cut
// and the last kept line loses three runes to an ellipsis.
func wrapWords(text string, width, maxLines int) []string {
	words := strings.Fields(text)
	lines := make([]string, 0, maxLines)
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if runeLen(candidate) > width && current != "" {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		cut := max(len(last)-3, 0)
		lines[maxLines-1] = string(last[:cut]) + "..."
	}
	return lines
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
