package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gonzacha/qsd/internal/globaltime"
)

const (
	titleWrapWidth = 36
	titleMaxLines  = 4
	descWrapWidth  = 62
	descMaxLines   = 2

	defaultOGHost = "localhost"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Argentina has no daylight saving time, so a fixed zone avoids depending on
// the tz database of the host.
var argentinaTime = time.FixedZone("ART", -3*60*60)

// OGParams describe a 1200x630 social card. An empty Title yields the
// generic site card.
type OGParams struct {
	Title       string
	Source      string
	Category    string
	Description string
	Host        string
	Now         time.Time
}

type svgLine struct {
	Y    float64
	Text string
}

type ogView struct {
	Accent        string
	Label         string
	LabelWidth    int
	LabelCenter   float64
	Date          string
	HasTitle      bool
	Source        string
	SourceWidth   int
	Host          string
	TitleFontSize int
	TitleLines    []svgLine
	DescLines     []svgLine
	GridX         []int
	GridY         []int
}

func (r *Renderer) OG(p OGParams) ([]byte, error) {
	category, ok := r.catalog.Category(strings.TrimSpace(p.Category))
	if !ok {
		category, _ = r.catalog.Category(DefaultShareCategory)
	}
	accent := category.Accent
	if accent == "" {
		accent = "#c9953a"
	}
	label := strings.ToUpper(category.Label)
	if label == "" {
		label = "PORTADA"
	}

	host := strings.TrimSpace(p.Host)
	if host == "" {
		host = defaultOGHost
	}
	now := p.Now
	if now.IsZero() {
		now = globaltime.Now()
	}

	title := strings.TrimSpace(p.Title)
	hasTitle := title != ""
	titleLines := []string{"El pulso informativo", "de Corrientes y el mundo"}
	if hasTitle {
		titleLines = wrapWords(title, titleWrapWidth, titleMaxLines)
	}

	fontSize := 48
	switch {
	case len(titleLines) > 3:
		fontSize = 38
	case len(titleLines) > 2:
		fontSize = 42
	}
	lineHeight := float64(fontSize) * 1.25
	startY := 260.0
	if hasTitle {
		startY = 220
	}

	view := ogView{
		Accent:        accent,
		Label:         label,
		LabelWidth:    runeLen(label)*11 + 28,
		Date:          SpanishLongDate(now.In(r.zone)),
		HasTitle:      hasTitle,
		Host:          host,
		TitleFontSize: fontSize,
		GridX:         gridSteps(31),
		GridY:         gridSteps(16),
	}
	view.LabelCenter = 340 + float64(view.LabelWidth)/2

	source := strings.TrimSpace(p.Source)
	if source == "" {
		source = host
	}
	view.Source = strings.ToUpper(source)
	view.SourceWidth = runeLen(source)*9 + 24

	for i, line := range titleLines {
		view.TitleLines = append(view.TitleLines, svgLine{Y: startY + float64(i)*lineHeight, Text: line})
	}
	descStartY := startY + float64(len(titleLines))*lineHeight + 20
	for i, line := range wrapWords(strings.TrimSpace(p.Description), descWrapWidth, descMaxLines) {
		view.DescLines = append(view.DescLines, svgLine{Y: descStartY + float64(i)*26, Text: line})
	}

	return execute("og", func(buf *bytes.Buffer) error {
		return r.og.Execute(buf, view)
	})
}

// SpanishLongDate formats t the way es-AR spells a date out, e.g.
// "16 de octubre de 2026".
func SpanishLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

func gridSteps(n int) []int {
	steps := make([]int, n)
	for i := range steps {
		steps[i] = i * 40
	}
	return steps
}
