package render

import (
	"bytes"
	"strings"
)

const (
	maxEditionLen  = 24
	maxCategoryLen = 24
	maxDateLen     = 20

	defaultThumbEdition  = "QSD"
	defaultThumbCategory = "GENERAL"

	pillFontSize = 22
	pillPadX     = 14
	pillPadY     = 8
	pillRight    = 600
	pillTop      = 22
)

type Gradient struct {
	Start string
	End   string
}

var thumbGradients = map[string]Gradient{
	"POLÍTICA":  {Start: "#1a3a5c", End: "#0d1f33"},
	"POLITICA":  {Start: "#1a3a5c", End: "#0d1f33"},
	"ECONOMÍA":  {Start: "#3a2800", End: "#1f1500"},
	"ECONOMIA":  {Start: "#3a2800", End: "#1f1500"},
	"SEGURIDAD": {Start: "#3a1a1a", End: "#1f0d0d"},
	"DEPORTES":  {Start: "#0d2b1a", End: "#061510"},
	"CULTURA":   {Start: "#2a1a4a", End: "#150d26"},
	"SOCIEDAD":  {Start: "#1a2a3a", End: "#0d151f"},
}

var defaultGradient = Gradient{Start: "#2a2060", End: "#140f30"}

var controlSpaces = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")

// ThumbParams are the raw query values of a 640x360 list thumbnail.
type ThumbParams struct {
	Edition  string
	Category string
	Date     string
}

type pill struct {
	X, Y, Width, Height int
	CenterX, CenterY    int
	FontSize            int
}

type thumbView struct {
	TopBar   string
	Category string
	Gradient Gradient
	Pill     pill
}

func (r *Renderer) Thumb(p ThumbParams) ([]byte, error) {
	edition := sanitizeLabel(p.Edition, maxEditionLen)
	if edition == "" {
		edition = defaultThumbEdition
	}
	category := sanitizeLabel(p.Category, maxCategoryLen)
	if category == "" {
		category = defaultThumbCategory
	}
	date := sanitizeLabel(p.Date, maxDateLen)

	topBar := strings.ToUpper(edition)
	if date != "" {
		topBar += " · " + date
	}
	category = strings.ToUpper(category)

	width := runeLen(category)*10 + pillPadX*2
	height := pillFontSize + pillPadY*2
	view := thumbView{
		TopBar:   topBar,
		Category: category,
		Gradient: GradientFor(category),
		Pill: pill{
			X:        pillRight - width,
			Y:        pillTop,
			Width:    width,
			Height:   height,
			CenterX:  pillRight - width + width/2,
			CenterY:  pillTop + height/2,
			FontSize: pillFontSize,
		},
	}
	return execute("thumb", func(buf *bytes.Buffer) error {
		return r.thumb.Execute(buf, view)
	})
}

// GradientFor maps an upper-cased category label to its background.
func GradientFor(category string) Gradient {
	if gradient, ok := thumbGradients[category]; ok {
		return gradient
	}
	return defaultGradient
}

// sanitizeLabel flattens control whitespace and clips to limit runes.
// Escaping happens in the template, after clipping, so an entity is never
// cut in half.
func sanitizeLabel(raw string, limit int) string {
	return truncateRunes(controlSpaces.Replace(raw), limit)
}
