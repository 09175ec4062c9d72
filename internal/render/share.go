package render

import (
	"bytes"
	"net/url"
	"strings"
)

const (
	DefaultShareTitle       = "Qué Se Dice — Noticias"
	DefaultShareDescription = "Noticias de Corrientes, Argentina y el mundo"
	DefaultShareCategory    = "portada"

	maxShareDescription = 150
)

// ShareParams are the query values of a share link. Origin is the scheme and
// host the page is served from; it prefixes the card image URL and is the
// redirect target when URL is empty or not an http(s) link.
type ShareParams struct {
	Title       string
	Source      string
	Category    string
	Description string
	URL         string
	Origin      string
}

type shareView struct {
	Title       string
	Source      string
	Description string
	URL         string
	ImageURL    string
}

// Share renders the redirect page that social crawlers read for preview
// cards while browsers bounce straight to the article.
func (r *Renderer) Share(p ShareParams) ([]byte, error) {
	p = p.withDefaults()

	query := url.Values{}
	query.Set("title", p.Title)
	if p.Source != "" {
		query.Set("source", p.Source)
	}
	query.Set("cat", p.Category)
	query.Set("desc", p.Description)

	view := shareView{
		Title:       p.Title,
		Source:      p.Source,
		Description: p.Description,
		URL:         p.URL,
		ImageURL:    strings.TrimRight(p.Origin, "/") + "/api/og?" + query.Encode(),
	}
	return execute("share", func(buf *bytes.Buffer) error {
		return r.share.Execute(buf, view)
	})
}

func (p ShareParams) withDefaults() ShareParams {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		p.Title = DefaultShareTitle
	}
	p.Source = strings.TrimSpace(p.Source)
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = DefaultShareCategory
	}
	p.Description = strings.TrimSpace(p.Description)
	if p.Description == "" {
		p.Description = DefaultShareDescription
	}
	p.Description = truncateRunes(p.Description, maxShareDescription)
	p.URL = strings.TrimSpace(p.URL)
	if !isHTTPURL(p.URL) {
		p.URL = p.Origin
	}
	return p
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
