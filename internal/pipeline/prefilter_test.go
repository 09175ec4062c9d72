package pipeline

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/gonzacha/qsd/internal/catalog"
	"github.com/gonzacha/qsd/internal/rss"
)

func TestIsRepeatedTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"Se viene el cambio - Se viene el cambio":   true,
		"Se viene el cambio | se viene el cambio ":  true,
		"Se viene el cambio · Se viene el cambio":   true,
		"Se viene el cambio - Infobae":              false,
		"Se viene el cambio - Se viene - el cambio": false,
		"Sin separadores":                           false,
	}
	for title, want := range cases {
		if got := IsRepeatedTitle(title); got != want {
			t.Fatalf("IsRepeatedTitle(%q): got %v want %v", title, got, want)
		}
	}
}

func TestPrefilter_Accept(t *testing.T) {
	t.Parallel()

	strict := Prefilter{ExcludeGovHosts: true}
	lenient := Prefilter{}

	cases := []struct {
		name    string
		link    string
		strict  bool
		lenient bool
	}{
		{name: "https", link: "https://www.infobae.com/politica/nota", strict: true, lenient: true},
		{name: "http", link: "http://ellitoral.com.ar/nota", strict: true, lenient: true},
		{name: "ftp", link: "ftp://files.example.com/feed", strict: false, lenient: false},
		{name: "relative", link: "/politica/nota", strict: false, lenient: false},
		{name: "empty", link: "", strict: false, lenient: false},
		{name: "gob.ar", link: "https://www.corrientes.gob.ar/noticia", strict: false, lenient: true},
		{name: "gov.ar", link: "https://prensa.salud.gov.ar/noticia", strict: false, lenient: true},
		{name: "gob infix", link: "https://www.argentina.gob.com/x", strict: false, lenient: true},
	}
	for _, tc := range cases {
		item := rss.Item{Title: "Una noticia cualquiera de hoy", Link: tc.link}
		if got := strict.Accept(item); got != tc.strict {
			t.Fatalf("%s: strict accept got %v want %v", tc.name, got, tc.strict)
		}
		if got := lenient.Accept(item); got != tc.lenient {
			t.Fatalf("%s: lenient accept got %v want %v", tc.name, got, tc.lenient)
		}
	}

	repeated := rss.Item{Title: "Se viene el cambio - Se viene el cambio", Link: "https://example.com/a"}
	if lenient.Accept(repeated) {
		t.Fatalf("expected repeated title to be rejected")
	}
}

func TestStopwordDetector(t *testing.T) {
	t.Parallel()

	detector := NewStopwordDetector(testDictionaries().SpanishStopwords())
	cases := map[string]bool{
		"El gobierno de la provincia anunció cambios": true,
		"Breaking news from the White House today":    false,
		"Messi gol":                                    true,
		"":                                             true,
	}
	for title, want := range cases {
		if got := detector.IsSpanish(title); got != want {
			t.Fatalf("IsSpanish(%q): got %v want %v", title, got, want)
		}
	}
}

func TestGate_Filter(t *testing.T) {
	t.Parallel()

	lex := catalog.Default().Lexicon
	lex.BlockedDomains = []string{"spam.example"}
	gate := NewGate(NewDictionaries(lex), nil, zerolog.Nop())

	items := []rss.Item{
		{Title: "El gobierno de la provincia anunció cambios", Link: "https://diario.example/1"},
		{Title: "Otra nota con el mismo enlace de la primera", Link: "https://diario.example/1"},
		{Title: "Nota sin enlace para el portal", Link: ""},
		{Title: "La nota de un sitio que no queremos", Link: "https://www.spam.example/x"},
		{Title: "Breaking news from the White House today", Link: "https://diario.example/2"},
		{Title: "Se inauguró el puente de la ciudad", Link: "https://diario.example/3"},
	}
	got := gate.Filter(items)
	if len(got) != 2 {
		t.Fatalf("unexpected gate output size: got %d want 2 (%+v)", len(got), got)
	}
	if got[0].Link != "https://diario.example/1" || got[1].Link != "https://diario.example/3" {
		t.Fatalf("unexpected gate output: %+v", got)
	}

	// A second call starts with a fresh seen set.
	again := gate.Filter(items[:1])
	if len(again) != 1 {
		t.Fatalf("expected seen set to be per call, got %d items", len(again))
	}
}

func TestGate_AllowList(t *testing.T) {
	t.Parallel()

	lex := catalog.Default().Lexicon
	lex.AllowedDomains = []string{"infobae.com"}
	gate := NewGate(NewDictionaries(lex), nil, zerolog.Nop())

	items := []rss.Item{
		{Title: "El gobierno de la provincia anunció cambios", Link: "https://www.infobae.com/a"},
		{Title: "El gobierno de la provincia anunció cambios", Link: "https://clarin.com/b"},
	}
	got := gate.Filter(items)
	if len(got) != 1 || got[0].Link != "https://www.infobae.com/a" {
		t.Fatalf("unexpected allow list output: %+v", got)
	}
}

type alwaysForeign struct{}

func (alwaysForeign) IsSpanish(string) bool { return false }

func TestGate_CustomLanguageDetector(t *testing.T) {
	t.Parallel()

	gate := NewGate(testDictionaries(), alwaysForeign{}, zerolog.Nop())
	got := gate.Filter([]rss.Item{{Title: "El gobierno de la provincia", Link: "https://a.example/1"}})
	if len(got) != 0 {
		t.Fatalf("expected detector to reject item, got %+v", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		item  rss.Item
		want  bool
		noGov bool
	}{
		{name: "ok", item: rss.Item{Title: "Se inauguró el puente nuevo", Link: "https://diario.example/1"}, want: true},
		{name: "short", item: rss.Item{Title: "  Corto título ", Link: "https://diario.example/1"}, want: false},
		{name: "scheme", item: rss.Item{Title: "Se inauguró el puente nuevo", Link: "mailto:prensa@diario.example"}, want: false},
		{name: "gov", item: rss.Item{Title: "Se inauguró el puente nuevo", Link: "https://www.corrientes.gob.ar/1"}, want: false},
		{name: "gov allowed", item: rss.Item{Title: "Se inauguró el puente nuevo", Link: "https://www.corrientes.gob.ar/1"}, want: true, noGov: true},
		{name: "portal", item: rss.Item{Title: "Portal del Ciudadano: trámites online", Link: "https://diario.example/2"}, want: false},
		{name: "repeated", item: rss.Item{Title: "Se viene el cambio - Se viene el cambio", Link: "https://diario.example/3"}, want: false},
	}
	for _, tc := range cases {
		if got := Validate(tc.item, !tc.noGov); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}
