package pipeline

import (
	"reflect"
	"testing"

	"github.com/gonzacha/qsd/internal/rss"
)

func TestEnrich_SourcesEffectiveCapsAtFive(t *testing.T) {
	t.Parallel()

	items := titles("x",
		"Paro docente jornada lunes",
		"Paro docente jornada martes",
		"Paro docente jornada miércoles",
		"Paro docente jornada jueves",
		"Paro docente jornada viernes",
		"Paro docente jornada sábado",
	)
	enriched := testDictionaries().Enrich(items)
	for i, item := range enriched {
		if item.SourcesCount != 6 {
			t.Fatalf("item %d: got sources_count %d want 6", i, item.SourcesCount)
		}
		if item.SourcesEffective != 5 {
			t.Fatalf("item %d: got sources_effective %d want 5", i, item.SourcesEffective)
		}
		if item.AgreementRatio != 1 {
			t.Fatalf("item %d: got agreement_ratio %v want 1", i, item.AgreementRatio)
		}
	}
}

func TestEnrich_SingleItem(t *testing.T) {
	t.Parallel()

	pubDate := "Thu, 15 Oct 2026 10:00:00 -0300"
	item := rss.Item{Title: "Boca gana el superclásico", Link: "https://diario.example/1", PubDate: &pubDate, Edition: "deportes"}
	enriched := testDictionaries().Enrich([]rss.Item{item})[0]

	if enriched.SourcesCount != 1 || enriched.SourcesEffective != 1 {
		t.Fatalf("unexpected counts: %+v", enriched)
	}
	if enriched.AgreementRatio != 0.2 {
		t.Fatalf("unexpected agreement ratio: %v", enriched.AgreementRatio)
	}
	if enriched.PublishedAt == nil || *enriched.PublishedAt != pubDate {
		t.Fatalf("expected publishedAt to carry pubDate, got %v", enriched.PublishedAt)
	}
	if enriched.QualityFlags == nil || len(enriched.QualityFlags) != 0 || enriched.QualityPenalty != 0 {
		t.Fatalf("expected empty non-nil flags and no penalty, got %v / %d", enriched.QualityFlags, enriched.QualityPenalty)
	}
}

func TestEnrich_Contradiction(t *testing.T) {
	t.Parallel()

	enriched := testDictionaries().Enrich(titles("x",
		"El ministro DESMIENTE la renuncia",
		"Circula un video falso del puente",
		"El ministro confirma la renuncia",
	))
	want := []bool{true, true, false}
	for i, item := range enriched {
		if item.ContradictionFlag != want[i] {
			t.Fatalf("item %d: got contradiction %v want %v", i, item.ContradictionFlag, want[i])
		}
	}
}

func TestEnrich_TitleEchoDescription(t *testing.T) {
	t.Parallel()

	item := rss.Item{
		Title:       "Corte de luz en el centro",
		Description: "Corte de luz en el centro de la ciudad hasta las 18",
		Link:        "https://diario.example/1",
		Edition:     "corrientes",
	}
	enriched := testDictionaries().Enrich([]rss.Item{item})[0]
	if !reflect.DeepEqual(enriched.QualityFlags, []string{FlagTitleEchoDesc}) {
		t.Fatalf("unexpected flags: %v", enriched.QualityFlags)
	}
	if enriched.QualityPenalty != 10 {
		t.Fatalf("unexpected penalty: %d", enriched.QualityPenalty)
	}
}

func TestEnrich_PowerBranchDrift(t *testing.T) {
	t.Parallel()

	item := rss.Item{
		Title:       "El intendente Polich y el gobernador Valdés",
		Description: "Diputados y senadores debaten el presupuesto",
		Link:        "https://diario.example/1",
		Edition:     EditionCorrientesCapital,
	}
	dict := testDictionaries()
	enriched := dict.Enrich([]rss.Item{item})[0]
	if !reflect.DeepEqual(enriched.QualityFlags, []string{FlagPowerBranchDrift}) {
		t.Fatalf("unexpected flags: %v", enriched.QualityFlags)
	}
	if enriched.QualityPenalty != 15 {
		t.Fatalf("unexpected penalty: %d", enriched.QualityPenalty)
	}

	item.Edition = EditionCorrientesProvincia
	if flags := dict.Enrich([]rss.Item{item})[0].QualityFlags; len(flags) != 0 {
		t.Fatalf("expected drift to apply only to the capital edition, got %v", flags)
	}
}

func TestEnrich_FlagsAccumulate(t *testing.T) {
	t.Parallel()

	item := rss.Item{
		Title:       "Polich y Valdés con diputados",
		Description: "Polich y Valdés con diputados del senado provincial",
		Link:        "https://diario.example/1",
		Edition:     EditionCorrientesCapital,
	}
	enriched := testDictionaries().Enrich([]rss.Item{item})[0]
	want := []string{FlagTitleEchoDesc, FlagPowerBranchDrift}
	if !reflect.DeepEqual(enriched.QualityFlags, want) {
		t.Fatalf("unexpected flags: got %v want %v", enriched.QualityFlags, want)
	}
	if enriched.QualityPenalty != 25 {
		t.Fatalf("unexpected penalty: got %d want 25", enriched.QualityPenalty)
	}
}
