package pipeline

import (
	"reflect"
	"testing"
)

func TestTrending(t *testing.T) {
	t.Parallel()

	items := titles("x",
		"Milei viaja a Estados Unidos",
		"Milei Milei recibe a Estados Unidos en 2026",
		"Boca gana, Milei opina",
		"Estados de alerta en 2026",
		"Según el gobierno, para todos",
		"Según el gobierno, para nadie",
	)
	got := testDictionaries().Trending(items, 0)
	want := []TrendingWord{
		{Word: "milei", Count: 3},
		{Word: "estados", Count: 3},
		{Word: "unidos", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected trending words:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestTrending_KeepsAccentsAndCaps(t *testing.T) {
	t.Parallel()

	items := titles("x",
		"Inflación: alerta uno alfa",
		"Inflación alerta dos bravo",
		"inflación alerta tres charlie",
	)
	got := testDictionaries().Trending(items, 1)
	want := []TrendingWord{{Word: "inflación", Count: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected trending words: %+v", got)
	}
}

func TestTrending_Empty(t *testing.T) {
	t.Parallel()

	got := testDictionaries().Trending(nil, 12)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty non-nil list, got %#v", got)
	}
}
