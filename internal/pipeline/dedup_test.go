package pipeline

import (
	"reflect"
	"testing"

	"github.com/gonzacha/qsd/internal/rss"
)

func itemTitle(item rss.Item) string { return item.Title }

func TestDeduplicate_FirstSeenWins(t *testing.T) {
	t.Parallel()

	items := titles("x",
		"Gobierno anuncia nueva ley de presupuesto",
		"El gobierno anunció la nueva ley de presupuesto nacional",
		"Boca venció a River en el Monumental",
	)
	got := Deduplicate(items, itemTitle)
	if len(got) != 2 {
		t.Fatalf("unexpected dedup size: got %d want 2 (%+v)", len(got), got)
	}
	if got[0].Title != items[0].Title || got[1].Title != items[2].Title {
		t.Fatalf("unexpected survivors: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestDeduplicate_BelowThresholdKept(t *testing.T) {
	t.Parallel()

	// Two shared words out of four is 0.5, under the 0.55 ceiling.
	items := titles("x",
		"Tormenta azota Goya hoy anoche",
		"Tormenta azota Mercedes granizo",
	)
	if got := Deduplicate(items, itemTitle); len(got) != 2 {
		t.Fatalf("expected both items kept, got %d", len(got))
	}
}

func TestDeduplicate_DropsTitlesWithoutLongWords(t *testing.T) {
	t.Parallel()

	items := titles("x", "Ya se va", "¡Qué día!", "Boca venció a River en el Monumental")
	got := Deduplicate(items, itemTitle)
	if len(got) != 1 || got[0].Title != "Boca venció a River en el Monumental" {
		t.Fatalf("unexpected dedup output: %+v", got)
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	t.Parallel()

	items := titles("x",
		"Gobierno anuncia nueva ley de presupuesto",
		"El gobierno anunció la nueva ley de presupuesto nacional",
		"Boca venció a River en el Monumental",
		"River perdió con Boca en el Monumental",
		"Paro docente jornada lunes",
		"Paro docente jornada martes",
		"Sin clases",
	)
	once := Deduplicate(items, itemTitle)
	twice := Deduplicate(once, itemTitle)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedup is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDeduplicate_WorksOnEnrichedItems(t *testing.T) {
	t.Parallel()

	enriched := testDictionaries().Enrich(titles("x",
		"Gobierno anuncia nueva ley de presupuesto",
		"El gobierno anunció la nueva ley de presupuesto nacional",
	))
	got := Deduplicate(enriched, func(item EnrichedItem) string { return item.Title })
	if len(got) != 1 {
		t.Fatalf("unexpected dedup size: %d", len(got))
	}
	// The survivor keeps the cluster size measured before dedup.
	if got[0].SourcesCount != 2 {
		t.Fatalf("expected sources_count 2 after dedup, got %d", got[0].SourcesCount)
	}
}
