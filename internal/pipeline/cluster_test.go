package pipeline

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/gonzacha/qsd/internal/rss"
)

func titles(edition string, values ...string) []rss.Item {
	items := make([]rss.Item, len(values))
	for i, value := range values {
		items[i] = rss.Item{Title: value, Link: fmt.Sprintf("https://diario.example/%d", i), Edition: edition}
	}
	return items
}

func TestDisjointSet(t *testing.T) {
	t.Parallel()

	set := newDisjointSet(5)
	set.union(0, 1)
	set.union(3, 4)
	set.union(1, 4)
	if set.find(0) != set.find(3) {
		t.Fatalf("expected 0 and 3 to share a root")
	}
	if set.find(2) == set.find(0) {
		t.Fatalf("expected 2 to stay alone")
	}
}

func TestClusterSizes_Monotonic(t *testing.T) {
	t.Parallel()

	dict := testDictionaries()
	before := dict.ClusterSizes(titles("x",
		"Inflación récord golpea los salarios",
		"Boca gana el superclásico",
	))
	if !reflect.DeepEqual(before, []int{1, 1}) {
		t.Fatalf("unexpected sizes before: %v", before)
	}

	after := dict.ClusterSizes(titles("x",
		"Inflación récord golpea los salarios",
		"Boca gana el superclásico",
		"Inflación récord en marzo según el INDEC",
	))
	if !reflect.DeepEqual(after, []int{2, 1, 2}) {
		t.Fatalf("unexpected sizes after: %v", after)
	}
}

func TestClusterSizes_SingleSharedTokenDoesNotJoin(t *testing.T) {
	t.Parallel()

	sizes := testDictionaries().ClusterSizes(titles("x",
		"Inflación golpea los salarios",
		"Inflación en marzo",
	))
	if !reflect.DeepEqual(sizes, []int{1, 1}) {
		t.Fatalf("unexpected sizes: %v", sizes)
	}
}

func TestClusterSizes_StopwordsAndShortWordsIgnored(t *testing.T) {
	t.Parallel()

	// "para", "sobre" and "google" are stopwords, "ley" is too short.
	sizes := testDictionaries().ClusterSizes(titles("x",
		"Ley para debatir sobre google",
		"Ley para votar sobre google",
	))
	if !reflect.DeepEqual(sizes, []int{1, 1}) {
		t.Fatalf("unexpected sizes: %v", sizes)
	}
}

func TestClusterSizes_RespectsEdition(t *testing.T) {
	t.Parallel()

	items := titles("corrientes_capital", "Inflación récord golpea los salarios", "Inflación récord en marzo")
	items[1].Edition = "corrientes_provincia"
	sizes := testDictionaries().ClusterSizes(items)
	if !reflect.DeepEqual(sizes, []int{1, 1}) {
		t.Fatalf("expected editions to stay apart, got %v", sizes)
	}
}

func TestClusterSizes_TransitiveClosure(t *testing.T) {
	t.Parallel()

	sizes := testDictionaries().ClusterSizes(titles("x",
		"Tormenta eléctrica azota Goya",
		"Goya tormenta deja evacuados",
		"Evacuados Goya regresan hogares",
	))
	if !reflect.DeepEqual(sizes, []int{3, 3, 3}) {
		t.Fatalf("expected one chained cluster, got %v", sizes)
	}
}

func TestClusterSizes_MegaClusterSplit(t *testing.T) {
	t.Parallel()

	values := make([]string, 25)
	for i := range values {
		values[i] = fmt.Sprintf("alfa bravo tema%02d", i/3)
	}
	sizes := testDictionaries().ClusterSizes(titles("x", values...))

	for i := 0; i < 24; i++ {
		if sizes[i] != 3 {
			t.Fatalf("item %d: got cluster size %d want 3 (%v)", i, sizes[i], sizes)
		}
	}
	if sizes[24] != 1 {
		t.Fatalf("expected trailing item alone, got %d", sizes[24])
	}
}

func TestClusterSizes_TwentyIsNotMega(t *testing.T) {
	t.Parallel()

	values := make([]string, 20)
	for i := range values {
		values[i] = fmt.Sprintf("alfa bravo tema%02d", i)
	}
	sizes := testDictionaries().ClusterSizes(titles("x", values...))
	for i, size := range sizes {
		if size != 20 {
			t.Fatalf("item %d: got cluster size %d want 20", i, size)
		}
	}
}

func TestClusterSizes_Deterministic(t *testing.T) {
	t.Parallel()

	values := make([]string, 30)
	for i := range values {
		values[i] = fmt.Sprintf("alfa bravo tema%02d charlie%d", i/4, i%2)
	}
	items := titles("x", values...)
	dict := testDictionaries()
	first := dict.ClusterSizes(items)
	for run := 0; run < 10; run++ {
		if got := dict.ClusterSizes(items); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: sizes changed: %v vs %v", run, got, first)
		}
	}
}

func TestClusterSizes_Empty(t *testing.T) {
	t.Parallel()

	if sizes := testDictionaries().ClusterSizes(nil); len(sizes) != 0 {
		t.Fatalf("expected no sizes, got %v", sizes)
	}
}
