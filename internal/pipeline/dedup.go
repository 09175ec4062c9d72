package pipeline

const (
	minDedupWordLen     = 4
	dedupOverlapCeiling = 0.55
)

// Deduplicate keeps the first of every group of near-identical titles.
// Two titles are near-identical when their shared words cover more than
// 55% of the smaller word set. Items whose title has no word of four or
// more letters are dropped. Cluster sizes computed earlier are untouched.
func Deduplicate[T any](items []T, titleOf func(T) string) []T {
	kept := make([]map[string]struct{}, 0, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		words := wordSet(titleOf(item), minDedupWordLen)
		if len(words) == 0 {
			continue
		}
		duplicate := false
		for _, seen := range kept {
			if overlap(words, seen) > dedupOverlapCeiling {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, words)
		out = append(out, item)
	}
	return out
}

func overlap(a, b map[string]struct{}) float64 {
	smaller := min(len(a), len(b))
	if smaller == 0 {
		return 0
	}
	shared := 0
	for word := range a {
		if _, ok := b[word]; ok {
			shared++
		}
	}
	return float64(shared) / float64(smaller)
}
