package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/gonzacha/qsd/internal/rss"
)

const (
	minClusterTokenRunes = 4
	pairSharedTokens     = 2
	megaClusterSize      = 20
	megaSharedTokens     = 3
)

// disjointSet is an array-backed union-find with path halving. It lives for
// one clustering call.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent}
}

func (d *disjointSet) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *disjointSet) union(x, y int) {
	px, py := d.find(x), d.find(y)
	if px != py {
		d.parent[px] = py
	}
}

// clusterTokens returns the significant words of a title: lower-cased,
// at least four characters, not a cluster stopword.
func (d *Dictionaries) clusterTokens(title string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(title)) {
		if utf8.RuneCountInString(word) < minClusterTokenRunes {
			continue
		}
		if _, stop := d.clusterStopwords[word]; stop {
			continue
		}
		tokens[word] = struct{}{}
	}
	return tokens
}

// sharesAtLeast counts common tokens and stops as soon as threshold is met.
func sharesAtLeast(a, b map[string]struct{}, threshold int) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	shared := 0
	for token := range a {
		if _, ok := b[token]; ok {
			shared++
			if shared >= threshold {
				return true
			}
		}
	}
	return false
}

// ClusterSizes groups items that report the same story and returns, per
// item, the size of its cluster. Items join when their titles share two
// significant tokens and they belong to the same edition. Any cluster that
// grows past twenty members is regrouped internally with a stricter
// three-token rule, which breaks up clusters held together by one generic
// topic. The result depends only on the input order.
func (d *Dictionaries) ClusterSizes(items []rss.Item) []int {
	n := len(items)
	sets := make([]map[string]struct{}, n)
	for i, item := range items {
		sets[i] = d.clusterTokens(item.Title)
	}
	sameEdition := func(i, j int) bool { return items[i].Edition == items[j].Edition }

	set := newDisjointSet(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sameEdition(i, j) && sharesAtLeast(sets[i], sets[j], pairSharedTokens) {
				set.union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	roots := make([]int, 0)
	for i := 0; i < n; i++ {
		root := set.find(i)
		if _, exists := groups[root]; !exists {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], i)
	}

	for _, root := range roots {
		members := groups[root]
		if len(members) <= megaClusterSize {
			continue
		}
		local := newDisjointSet(n)
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				i, j := members[a], members[b]
				if sameEdition(i, j) && sharesAtLeast(sets[i], sets[j], megaSharedTokens) {
					local.union(i, j)
				}
			}
		}
		for _, i := range members {
			set.parent[i] = local.find(i)
		}
	}

	counts := make(map[int]int, n)
	final := make([]int, n)
	for i := 0; i < n; i++ {
		final[i] = set.find(i)
		counts[final[i]]++
	}
	sizes := make([]int, n)
	for i, root := range final {
		sizes[i] = counts[root]
	}
	return sizes
}
