package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type scored[T Item] struct {
	item  T
	score float64
	pos   int
}

// Search ranks items by how well their display name matches query: exact, then prefix,
// then substring, then typo-tolerant (Levenshtein) matches on any word of the name.
// Ties keep the original order. An empty query returns every item unchanged.
func Search[T Item](items []T, query string) []T {
	q := foldText(query)
	if q == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	results := make([]scored[T], 0, len(items))
	for i, it := range items {
		name := foldText(it.DisplayName())
		if s, ok := matchScore(name, q); ok {
			results = append(results, scored[T]{item: it, score: s, pos: i})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].pos < results[j].pos
		}
		return results[i].score > results[j].score
	})

	out := make([]T, 0, len(results))
	for _, r := range results {
		out = append(out, r.item)
	}
	return out
}

func matchScore(name, q string) (float64, bool) {
	switch {
	case name == q:
		return 1.0, true
	case strings.HasPrefix(name, q):
		return 0.9, true
	case strings.Contains(name, q):
		return 0.8, true
	}
	best := -1
	for _, word := range strings.Fields(name) {
		d := levenshtein.ComputeDistance(q, word)
		if d > typoLimit(len([]rune(word))) {
			continue
		}
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0, false
	}
	return 0.7 - 0.1*float64(best), true
}

func typoLimit(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}

// foldText makes names comparable: NFC so composed and decomposed Hangul match, then
// Unicode case folding.
func foldText(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	return cases.Fold().String(s)
}
