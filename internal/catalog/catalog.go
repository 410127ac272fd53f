// Package catalog implements the filter / select / detail-overlay pattern shared by the
// character registry and the map.
//
// Nothing here knows how items are painted. Callers feed it clicks (already hit-tested
// against the overlay) and read back the visible slice and the current selection.
package catalog

import (
	"errors"
	"strings"
)

// AllCategory is the filter that passes every item.
const AllCategory = "All"

var (
	ErrUnknownCategory = errors.New("catalog: unknown category")
	ErrUnknownItem     = errors.New("catalog: unknown item")
)

// Item is the read-only view of a content record the browser needs.
type Item interface {
	ItemID() string
	DisplayName() string
	Category() string
}

// PrimaryCategory returns the text before the first "(" of a compound label, trimmed.
// "Demonico (Inspector)" -> "Demonico".
func PrimaryCategory(category string) string {
	if i := strings.Index(category, "("); i >= 0 {
		category = category[:i]
	}
	return strings.TrimSpace(category)
}

// Categories returns "All" followed by each distinct primary category in first-seen order.
// Items whose primary segment is empty contribute nothing.
func Categories[T Item](items []T) []string {
	out := []string{AllCategory}
	seen := map[string]bool{AllCategory: true}
	for _, it := range items {
		c := PrimaryCategory(it.Category())
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Filter returns the items passing the active category, in original order.
//
// "All" passes everything. Any other value matches as a substring of the full category
// field, so "Faction" also passes "Faction (elite)". The input slice is never modified.
func Filter[T Item](items []T, active string) []T {
	out := make([]T, 0, len(items))
	if active == AllCategory {
		return append(out, items...)
	}
	for _, it := range items {
		if strings.Contains(it.Category(), active) {
			out = append(out, it)
		}
	}
	return out
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
