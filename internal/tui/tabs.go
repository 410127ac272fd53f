package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"academy-cli/internal/catalog"
)

// tabRect is one filter tab's click zone.
type tabRect struct {
	category string
	rect     catalog.Rect
}

func tabLabel(cat string) string { return "[" + cat + "]" }

// layoutTabs places tabs on screen row y, starting one column in, one space apart.
func layoutTabs(cats []string, y int) []tabRect {
	out := make([]tabRect, 0, len(cats))
	x := 1
	for _, cat := range cats {
		w := xansi.StringWidth(tabLabel(cat))
		out = append(out, tabRect{category: cat, rect: catalog.Rect{X: x, Y: y, W: w, H: 1}})
		x += w + 1
	}
	return out
}

// renderTabs paints tabs to match layoutTabs, including the leading column.
func renderTabs(tabs []tabRect, active string) string {
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.category == active {
			parts = append(parts, styleTitle().Render(tabLabel(t.category)))
		} else {
			parts = append(parts, styleMuted().Render(tabLabel(t.category)))
		}
	}
	return " " + strings.Join(parts, " ")
}

func tabAt(tabs []tabRect, x, y int) (string, bool) {
	for _, t := range tabs {
		if t.rect.Contains(x, y) {
			return t.category, true
		}
	}
	return "", false
}

func nextCategory(cats []string, active string, delta int) string {
	if len(cats) == 0 {
		return active
	}
	cur := 0
	for i, c := range cats {
		if c == active {
			cur = i
			break
		}
	}
	return cats[((cur+delta)%len(cats)+len(cats))%len(cats)]
}
