package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// navZone is one clickable span of the navigation bar, in columns.
type navZone struct {
	start, end int
	view       view
	mute       bool
}

func navTab(i int, v view) string { return fmt.Sprintf(" %d %s ", i+1, v.label()) }

// navZones lays out the bar the same way renderNav paints it: a brand, then the tabs,
// then the speaker pinned to the right edge.
func (m appModel) navZones() []navZone {
	x := xansi.StringWidth(m.navBrand()) + 1
	zones := make([]navZone, 0, len(navViews)+1)
	for i, v := range navViews {
		w := xansi.StringWidth(navTab(i, v))
		zones = append(zones, navZone{start: x, end: x + w, view: v})
		x += w
	}
	sp := m.navSpeaker()
	w := max(m.width, 20)
	sw := xansi.StringWidth(sp)
	zones = append(zones, navZone{start: w - sw, end: w, mute: true})
	return zones
}

func (m appModel) navBrand() string { return "D.A." }

func (m appModel) navSpeaker() string {
	muted := m.coord != nil && m.coord.IsMuted()
	return " " + glyphSpeaker(muted) + " "
}

func (m appModel) renderNav() string {
	w := max(m.width, 20)
	left := styleTitle().Render(m.navBrand()) + " "
	for i, v := range navViews {
		tab := navTab(i, v)
		if v == m.view {
			left += lipgloss.NewStyle().Foreground(colorBrass).Background(colorSelected).Bold(true).Render(tab)
		} else {
			left += styleMuted().Render(tab)
		}
	}
	sp := m.navSpeaker()
	gap := w - xansi.StringWidth(left) - xansi.StringWidth(sp)
	if gap < 1 {
		return left
	}
	return left + fmt.Sprintf("%*s", gap, "") + sp
}

// clickNav handles a left click on the navigation row.
func (m *appModel) clickNav(x int) tea.Cmd {
	for _, z := range m.navZones() {
		if x < z.start || x >= z.end {
			continue
		}
		if z.mute {
			m.toggleMute()
			return nil
		}
		return m.setView(z.view)
	}
	return nil
}
