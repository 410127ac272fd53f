package tui

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"academy-cli/internal/catalog"
	"academy-cli/internal/model"
)

// Map screen layout, relative to bodyTop: a tab row, a gap, then the board beside a
// side panel.
const (
	mapTabsRow  = 0
	mapBoardRow = 2
	mapSideW    = 30
)

type pin struct {
	loc  model.Location
	rect catalog.Rect
}

type mapModel struct {
	browser *catalog.Browser[model.Location]
	focus   int
	image   imageState

	width, height int
	tabRects      []tabRect
	pins          []pin
}

func newMapModel(locs []model.Location) mapModel {
	// Locations carry a single image.
	return mapModel{browser: catalog.NewBrowser(locs, 1)}
}

func (a *mapModel) resize(width, height int) {
	a.width, a.height = width, height
	a.tabRects = layoutTabs(a.browser.Categories(), bodyTop+mapTabsRow)
	a.layoutPins()
}

func (a *mapModel) refresh() {
	a.focus = 0
	a.layoutPins()
}

// boardSize is the pin area in cells.
func (a mapModel) boardSize() (int, int) {
	w := a.width - mapSideW - 1
	if w < 20 {
		w = a.width
	}
	return max(w, 1), max(a.height-mapBoardRow, 1)
}

// layoutPins places each visible location by its percentage coordinates. A pin's click
// zone covers its glyph and its label.
func (a *mapModel) layoutPins() {
	bw, bh := a.boardSize()
	visible := a.browser.Visible()
	a.pins = a.pins[:0]
	for _, loc := range visible {
		col := int(math.Round(loc.X / 100 * float64(bw-1)))
		row := int(math.Round(loc.Y / 100 * float64(bh-1)))
		w := min(1+1+xansi.StringWidth(loc.Name), bw-col)
		a.pins = append(a.pins, pin{
			loc:  loc,
			rect: catalog.Rect{X: col, Y: bodyTop + mapBoardRow + row, W: max(w, 1), H: 1},
		})
	}
	if a.focus >= len(a.pins) {
		a.focus = max(len(a.pins)-1, 0)
	}
}

func (a *mapModel) applyProbe(msg imageProbedMsg) {
	a.image.apply(msg)
}

func (a mapModel) focused() (model.Location, bool) {
	if a.focus < 0 || a.focus >= len(a.pins) {
		return model.Location{}, false
	}
	return a.pins[a.focus].loc, true
}

func (m *appModel) openLocation(id string) tea.Cmd {
	a := &m.atlas
	if err := a.browser.Select(id); err != nil {
		m.log.Warn("select location failed", slog.Any("error", err))
		return nil
	}
	loc, _ := a.browser.Selected()
	u := strings.TrimSpace(loc.ImageURL)
	if u == "" {
		a.image.reset(loc.ID, 1, m.resolver.Placeholder)
		a.image.checked = true
		return nil
	}
	a.image.reset(loc.ID, a.browser.VariantIndex(), u)
	return m.probeImage(viewMap, loc.ID, a.image.variant, u)
}

func (m *appModel) updateMap(msg tea.Msg) tea.Cmd {
	a := &m.atlas
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.browser.HasSelection() {
			switch msg.String() {
			case "esc", "backspace":
				a.browser.Dismiss()
			case " ":
				a.browser.CycleVariant()
			case "o":
				return m.openExternal(a.image.shown)
			}
			return nil
		}
		switch msg.String() {
		case "right", "l", "down", "j":
			if len(a.pins) > 0 {
				a.focus = (a.focus + 1) % len(a.pins)
			}
		case "left", "h", "up", "k":
			if len(a.pins) > 0 {
				a.focus = (a.focus - 1 + len(a.pins)) % len(a.pins)
			}
		case "tab":
			_ = a.browser.SetFilter(nextCategory(a.browser.Categories(), a.browser.ActiveCategory(), 1))
			a.refresh()
		case "shift+tab":
			_ = a.browser.SetFilter(nextCategory(a.browser.Categories(), a.browser.ActiveCategory(), -1))
			a.refresh()
		case "enter":
			if loc, ok := a.focused(); ok {
				return m.openLocation(loc.ID)
			}
		}
		return nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		if a.browser.HasSelection() {
			a.browser.Click(overlayLayout(max(m.width, 20), m.bodyHeight()).HitTest(msg.X, msg.Y))
			return nil
		}
		if cat, ok := tabAt(a.tabRects, msg.X, msg.Y); ok {
			_ = a.browser.SetFilter(cat)
			a.refresh()
			return nil
		}
		for i, p := range a.pins {
			if p.rect.Contains(msg.X, msg.Y) {
				a.focus = i
				return m.openLocation(p.loc.ID)
			}
		}
	}
	return nil
}

func pinColor(t model.LocationType) lipgloss.TerminalColor {
	switch t {
	case model.LocationAcademy:
		return colorPinAcademy
	case model.LocationHQ:
		return colorPinHQ
	case model.LocationDanger:
		return colorPinDanger
	default:
		return colorPinCity
	}
}

func (a mapModel) renderBoard() string {
	bw, bh := a.boardSize()
	grid := make([]string, bh)
	dot := styleMuted().Render(strings.Repeat("·", bw))
	if glyphs() == glyphSetASCII {
		dot = styleMuted().Render(strings.Repeat(".", bw))
	}
	for i := range grid {
		if i%2 == 0 {
			grid[i] = dot
		} else {
			grid[i] = strings.Repeat(" ", bw)
		}
	}
	board := strings.Join(grid, "\n")

	for i, p := range a.pins {
		g := glyphPin()
		label := p.loc.Name
		st := lipgloss.NewStyle().Foreground(pinColor(p.loc.Type))
		if i == a.focus {
			g = glyphPinFocus()
			st = st.Bold(true).Background(colorSelected)
		}
		cell := st.Render(xansi.Truncate(g+" "+label, p.rect.W, ""))
		board = overlayAt(board, cell, p.rect.X, p.rect.Y-bodyTop-mapBoardRow)
	}
	return board
}

func (a mapModel) renderSide(h int) string {
	loc, ok := a.focused()
	if !ok {
		return styleMuted().Render("No locations.")
	}
	var b strings.Builder
	b.WriteString(styleMuted().Render(strings.ToUpper(string(loc.Type))))
	b.WriteString("\n")
	b.WriteString(styleTitle().Render(loc.Name))
	if loc.KorName != "" {
		b.WriteString("\n")
		b.WriteString(loc.KorName)
	}
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(fmt.Sprintf("%.0f%%, %.0f%%", loc.X, loc.Y)))
	b.WriteString("\n\n")
	b.WriteString(wrapText(loc.Description, mapSideW-2))
	return fitBlock(b.String(), mapSideW, h)
}

func (m appModel) viewMap(w, h int) string {
	a := m.atlas
	bw, bh := a.boardSize()
	board := fitBlock(a.renderBoard(), bw, bh)
	if bw < w {
		board = lipgloss.JoinHorizontal(lipgloss.Top, board, " ", a.renderSide(bh))
	}
	body := fitBlock(lipgloss.JoinVertical(lipgloss.Left,
		renderTabs(a.tabRects, a.browser.ActiveCategory()),
		"",
		board,
	), w, h)

	loc, ok := a.browser.Selected()
	if !ok {
		return body
	}
	return renderOverlay(body, overlayLayout(w, h), a.image, 1, overlayDetail{
		kicker: strings.ToUpper(string(loc.Type)),
		title:  loc.Name,
		attrs:  loc.Attributes(),
		hint:   "o: open image  esc: close",
	})
}
