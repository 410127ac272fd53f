package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"academy-cli/internal/content"
	"academy-cli/internal/model"
)

// worldModel is the scrolling world-building page: one section per faction.
type worldModel struct {
	factions []model.Faction
	vp       viewport.Model
	width    int
}

func newWorldModel(factions []model.Faction) worldModel {
	return worldModel{factions: factions, vp: viewport.New(0, 0)}
}

func (w *worldModel) resize(width, height int) {
	// Header takes two rows.
	w.vp.Width = width
	w.vp.Height = max(height-2, 1)
	if width != w.width {
		w.width = width
		w.vp.SetContent(w.document(width))
	}
}

func (w *worldModel) document(width int) string {
	textW := min(width-4, 88)
	var b strings.Builder
	for i, f := range w.factions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(styleTitle().Render(strings.ToUpper(f.Name)))
		b.WriteString("  ")
		b.WriteString(styleMuted().Render(fmt.Sprintf("%s %s %s", f.Alignment, glyphBullet(), model.Or(f.Leader, model.Unknown))))
		b.WriteString("\n")
		if f.Summary != "" {
			b.WriteString(lipgloss.NewStyle().Italic(true).Render(f.Summary))
			b.WriteString("\n")
		}
		if lore := renderMarkdown(f.Lore, textW); lore != "" {
			b.WriteString("\n")
			b.WriteString(lore)
		}
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(b.String())
}

func (w *worldModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "g", "home":
			w.vp.GotoTop()
			return nil
		case "G", "end":
			w.vp.GotoBottom()
			return nil
		}
	}
	var cmd tea.Cmd
	w.vp, cmd = w.vp.Update(msg)
	return cmd
}

func (w worldModel) view(width, height int, c *content.Content) string {
	title := "World"
	if c != nil && c.Site.Title != "" {
		title = c.Site.Title
	}
	pct := fmt.Sprintf("%3.f%%", w.vp.ScrollPercent()*100)
	head := styleTitle().Render(" "+title) + "  " + styleMuted().Render(pct)
	return fitBlock(lipgloss.JoinVertical(lipgloss.Left, head, "", w.vp.View()), width, height)
}
