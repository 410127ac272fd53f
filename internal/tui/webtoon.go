package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"academy-cli/internal/model"
)

// webtoonModel pages through the episode images one at a time.
type webtoonModel struct {
	episodes []model.Episode
	page     int
	width    int
	height   int
}

func newWebtoonModel(episodes []model.Episode) webtoonModel {
	return webtoonModel{episodes: episodes}
}

// setPage clamps p into the episode range.
func (t *webtoonModel) setPage(p int) {
	if len(t.episodes) == 0 {
		t.page = 0
		return
	}
	t.page = min(max(p, 0), len(t.episodes)-1)
}

func (t *webtoonModel) resize(width, height int) {
	t.width, t.height = width, height
}

func (m *appModel) updateWebtoon(msg tea.Msg) tea.Cmd {
	t := &m.webtoon
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "down", "j", "right", "l", "pgdown", " ":
			t.setPage(t.page + 1)
		case "up", "k", "left", "h", "pgup":
			t.setPage(t.page - 1)
		case "o", "enter":
			if len(t.episodes) > 0 {
				return m.openExternal(t.episodes[t.page].ImageURL)
			}
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			t.setPage(t.page + 1)
		case tea.MouseButtonWheelUp:
			t.setPage(t.page - 1)
		}
	}
	return nil
}

func (t webtoonModel) view(w, h int) string {
	if len(t.episodes) == 0 {
		return styleMuted().Render(" No episodes yet.")
	}
	ep := t.episodes[t.page]
	title := fmt.Sprintf("EPISODE %d", ep.Number)
	if ep.Title != "" {
		title += "  " + ep.Title
	}

	dots := make([]string, len(t.episodes))
	for i := range t.episodes {
		if i == t.page {
			dots[i] = styleTitle().Render(glyphPinFocus())
		} else {
			dots[i] = styleMuted().Render(glyphBullet())
		}
	}

	frameW := min(w-4, 60)
	frame := stylePaper().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		Width(frameW).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			styleTitle().Render(title),
			"",
			wrapText(ep.ImageURL, max(frameW-6, 10)),
		))

	nav := styleMuted().Render(fmt.Sprintf("%s page %d/%d %s", glyphPrev(), t.page+1, len(t.episodes), glyphNext()))
	block := lipgloss.JoinVertical(lipgloss.Center, frame, "", strings.Join(dots, " "), nav)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, block)
}
