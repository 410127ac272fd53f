package tui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"academy-cli/internal/catalog"
	"academy-cli/internal/model"
)

// Character screen rows, relative to bodyTop.
const (
	charTabsRow = 0
	charListRow = 3
)

type charactersModel struct {
	browser  *catalog.Browser[model.Character]
	variants int

	list      list.Model
	search    textinput.Model
	searching bool

	image imageState

	// tabRects are the filter tabs' click zones from the last layout.
	tabRects []tabRect
}

func newCharactersModel(chars []model.Character, variants int) charactersModel {
	if variants < 1 {
		variants = 1
	}
	l := list.New(nil, newCardDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search by name"
	ti.CharLimit = 64

	c := charactersModel{
		browser:  catalog.NewBrowser(chars, variants),
		variants: variants,
		list:     l,
		search:   ti,
	}
	c.refresh()
	return c
}

// refresh rebuilds the card list from the active filter and the search query.
func (c *charactersModel) refresh() {
	visible := catalog.Search(c.browser.Visible(), c.search.Value())
	items := make([]list.Item, 0, len(visible))
	for _, ch := range visible {
		items = append(items, characterItem{ch: ch})
	}
	c.list.SetItems(items)
	if c.list.Index() >= len(items) {
		c.list.Select(max(len(items)-1, 0))
	}
}

func (c *charactersModel) resize(width, height int) {
	c.list.SetSize(width, max(height-charListRow, 1))
	c.search.Width = max(width-6, 10)
	c.layoutTabs()
}

func (c *charactersModel) layoutTabs() {
	c.tabRects = layoutTabs(c.browser.Categories(), bodyTop+charTabsRow)
}

func (c charactersModel) hint() string {
	switch {
	case c.searching:
		return "type to search  enter/esc: done"
	case c.browser.HasSelection():
		return "space/click image: next file  o: open  esc/click outside: close"
	default:
		return "tab: filter  /: search  enter: open file"
	}
}

func (c *charactersModel) applyProbe(msg imageProbedMsg) {
	c.image.apply(msg)
}

func (c *charactersModel) cycleFilter(delta int) {
	_ = c.browser.SetFilter(nextCategory(c.browser.Categories(), c.browser.ActiveCategory(), delta))
	c.refresh()
}

// open selects id and starts probing variant 1.
func (m *appModel) openCharacter(id string) tea.Cmd {
	if err := m.chars.browser.Select(id); err != nil {
		m.log.Warn("select character failed", slog.Any("error", err))
		return nil
	}
	return m.showCharacterImage()
}

func (m *appModel) showCharacterImage() tea.Cmd {
	ch, ok := m.chars.browser.Selected()
	if !ok {
		return nil
	}
	variant := m.chars.browser.VariantIndex()
	u, err := m.resolver.URL(ch.ID, variant)
	if err != nil {
		m.chars.image.reset(ch.ID, variant, m.resolver.Placeholder)
		m.chars.image.err = err
		m.chars.image.checked = true
		return nil
	}
	m.chars.image.reset(ch.ID, variant, u)
	return m.probeImage(viewCharacters, ch.ID, variant, u)
}

func (m *appModel) updateCharacters(msg tea.Msg) tea.Cmd {
	c := &m.chars
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if c.searching {
			switch msg.Type {
			case tea.KeyEnter, tea.KeyEsc:
				c.searching = false
				c.search.Blur()
				return nil
			}
			var cmd tea.Cmd
			c.search, cmd = c.search.Update(msg)
			c.refresh()
			return cmd
		}

		if c.browser.HasSelection() {
			switch msg.String() {
			case "esc", "backspace":
				c.browser.Dismiss()
			case " ", "right", "l":
				c.browser.CycleVariant()
				return m.showCharacterImage()
			case "o":
				return m.openExternal(c.image.shown)
			}
			return nil
		}

		switch msg.String() {
		case "/":
			c.searching = true
			return c.search.Focus()
		case "esc":
			if c.search.Value() != "" {
				c.search.SetValue("")
				c.refresh()
			}
			return nil
		case "tab":
			c.cycleFilter(1)
			return nil
		case "shift+tab":
			c.cycleFilter(-1)
			return nil
		case "enter":
			if it, ok := c.list.SelectedItem().(characterItem); ok {
				return m.openCharacter(it.ch.ID)
			}
			return nil
		}
		var cmd tea.Cmd
		c.list, cmd = c.list.Update(msg)
		return cmd

	case tea.MouseMsg:
		return m.clickCharacters(msg)
	}
	return nil
}

func (m *appModel) clickCharacters(msg tea.MouseMsg) tea.Cmd {
	c := &m.chars
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if !c.browser.HasSelection() {
			c.list.CursorUp()
		}
		return nil
	case tea.MouseButtonWheelDown:
		if !c.browser.HasSelection() {
			c.list.CursorDown()
		}
		return nil
	case tea.MouseButtonLeft:
	default:
		return nil
	}

	if c.browser.HasSelection() {
		lay := overlayLayout(max(m.width, 20), m.bodyHeight())
		res := c.browser.Click(lay.HitTest(msg.X, msg.Y))
		if res.Consumed && res.Variant != c.image.variant {
			return m.showCharacterImage()
		}
		return nil
	}

	if cat, ok := tabAt(c.tabRects, msg.X, msg.Y); ok {
		_ = c.browser.SetFilter(cat)
		c.refresh()
		return nil
	}

	if idx, ok := c.cardAt(msg.Y); ok {
		c.list.Select(idx)
		if it, ok := c.list.SelectedItem().(characterItem); ok {
			return m.openCharacter(it.ch.ID)
		}
	}
	return nil
}

// cardAt maps a screen row to a list index on the current page.
func (c charactersModel) cardAt(y int) (int, bool) {
	rel := y - (bodyTop + charListRow)
	if rel < 0 {
		return 0, false
	}
	per := cardHeight + cardSpacing
	if rel%per >= cardHeight {
		return 0, false
	}
	start, end := c.list.Paginator.GetSliceBounds(len(c.list.Items()))
	idx := start + rel/per
	if idx >= end {
		return 0, false
	}
	return idx, true
}

func (m appModel) viewCharacters(w, h int) string {
	c := m.chars

	tabs := renderTabs(c.tabRects, c.browser.ActiveCategory())

	var search string
	switch {
	case c.searching || c.search.Value() != "":
		search = c.search.View()
	default:
		search = styleMuted().Render(fmt.Sprintf("%d files", len(c.list.Items())))
	}

	listView := c.list.View()
	if len(c.list.Items()) == 0 {
		listView = styleMuted().Render("  No matching files.")
	}

	body := fitBlock(lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		" "+search,
		"",
		listView,
	), w, h)

	ch, ok := c.browser.Selected()
	if !ok {
		return body
	}
	return renderOverlay(body, overlayLayout(w, h), c.image, c.variants, overlayDetail{
		kicker: "REF: " + ch.ID,
		title:  ch.Name,
		attrs:  ch.Attributes(),
		hint:   "o: open image  esc: close",
	})
}
