package tui

import (
        "fmt"
        "io"
        "strings"

        "github.com/charmbracelet/bubbles/list"
        tea "github.com/charmbracelet/bubbletea"
        "github.com/charmbracelet/lipgloss"
        xansi "github.com/charmbracelet/x/ansi"

        "academy-cli/internal/catalog"
        "academy-cli/internal/model"
)

// characterItem adapts a character to bubbles/list.
type characterItem struct {
        ch model.Character
}

func (i characterItem) FilterValue() string { return i.ch.Name }
func (i characterItem) Title() string       { return i.ch.Name }

// Description is the card's second line: primary affiliation and role.
func (i characterItem) Description() string {
        return fmt.Sprintf("AFF: %s  ROLE: %s",
                model.Or(catalog.PrimaryCategory(i.ch.Affiliation), model.NotAvailable),
                model.Or(i.ch.Role, model.NotAvailable))
}

// cardDelegate renders one two-line "file card" per item.
type cardDelegate struct {
        normal   lipgloss.Style
        selected lipgloss.Style
        meta     lipgloss.Style
}

func newCardDelegate() cardDelegate {
        return cardDelegate{
                normal:   lipgloss.NewStyle(),
                selected: lipgloss.NewStyle().Background(colorSelected).Bold(true),
                meta:     styleMuted(),
        }
}

const (
        cardHeight  = 2
        cardSpacing = 1
)

func (d cardDelegate) Height() int                             { return cardHeight }
func (d cardDelegate) Spacing() int                            { return cardSpacing }
func (d cardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
        width := m.Width()
        if width < 4 {
                return
        }
        it, ok := item.(characterItem)
        if !ok {
                return
        }
        ref := styleMuted().Render("REF: " + it.ch.ID)
        title := it.Title()
        gap := width - xansi.StringWidth(title) - xansi.StringWidth(ref) - 2
        line1 := "  " + title
        if gap > 0 {
                line1 += strings.Repeat(" ", gap) + ref
        }
        line2 := "  " + d.meta.Render(it.Description())

        style := d.normal
        if index == m.Index() {
                style = d.selected
                line1 = styleTitle().Render(glyphNext()) + line1[1:]
        }
        fmt.Fprint(w, style.Render(fitLine(line1, width))+"\n"+style.Render(fitLine(line2, width)))
}
