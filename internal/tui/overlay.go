package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"academy-cli/internal/catalog"
	"academy-cli/internal/model"
)

// imageState is the image shown in an open detail overlay.
type imageState struct {
	id      string
	variant int
	url     string
	shown   string
	checked bool
	err     error
}

// imageProbedMsg reports a finished probe. Results for anything but the current
// (id, variant) are stale and dropped.
type imageProbedMsg struct {
	owner   view
	id      string
	variant int
	url     string
	shown   string
	err     error
}

func (s *imageState) reset(id string, variant int, u string) {
	*s = imageState{id: id, variant: variant, url: u, shown: u}
}

func (s *imageState) apply(msg imageProbedMsg) bool {
	if msg.id != s.id || msg.variant != s.variant || msg.url != s.url {
		return false
	}
	s.shown = msg.shown
	s.err = msg.err
	s.checked = true
	return true
}

func (m *appModel) probeImage(owner view, id string, variant int, u string) tea.Cmd {
	if u == "" {
		return nil
	}
	ctx, r, p := m.ctx, m.resolver, m.prober
	return func() tea.Msg {
		shown, err := r.Resolve(ctx, p, u)
		return imageProbedMsg{owner: owner, id: id, variant: variant, url: u, shown: shown, err: err}
	}
}

const imagePaneWidth = 26

// overlayLayout centers the detail box in the body. Rects are in screen cells.
func overlayLayout(width, bodyH int) catalog.OverlayLayout {
	w := min(width-4, 72)
	h := min(bodyH-2, 20)
	if w < 20 || h < 6 {
		w, h = max(width, 1), max(bodyH, 1)
	}
	x := (width - w) / 2
	y := bodyTop + (bodyH-h)/2
	imgW := min(imagePaneWidth, (w-2)/2)
	return catalog.OverlayLayout{
		Content: catalog.Rect{X: x, Y: y, W: w, H: h},
		Image:   catalog.Rect{X: x + 1, Y: y + 1, W: imgW, H: h - 2},
	}
}

// overlayDetail is what the right-hand pane of the overlay shows.
type overlayDetail struct {
	kicker string
	title  string
	attrs  []model.Attribute
	hint   string
}

// renderOverlay paints the detail box over body (which starts at screen row bodyTop).
func renderOverlay(body string, lay catalog.OverlayLayout, img imageState, variants int, d overlayDetail) string {
	innerW, innerH := lay.Content.W-2, lay.Content.H-2
	if innerW <= 0 || innerH <= 0 {
		return body
	}
	imgW := lay.Image.W
	textW := max(innerW-imgW-1, 1)

	left := fitBlock(renderImagePane(img, variants, imgW, innerH), imgW, innerH)
	sep := styleMuted().Render(strings.Repeat("│\n", innerH-1) + "│")
	right := fitBlock(renderDetailPane(d, textW), textW, innerH)

	inner := lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Render(inner)
	return overlayAt(body, box, lay.Content.X, lay.Content.Y-bodyTop)
}

func renderImagePane(img imageState, variants, w, h int) string {
	label := fmt.Sprintf("FILE %d/%d", img.variant, max(variants, 1))
	var status string
	switch {
	case img.err != nil:
		status = styleStamp().Render("NO FILE")
	case img.checked:
		status = styleTitle().Render("ON FILE")
	default:
		status = styleMuted().Render("checking…")
	}
	lines := []string{
		styleMuted().Render(label),
		"",
		lipgloss.PlaceHorizontal(w, lipgloss.Center, glyphPinFocus()),
		"",
		status,
		"",
		styleMuted().Render(wrapText(img.shown, max(w, 4))),
	}
	if variants > 1 {
		lines = append(lines, "", styleMuted().Render("click / space: next"))
	}
	return stylePaper().Render(fitBlock(strings.Join(lines, "\n"), w, h))
}

func renderDetailPane(d overlayDetail, w int) string {
	var b strings.Builder
	if d.kicker != "" {
		b.WriteString(styleMuted().Render(d.kicker))
		b.WriteString("\n")
	}
	b.WriteString(styleTitle().Render(d.title))
	b.WriteString("\n\n")
	for _, a := range d.attrs {
		b.WriteString(styleMuted().Render(strings.ToUpper(a.Label)))
		b.WriteString("\n")
		b.WriteString(wrapText(a.Value, max(w, 4)))
		b.WriteString("\n")
	}
	if d.hint != "" {
		b.WriteString("\n")
		b.WriteString(styleMuted().Render(d.hint))
	}
	return b.String()
}

func wrapText(s string, w int) string {
	return lipgloss.NewStyle().Width(w).Render(s)
}
