package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"academy-cli/internal/catalog"
	"academy-cli/internal/onboarding"
	"academy-cli/internal/session"
)

const openingFrame = 100 * time.Millisecond

type revealTimerMsg struct{ token uint64 }

// openingFrameMsg animates the rule drawn during Opening. token ties it to one reveal.
type openingFrameMsg struct{ token uint64 }

type entranceModel struct {
	machine onboarding.Machine
	st      onboarding.State
	frame   int

	// enterRect is where the ACADEMY ENTRY button was drawn (screen cells).
	enterRect catalog.Rect
}

func newEntranceModel(machine onboarding.Machine, visited bool) entranceModel {
	return entranceModel{machine: machine, st: onboarding.Init(visited)}
}

// remount starts a new sequencer lifetime. The token keeps counting so fires from an
// earlier lifetime can never match.
func (e *entranceModel) remount(visited bool) {
	tok := e.st.Token
	e.st = onboarding.Init(visited)
	e.st.Token = tok
	e.frame = 0
}

func (e *entranceModel) advanceFrame(msg openingFrameMsg) tea.Cmd {
	if e.st.Stage != onboarding.StageOpening || msg.token != e.st.Token {
		return nil
	}
	e.frame++
	return tickOpening(msg.token)
}

func tickOpening(token uint64) tea.Cmd {
	return tea.Tick(openingFrame, func(time.Time) tea.Msg { return openingFrameMsg{token: token} })
}

func (e entranceModel) hint() string {
	switch e.st.Stage {
	case onboarding.StageClick:
		return "click or press any key to begin"
	case onboarding.StageOpening:
		return ""
	default:
		return "enter: academy entry"
	}
}

func (m *appModel) updateEntrance(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.entrance.st.Stage == onboarding.StageMain && msg.Type == tea.KeyEnter {
			return m.dispatchEntrance(onboarding.EnterEvent{})
		}
		return m.dispatchEntrance(onboarding.GestureEvent{Kind: onboarding.GestureKey})

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		// The entry button never counts as a gesture.
		m.layoutEntrance()
		if m.entrance.st.Stage == onboarding.StageMain && m.entrance.enterRect.Contains(msg.X, msg.Y) {
			return m.dispatchEntrance(onboarding.EnterEvent{})
		}
		return m.dispatchEntrance(onboarding.GestureEvent{Kind: onboarding.GesturePointer})
	}
	return nil
}

// dispatchEntrance applies ev to the sequencer and turns its effects into commands.
func (m *appModel) dispatchEntrance(ev onboarding.Event) tea.Cmd {
	next, effects := m.entrance.machine.Transition(m.entrance.st, ev)
	m.entrance.st = next

	var cmds []tea.Cmd
	for _, eff := range effects {
		switch e := eff.(type) {
		case onboarding.RequestPlayEffect:
			cmds = append(cmds, m.requestPlay())
		case onboarding.StartTimerEffect:
			tok := e.Token
			cmds = append(cmds,
				tea.Tick(e.After, func(time.Time) tea.Msg { return revealTimerMsg{token: tok} }),
				tickOpening(tok),
			)
		case onboarding.CancelTimerEffect:
			// tea.Tick cannot be stopped; the machine already dropped the token, so the fire is ignored.
		case onboarding.SetSessionFlagEffect:
			m.visited = true
			cmds = append(cmds, m.persistVisited())
		case onboarding.NavigateEffect:
			cmds = append(cmds, m.setView(viewWorld))
		}
	}
	return tea.Batch(cmds...)
}

func (m *appModel) persistVisited() tea.Cmd {
	ctx, st := m.ctx, m.sess
	return func() tea.Msg {
		return sessionFlagSaveMsg{err: session.SetFlag(ctx, st, session.FlagVisitedEntrance)}
	}
}

func (m appModel) viewEntrance(w, h int) string {
	e := m.entrance
	title := styleTitle().Render(spaced("DETECTIVE ACADEMY"))

	var block string
	switch e.st.Stage {
	case onboarding.StageClick:
		block = lipgloss.JoinVertical(lipgloss.Center,
			title,
			"",
			lipgloss.NewStyle().Foreground(colorBrass).Italic(true).Render("- Click anywhere to begin -"),
		)
	case onboarding.StageOpening:
		total := max(int(e.machine.Reveal/openingFrame), 1)
		ruleW := min(w-8, 48)
		filled := min(ruleW*e.frame/total, ruleW)
		rule := lipgloss.NewStyle().Foreground(colorBrass).Render(strings.Repeat(glyphHRule(), filled))
		block = lipgloss.JoinVertical(lipgloss.Center,
			title,
			"",
			fitLine(rule, ruleW),
			"",
			styleMuted().Italic(true).Render("19th Century, London"),
		)
	default:
		block = m.entranceMain(w)
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, block)
}

func (m appModel) entranceMain(w int) string {
	sub := ""
	tagline := ""
	if m.content != nil {
		sub = m.content.Site.Subtitle
		tagline = renderMarkdown(m.content.Site.Tagline, min(w-8, 60))
	}
	button := entryButton()
	return lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(colorBrass).Render(spaced("Detective Academy")),
		lipgloss.NewStyle().Bold(true).Render(sub),
		"",
		tagline,
		"",
		styleMuted().Italic(true).Render("Truth lies within the shadows of London."),
		"",
		button,
	)
}

func entryButton() string {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		Padding(0, 4).
		Render(lipgloss.JoinVertical(lipgloss.Center, spaced("ACADEMY ENTRY"), styleMuted().Render("아카데미 입장")))
}

// layoutEntrance records where the entry button lands on screen. It mirrors the centering
// done by viewEntrance.
func (m *appModel) layoutEntrance() {
	m.entrance.enterRect = catalog.Rect{}
	if m.entrance.st.Stage != onboarding.StageMain {
		return
	}
	w, h := max(m.width, 20), m.bodyHeight()
	block := m.entranceMain(w)
	bw, bh := lipgloss.Width(block), lipgloss.Height(block)
	button := entryButton()
	btnW, btnH := lipgloss.Width(button), lipgloss.Height(button)

	top := bodyTop + max((h-bh)/2, 0)
	left := max((w-bw)/2, 0)
	m.entrance.enterRect = catalog.Rect{
		X: left + (bw-btnW)/2,
		Y: top + bh - btnH,
		W: btnW,
		H: btnH,
	}
}

func spaced(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
