package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"academy-cli/internal/content"
	"academy-cli/internal/imageurl"
	"academy-cli/internal/logging"
	"academy-cli/internal/onboarding"
	"academy-cli/internal/playback"
	"academy-cli/internal/session"
	"academy-cli/internal/store"
)

type view int

const (
	viewEntrance view = iota
	viewWorld
	viewCharacters
	viewWebtoon
	viewMap
)

// navViews is the navigation bar order.
var navViews = []view{viewEntrance, viewWorld, viewCharacters, viewWebtoon, viewMap}

func (v view) label() string {
	switch v {
	case viewWorld:
		return "World"
	case viewCharacters:
		return "Characters"
	case viewWebtoon:
		return "Webtoon"
	case viewMap:
		return "Map"
	default:
		return "Entrance"
	}
}

func (v view) stateName() string { return strings.ToLower(v.label()) }

func parseView(s string) (view, bool) {
	for _, v := range navViews {
		if v.stateName() == strings.ToLower(strings.TrimSpace(s)) {
			return v, true
		}
	}
	return viewEntrance, false
}

// Screen rows: nav bar, rule, body..., footer.
const bodyTop = 2

type (
	playResultMsg      playback.Result
	sessionFlagSaveMsg struct{ err error }
	urlOpenedMsg       struct{ err error }
	statusClearMsg     struct{ seq int }
)

type appModel struct {
	ctx context.Context
	log *slog.Logger

	content  *content.Content
	coord    *playback.Coordinator
	first    *playback.FirstInteraction
	sess     session.Store
	store    store.Store
	settings store.Settings
	resolver imageurl.Resolver
	prober   *imageurl.Prober
	openURL  func(string) error

	width  int
	height int
	view   view

	// visited caches the session's entrance flag.
	visited bool

	entrance entranceModel
	world    worldModel
	chars    charactersModel
	atlas    mapModel
	webtoon  webtoonModel

	status    string
	statusSeq int
}

func newAppModel(ctx context.Context, opts Options) appModel {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With(slog.String("component", "tui"))
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = imageurl.Open
	}

	visited, err := session.Flag(ctx, opts.Session, session.FlagVisitedEntrance)
	if err != nil {
		log.Warn("read session flag failed", slog.Any("error", err))
	}

	m := appModel{
		ctx:      ctx,
		log:      log,
		content:  opts.Content,
		coord:    opts.Coordinator,
		sess:     opts.Session,
		store:    opts.Store,
		settings: opts.Settings,
		resolver: imageurl.New(opts.Settings.ImageBaseURL, opts.Settings.PlaceholderImage),
		prober:   opts.Prober,
		openURL:  openURL,
		width:    80,
		height:   24,
		visited:  visited,
		view:     viewEntrance,
	}
	if m.coord != nil {
		m.first = m.coord.ArmFirstInteraction()
	}
	m.entrance = newEntranceModel(onboarding.Machine{Reveal: opts.Settings.RevealDuration}, visited)
	m.world = newWorldModel(opts.Content.Factions)
	m.chars = newCharactersModel(opts.Content.Characters, opts.Settings.VariantCount)
	m.atlas = newMapModel(opts.Content.Locations)
	m.webtoon = newWebtoonModel(opts.Content.Episodes)

	m.restoreState()
	m.resize()
	return m
}

func (m *appModel) restoreState() {
	st, err := m.store.LoadTUIState()
	if err != nil || st == nil {
		return
	}
	if v, ok := parseView(st.View); ok && m.visited {
		m.view = v
	}
	if st.CharacterFilter != "" {
		_ = m.chars.browser.SetFilter(st.CharacterFilter)
		m.chars.refresh()
	}
	if st.LocationFilter != "" {
		_ = m.atlas.browser.SetFilter(st.LocationFilter)
		m.atlas.refresh()
	}
	m.webtoon.setPage(st.WebtoonPage)
	if st.Muted && m.coord != nil {
		m.coord.SetMuted(true)
	}
}

func (m appModel) saveState() {
	st := &store.TUIState{
		Version:         1,
		View:            m.view.stateName(),
		CharacterFilter: m.chars.browser.ActiveCategory(),
		LocationFilter:  m.atlas.browser.ActiveCategory(),
		WebtoonPage:     m.webtoon.page,
	}
	if m.coord != nil {
		st.Muted = m.coord.IsMuted()
	}
	if err := m.store.SaveTUIState(st); err != nil {
		m.log.Warn("save tui state failed", slog.Any("error", err))
	}
}

func (m appModel) Init() tea.Cmd {
	title := "Detective Academy"
	if m.content != nil && m.content.Site.Title != "" {
		title = m.content.Site.Title
	}
	return tea.SetWindowTitle(title)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case playResultMsg:
		m.notePlayResult(playback.Result(msg))
		return m, nil

	case revealTimerMsg:
		return m, m.dispatchEntrance(onboarding.TimerFiredEvent{Token: msg.token})

	case openingFrameMsg:
		return m, m.entrance.advanceFrame(msg)

	case sessionFlagSaveMsg:
		if msg.err != nil {
			m.log.Warn("persist session flag failed", slog.Any("error", msg.err))
		}
		return m, nil

	case imageProbedMsg:
		switch msg.owner {
		case viewCharacters:
			m.chars.applyProbe(msg)
		case viewMap:
			m.atlas.applyProbe(msg)
		}
		return m, nil

	case urlOpenedMsg:
		if msg.err != nil {
			return m, m.setStatus("open failed: " + msg.err.Error())
		}
		return m, nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		cmds := []tea.Cmd{m.noteInteraction(playback.InteractionKey)}
		gesture := m.entranceAwaitsGesture() && !m.isQuitKey(msg)
		if gesture {
			// Any key on the prompt starts the reveal, global keys included.
			cmds = append(cmds, m.dispatchEntrance(onboarding.GestureEvent{Kind: onboarding.GestureKey}))
		}
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, tea.Batch(append(cmds, cmd)...)
		}
		if !gesture {
			cmds = append(cmds, m.updateView(msg))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			cmds := []tea.Cmd{m.noteInteraction(playback.InteractionPointer)}
			if msg.Y == 0 {
				cmds = append(cmds, m.clickNav(msg.X))
				return m, tea.Batch(cmds...)
			}
			cmds = append(cmds, m.updateView(msg))
			return m, tea.Batch(cmds...)
		}
		// Wheel and motion are not interactions; views may still scroll.
		return m, m.updateView(msg)
	}
	return m, nil
}

// noteInteraction starts the music on the first key or click anywhere.
func (m *appModel) noteInteraction(kind playback.Interaction) tea.Cmd {
	if m.first == nil {
		return nil
	}
	ch, ok := m.first.Notify(m.ctx, kind)
	if !ok {
		return nil
	}
	return waitPlayResult(ch)
}

func waitPlayResult(ch <-chan playback.Result) tea.Cmd {
	return func() tea.Msg { return playResultMsg(<-ch) }
}

func (m *appModel) requestPlay() tea.Cmd {
	if m.coord == nil {
		return nil
	}
	return waitPlayResult(m.coord.RequestPlay(m.ctx))
}

func (m *appModel) notePlayResult(r playback.Result) {
	if r.Outcome == playback.OutcomeDenied {
		m.log.Info("music not started", slog.String("attempt", r.AttemptID), slog.Any("error", r.Err))
	}
}

func (m appModel) entranceAwaitsGesture() bool {
	return m.view == viewEntrance && m.entrance.st.Stage == onboarding.StageClick
}

func (m appModel) isQuitKey(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyCtrlC || key.Matches(msg, keys.Quit)
}

// textCapture reports whether a text input owns the keyboard.
func (m appModel) textCapture() bool {
	return m.view == viewCharacters && m.chars.searching
}

func (m *appModel) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit, true
	}
	if m.textCapture() {
		return nil, false
	}
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, keys.Mute):
		m.toggleMute()
		return nil, true
	}
	if v, ok := keys.viewFor(msg); ok {
		return m.setView(v), true
	}
	return nil, false
}

func (m *appModel) toggleMute() {
	if m.coord == nil {
		return
	}
	muted := m.coord.ToggleMute()
	m.log.Debug("mute toggled", slog.Bool("muted", muted))
}

// setView switches screens. Leaving the entrance tears its sequencer down; coming back
// starts a fresh one from the session flag.
func (m *appModel) setView(v view) tea.Cmd {
	if v == m.view {
		return nil
	}
	var cmd tea.Cmd
	if m.view == viewEntrance {
		cmd = m.dispatchEntrance(onboarding.TeardownEvent{})
	}
	if v == viewEntrance {
		m.entrance.remount(m.visited)
	}
	m.view = v
	m.resize()
	return cmd
}

func (m *appModel) updateView(msg tea.Msg) tea.Cmd {
	switch m.view {
	case viewEntrance:
		return m.updateEntrance(msg)
	case viewWorld:
		return m.world.update(msg)
	case viewCharacters:
		return m.updateCharacters(msg)
	case viewMap:
		return m.updateMap(msg)
	case viewWebtoon:
		return m.updateWebtoon(msg)
	}
	return nil
}

func (m appModel) bodyHeight() int {
	return max(m.height-bodyTop-1, 5)
}

func (m *appModel) resize() {
	w, h := max(m.width, 20), m.bodyHeight()
	m.world.resize(w, h)
	m.chars.resize(w, h)
	m.atlas.resize(w, h)
	m.webtoon.resize(w, h)
}

func (m *appModel) setStatus(s string) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.status = s
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (m *appModel) openExternal(u string) tea.Cmd {
	open := m.openURL
	return func() tea.Msg { return urlOpenedMsg{err: open(u)} }
}

func (m appModel) View() string {
	w, h := max(m.width, 20), m.bodyHeight()

	var body string
	switch m.view {
	case viewEntrance:
		body = m.viewEntrance(w, h)
	case viewWorld:
		body = m.world.view(w, h, m.content)
	case viewCharacters:
		body = m.viewCharacters(w, h)
	case viewMap:
		body = m.viewMap(w, h)
	case viewWebtoon:
		body = m.webtoon.view(w, h)
	}

	rule := styleMuted().Render(strings.Repeat(glyphHRule(), w))
	return lipgloss.JoinVertical(lipgloss.Left,
		fitLine(m.renderNav(), w),
		rule,
		fitBlock(body, w, h),
		fitLine(m.renderFooter(), w),
	)
}

func (m appModel) renderFooter() string {
	if m.status != "" {
		return styleStamp().Render(m.status)
	}
	var hint string
	switch m.view {
	case viewEntrance:
		hint = m.entrance.hint()
	case viewCharacters:
		hint = m.chars.hint()
	case viewMap:
		hint = "←/→: pin  tab: type  enter: open  o: open image  esc: close"
	case viewWorld:
		hint = "↑/↓: scroll"
	case viewWebtoon:
		hint = "↑/↓: page  o: open image"
	}
	return styleMuted().Render(hint + "  1-5: views  m: mute  q: quit")
}
