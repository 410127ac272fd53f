package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"academy-cli/internal/catalog"
	"academy-cli/internal/content"
	"academy-cli/internal/onboarding"
	"academy-cli/internal/playback"
	"academy-cli/internal/session"
	"academy-cli/internal/store"
)

type testApp struct {
	m    appModel
	sess *session.MemoryStore
	st   store.Store
}

func newTestApp(t *testing.T, sess *session.MemoryStore, st store.Store) *testApp {
	t.Helper()
	c, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default: %v", err)
	}
	coord := playback.New(playback.NullPlayer{}, playback.Options{})
	t.Cleanup(func() { _ = coord.Close() })

	m := newAppModel(context.Background(), Options{
		Content:     c,
		Coordinator: coord,
		Session:     sess,
		Store:       st,
		Settings:    store.Settings{RevealDuration: 3500 * time.Millisecond, VariantCount: 6},
		OpenURL:     func(string) error { return nil },
	})
	a := &testApp{m: m, sess: sess, st: st}
	a.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return a
}

func (a *testApp) send(msg tea.Msg) tea.Cmd {
	next, cmd := a.m.Update(msg)
	a.m = next.(appModel)
	return cmd
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestEntrance_GestureRevealEnter(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	if a.m.view != viewEntrance || a.m.entrance.st.Stage != onboarding.StageClick {
		t.Fatalf("expected entrance click stage; got view=%v stage=%v", a.m.view, a.m.entrance.st.Stage)
	}

	// In the click stage any key is the gesture, enter included.
	a.send(keyPress("enter"))
	if a.m.entrance.st.Stage != onboarding.StageOpening {
		t.Fatalf("first key must count as the gesture; stage=%v", a.m.entrance.st.Stage)
	}
	tok := a.m.entrance.st.Token

	a.send(keyPress("x"))
	a.send(click(10, 10))
	if a.m.entrance.st.Token != tok {
		t.Fatalf("extra gestures must not restart the reveal")
	}

	a.send(revealTimerMsg{token: tok + 7})
	if a.m.entrance.st.Stage != onboarding.StageOpening {
		t.Fatalf("stale timer must be ignored")
	}
	a.send(revealTimerMsg{token: tok})
	if a.m.entrance.st.Stage != onboarding.StageMain || !a.m.visited {
		t.Fatalf("expected main with visited flag; stage=%v visited=%v", a.m.entrance.st.Stage, a.m.visited)
	}

	a.send(keyPress("enter"))
	if a.m.view != viewWorld {
		t.Fatalf("enter in main should open the world view; got %v", a.m.view)
	}
}

func TestEntrance_LeavingCancelsReveal(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	a.send(keyPress("x"))
	tok := a.m.entrance.st.Token

	a.send(keyPress("3"))
	if a.m.view != viewCharacters {
		t.Fatalf("expected characters; got %v", a.m.view)
	}
	if a.m.entrance.st.TimerActive {
		t.Fatalf("timer must be cancelled when the entrance is left")
	}

	a.send(keyPress("1"))
	if a.m.entrance.st.Stage != onboarding.StageClick {
		t.Fatalf("unvisited session should restart at click; got %v", a.m.entrance.st.Stage)
	}
	a.send(revealTimerMsg{token: tok})
	if a.m.entrance.st.Stage != onboarding.StageClick || a.m.visited {
		t.Fatalf("a timer from the torn-down reveal must not fire")
	}
}

func TestEntrance_GlobalKeysCountAsGesture(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	a.send(keyPress("m"))
	if !a.m.coord.IsMuted() {
		t.Fatalf("m must still toggle mute on the prompt")
	}
	if a.m.entrance.st.Stage != onboarding.StageOpening || !a.m.entrance.st.TimerActive {
		t.Fatalf("m on the prompt must start the reveal; stage=%v", a.m.entrance.st.Stage)
	}
	tok := a.m.entrance.st.Token

	// Once the reveal runs, global keys are ordinary again.
	a.send(keyPress("m"))
	if a.m.coord.IsMuted() || a.m.entrance.st.Token != tok {
		t.Fatalf("second m should only unmute; muted=%v", a.m.coord.IsMuted())
	}

	b := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	b.send(keyPress("1"))
	if b.m.view != viewEntrance || b.m.entrance.st.Stage != onboarding.StageOpening {
		t.Fatalf("the entrance's own view key is a gesture too; stage=%v", b.m.entrance.st.Stage)
	}
}

func TestEntrance_VisitedSessionStartsAtMain(t *testing.T) {
	t.Parallel()

	sess := session.NewMemoryStore()
	if err := session.SetFlag(context.Background(), sess, session.FlagVisitedEntrance); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	a := newTestApp(t, sess, store.Store{Dir: t.TempDir()})
	if a.m.entrance.st.Stage != onboarding.StageMain {
		t.Fatalf("expected main; got %v", a.m.entrance.st.Stage)
	}

	a.send(click(0, 5))
	if a.m.view != viewEntrance {
		t.Fatalf("a click away from the entry button must not navigate")
	}
	r := a.m.entrance.enterRect
	if r.Empty() {
		t.Fatalf("entry button rect not laid out")
	}
	a.send(click(r.X+r.W/2, r.Y+r.H/2))
	if a.m.view != viewWorld {
		t.Fatalf("clicking the entry button should open the world view; got %v", a.m.view)
	}
}

func TestMuteKeyAndNavClick(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	for _, z := range a.m.navZones() {
		if !z.mute && z.view == viewMap {
			a.send(click(z.start, 0))
		}
	}
	if a.m.view != viewMap {
		t.Fatalf("nav click should switch to map; got %v", a.m.view)
	}
	if a.m.entrance.st.Stage != onboarding.StageClick {
		t.Fatalf("nav clicks must not count as entrance gestures")
	}

	a.send(keyPress("m"))
	if !a.m.coord.IsMuted() {
		t.Fatalf("m should mute")
	}
	if !strings.Contains(a.m.renderNav(), glyphSpeaker(true)) {
		t.Fatalf("nav should show the muted speaker: %q", a.m.renderNav())
	}

	zones := a.m.navZones()
	sp := zones[len(zones)-1]
	a.send(click(sp.start, 0))
	if a.m.coord.IsMuted() {
		t.Fatalf("speaker click should unmute")
	}
}

func TestCharacters_OverlayClicks(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	a.send(keyPress("3"))
	a.send(keyPress("enter"))

	ch, ok := a.m.chars.browser.Selected()
	if !ok || ch.ID != "ARIA" {
		t.Fatalf("expected ARIA selected; got %+v ok=%v", ch, ok)
	}
	if a.m.chars.image.variant != 1 || !strings.HasSuffix(a.m.chars.image.url, "/ARIA/1.png") {
		t.Fatalf("unexpected image state: %+v", a.m.chars.image)
	}

	lay := overlayLayout(100, a.m.bodyHeight())
	a.send(click(lay.Image.X+1, lay.Image.Y+1))
	if got := a.m.chars.browser.VariantIndex(); got != 2 {
		t.Fatalf("image click should cycle to 2; got %d", got)
	}
	if !strings.HasSuffix(a.m.chars.image.url, "/ARIA/2.png") {
		t.Fatalf("image url not updated: %q", a.m.chars.image.url)
	}

	a.send(click(lay.Content.X+lay.Content.W-3, lay.Content.Y+2))
	if !a.m.chars.browser.HasSelection() || a.m.chars.browser.VariantIndex() != 2 {
		t.Fatalf("content click must be consumed without dismissing")
	}

	a.send(click(1, lay.Content.Y+1))
	if a.m.chars.browser.HasSelection() {
		t.Fatalf("outside click should dismiss")
	}

	// Reopening starts from the first image again.
	a.send(keyPress("enter"))
	if a.m.chars.browser.VariantIndex() != 1 {
		t.Fatalf("reselect must reset variant; got %d", a.m.chars.browser.VariantIndex())
	}
	for i := 0; i < 6; i++ {
		a.send(keyPress(" "))
	}
	if a.m.chars.browser.VariantIndex() != 1 {
		t.Fatalf("six cycles should wrap to 1; got %d", a.m.chars.browser.VariantIndex())
	}
}

func TestCharacters_FilterAndSearch(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	a.send(keyPress("3"))

	var demonico catalog.Rect
	for _, tr := range a.m.chars.tabRects {
		if tr.category == "DEMONICO" {
			demonico = tr.rect
		}
	}
	a.send(click(demonico.X, demonico.Y))
	if got := a.m.chars.browser.ActiveCategory(); got != "DEMONICO" {
		t.Fatalf("tab click: active = %q", got)
	}
	if n := len(a.m.chars.list.Items()); n != 2 {
		t.Fatalf("expected 2 DEMONICO cards; got %d", n)
	}

	a.send(keyPress("tab"))
	if got := a.m.chars.browser.ActiveCategory(); got != "Mysterio" {
		t.Fatalf("tab key: active = %q", got)
	}

	_ = a.m.chars.browser.SetFilter(catalog.AllCategory)
	a.m.chars.refresh()
	a.send(keyPress("/"))
	a.send(keyPress("q"))
	if a.m.chars.search.Value() != "q" {
		t.Fatalf("q must type into search, not quit; value=%q", a.m.chars.search.Value())
	}
	a.send(tea.KeyMsg{Type: tea.KeyBackspace})
	for _, r := range "hana" {
		a.send(keyPress(string(r)))
	}
	items := a.m.chars.list.Items()
	if len(items) == 0 || items[0].(characterItem).ch.ID != "HANA" {
		t.Fatalf("expected HANA first; got %v", items)
	}
	a.send(keyPress("esc"))
	if a.m.chars.searching {
		t.Fatalf("esc should leave search")
	}
}

func TestMap_PinClickOpensOverlay(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	a.send(keyPress("5"))
	if len(a.m.atlas.pins) != 6 {
		t.Fatalf("expected 6 pins; got %d", len(a.m.atlas.pins))
	}
	p := a.m.atlas.pins[2]
	a.send(click(p.rect.X, p.rect.Y))
	loc, ok := a.m.atlas.browser.Selected()
	if !ok || loc.ID != p.loc.ID {
		t.Fatalf("pin click should select %q; got %+v", p.loc.ID, loc)
	}
	if a.m.atlas.image.url != loc.ImageURL {
		t.Fatalf("map image should be the location's own url; got %q", a.m.atlas.image.url)
	}

	lay := overlayLayout(100, a.m.bodyHeight())
	a.send(click(lay.Image.X, lay.Image.Y))
	if a.m.atlas.browser.VariantIndex() != 1 {
		t.Fatalf("single-image locations stay on 1")
	}
	a.send(keyPress("esc"))
	if a.m.atlas.browser.HasSelection() {
		t.Fatalf("esc should close the overlay")
	}

	a.send(keyPress("tab"))
	for _, p := range a.m.atlas.pins {
		if string(p.loc.Type) != a.m.atlas.browser.ActiveCategory() {
			t.Fatalf("pin %q outside filter %q", p.loc.ID, a.m.atlas.browser.ActiveCategory())
		}
	}
}

func TestImageProbe_StaleResultDropped(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	a.send(keyPress("3"))
	a.send(keyPress("enter"))
	first := a.m.chars.image.url
	a.send(keyPress(" "))

	a.send(imageProbedMsg{owner: viewCharacters, id: "ARIA", variant: 1, url: first, shown: "placeholder"})
	if a.m.chars.image.checked {
		t.Fatalf("probe for an earlier variant must be dropped")
	}
	a.send(imageProbedMsg{owner: viewCharacters, id: "ARIA", variant: 2, url: a.m.chars.image.url, shown: a.m.chars.image.url})
	if !a.m.chars.image.checked || a.m.chars.image.err != nil {
		t.Fatalf("current probe should apply: %+v", a.m.chars.image)
	}
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	st := store.Store{Dir: t.TempDir()}
	sess := session.NewMemoryStore()
	_ = session.SetFlag(context.Background(), sess, session.FlagVisitedEntrance)

	a := newTestApp(t, sess, st)
	a.send(keyPress("4"))
	a.send(keyPress("j"))
	a.send(keyPress("m"))
	a.m.saveState()

	b := newTestApp(t, sess, st)
	if b.m.view != viewWebtoon || b.m.webtoon.page != 1 || !b.m.coord.IsMuted() {
		t.Fatalf("state not restored: view=%v page=%d muted=%v", b.m.view, b.m.webtoon.page, b.m.coord.IsMuted())
	}

	// A fresh session always lands on the entrance.
	c := newTestApp(t, session.NewMemoryStore(), st)
	if c.m.view != viewEntrance {
		t.Fatalf("unvisited session must start at the entrance; got %v", c.m.view)
	}
}

func TestWebtoon_PageClamps(t *testing.T) {
	t.Parallel()

	w := newWebtoonModel(nil)
	w.setPage(3)
	if w.page != 0 {
		t.Fatalf("empty webtoon page = %d", w.page)
	}

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	a.m.webtoon.setPage(99)
	if a.m.webtoon.page != len(a.m.webtoon.episodes)-1 {
		t.Fatalf("page not clamped: %d", a.m.webtoon.page)
	}
	a.m.webtoon.setPage(-1)
	if a.m.webtoon.page != 0 {
		t.Fatalf("page not clamped: %d", a.m.webtoon.page)
	}
}

func TestView_FitsWindow(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, session.NewMemoryStore(), store.Store{Dir: t.TempDir()})
	for _, k := range []string{"1", "2", "3", "4", "5"} {
		a.send(keyPress(k))
		lines := strings.Split(a.m.View(), "\n")
		if len(lines) != 30 {
			t.Fatalf("view %s: %d lines, want 30", k, len(lines))
		}
	}
}
