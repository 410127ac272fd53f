package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// globalKeys apply on every screen unless a text input owns the keyboard.
type globalKeys struct {
	Quit  key.Binding
	Mute  key.Binding
	Views []key.Binding
}

func newGlobalKeys() globalKeys {
	k := globalKeys{
		Quit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Mute: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
	}
	for i, v := range navViews {
		d := string(rune('1' + i))
		k.Views = append(k.Views, key.NewBinding(key.WithKeys(d), key.WithHelp(d, v.label())))
	}
	return k
}

// viewFor returns the screen bound to msg, if any.
func (k globalKeys) viewFor(msg tea.KeyMsg) (view, bool) {
	for i, b := range k.Views {
		if key.Matches(msg, b) {
			return navViews[i], true
		}
	}
	return 0, false
}

var keys = newGlobalKeys()
