package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"academy-cli/internal/content"
	"academy-cli/internal/imageurl"
	"academy-cli/internal/playback"
	"academy-cli/internal/session"
	"academy-cli/internal/store"
)

// Options carries the TUI's collaborators. Content, Coordinator and Session are required.
type Options struct {
	Content     *content.Content
	Coordinator *playback.Coordinator
	Session     session.Store
	Store       store.Store
	Settings    store.Settings
	Logger      *slog.Logger

	// Prober checks image URLs; nil shows URLs unchecked.
	Prober *imageurl.Prober
	// OpenURL opens an image externally; defaults to imageurl.Open.
	OpenURL func(string) error
}

func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Settings.Theme)
	applyGlyphPreference(opts.Settings.Glyphs)

	m := newAppModel(ctx, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok {
		fm.saveState()
	}
	return err
}
