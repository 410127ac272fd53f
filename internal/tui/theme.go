package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette: aged paper and brass on a dark desk. Everything is adaptive so light
// terminals stay readable.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorBrass    lipgloss.TerminalColor = ac("#8a5a00", "#d97706") // amber-600
	colorPaperBg  lipgloss.TerminalColor = ac("#f4ebd8", "#2a241c")
	colorPaperFg  lipgloss.TerminalColor = ac("#2a2a2a", "#e6d5b8")
	colorStamp    lipgloss.TerminalColor = ac("#991b1b", "#dc2626")
	colorBorder   lipgloss.TerminalColor = ac("#c4b59d", "#5c4a3d")
	colorSelected lipgloss.TerminalColor = ac("#e6d5b8", "#3a3026")

	colorPinAcademy lipgloss.TerminalColor = ac("#1d4ed8", "#60a5fa")
	colorPinHQ      lipgloss.TerminalColor = ac("#8a5a00", "#fbbf24")
	colorPinCity    lipgloss.TerminalColor = ac("#374151", "#d1d5db")
	colorPinDanger  lipgloss.TerminalColor = ac("#991b1b", "#f87171")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorBrass).Bold(true)
}

func styleStamp() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorStamp).Bold(true)
}

func stylePaper() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorPaperFg).Background(colorPaperBg)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can accidentally
// disable colors in a TUI. We only honor NO_COLOR and otherwise follow the terminal.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures Lip Gloss's background detection.
//
// Priority:
// 1) ACADEMY_TUI_THEME=light|dark|auto
// 2) the config file's tui.theme
// 3) COLORFGBG heuristic ("fg;bg")
func applyThemePreference(configured string) {
	v := strings.TrimSpace(os.Getenv("ACADEMY_TUI_THEME"))
	if v == "" {
		v = configured
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
