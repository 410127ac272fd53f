package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminals can't change the user's font, so affordances come in a Unicode and an
// ASCII set.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference reads ACADEMY_TUI_GLYPHS, falling back to the configured value.
func applyGlyphPreference(configured string) {
	v := strings.TrimSpace(os.Getenv("ACADEMY_TUI_GLYPHS"))
	if v == "" {
		v = configured
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func pick(unicode, ascii string) string {
	if glyphs() == glyphSetASCII {
		return ascii
	}
	return unicode
}

func glyphSpeaker(muted bool) string {
	if muted {
		return pick("🔇", "[mute]")
	}
	return pick("🔊", "[snd]")
}

func glyphPin() string      { return pick("◆", "*") }
func glyphPinFocus() string { return pick("◉", "@") }
func glyphBullet() string   { return pick("•", "*") }
func glyphHRule() string    { return pick("─", "-") }
func glyphPrev() string     { return pick("◂", "<") }
func glyphNext() string     { return pick("▸", ">") }
