package store

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func clearAcademyEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ACADEMY_REVEAL_MS", "ACADEMY_VOLUME", "ACADEMY_AUDIO_SOURCE", "ACADEMY_AUDIO_BACKEND",
		"ACADEMY_IMAGE_BASE_URL", "ACADEMY_LOG_LEVEL", "ACADEMY_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv("ACADEMY_CONFIG_DIR", t.TempDir())
	clearAcademyEnv(t)

	s, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.RevealDuration != 3500*time.Millisecond {
		t.Fatalf("reveal = %s", s.RevealDuration)
	}
	if s.Volume != 0.4 {
		t.Fatalf("volume = %v", s.Volume)
	}
	if s.VariantCount != 6 || s.AudioBackend != "auto" || s.SessionTTL != 12*time.Hour {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if !strings.HasSuffix(s.LogPath, "academy.log") {
		t.Fatalf("log path = %q", s.LogPath)
	}
}

func TestResolve_FileThenEnv(t *testing.T) {
	t.Setenv("ACADEMY_CONFIG_DIR", t.TempDir())
	clearAcademyEnv(t)

	quiet := 0.1
	cfg := &Config{RevealDurationMs: 1000, Volume: &quiet, AudioBackend: "none", TUI: &TUIConfig{Theme: "gaslight"}}
	s, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.RevealDuration != time.Second || s.Volume != 0.1 || s.AudioBackend != "none" || s.Theme != "gaslight" {
		t.Fatalf("file values not applied: %+v", s)
	}

	t.Setenv("ACADEMY_REVEAL_MS", "250")
	t.Setenv("ACADEMY_VOLUME", "0.9")
	s, err = Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.RevealDuration != 250*time.Millisecond || s.Volume != 0.9 {
		t.Fatalf("env must win: %+v", s)
	}
}

func TestResolve_Errors(t *testing.T) {
	t.Setenv("ACADEMY_CONFIG_DIR", t.TempDir())
	clearAcademyEnv(t)

	t.Setenv("ACADEMY_VOLUME", "loud")
	if _, err := Resolve(nil); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error; got %v", err)
	}
	t.Setenv("ACADEMY_VOLUME", "1.5")
	if _, err := Resolve(nil); err == nil || !strings.Contains(err.Error(), "volume") {
		t.Fatalf("expected volume range error; got %v", err)
	}
	t.Setenv("ACADEMY_VOLUME", "")
	t.Setenv("ACADEMY_AUDIO_BACKEND", "vlc")
	if _, err := Resolve(nil); err == nil || !strings.Contains(err.Error(), "audio backend") {
		t.Fatalf("expected backend error; got %v", err)
	}
}

func TestConfigSet(t *testing.T) {
	t.Parallel()

	var c Config
	if err := c.Set("volume", "0.25"); err != nil {
		t.Fatalf("Set volume: %v", err)
	}
	if c.Volume == nil || *c.Volume != 0.25 {
		t.Fatalf("volume = %v", c.Volume)
	}
	if err := c.Set("volume", ""); err != nil || c.Volume != nil {
		t.Fatalf("expected volume cleared; got %v, %v", c.Volume, err)
	}
	if err := c.Set("tui.glyphs", "ascii"); err != nil || c.TUI == nil || c.TUI.Glyphs != "ascii" {
		t.Fatalf("tui.glyphs: %+v, %v", c.TUI, err)
	}
	if err := c.Set("revealDurationMs", "-1"); err == nil {
		t.Fatalf("expected error for negative reveal")
	}
	if err := c.Set("nope", "1"); err == nil || !strings.Contains(err.Error(), "volume") {
		t.Fatalf("expected unknown key error listing keys; got %v", err)
	}
}

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	t.Setenv("ACADEMY_CONFIG_DIR", t.TempDir())

	if err := SaveConfig(&Config{AudioBackend: "none"}); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const n = 32
	errCh := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg, err := LoadConfig()
			if err != nil {
				errCh <- err
				return
			}
			cfg.LogPath = fmt.Sprintf("/tmp/academy-%d.log", i)
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent SaveConfig: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AudioBackend != "none" || !strings.HasPrefix(cfg.LogPath, "/tmp/academy-") {
		t.Fatalf("unexpected config after concurrent writes: %+v", cfg)
	}
}
