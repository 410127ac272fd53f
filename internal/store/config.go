package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Defaults for values the config file and environment may leave unset.
const (
	DefaultRevealDuration = 3500 * time.Millisecond
	DefaultVolume         = 0.4
	DefaultAudioSource    = "https://incompetech.com/music/royalty-free/mp3-royaltyfree/Spy%20Glass.mp3"
	DefaultAudioBackend   = "auto"
	DefaultImageBaseURL   = "https://itimg.kr/809/탐정아카데미19th"
	DefaultVariantCount   = 6
	DefaultSessionTTL     = 12 * time.Hour
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config is the user's ~/.academy/config.json. Zero values mean "use the default".
type Config struct {
	RevealDurationMs int      `json:"revealDurationMs,omitempty"`
	Volume           *float64 `json:"volume,omitempty"`
	AudioSource      string   `json:"audioSource,omitempty"`
	// AudioBackend is one of: auto|mpv|none
	AudioBackend     string `json:"audioBackend,omitempty"`
	ImageBaseURL     string `json:"imageBaseUrl,omitempty"`
	PlaceholderImage string `json:"placeholderImage,omitempty"`
	VariantCount     int    `json:"variantCount,omitempty"`
	SessionTTLHours  int    `json:"sessionTtlHours,omitempty"`

	LogLevel  string `json:"logLevel,omitempty"`
	LogFormat string `json:"logFormat,omitempty"`
	LogPath   string `json:"logPath,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Theme is the appearance profile id (e.g. "default", "gaslight").
	Theme string `json:"theme,omitempty"`
	// Glyphs selects the glyph set (e.g. "unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty"`
}

// envOverrides are read on every launch and win over the config file.
type envOverrides struct {
	RevealMs     *int     `env:"ACADEMY_REVEAL_MS"`
	Volume       *float64 `env:"ACADEMY_VOLUME"`
	AudioSource  *string  `env:"ACADEMY_AUDIO_SOURCE"`
	AudioBackend *string  `env:"ACADEMY_AUDIO_BACKEND"`
	ImageBaseURL *string  `env:"ACADEMY_IMAGE_BASE_URL"`
	LogLevel     *string  `env:"ACADEMY_LOG_LEVEL"`
	LogFormat    *string  `env:"ACADEMY_LOG_FORMAT"`
}

// Settings are the resolved values the client runs with.
type Settings struct {
	RevealDuration   time.Duration `json:"revealDuration"`
	Volume           float64       `json:"volume"`
	AudioSource      string        `json:"audioSource"`
	AudioBackend     string        `json:"audioBackend"`
	ImageBaseURL     string        `json:"imageBaseUrl"`
	PlaceholderImage string        `json:"placeholderImage,omitempty"`
	VariantCount     int           `json:"variantCount"`
	SessionTTL       time.Duration `json:"sessionTtl"`
	LogLevel         string        `json:"logLevel"`
	LogFormat        string        `json:"logFormat"`
	LogPath          string        `json:"logPath"`
	Theme            string        `json:"theme,omitempty"`
	Glyphs           string        `json:"glyphs,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.academy).
	if v := strings.TrimSpace(os.Getenv("ACADEMY_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".academy"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// A TUI and a CLI process may both write; unique temp names keep them from clobbering.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// Resolve layers defaults, the config file and the environment, in that order.
func Resolve(cfg *Config) (Settings, error) {
	s := Settings{
		RevealDuration: DefaultRevealDuration,
		Volume:         DefaultVolume,
		AudioSource:    DefaultAudioSource,
		AudioBackend:   DefaultAudioBackend,
		ImageBaseURL:   DefaultImageBaseURL,
		VariantCount:   DefaultVariantCount,
		SessionTTL:     DefaultSessionTTL,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
	if dir, err := ConfigDir(); err == nil {
		s.LogPath = filepath.Join(dir, "academy.log")
	}

	if cfg != nil {
		if cfg.RevealDurationMs > 0 {
			s.RevealDuration = time.Duration(cfg.RevealDurationMs) * time.Millisecond
		}
		if cfg.Volume != nil {
			s.Volume = *cfg.Volume
		}
		setString(&s.AudioSource, cfg.AudioSource)
		setString(&s.AudioBackend, cfg.AudioBackend)
		setString(&s.ImageBaseURL, cfg.ImageBaseURL)
		setString(&s.PlaceholderImage, cfg.PlaceholderImage)
		if cfg.VariantCount > 0 {
			s.VariantCount = cfg.VariantCount
		}
		if cfg.SessionTTLHours > 0 {
			s.SessionTTL = time.Duration(cfg.SessionTTLHours) * time.Hour
		}
		setString(&s.LogLevel, cfg.LogLevel)
		setString(&s.LogFormat, cfg.LogFormat)
		setString(&s.LogPath, cfg.LogPath)
		if cfg.TUI != nil {
			s.Theme = strings.TrimSpace(cfg.TUI.Theme)
			s.Glyphs = strings.TrimSpace(cfg.TUI.Glyphs)
		}
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if ov.RevealMs != nil {
		s.RevealDuration = time.Duration(*ov.RevealMs) * time.Millisecond
	}
	if ov.Volume != nil {
		s.Volume = *ov.Volume
	}
	setStringPtr(&s.AudioSource, ov.AudioSource)
	setStringPtr(&s.AudioBackend, ov.AudioBackend)
	setStringPtr(&s.ImageBaseURL, ov.ImageBaseURL)
	setStringPtr(&s.LogLevel, ov.LogLevel)
	setStringPtr(&s.LogFormat, ov.LogFormat)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	switch {
	case s.RevealDuration <= 0:
		return fmt.Errorf("reveal duration must be positive (got %s)", s.RevealDuration)
	case s.Volume <= 0 || s.Volume > 1:
		return fmt.Errorf("volume must be within (0, 1] (got %g); mute to silence", s.Volume)
	case s.VariantCount < 1:
		return fmt.Errorf("variant count must be >= 1 (got %d)", s.VariantCount)
	}
	switch s.AudioBackend {
	case "auto", "mpv", "none":
	default:
		return fmt.Errorf("audio backend: unsupported value %q (expected auto, mpv or none)", s.AudioBackend)
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setStringPtr(dst *string, v *string) {
	if v != nil {
		setString(dst, *v)
	}
}

// configKeys maps `academy config set` keys to setters on Config.
var configKeys = map[string]func(*Config, string) error{
	"revealDurationMs": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("revealDurationMs: expected a positive integer, got %q", v)
		}
		c.RevealDurationMs = n
		return nil
	},
	"volume": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("volume: expected a number within (0, 1], got %q", v)
		}
		c.Volume = &f
		return nil
	},
	"audioSource":      func(c *Config, v string) error { c.AudioSource = v; return nil },
	"audioBackend":     func(c *Config, v string) error { c.AudioBackend = v; return nil },
	"imageBaseUrl":     func(c *Config, v string) error { c.ImageBaseURL = v; return nil },
	"placeholderImage": func(c *Config, v string) error { c.PlaceholderImage = v; return nil },
	"variantCount": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("variantCount: expected an integer >= 1, got %q", v)
		}
		c.VariantCount = n
		return nil
	},
	"sessionTtlHours": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("sessionTtlHours: expected an integer >= 1, got %q", v)
		}
		c.SessionTTLHours = n
		return nil
	},
	"logLevel":  func(c *Config, v string) error { c.LogLevel = v; return nil },
	"logFormat": func(c *Config, v string) error { c.LogFormat = v; return nil },
	"logPath":   func(c *Config, v string) error { c.LogPath = v; return nil },
	"tui.theme": func(c *Config, v string) error {
		if c.TUI == nil {
			c.TUI = &TUIConfig{}
		}
		c.TUI.Theme = v
		return nil
	},
	"tui.glyphs": func(c *Config, v string) error {
		if c.TUI == nil {
			c.TUI = &TUIConfig{}
		}
		c.TUI.Glyphs = v
		return nil
	},
}

// ConfigKeys lists the keys accepted by (*Config).Set, sorted.
func ConfigKeys() []string {
	out := make([]string, 0, len(configKeys))
	for k := range configKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set assigns one key. An empty value clears it back to the default.
func (c *Config) Set(key, value string) error {
	fn, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return c.unset(key)
	}
	return fn(c, value)
}

func (c *Config) unset(key string) error {
	switch key {
	case "revealDurationMs":
		c.RevealDurationMs = 0
	case "volume":
		c.Volume = nil
	case "variantCount":
		c.VariantCount = 0
	case "sessionTtlHours":
		c.SessionTTLHours = 0
	default:
		// String keys: the setter with "" is the reset.
		return configKeys[key](c, "")
	}
	return nil
}
