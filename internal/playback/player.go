package playback

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
)

// Player is the audio backend the Coordinator drives. Only the Coordinator calls it, and
// it serializes those calls; Ready is the exception and may be called at any time.
type Player interface {
	// Load prepares url for playback without starting it.
	Load(ctx context.Context, url string, loop bool) error
	// Play starts or resumes from the current position.
	Play(ctx context.Context) error
	Pause() error
	SetVolume(v float64) error
	// Ready reports whether the loaded source has buffered data to resume from.
	Ready() bool
	Close() error
}

var ErrNoBackend = errors.New("no audio backend available")

// NullPlayer denies every play attempt. It stands in when no backend is installed so
// the rest of the client behaves exactly as it would under a strict autoplay policy.
type NullPlayer struct{}

func (NullPlayer) Load(context.Context, string, bool) error { return nil }
func (NullPlayer) Play(context.Context) error               { return ErrNoBackend }
func (NullPlayer) Pause() error                             { return nil }
func (NullPlayer) SetVolume(float64) error                  { return nil }
func (NullPlayer) Ready() bool                              { return false }
func (NullPlayer) Close() error                             { return nil }

// Backend names accepted by NewPlayer.
const (
	BackendAuto = "auto"
	BackendMPV  = "mpv"
	BackendNone = "none"
)

// NewPlayer picks a backend by name. "auto" uses mpv when it is on PATH and falls back to
// the null player otherwise.
func NewPlayer(backend string, logger *slog.Logger) Player {
	logger = orDiscard(logger)
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendNone:
		return NullPlayer{}
	case BackendMPV:
		return NewMPVPlayer("", logger)
	default:
		if _, err := exec.LookPath("mpv"); err == nil {
			return NewMPVPlayer("", logger)
		}
		logger.Info("audio backend unavailable; playback attempts will be denied", slog.String("wanted", "mpv"))
		return NullPlayer{}
	}
}
