// Package playback owns the single background-music resource shared by every view.
//
// A Coordinator is built once at startup and handed to whoever needs to start, stop or
// mute the music (the navigation bar's mute toggle, the entrance gesture, the
// first-interaction fallback). All mutations go through its methods.
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// DefaultVolume is applied once at construction.
const DefaultVolume = 0.4

var (
	ErrPlaybackDenied = errors.New("playback denied")
	ErrNoSource       = errors.New("no audio source registered")
)

// Outcome of one play request.
type Outcome int

const (
	OutcomeStarted Outcome = iota
	OutcomeSkipped
	OutcomeDenied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "denied"
	}
}

// Skip reasons.
const (
	ReasonMuted   = "muted"
	ReasonPending = "pending"
	ReasonPlaying = "already playing"
)

// Result is the deferred outcome of RequestPlay. Denials carry an error wrapping
// ErrPlaybackDenied; nothing is ever thrown at the caller.
type Result struct {
	AttemptID string
	Outcome   Outcome
	Reason    string
	Err       error
}

func (r Result) Started() bool { return r.Outcome == OutcomeStarted }

// State is a snapshot of the coordinator's playback state.
type State struct {
	Source  string  `json:"source"`
	Volume  float64 `json:"volume"`
	Muted   bool    `json:"muted"`
	Ready   bool    `json:"ready"`
	Pending bool    `json:"pending"`
	Playing bool    `json:"playing"`
}

type Options struct {
	// Volume in [0, 1]. Zero means DefaultVolume.
	Volume float64
	Logger *slog.Logger
}

type Coordinator struct {
	// mu guards the fields below; playerMu serializes backend calls. Lock order is
	// playerMu then mu; mu is never held while waiting on playerMu.
	mu       sync.Mutex
	playerMu sync.Mutex

	player Player
	log    *slog.Logger
	volume float64

	source  string
	loaded  bool
	muted   bool
	pending bool
	playing bool

	wg sync.WaitGroup
}

func New(player Player, opts Options) *Coordinator {
	if player == nil {
		player = NullPlayer{}
	}
	vol := opts.Volume
	if vol <= 0 || vol > 1 {
		vol = DefaultVolume
	}
	c := &Coordinator{
		player: player,
		log:    orDiscard(opts.Logger).With(slog.String("component", "playback")),
		volume: vol,
	}
	if err := player.SetVolume(vol); err != nil {
		c.log.Warn("set initial volume failed", slog.Any("error", err))
	}
	return c
}

// RegisterSource sets the looping source for later play attempts. Registering a different
// url discards whatever the backend had loaded.
func (c *Coordinator) RegisterSource(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if url == c.source {
		return
	}
	c.source = url
	c.loaded = false
	c.playing = false
}

// RequestPlay attempts to start playback and returns immediately. The channel receives
// exactly one Result and is then closed.
//
// Muted, already pending and already playing requests are no-ops reported as
// OutcomeSkipped, so concurrent callers during one attempt never start a second one.
func (c *Coordinator) RequestPlay(ctx context.Context) <-chan Result {
	return c.requestPlay(ctx, false)
}

func (c *Coordinator) requestPlay(ctx context.Context, resumeOnly bool) <-chan Result {
	ch := make(chan Result, 1)

	ready := c.isReady()
	c.mu.Lock()
	if c.playing && !ready {
		// The backend dropped the source (load error, process exit) after it started.
		c.log.Info("backend no longer playing; reloading on next attempt")
		c.playing = false
		c.loaded = false
	}
	var skip string
	switch {
	case c.muted:
		skip = ReasonMuted
	case c.pending:
		skip = ReasonPending
	case c.playing:
		skip = ReasonPlaying
	}
	if skip != "" {
		c.mu.Unlock()
		ch <- Result{Outcome: OutcomeSkipped, Reason: skip}
		close(ch)
		return ch
	}
	if c.source == "" {
		c.mu.Unlock()
		res := Result{AttemptID: uuid.NewString(), Outcome: OutcomeDenied, Err: fmt.Errorf("%w: %w", ErrPlaybackDenied, ErrNoSource)}
		c.log.Warn("play attempt denied", slog.String("attempt", res.AttemptID), slog.Any("error", res.Err))
		ch <- res
		close(ch)
		return ch
	}
	c.pending = true
	src := c.source
	needLoad := !c.loaded && !resumeOnly
	id := uuid.NewString()
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer close(ch)
		ch <- c.attempt(ctx, id, src, needLoad)
	}()
	return ch
}

func (c *Coordinator) attempt(ctx context.Context, id, src string, needLoad bool) Result {
	log := c.log.With(slog.String("attempt", id))

	c.playerMu.Lock()
	var err error
	if needLoad {
		if err = c.player.Load(ctx, src, true); err != nil {
			err = fmt.Errorf("load %s: %w", src, err)
		}
	}
	if err == nil {
		err = c.player.Play(ctx)
	}
	c.playerMu.Unlock()

	c.mu.Lock()
	c.pending = false
	if needLoad && err == nil {
		c.loaded = src == c.source
	}
	if err != nil {
		c.playing = false
		c.mu.Unlock()
		res := Result{AttemptID: id, Outcome: OutcomeDenied, Err: fmt.Errorf("%w: %w", ErrPlaybackDenied, err)}
		log.Warn("play attempt denied", slog.Any("error", res.Err))
		return res
	}
	if c.muted {
		// Muted while the attempt was in flight: honor the mute.
		c.playing = false
		c.mu.Unlock()
		c.pauseIfMuted(log)
		log.Debug("play attempt superseded by mute")
		return Result{AttemptID: id, Outcome: OutcomeSkipped, Reason: ReasonMuted}
	}
	c.playing = true
	c.mu.Unlock()
	log.Info("playback started", slog.String("source", src))
	return Result{AttemptID: id, Outcome: OutcomeStarted}
}

// Pause stops playback without changing the muted flag.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	c.playing = false
	c.mu.Unlock()
	c.pauseBackend(c.log)
}

func (c *Coordinator) pauseBackend(log *slog.Logger) {
	c.playerMu.Lock()
	defer c.playerMu.Unlock()
	if err := c.player.Pause(); err != nil {
		log.Warn("pause failed", slog.Any("error", err))
	}
}

// pauseIfMuted pauses the backend unless an unmute landed while this caller waited for
// it. An attempt in flight at that unmute then keeps playing instead of being paused
// behind its back.
func (c *Coordinator) pauseIfMuted(log *slog.Logger) {
	c.playerMu.Lock()
	defer c.playerMu.Unlock()
	c.mu.Lock()
	muted := c.muted
	c.mu.Unlock()
	if !muted {
		log.Debug("pause skipped; unmuted meanwhile")
		return
	}
	if err := c.player.Pause(); err != nil {
		log.Warn("pause failed", slog.Any("error", err))
	}
}

// SetMuted(true) pauses before returning and records the mute. SetMuted(false) clears it
// and resumes from the current position, but only when the backend already has data
// buffered; it never reloads the source.
func (c *Coordinator) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	if muted {
		c.playing = false
		c.mu.Unlock()
		c.pauseIfMuted(c.log)
		return
	}
	c.mu.Unlock()

	if !c.isReady() {
		c.log.Debug("unmuted; source not ready, not resuming")
		return
	}
	c.requestPlay(context.Background(), true)
}

func (c *Coordinator) IsMuted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// ToggleMute flips the muted flag and returns the new value.
func (c *Coordinator) ToggleMute() bool {
	muted := !c.IsMuted()
	c.SetMuted(muted)
	return muted
}

func (c *Coordinator) isReady() bool {
	return c.player.Ready()
}

func (c *Coordinator) State() State {
	ready := c.isReady()
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Source:  c.source,
		Volume:  c.volume,
		Muted:   c.muted,
		Ready:   ready,
		Pending: c.pending,
		Playing: c.playing && ready,
	}
}

// Wait blocks until in-flight play attempts have finished.
func (c *Coordinator) Wait() { c.wg.Wait() }

// Close waits for in-flight attempts and releases the backend.
func (c *Coordinator) Close() error {
	c.wg.Wait()
	c.playerMu.Lock()
	defer c.playerMu.Unlock()
	return c.player.Close()
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
