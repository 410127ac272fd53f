package onboarding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"academy-cli/internal/playback"
	"academy-cli/internal/session"
)

// Clock schedules the reveal timer.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock schedules with time.AfterFunc.
var RealClock Clock = realClock{}

// PlayRequester is the part of the playback coordinator the sequencer uses.
type PlayRequester interface {
	RequestPlay(ctx context.Context) <-chan playback.Result
}

type RunnerConfig struct {
	Machine Machine
	Clock   Clock
	Session session.Store
	Player  PlayRequester
	Logger  *slog.Logger

	// OnStage is called after every stage change, outside the runner's lock.
	OnStage func(Stage)
	// OnNavigate is called when the enter control is used in Main.
	OnNavigate func()
}

// Runner drives one sequencer lifetime: mount (NewRunner), events (Dispatch) and
// teardown (Close).
type Runner struct {
	cfg RunnerConfig
	log *slog.Logger
	ctx context.Context

	mu      sync.Mutex
	state   State
	timer   Timer
	started int
}

func NewRunner(ctx context.Context, cfg RunnerConfig) (*Runner, error) {
	if cfg.Session == nil {
		return nil, errors.New("onboarding: session store required")
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	flag, err := session.Flag(ctx, cfg.Session, session.FlagVisitedEntrance)
	if err != nil {
		// An unreadable session store only costs a replay of the reveal.
		log.Warn("read session flag failed", slog.Any("error", err))
	}
	return &Runner{
		cfg:   cfg,
		log:   log.With(slog.String("component", "onboarding")),
		ctx:   context.WithoutCancel(ctx),
		state: Init(flag),
	}, nil
}

func (r *Runner) Stage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Stage
}

// TimersStarted is how many reveal timers this runner has scheduled.
func (r *Runner) TimersStarted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Dispatch applies ev and performs the resulting effects.
func (r *Runner) Dispatch(ev Event) {
	r.mu.Lock()
	before := r.state.Stage
	next, effects := r.cfg.Machine.Transition(r.state, ev)
	r.state = next
	for _, eff := range effects {
		switch e := eff.(type) {
		case StartTimerEffect:
			tok := e.Token
			r.started++
			r.timer = r.cfg.Clock.AfterFunc(e.After, func() {
				r.Dispatch(TimerFiredEvent{Token: tok})
			})
		case CancelTimerEffect:
			if r.timer != nil {
				r.timer.Stop()
				r.timer = nil
			}
		}
	}
	after := r.state.Stage
	r.mu.Unlock()

	for _, eff := range effects {
		switch eff.(type) {
		case RequestPlayEffect:
			r.requestPlay()
		case SetSessionFlagEffect:
			if err := session.SetFlag(r.ctx, r.cfg.Session, session.FlagVisitedEntrance); err != nil {
				r.log.Warn("persist session flag failed", slog.Any("error", err))
			}
		case NavigateEffect:
			if r.cfg.OnNavigate != nil {
				r.cfg.OnNavigate()
			}
		}
	}
	if before != after {
		r.log.Debug("stage changed", slog.String("from", before.String()), slog.String("to", after.String()))
		if r.cfg.OnStage != nil {
			r.cfg.OnStage(after)
		}
	}
}

func (r *Runner) requestPlay() {
	if r.cfg.Player == nil {
		return
	}
	ch := r.cfg.Player.RequestPlay(r.ctx)
	go func() {
		res := <-ch
		if res.Outcome == playback.OutcomeDenied {
			r.log.Info("entrance music not started", slog.Any("error", res.Err))
		}
	}()
}

// Close tears the sequencer down, cancelling a pending reveal.
func (r *Runner) Close() {
	r.Dispatch(TeardownEvent{})
}
