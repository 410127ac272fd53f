// Package onboarding gates the first view of a session behind a gesture and a timed reveal.
//
// The flow is Click -> Opening -> Main and never goes back. Machine.Transition is pure:
// it returns the next state plus the effects the host must perform (start the music,
// start or cancel the reveal timer, persist the session flag). Runner performs them for
// headless use; the TUI performs them with Bubble Tea commands.
package onboarding

import "time"

// DefaultReveal is how long the Opening stage lasts.
const DefaultReveal = 3500 * time.Millisecond

type Stage int

const (
	StageClick Stage = iota
	StageOpening
	StageMain
)

func (s Stage) String() string {
	switch s {
	case StageClick:
		return "click"
	case StageOpening:
		return "opening"
	case StageMain:
		return "main"
	default:
		return "unknown"
	}
}

// Gesture is the kind of input that counts as a qualifying user gesture.
type Gesture int

const (
	GesturePointer Gesture = iota
	GestureKey
	GestureTouch
)

// State is one sequencer's state. Token identifies the live reveal timer; fires carrying
// any other token are stale.
type State struct {
	Stage       Stage
	Token       uint64
	TimerActive bool
}

// Init is the state on mount: Main straight away when the session already saw the reveal.
func Init(flagSet bool) State {
	if flagSet {
		return State{Stage: StageMain}
	}
	return State{Stage: StageClick}
}

type Event interface{ isEvent() }

type (
	GestureEvent    struct{ Kind Gesture }
	EnterEvent      struct{}
	TimerFiredEvent struct{ Token uint64 }
	TeardownEvent   struct{}
)

func (GestureEvent) isEvent()    {}
func (EnterEvent) isEvent()      {}
func (TimerFiredEvent) isEvent() {}
func (TeardownEvent) isEvent()   {}

type Effect interface{ isEffect() }

type (
	RequestPlayEffect    struct{}
	StartTimerEffect     struct {
		Token uint64
		After time.Duration
	}
	CancelTimerEffect    struct{ Token uint64 }
	SetSessionFlagEffect struct{}
	// NavigateEffect asks the host to leave the entrance for the world view.
	NavigateEffect struct{}
)

func (RequestPlayEffect) isEffect()    {}
func (StartTimerEffect) isEffect()     {}
func (CancelTimerEffect) isEffect()    {}
func (SetSessionFlagEffect) isEffect() {}
func (NavigateEffect) isEffect()       {}

// Machine holds the sequencer's configuration.
type Machine struct {
	Reveal time.Duration
}

func (m Machine) reveal() time.Duration {
	if m.Reveal <= 0 {
		return DefaultReveal
	}
	return m.Reveal
}

// Transition applies ev to s.
//
//   - A gesture in Click moves to Opening, requests playback and starts the one reveal
//     timer. Gestures anywhere else do nothing.
//   - The live timer firing in Opening moves to Main and persists the session flag.
//   - Enter is the explicit navigation control. It is only shown in Main and it never
//     counts as a gesture, so it cannot restart the Opening sequence.
//   - Teardown cancels a live timer so it cannot fire after the view is gone.
func (m Machine) Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case GestureEvent:
		if s.Stage != StageClick {
			return s, nil
		}
		s.Stage = StageOpening
		s.Token++
		s.TimerActive = true
		return s, []Effect{
			RequestPlayEffect{},
			StartTimerEffect{Token: s.Token, After: m.reveal()},
		}

	case TimerFiredEvent:
		if s.Stage != StageOpening || !s.TimerActive || e.Token != s.Token {
			return s, nil
		}
		s.Stage = StageMain
		s.TimerActive = false
		return s, []Effect{SetSessionFlagEffect{}}

	case EnterEvent:
		if s.Stage != StageMain {
			return s, nil
		}
		return s, []Effect{NavigateEffect{}}

	case TeardownEvent:
		if !s.TimerActive {
			return s, nil
		}
		tok := s.Token
		s.TimerActive = false
		s.Token++
		return s, []Effect{CancelTimerEffect{Token: tok}}
	}
	return s, nil
}
