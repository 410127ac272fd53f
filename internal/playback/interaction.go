package playback

import (
	"context"
	"sync"
)

// Interaction is a kind of user input that platforms accept as permission to play audio.
type Interaction int

const (
	InteractionPointer Interaction = iota
	InteractionKey
	InteractionTouch
)

func (i Interaction) String() string {
	switch i {
	case InteractionPointer:
		return "pointer"
	case InteractionKey:
		return "key"
	case InteractionTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// FirstInteraction is a one-shot listener set: the first pointer, key or touch event
// requests playback once and disarms all three kinds. It never re-arms.
type FirstInteraction struct {
	mu    sync.Mutex
	coord *Coordinator
	armed map[Interaction]bool
}

// ArmFirstInteraction arms the fallback listeners for pointer, key and touch input.
func (c *Coordinator) ArmFirstInteraction() *FirstInteraction {
	return &FirstInteraction{
		coord: c,
		armed: map[Interaction]bool{
			InteractionPointer: true,
			InteractionKey:     true,
			InteractionTouch:   true,
		},
	}
}

// Notify reports an input event. The first armed event returns the play result channel
// and true; every later call returns nil, false.
func (f *FirstInteraction) Notify(ctx context.Context, kind Interaction) (<-chan Result, bool) {
	f.mu.Lock()
	if !f.armed[kind] {
		f.mu.Unlock()
		return nil, false
	}
	// Remove all listeners before the attempt so its outcome cannot matter.
	clear(f.armed)
	f.mu.Unlock()
	return f.coord.RequestPlay(ctx), true
}

func (f *FirstInteraction) Armed(kind Interaction) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.armed[kind]
}
