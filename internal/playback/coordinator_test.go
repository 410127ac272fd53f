package playback

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
)

// scriptedPlayer records calls and lets tests hold Play open to simulate a slow attempt.
type scriptedPlayer struct {
	mu sync.Mutex

	playErr error
	ready   bool
	gate    chan struct{}

	loads   []string
	plays   int
	pauses  int
	volumes []float64
	closed  bool
}

func (p *scriptedPlayer) Load(_ context.Context, url string, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, url)
	return nil
}

func (p *scriptedPlayer) Play(context.Context) error {
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	if p.playErr == nil {
		p.ready = true
	}
	return p.playErr
}

func (p *scriptedPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	return nil
}

func (p *scriptedPlayer) SetVolume(v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumes = append(p.volumes, v)
	return nil
}

func (p *scriptedPlayer) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *scriptedPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *scriptedPlayer) counts() (loads, plays, pauses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loads), p.plays, p.pauses
}

func TestNew_AppliesDefaultVolumeOnce(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{}
	c := New(p, Options{})
	if len(p.volumes) != 1 || p.volumes[0] != DefaultVolume {
		t.Fatalf("expected one SetVolume(%v); got %v", DefaultVolume, p.volumes)
	}
	if c.State().Volume != DefaultVolume {
		t.Fatalf("state volume = %v", c.State().Volume)
	}

	p2 := &scriptedPlayer{}
	_ = New(p2, Options{Volume: 0.7})
	if p2.volumes[0] != 0.7 {
		t.Fatalf("configured volume not applied: %v", p2.volumes)
	}
}

func TestRequestPlay_StartsAndLoadsOnce(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{}
	c := New(p, Options{})
	c.RegisterSource("https://example.test/bgm.mp3")

	res := <-c.RequestPlay(context.Background())
	if !res.Started() || res.AttemptID == "" {
		t.Fatalf("expected started result with attempt id; got %+v", res)
	}
	if !c.State().Playing {
		t.Fatalf("expected playing state")
	}

	again := <-c.RequestPlay(context.Background())
	if again.Outcome != OutcomeSkipped || again.Reason != ReasonPlaying {
		t.Fatalf("expected skip while playing; got %+v", again)
	}
	loads, plays, _ := p.counts()
	if loads != 1 || plays != 1 {
		t.Fatalf("loads=%d plays=%d; want 1/1", loads, plays)
	}
}

func TestRequestPlay_MutedIsNoOp(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{}
	c := New(p, Options{})
	c.RegisterSource("src")
	c.SetMuted(true)

	res := <-c.RequestPlay(context.Background())
	if res.Outcome != OutcomeSkipped || res.Reason != ReasonMuted {
		t.Fatalf("expected muted skip; got %+v", res)
	}
	if _, plays, _ := p.counts(); plays != 0 {
		t.Fatalf("muted request reached the backend")
	}
}

func TestRequestPlay_DeniedIsResultNotPanic(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{playErr: errors.New("NotAllowedError")}
	c := New(p, Options{})
	c.RegisterSource("src")

	res := <-c.RequestPlay(context.Background())
	if res.Outcome != OutcomeDenied || !errors.Is(res.Err, ErrPlaybackDenied) {
		t.Fatalf("expected denied result; got %+v", res)
	}
	st := c.State()
	if st.Playing || st.Pending {
		t.Fatalf("expected not playing after denial; got %+v", st)
	}

	// The next qualifying request tries again.
	p.mu.Lock()
	p.playErr = nil
	p.mu.Unlock()
	if res := <-c.RequestPlay(context.Background()); !res.Started() {
		t.Fatalf("expected retry to start; got %+v", res)
	}
}

func TestRequestPlay_NoSourceDenied(t *testing.T) {
	t.Parallel()

	c := New(&scriptedPlayer{}, Options{})
	res := <-c.RequestPlay(context.Background())
	if res.Outcome != OutcomeDenied || !errors.Is(res.Err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource denial; got %+v", res)
	}
}

func TestRequestPlay_ConcurrentCallersShareOneAttempt(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{gate: make(chan struct{})}
	c := New(p, Options{})
	c.RegisterSource("src")

	first := c.RequestPlay(context.Background())

	var wg sync.WaitGroup
	skipped := make(chan Result, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			skipped <- <-c.RequestPlay(context.Background())
		}()
	}
	wg.Wait()
	close(skipped)
	for r := range skipped {
		if r.Outcome != OutcomeSkipped || r.Reason != ReasonPending {
			t.Fatalf("expected pending skip; got %+v", r)
		}
	}

	close(p.gate)
	if res := <-first; !res.Started() {
		t.Fatalf("expected first attempt to start; got %+v", res)
	}
	if _, plays, _ := p.counts(); plays != 1 {
		t.Fatalf("expected exactly one backend play; got %d", plays)
	}
}

func TestSetMuted_PausesSynchronouslyAndResumesOnlyWhenReady(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{}
	c := New(p, Options{})
	c.RegisterSource("src")
	<-c.RequestPlay(context.Background())

	c.SetMuted(true)
	if _, _, pauses := p.counts(); pauses != 1 {
		t.Fatalf("expected pause before SetMuted returned; pauses=%d", pauses)
	}
	if !c.IsMuted() || c.State().Playing {
		t.Fatalf("expected muted, not playing; got %+v", c.State())
	}

	c.SetMuted(false)
	c.Wait()
	loads, plays, _ := p.counts()
	if loads != 1 {
		t.Fatalf("unmute must not reload the source; loads=%d", loads)
	}
	if plays != 2 || !c.State().Playing {
		t.Fatalf("expected resume after unmute; plays=%d state=%+v", plays, c.State())
	}
}

func TestSetMuted_FalseWithoutBufferedDataDoesNotPlay(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{}
	c := New(p, Options{})
	c.RegisterSource("src")

	c.SetMuted(true)
	c.SetMuted(false)
	c.Wait()
	if loads, plays, _ := p.counts(); loads != 0 || plays != 0 {
		t.Fatalf("unmute on unready source must not play; loads=%d plays=%d", loads, plays)
	}
	if c.IsMuted() {
		t.Fatalf("expected unmuted")
	}
}

func TestSetMuted_DuringPendingAttemptWins(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{gate: make(chan struct{})}
	c := New(p, Options{})
	c.RegisterSource("src")
	ch := c.RequestPlay(context.Background())

	done := make(chan struct{})
	go func() {
		c.SetMuted(true)
		close(done)
	}()
	for !c.IsMuted() {
		runtime.Gosched()
	}
	close(p.gate)
	<-done

	res := <-ch
	if res.Started() {
		t.Fatalf("attempt must not report started after mute; got %+v", res)
	}
	if c.State().Playing {
		t.Fatalf("expected not playing")
	}
}

func TestSetMuted_MuteThenUnmuteDuringPendingAttemptKeepsPlaying(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{gate: make(chan struct{})}
	c := New(p, Options{})
	c.RegisterSource("src")
	ch := c.RequestPlay(context.Background())

	muted := make(chan struct{})
	go func() {
		c.SetMuted(true)
		close(muted)
	}()
	for !c.IsMuted() {
		runtime.Gosched()
	}
	c.SetMuted(false)
	close(p.gate)
	<-muted

	if res := <-ch; !res.Started() {
		t.Fatalf("expected attempt to start once unmuted; got %+v", res)
	}
	c.Wait()
	st := c.State()
	if st.Muted || !st.Playing {
		t.Fatalf("expected unmuted and playing; got %+v", st)
	}
	if _, plays, pauses := p.counts(); plays != 1 || pauses != 0 {
		t.Fatalf("stale mute must not pause the running attempt; plays=%d pauses=%d", plays, pauses)
	}

	// Muting again still works.
	c.SetMuted(true)
	if _, _, pauses := p.counts(); pauses != 1 || c.State().Playing {
		t.Fatalf("expected a pause on the next mute; pauses=%d state=%+v", pauses, c.State())
	}
}

func TestRequestPlay_BackendDroppedSourceIsRetried(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{}
	c := New(p, Options{})
	c.RegisterSource("src")
	if res := <-c.RequestPlay(context.Background()); !res.Started() {
		t.Fatalf("expected start; got %+v", res)
	}

	// The backend lost the source after it started (load error, process exit).
	p.mu.Lock()
	p.ready = false
	p.mu.Unlock()
	if c.State().Playing {
		t.Fatalf("state must not report playing once the backend dropped the source")
	}

	res := <-c.RequestPlay(context.Background())
	if !res.Started() {
		t.Fatalf("next gesture must retry; got %+v", res)
	}
	if loads, plays, _ := p.counts(); loads != 2 || plays != 2 {
		t.Fatalf("expected a reload and a second play; loads=%d plays=%d", loads, plays)
	}
}

func TestFirstInteraction_FiresOnceAndNeverRearms(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{playErr: errors.New("denied")}
	c := New(p, Options{})
	c.RegisterSource("src")
	fi := c.ArmFirstInteraction()

	ch, ok := fi.Notify(context.Background(), InteractionKey)
	if !ok {
		t.Fatalf("expected first interaction to fire")
	}
	if res := <-ch; res.Outcome != OutcomeDenied {
		t.Fatalf("expected denied; got %+v", res)
	}
	for _, k := range []Interaction{InteractionPointer, InteractionKey, InteractionTouch} {
		if fi.Armed(k) {
			t.Fatalf("%v still armed after first interaction", k)
		}
		if _, ok := fi.Notify(context.Background(), k); ok {
			t.Fatalf("%v fired twice", k)
		}
	}
	if _, plays, _ := p.counts(); plays != 1 {
		t.Fatalf("expected exactly one attempt; got %d", plays)
	}
}

func TestClose_ReleasesBackend(t *testing.T) {
	t.Parallel()

	p := &scriptedPlayer{}
	c := New(p, Options{})
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.closed {
		t.Fatalf("expected backend closed")
	}
}

func TestNullPlayer_DeniesPlayback(t *testing.T) {
	t.Parallel()

	c := New(NewPlayer(BackendNone, nil), Options{})
	c.RegisterSource("src")
	res := <-c.RequestPlay(context.Background())
	if !errors.Is(res.Err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend; got %+v", res)
	}
}
