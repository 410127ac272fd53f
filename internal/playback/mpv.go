package playback

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	mpvStartTimeout   = 3 * time.Second
	mpvCommandTimeout = 5 * time.Second
	mpvLoadTimeout    = 15 * time.Second
)

// MPVPlayer plays audio through an idle mpv process controlled over its JSON IPC socket.
// The process is started lazily on the first Load.
type MPVPlayer struct {
	binary string
	log    *slog.Logger
	volume float64

	cmd    *exec.Cmd
	conn   net.Conn
	socket string
	done   chan struct{}

	mu      sync.Mutex
	nextID  int64
	replies map[int64]chan mpvReply
	ready   bool
	// loaded receives the outcome of the loadfile in flight, if any.
	loaded chan error
}

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type mpvReply struct {
	Error     string          `json:"error"`
	RequestID int64           `json:"request_id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`

	// end-file fields.
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

func NewMPVPlayer(binary string, logger *slog.Logger) *MPVPlayer {
	if strings.TrimSpace(binary) == "" {
		binary = "mpv"
	}
	return &MPVPlayer{
		binary:  binary,
		log:     orDiscard(logger).With(slog.String("backend", "mpv")),
		volume:  DefaultVolume,
		replies: map[int64]chan mpvReply{},
	}
}

func (p *MPVPlayer) started() bool { return p.conn != nil }

func (p *MPVPlayer) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *MPVPlayer) start(ctx context.Context) error {
	if p.started() && !p.exited() {
		return nil
	}
	if p.started() {
		p.log.Warn("mpv exited; restarting")
		p.release()
	}
	if _, err := exec.LookPath(p.binary); err != nil {
		return fmt.Errorf("%w: %v", ErrNoBackend, err)
	}
	p.socket = filepath.Join(os.TempDir(), "academy-mpv-"+uuid.NewString()+".sock")
	cmd := exec.Command(p.binary,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--really-quiet",
		"--pause=yes",
		fmt.Sprintf("--volume=%d", int(p.volume*100)),
		"--input-ipc-server="+p.socket,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, mpvStartTimeout)
	defer cancel()
	var conn net.Conn
	for {
		c, err := net.Dial("unix", p.socket)
		if err == nil {
			conn = c
			break
		}
		select {
		case <-startCtx.Done():
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return fmt.Errorf("mpv ipc socket: %w", startCtx.Err())
		case <-time.After(50 * time.Millisecond):
		}
	}

	p.cmd = cmd
	p.conn = conn
	p.done = make(chan struct{})
	go p.readLoop(conn, p.done)
	p.log.Debug("mpv started", slog.String("socket", p.socket), slog.Int("pid", cmd.Process.Pid))
	return nil
}

func (p *MPVPlayer) readLoop(conn net.Conn, done chan struct{}) {
	defer func() {
		p.mu.Lock()
		p.ready = false
		p.mu.Unlock()
		close(done)
	}()
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var r mpvReply
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		p.mu.Lock()
		switch r.Event {
		case "file-loaded":
			p.ready = true
			p.finishLoad(nil)
		case "playback-restart":
			p.ready = true
		case "end-file":
			p.ready = false
			// Replacing a file ends the previous one with reason "stop"; only errors
			// belong to the load in flight.
			if r.Reason == "error" {
				p.finishLoad(fmt.Errorf("mpv load: %s", orString(r.FileError, "error")))
			}
		case "idle":
			p.ready = false
		case "":
			if ch, ok := p.replies[r.RequestID]; ok {
				delete(p.replies, r.RequestID)
				ch <- r
			}
		}
		p.mu.Unlock()
	}
}

func (p *MPVPlayer) command(ctx context.Context, args ...any) error {
	if !p.started() {
		return ErrNoBackend
	}
	ch := make(chan mpvReply, 1)
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.replies[id] = ch
	p.mu.Unlock()

	b, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		return err
	}
	if _, err := p.conn.Write(append(b, '\n')); err != nil {
		p.forget(id)
		return fmt.Errorf("mpv ipc write: %w", err)
	}

	timer := time.NewTimer(mpvCommandTimeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		if r.Error != "success" {
			return fmt.Errorf("mpv %v: %s", args[0], r.Error)
		}
		return nil
	case <-p.done:
		return errors.New("mpv exited")
	case <-timer.C:
		p.forget(id)
		return fmt.Errorf("mpv %v: timed out", args[0])
	case <-ctx.Done():
		p.forget(id)
		return ctx.Err()
	}
}

// finishLoad reports a load outcome to the waiting Load. Callers hold p.mu.
func (p *MPVPlayer) finishLoad(err error) {
	if p.loaded == nil {
		return
	}
	p.loaded <- err
	p.loaded = nil
}

func orString(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

func (p *MPVPlayer) forget(id int64) {
	p.mu.Lock()
	delete(p.replies, id)
	p.mu.Unlock()
}

func (p *MPVPlayer) Load(ctx context.Context, url string, loop bool) error {
	if err := p.start(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.ready = false
	p.mu.Unlock()
	if err := p.command(ctx, "set_property", "pause", true); err != nil {
		return err
	}
	loopVal := "no"
	if loop {
		loopVal = "inf"
	}
	if err := p.command(ctx, "set_property", "loop-file", loopVal); err != nil {
		return err
	}
	return p.loadfile(ctx, url)
}

// loadfile returns once mpv has opened url, or with the error it ended on. mpv acknowledges
// loadfile as soon as it is queued, so the reply alone says nothing about the source.
func (p *MPVPlayer) loadfile(ctx context.Context, url string) error {
	wait := make(chan error, 1)
	p.mu.Lock()
	p.loaded = wait
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		if p.loaded == wait {
			p.loaded = nil
		}
		p.mu.Unlock()
	}()

	if err := p.command(ctx, "loadfile", url, "replace"); err != nil {
		return err
	}

	timer := time.NewTimer(mpvLoadTimeout)
	defer timer.Stop()
	select {
	case err := <-wait:
		return err
	case <-p.done:
		return errors.New("mpv exited")
	case <-timer.C:
		return errors.New("mpv load: timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *MPVPlayer) Play(ctx context.Context) error {
	return p.command(ctx, "set_property", "pause", false)
}

func (p *MPVPlayer) Pause() error {
	if !p.started() {
		return nil
	}
	return p.command(context.Background(), "set_property", "pause", true)
}

func (p *MPVPlayer) SetVolume(v float64) error {
	p.volume = v
	if !p.started() {
		return nil
	}
	return p.command(context.Background(), "set_property", "volume", v*100)
}

func (p *MPVPlayer) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// release closes the socket and reaps the process.
func (p *MPVPlayer) release() error {
	_ = p.conn.Close()
	var err error
	if p.cmd != nil {
		err = p.cmd.Wait()
	}
	if p.socket != "" {
		_ = os.Remove(p.socket)
	}
	p.conn = nil
	p.cmd = nil
	return err
}

func (p *MPVPlayer) Close() error {
	if !p.started() {
		return nil
	}
	if !p.exited() {
		_ = p.command(context.Background(), "quit")
	}
	err := p.release()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return nil
	}
	return err
}
