package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSQLiteStore_FlagRoundTripAndIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	a, err := OpenSQLite(ctx, dir, "tty-a", time.Hour)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	b, err := OpenSQLite(ctx, dir, "tty-b", time.Hour)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	if set, err := Flag(ctx, a, FlagVisitedEntrance); err != nil || set {
		t.Fatalf("fresh session flag = %v, %v; want false", set, err)
	}
	if err := SetFlag(ctx, a, FlagVisitedEntrance); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}

	// A relaunch in the same session sees the flag.
	again, err := OpenSQLite(ctx, dir, "tty-a", time.Hour)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if set, _ := Flag(ctx, again, FlagVisitedEntrance); !set {
		t.Fatalf("expected flag to persist within the session")
	}
	// Another session does not.
	if set, _ := Flag(ctx, b, FlagVisitedEntrance); set {
		t.Fatalf("flag leaked into another session")
	}

	entries, err := again.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if entries[FlagVisitedEntrance] != "true" {
		t.Fatalf("Entries = %v", entries)
	}

	if err := again.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if set, _ := Flag(ctx, a, FlagVisitedEntrance); set {
		t.Fatalf("expected flag cleared")
	}
}

func TestSQLiteStore_ExpiredSessionsArePruned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s, err := OpenSQLite(ctx, dir, "tty-a", time.Hour)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s.now = func() time.Time { return start }
	if err := SetFlag(ctx, s, FlagVisitedEntrance); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}

	s.now = func() time.Time { return start.Add(2 * time.Hour) }
	if set, _ := Flag(ctx, s, FlagVisitedEntrance); set {
		t.Fatalf("expired entry must not be visible")
	}
	if err := s.Prune(ctx); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected pruned; got %v", entries)
	}
}

func TestSQLiteStore_TTLRunsFromLastAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s, err := OpenSQLite(ctx, dir, "tty-a", time.Hour)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s.now = func() time.Time { return start }
	if err := SetFlag(ctx, s, FlagVisitedEntrance); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}

	s.now = func() time.Time { return start.Add(45 * time.Minute) }
	if set, _ := Flag(ctx, s, FlagVisitedEntrance); !set {
		t.Fatalf("flag must be visible within the TTL")
	}

	// 90 minutes after the write, but only 45 after the read.
	s.now = func() time.Time { return start.Add(90 * time.Minute) }
	if err := s.Prune(ctx); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if set, _ := Flag(ctx, s, FlagVisitedEntrance); !set {
		t.Fatalf("a read must extend the session")
	}

	// Idle for longer than the TTL after the last read.
	s.now = func() time.Time { return start.Add(3 * time.Hour) }
	if set, _ := Flag(ctx, s, FlagVisitedEntrance); set {
		t.Fatalf("idle session must expire")
	}
}

func TestOpenSQLite_RequiresSessionID(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite(context.Background(), t.TempDir(), "  ", 0)
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession; got %v", err)
	}
}

func TestFlag_FalseValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	_ = st.Set(ctx, "k", "false")
	if set, _ := Flag(ctx, st, "k"); set {
		t.Fatalf(`"false" must not count as set`)
	}
	_ = st.Set(ctx, "k", "TRUE")
	if set, _ := Flag(ctx, st, "k"); !set {
		t.Fatalf(`"TRUE" must count as set`)
	}
}

func TestResolveID_Priority(t *testing.T) {
	t.Setenv("ACADEMY_SESSION", "")
	t.Setenv("XDG_SESSION_ID", "")
	t.Setenv("TERM_SESSION_ID", "")

	if got := ResolveID(); !strings.HasPrefix(got, "ppid:") {
		t.Fatalf("expected ppid fallback; got %q", got)
	}
	t.Setenv("TERM_SESSION_ID", "w0t0p0")
	if got := ResolveID(); got != "term_session_id:w0t0p0" {
		t.Fatalf("got %q", got)
	}
	t.Setenv("ACADEMY_SESSION", "demo")
	if got := ResolveID(); got != "academy_session:demo" {
		t.Fatalf("got %q", got)
	}
}
