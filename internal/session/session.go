// Package session stores small values that live for one browsing session: they survive
// relaunching the client from the same terminal session and disappear when that session
// ends.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FlagVisitedEntrance is set once the entrance reveal has completed.
const FlagVisitedEntrance = "hasVisitedEntrance"

var ErrNoSession = errors.New("session: no session id")

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Clear drops every value of the current session.
	Clear(ctx context.Context) error
}

// Flag reads a boolean-like entry. Any present value other than "" and "false" counts as set.
func Flag(ctx context.Context, st Store, key string) (bool, error) {
	v, ok, err := st.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	v = strings.TrimSpace(strings.ToLower(v))
	return v != "" && v != "false", nil
}

func SetFlag(ctx context.Context, st Store, key string) error {
	return st.Set(ctx, key, "true")
}

// ResolveID returns the id of the current browsing session.
//
// Priority:
// 1) ACADEMY_SESSION
// 2) XDG_SESSION_ID (login session)
// 3) TERM_SESSION_ID (macOS Terminal / iTerm tabs)
// 4) the parent process id, i.e. the launching shell
func ResolveID() string {
	for _, k := range []string{"ACADEMY_SESSION", "XDG_SESSION_ID", "TERM_SESSION_ID"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return strings.ToLower(k) + ":" + v
		}
	}
	return fmt.Sprintf("ppid:%d", os.Getppid())
}

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.m)
	return nil
}
