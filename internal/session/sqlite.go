package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const (
	sqliteFileName = "session.sqlite"
	lockFileName   = "session.lock"

	DefaultTTL = 12 * time.Hour
)

// SQLiteStore keeps session values in a SQLite file shared by every client process on the
// machine, one row set per session id. Opening the store and reading a value refresh the
// session's rows, so the TTL runs from last access. Rows untouched for longer than the TTL
// belong to sessions that have ended and are pruned on open.
type SQLiteStore struct {
	Dir       string
	SessionID string
	TTL       time.Duration

	now func() time.Time
}

// OpenSQLite prepares the store under dir, prunes expired sessions and refreshes the
// current one.
func OpenSQLite(ctx context.Context, dir, sessionID string, ttl time.Duration) (*SQLiteStore, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNoSession
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &SQLiteStore{Dir: dir, SessionID: sessionID, TTL: ttl, now: time.Now}
	if err := s.Prune(ctx); err != nil {
		return nil, err
	}
	if err := s.Touch(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) path() string     { return filepath.Join(s.Dir, sqliteFileName) }
func (s *SQLiteStore) lockPath() string { return filepath.Join(s.Dir, lockFileName) }

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS session_entries (
		session_id TEXT NOT NULL,
		k TEXT NOT NULL,
		v TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL,
		PRIMARY KEY (session_id, k)
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// withWriteLock serializes writers across processes. SQLite would cope on its own, but the
// lock keeps prune-then-write sequences from interleaving between two clients.
func (s *SQLiteStore) withWriteLock(ctx context.Context, fn func(*sql.DB) error) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	lk := flock.New(s.lockPath())
	ok, err := lk.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return fmt.Errorf("session lock: %w", err)
	}
	if !ok {
		return errors.New("session lock: not acquired")
	}
	defer func() { _ = lk.Unlock() }()

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	db, err := s.open(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx,
		`SELECT v FROM session_entries WHERE session_id = ? AND k = ? AND updated_at_unixms >= ?`,
		s.SessionID, key, s.cutoff(),
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if err := s.Touch(ctx); err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return s.withWriteLock(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT OR REPLACE INTO session_entries(session_id, k, v, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			s.SessionID, key, value, s.now().UnixMilli(),
		)
		return err
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.withWriteLock(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM session_entries WHERE session_id = ?`, s.SessionID)
		return err
	})
}

// Touch marks the session's live entries as accessed now.
func (s *SQLiteStore) Touch(ctx context.Context) error {
	return s.withWriteLock(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`UPDATE session_entries SET updated_at_unixms = ? WHERE session_id = ? AND updated_at_unixms >= ?`,
			s.now().UnixMilli(), s.SessionID, s.cutoff(),
		)
		return err
	})
}

// Prune removes entries of sessions that have expired.
func (s *SQLiteStore) Prune(ctx context.Context) error {
	return s.withWriteLock(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM session_entries WHERE updated_at_unixms < ?`, s.cutoff())
		return err
	})
}

// Entries lists the current session's values (for `academy session status`).
func (s *SQLiteStore) Entries(ctx context.Context) (map[string]string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT k, v FROM session_entries WHERE session_id = ? AND updated_at_unixms >= ? ORDER BY k`,
		s.SessionID, s.cutoff(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *SQLiteStore) cutoff() int64 {
	return s.now().Add(-s.TTL).UnixMilli()
}
