package store

import (
        "os"
        "path/filepath"
        "strings"
)

// Store is the client's state directory (~/.academy by default). It holds config.json,
// tui_state.json, the session database and the log file.
type Store struct {
        Dir string
}

// Open returns the store rooted at ConfigDir.
func Open() (Store, error) {
        dir, err := ConfigDir()
        if err != nil {
                return Store{}, err
        }
        return Store{Dir: dir}, nil
}

func (s Store) Ensure() error {
        if strings.TrimSpace(s.Dir) == "" {
                return nil
        }
        return os.MkdirAll(s.Dir, 0o755)
}

// SessionDir is where session.SQLiteStore keeps its database and lock file.
func (s Store) SessionDir() string {
        return filepath.Join(s.Dir, "session")
}
