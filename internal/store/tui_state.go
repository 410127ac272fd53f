package store

import (
        "encoding/json"
        "errors"
        "os"
        "path/filepath"
        "strings"
)

const tuiStateFileName = "tui_state.json"

// TUIState stores small, user-facing UI state for restoring the last screen on relaunch.
//
// It is intentionally "best effort": callers should tolerate missing/invalid data.
// The entrance stage is not part of it; that lives in the session store.
type TUIState struct {
        Version int `json:"version"`

        // View is one of: world|characters|map|webtoon
        View string `json:"view,omitempty"`

        CharacterFilter string `json:"characterFilter,omitempty"`
        LocationFilter  string `json:"locationFilter,omitempty"`

        // WebtoonPage is the 0-based episode last shown.
        WebtoonPage int `json:"webtoonPage,omitempty"`

        Muted bool `json:"muted,omitempty"`
}

func (s Store) tuiStatePath() string {
        return filepath.Join(s.Dir, tuiStateFileName)
}

func (s Store) LoadTUIState() (*TUIState, error) {
        if strings.TrimSpace(s.Dir) == "" {
                return &TUIState{Version: 1}, nil
        }
        b, err := os.ReadFile(s.tuiStatePath())
        if err != nil {
                if errors.Is(err, os.ErrNotExist) {
                        return &TUIState{Version: 1}, nil
                }
                return nil, err
        }
        var st TUIState
        if err := json.Unmarshal(b, &st); err != nil {
                // Best-effort; if corrupted, treat as missing.
                return &TUIState{Version: 1}, nil
        }
        if st.Version == 0 {
                st.Version = 1
        }
        return &st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
        if st == nil || strings.TrimSpace(s.Dir) == "" {
                return nil
        }
        if err := s.Ensure(); err != nil {
                return err
        }
        if st.Version == 0 {
                st.Version = 1
        }
        b, err := json.MarshalIndent(st, "", "  ")
        if err != nil {
                return err
        }
        return atomicWriteFile(s.Dir, "tui_state.json.*.tmp", s.tuiStatePath(), b, 0o644)
}
