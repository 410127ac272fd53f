package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "academy.log")
	l, err := New(Options{Level: "warn", Format: "json", OutputPaths: []string{path, path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("dropped")
	l.Warn("kept", "component", "playback")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line (info filtered, duplicate path collapsed); got %q", b)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["level"] != "warn" || rec["msg"] != "kept" || rec["component"] != "playback" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_RejectsBadOptions(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestNew_NoOutputsDiscards(t *testing.T) {
	t.Parallel()

	l, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("nowhere")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
