package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readEntries parses every JSON line in the data directory's log file.
func readEntries(t *testing.T, dataDir string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dataDir, logFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerWritesJSON(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLogger(dir, LevelDebug, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	log.Info("plan submitted", "owner_id", "user-1")
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := readEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["msg"] != "plan submitted" {
		t.Errorf("msg = %v", entries[0]["msg"])
	}
	if entries[0]["owner_id"] != "user-1" {
		t.Errorf("owner_id = %v", entries[0]["owner_id"])
	}
	if entries[0]["level"] != "INFO" {
		t.Errorf("level = %v", entries[0]["level"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLogger(dir, LevelWarn, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	log.Debug("dropped")
	log.Info("dropped too")
	log.Warn("kept")
	log.Error("also kept")
	log.Close()

	entries := readEntries(t, dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["msg"] != "kept" || entries[1]["msg"] != "also kept" {
		t.Errorf("unexpected messages: %v, %v", entries[0]["msg"], entries[1]["msg"])
	}
}

func TestChildLoggersInheritAttributes(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLogger(dir, LevelDebug, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	wlog := log.WithComponent("worker").WithWorker("worker-2").WithRecord("rec-1")
	wlog.Info("task claimed")

	// The parent logger is unaffected by the child's attributes.
	log.Info("daemon started")
	log.Close()

	entries := readEntries(t, dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	child := entries[0]
	if child["component"] != "worker" || child["worker_id"] != "worker-2" || child["record_id"] != "rec-1" {
		t.Errorf("child entry missing attributes: %v", child)
	}

	parent := entries[1]
	if _, ok := parent["worker_id"]; ok {
		t.Errorf("parent entry gained child attributes: %v", parent)
	}
}

func TestLoggerWith(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLogger(dir, LevelDebug, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	log.With("attempt", 2, "owner_id", "user-1").Info("retrying generation")
	log.Close()

	entries := readEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["attempt"] != float64(2) {
		t.Errorf("attempt = %v", entries[0]["attempt"])
	}
}

func TestLoggerStderrFallback(t *testing.T) {
	log, err := NewLogger("", LevelInfo, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	// Close is a no-op without a file.
	if err := log.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	log.Debug("discarded")
	log.Info("discarded")
	log.Warn("discarded")
	log.Error("discarded")
	if err := log.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
