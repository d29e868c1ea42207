package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeLogFile writes raw lines to the data directory's log file.
func writeLogFile(t *testing.T, dir string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, logFileName), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestAggregateLogs(t *testing.T) {
	dir := t.TempDir()
	writeLogFile(t, dir,
		`{"time":"2026-08-29T10:00:02Z","level":"INFO","msg":"task acked","component":"worker","worker_id":"worker-1","record_id":"rec-1"}`,
		`{"time":"2026-08-29T10:00:00Z","level":"INFO","msg":"task enqueued","component":"queue","record_id":"rec-1"}`,
		`not json at all`,
		`{"time":"2026-08-29T10:00:01Z","level":"DEBUG","msg":"task claimed","component":"worker","worker_id":"worker-1","attempt":1}`,
	)

	entries, err := AggregateLogs(dir)
	if err != nil {
		t.Fatalf("AggregateLogs: %v", err)
	}

	// Corrupt lines are skipped; remaining entries are sorted by time.
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Message != "task enqueued" || entries[2].Message != "task acked" {
		t.Errorf("entries not sorted by timestamp: %v, %v", entries[0].Message, entries[2].Message)
	}
	if entries[1].Attrs["attempt"] != float64(1) {
		t.Errorf("extra attrs not collected: %v", entries[1].Attrs)
	}
	if entries[2].WorkerID != "worker-1" || entries[2].RecordID != "rec-1" {
		t.Errorf("structured fields not parsed: %+v", entries[2])
	}
}

func TestAggregateLogsMissingFile(t *testing.T) {
	if _, err := AggregateLogs(t.TempDir()); err == nil {
		t.Error("expected error for missing log file")
	}
}

func TestFilterLogs(t *testing.T) {
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	entries := []LogEntry{
		{Timestamp: base, Level: LevelDebug, Message: "task claimed", Component: "worker", WorkerID: "worker-1", RecordID: "rec-1"},
		{Timestamp: base.Add(time.Second), Level: LevelInfo, Message: "task acked", Component: "worker", WorkerID: "worker-2", RecordID: "rec-2"},
		{Timestamp: base.Add(2 * time.Second), Level: LevelError, Message: "generation failed", Component: "worker", WorkerID: "worker-1", RecordID: "rec-1"},
		{Timestamp: base.Add(3 * time.Second), Level: LevelInfo, Message: "depth changed", Component: "queue"},
	}

	t.Run("empty filter returns everything", func(t *testing.T) {
		if got := FilterLogs(entries, LogFilter{}); len(got) != len(entries) {
			t.Errorf("got %d entries, want %d", len(got), len(entries))
		}
	})

	t.Run("by level", func(t *testing.T) {
		got := FilterLogs(entries, LogFilter{Level: LevelInfo})
		if len(got) != 3 {
			t.Errorf("got %d entries, want 3", len(got))
		}
	})

	t.Run("by worker", func(t *testing.T) {
		got := FilterLogs(entries, LogFilter{WorkerID: "worker-1"})
		if len(got) != 2 {
			t.Errorf("got %d entries, want 2", len(got))
		}
	})

	t.Run("by record", func(t *testing.T) {
		got := FilterLogs(entries, LogFilter{RecordID: "rec-2"})
		if len(got) != 1 || got[0].Message != "task acked" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("by component", func(t *testing.T) {
		got := FilterLogs(entries, LogFilter{Component: "queue"})
		if len(got) != 1 || got[0].Message != "depth changed" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("by time range", func(t *testing.T) {
		got := FilterLogs(entries, LogFilter{
			StartTime: base.Add(time.Second),
			EndTime:   base.Add(2 * time.Second),
		})
		if len(got) != 2 {
			t.Errorf("got %d entries, want 2", len(got))
		}
	})

	t.Run("by message substring", func(t *testing.T) {
		got := FilterLogs(entries, LogFilter{MessageContains: "failed"})
		if len(got) != 1 || got[0].Level != LevelError {
			t.Errorf("got %v", got)
		}
	})

	t.Run("combined criteria", func(t *testing.T) {
		got := FilterLogs(entries, LogFilter{WorkerID: "worker-1", Level: LevelError})
		if len(got) != 1 || got[0].Message != "generation failed" {
			t.Errorf("got %v", got)
		}
	})
}

func TestExportLogEntriesJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")
	entries := []LogEntry{
		{Timestamp: time.Now().UTC(), Level: LevelInfo, Message: "task acked", WorkerID: "worker-1"},
	}

	if err := ExportLogEntries(entries, out, "json"); err != nil {
		t.Fatalf("ExportLogEntries: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var decoded []LogEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Message != "task acked" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestExportLogEntriesText(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	entries := []LogEntry{
		{Timestamp: time.Now().UTC(), Level: LevelWarn, Message: "task requeued",
			Component: "reaper", RecordID: "rec-1"},
	}

	if err := ExportLogEntries(entries, out, "text"); err != nil {
		t.Fatalf("ExportLogEntries: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "task requeued") || !strings.Contains(text, "record=rec-1") {
		t.Errorf("text output = %q", text)
	}
}

func TestExportLogEntriesCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")
	entries := []LogEntry{
		{Timestamp: time.Now().UTC(), Level: LevelInfo, Message: "task acked", WorkerID: "worker-1"},
	}

	if err := ExportLogEntries(entries, out, "csv"); err != nil {
		t.Fatalf("ExportLogEntries: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,level,message") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestExportLogEntriesUnsupportedFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xml")
	if err := ExportLogEntries(nil, out, "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
