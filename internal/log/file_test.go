package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFileWriterCreatesDirectoryOnFirstWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "error.log")
	w := NewFileWriter(path)
	t.Cleanup(func() { _ = w.Close() })

	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Fatalf("log dir must not exist before the first write, stat err = %v", err)
	}

	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("log content = %q", data)
	}
}

func TestFileWriterAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")

	w := NewFileWriter(path)
	if _, err := w.Write([]byte("a\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	w = NewFileWriter(path)
	if _, err := w.Write([]byte("b\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	_ = w.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "a\nb\n" {
		t.Errorf("log content = %q, want appended lines", data)
	}
}

func TestZerologLinesAreTimestamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	w := NewFileWriter(path)
	t.Cleanup(func() { _ = w.Close() })

	logger := zerolog.New(w).With().Timestamp().Logger()
	logger.Error().Str("event", "login_failed").Msg("invalid credentials")

	data, _ := os.ReadFile(path)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("line is not json: %v (%q)", err, line)
	}
	if _, ok := entry["time"]; !ok {
		t.Errorf("entry has no timestamp: %v", entry)
	}
	if entry["event"] != "login_failed" {
		t.Errorf("event = %v", entry["event"])
	}
}
