package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileWriter appends log lines to a file. The parent directory and the
// file are created on the first write, so a missing logs/ directory
// never prevents startup.
type FileWriter struct {
	path string

	mu   sync.Mutex
	file *os.File
}

func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

func (w *FileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
			return 0, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			return 0, fmt.Errorf("open log file: %w", err)
		}
		w.file = f
	}

	return w.file.Write(p)
}

func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
