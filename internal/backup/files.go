package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"rosterdesk/internal/models"
)

const (
	Extension       = ".sql"
	timestampLayout = "2006-01-02_15-04-05"
)

var (
	ErrInvalidName = errors.New("invalid backup file name")
	ErrOutsideDir  = errors.New("backup path escapes backup directory")
)

// FileName is <database>_backup_<timestamp>.sql.
func FileName(database string, t time.Time) string {
	return database + "_backup_" + t.Format(timestampLayout) + Extension
}

// ValidateName accepts a bare file name with the dump extension. It does
// no I/O.
func ValidateName(name string) error {
	switch {
	case name == "",
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, 0),
		strings.Contains(name, ".."),
		!strings.HasSuffix(name, Extension),
		len(name) == len(Extension):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Dir is the directory holding the dumps.
type Dir struct {
	path string
}

func NewDir(path string) Dir {
	return Dir{path: path}
}

func (d Dir) Ensure() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	return nil
}

// Target is where a new dump named name is written.
func (d Dir) Target(name string) string {
	return filepath.Join(d.path, name)
}

// Resolve validates name and returns the real path of the file, with
// symlinks evaluated. The result is guaranteed to lie inside the real
// backup directory. A missing file yields an error wrapping fs.ErrNotExist.
func (d Dir) Resolve(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	root, err := filepath.EvalSymlinks(d.path)
	if err != nil {
		return "", fmt.Errorf("resolve backup dir: %w", err)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(filepath.Join(root, name))
	if err != nil {
		return "", fmt.Errorf("resolve backup file: %w", err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideDir, name)
	}
	return resolved, nil
}

// List returns the dumps in the directory, newest first. A missing
// directory is an empty list.
func (d Dir) List() ([]models.BackupFile, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.BackupFile{}, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	files := make([]models.BackupFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, models.BackupFile{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name > files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// OlderThan lists the dumps last modified before cutoff.
func (d Dir) OlderThan(cutoff time.Time) ([]models.BackupFile, error) {
	files, err := d.List()
	if err != nil {
		return nil, err
	}
	stale := make([]models.BackupFile, 0)
	for _, f := range files {
		if f.ModTime.Before(cutoff) {
			stale = append(stale, f)
		}
	}
	return stale, nil
}
