package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rosterdesk/internal/config"
)

func TestFileName(t *testing.T) {
	got := FileName("infosec_lab", time.Date(2024, 1, 9, 14, 5, 7, 0, time.UTC))
	if got != "infosec_lab_backup_2024-01-09_14-05-07.sql" {
		t.Errorf("FileName() = %q", got)
	}
	if err := ValidateName(got); err != nil {
		t.Errorf("generated name rejected: %v", err)
	}
}

func TestValidateName(t *testing.T) {
	bad := []string{
		"",
		".sql",
		"dump.txt",
		"../dump.sql",
		"a/../../dump.sql",
		"sub/dump.sql",
		`sub\dump.sql`,
		"dump..sql",
		"/etc/passwd.sql",
		"dump.sql\x00.txt",
	}
	for _, name := range bad {
		if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", name, err)
		}
	}
	if err := ValidateName("roster_backup_2024-01-01_00-00-00.sql"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
}

func TestResolveMissingFile(t *testing.T) {
	d := NewDir(t.TempDir())
	if _, err := d.Resolve("missing.sql"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestResolveSymlinkedDirectory(t *testing.T) {
	base := t.TempDir()
	realDir := filepath.Join(base, "real")
	if err := os.Mkdir(realDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(realDir, "x.sql"), []byte("x"), 0o640); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := NewDir(link).Resolve("x.sql")
	if err != nil {
		t.Fatalf("Resolve() through symlinked dir: %v", err)
	}
	if filepath.Base(got) != "x.sql" {
		t.Errorf("Resolve() = %q", got)
	}
}

func TestDetectHead(t *testing.T) {
	tests := []struct {
		head string
		want Format
		err  error
	}{
		{"--\n-- PostgreSQL database dump\n--\n", FormatPlain, nil},
		{"PGDMP\x01\x0e\x00", FormatCustom, nil},
		{"-- MySQL dump 10.13  Distrib 8.0.36", FormatMySQL, nil},
		{"hello", "", ErrUnknownFormat},
		{"", "", ErrEmptyDump},
	}
	for _, tt := range tests {
		got, err := DetectHead([]byte(tt.head))
		if got != tt.want || !errors.Is(err, tt.err) {
			t.Errorf("DetectHead(%q) = %q, %v; want %q, %v", tt.head, got, err, tt.want, tt.err)
		}
	}
}

func TestPgDumpArgsKeepPasswordOffCommandLine(t *testing.T) {
	e := NewPgDumpExecutor("", config.PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "roster",
		Password: "s3cret",
		Database: "infosec_lab",
	})
	if e.binary != "pg_dump" {
		t.Errorf("binary = %q", e.binary)
	}
	args := strings.Join(e.args("/tmp/out.sql"), " ")
	if strings.Contains(args, "s3cret") {
		t.Fatalf("password on command line: %s", args)
	}
	if !strings.HasSuffix(args, "--file /tmp/out.sql infosec_lab") {
		t.Errorf("args = %s", args)
	}
}
