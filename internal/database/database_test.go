package database

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"

	"rosterdesk/internal/config"
)

func TestNewPoolConfig(t *testing.T) {
	cfg := config.PostgresConfig{
		Host: "db", Port: 5432, User: "roster", Password: "secret",
		Database: "infosec_lab", SSLMode: "disable",
		MaxOpen: 8, MaxIdle: 20, ConnMaxLifetime: 15 * time.Minute,
	}

	pc, err := newPoolConfig(cfg)
	if err != nil {
		t.Fatalf("newPoolConfig() error: %v", err)
	}
	if pc.MaxConns != 8 {
		t.Errorf("MaxConns = %d, want 8", pc.MaxConns)
	}
	if pc.MinConns != 8 {
		t.Errorf("MinConns = %d, want idle capped at 8", pc.MinConns)
	}
	if pc.MaxConnLifetime != 15*time.Minute {
		t.Errorf("MaxConnLifetime = %v", pc.MaxConnLifetime)
	}
	if pc.ConnConfig.Database != "infosec_lab" || pc.ConnConfig.Host != "db" {
		t.Errorf("conn config = %s@%s", pc.ConnConfig.Database, pc.ConnConfig.Host)
	}
	if pc.ConnConfig.RuntimeParams["application_name"] != applicationName {
		t.Errorf("application_name = %q", pc.ConnConfig.RuntimeParams["application_name"])
	}
}

func TestNewPoolConfigKeepsDefaultsForZeroSizes(t *testing.T) {
	pc, err := newPoolConfig(config.PostgresConfig{Host: "db", Port: 5432, User: "roster", Database: "x", SSLMode: "disable"})
	if err != nil {
		t.Fatal(err)
	}
	if pc.MaxConns <= 0 {
		t.Errorf("MaxConns = %d, want pgx default", pc.MaxConns)
	}
	if pc.MinConns != 0 {
		t.Errorf("MinConns = %d, want 0", pc.MinConns)
	}
}

type stubVersion struct {
	version uint
	dirty   bool
	err     error
}

func (s stubVersion) Version() (uint, bool, error) { return s.version, s.dirty, s.err }

func TestLogVersion(t *testing.T) {
	tests := []struct {
		name  string
		stub  stubVersion
		want  string
		level string
	}{
		{"applied", stubVersion{version: 1}, `"version":1`, `"level":"info"`},
		{"empty schema", stubVersion{err: migrate.ErrNilVersion}, "schema has no version", `"level":"info"`},
		{"lookup failed", stubVersion{err: errors.New("relation schema_migrations does not exist")}, "version unknown", `"level":"warn"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logVersion(tt.stub, zerolog.New(&buf))

			out := buf.String()
			if !strings.Contains(out, tt.want) || !strings.Contains(out, tt.level) {
				t.Errorf("log = %s, want %s at %s", out, tt.want, tt.level)
			}
		})
	}
}
