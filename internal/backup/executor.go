package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"rosterdesk/internal/config"
)

// Executor writes a full dump of the database to target.
type Executor interface {
	Dump(ctx context.Context, target string) error
}

// PgDumpExecutor runs pg_dump. The password travels in the child's
// environment, never on its command line.
type PgDumpExecutor struct {
	binary string
	pg     config.PostgresConfig
}

func NewPgDumpExecutor(binary string, pg config.PostgresConfig) *PgDumpExecutor {
	if binary == "" {
		binary = "pg_dump"
	}
	return &PgDumpExecutor{binary: binary, pg: pg}
}

func (e *PgDumpExecutor) Dump(ctx context.Context, target string) error {
	cmd := exec.CommandContext(ctx, e.binary, e.args(target)...)
	cmd.Env = append(os.Environ(),
		"PGPASSWORD="+e.pg.Password,
		"PGSSLMODE="+e.pg.SSLMode,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return fmt.Errorf("%s: %w", e.binary, err)
		}
		return fmt.Errorf("%s: %w: %s", e.binary, err, detail)
	}
	return nil
}

func (e *PgDumpExecutor) args(target string) []string {
	return []string{
		"--host", e.pg.Host,
		"--port", strconv.Itoa(e.pg.Port),
		"--username", e.pg.User,
		"--no-password",
		"--format", "plain",
		"--file", target,
		e.pg.Database,
	}
}
