package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"rosterdesk/internal/backup"
	"rosterdesk/internal/models"
	"rosterdesk/internal/queue"
)

// TaskEnqueuer hands follow-up work to the backup worker.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) (string, error)
}

type BackupService struct {
	dir      backup.Dir
	database string
	executor backup.Executor
	tasks    TaskEnqueuer
	offsite  bool
	log      zerolog.Logger
	now      func() time.Time
}

type BackupServiceOption func(*BackupService)

// WithOffsiteCopies enqueues an offsite upload after every new dump.
func WithOffsiteCopies(tasks TaskEnqueuer) BackupServiceOption {
	return func(s *BackupService) {
		s.tasks = tasks
		s.offsite = tasks != nil
	}
}

func NewBackupService(dir backup.Dir, database string, executor backup.Executor, log zerolog.Logger, opts ...BackupServiceOption) *BackupService {
	s := &BackupService{
		dir:      dir,
		database: database,
		executor: executor,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create dumps the database into a new timestamped file. The dump only
// counts when the executor succeeded and the file exists with content;
// anything left behind by a failed run is removed.
func (s *BackupService) Create(ctx context.Context, actor string) (models.BackupFile, error) {
	if err := s.dir.Ensure(); err != nil {
		backupOperationsTotal.WithLabelValues("create", "error").Inc()
		s.log.Error().Err(err).Str("event", "backup_create").Msg("prepare backup dir failed")
		return models.BackupFile{}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	name := backup.FileName(s.database, s.now())
	target := s.dir.Target(name)

	start := time.Now()
	err := s.executor.Dump(ctx, target)
	backupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.discard(target)
		backupOperationsTotal.WithLabelValues("create", "error").Inc()
		s.log.Error().Err(err).
			Str("event", "backup_create").
			Str("username", actor).
			Str("file", name).
			Msg("dump failed")
		return models.BackupFile{}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	format, size, err := backup.Inspect(target)
	switch {
	case errors.Is(err, backup.ErrUnknownFormat):
		s.log.Warn().Str("file", name).Msg("dump format not recognised")
	case err != nil:
		s.discard(target)
		backupOperationsTotal.WithLabelValues("create", "error").Inc()
		s.log.Error().Err(err).
			Str("event", "backup_create").
			Str("username", actor).
			Str("file", name).
			Msg("dump produced no usable file")
		return models.BackupFile{}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		backupOperationsTotal.WithLabelValues("create", "error").Inc()
		return models.BackupFile{}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	file := models.BackupFile{Name: name, Size: size, ModTime: info.ModTime()}

	backupOperationsTotal.WithLabelValues("create", "ok").Inc()
	s.log.Info().
		Str("event", "backup_create").
		Str("username", actor).
		Str("file", name).
		Str("format", string(format)).
		Int64("size", size).
		Msg("backup created")

	if s.offsite {
		if _, err := s.tasks.Enqueue(ctx, queue.Task{Type: queue.TaskOffsite, File: name, Requester: actor}); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("enqueue offsite copy failed")
		}
	}

	return file, nil
}

func (s *BackupService) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", path).Msg("remove partial dump failed")
	}
}

func (s *BackupService) List(ctx context.Context) ([]models.BackupFile, error) {
	files, err := s.dir.List()
	if err != nil {
		s.log.Error().Err(err).Str("event", "backup_list").Msg("list backups failed")
		return nil, err
	}
	return files, nil
}

// resolve maps a user-supplied name onto a file inside the backup
// directory, translating the failure modes into service errors.
func (s *BackupService) resolve(name string) (string, error) {
	path, err := s.dir.Resolve(name)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, backup.ErrInvalidName), errors.Is(err, backup.ErrOutsideDir):
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, fs.ErrNotExist):
		return "", ErrBackupNotFound
	default:
		return "", err
	}
}

// Path returns the real path of an existing dump.
func (s *BackupService) Path(name string) (string, error) {
	return s.resolve(name)
}

// Open returns the named dump for streaming. The caller closes the file.
func (s *BackupService) Open(name string, actor string) (*os.File, models.BackupFile, error) {
	path, err := s.resolve(name)
	if err != nil {
		s.rejectFile("download", name, actor, err)
		return nil, models.BackupFile{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.BackupFile{}, ErrBackupNotFound
		}
		return nil, models.BackupFile{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, models.BackupFile{}, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, models.BackupFile{}, ErrBackupNotFound
	}

	backupOperationsTotal.WithLabelValues("download", "ok").Inc()
	s.log.Info().
		Str("event", "backup_download").
		Str("username", actor).
		Str("file", name).
		Msg("backup downloaded")

	return f, models.BackupFile{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *BackupService) Delete(name string, actor string) error {
	path, err := s.resolve(name)
	if err != nil {
		s.rejectFile("delete", name, actor, err)
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrBackupNotFound
		}
		backupOperationsTotal.WithLabelValues("delete", "error").Inc()
		s.log.Error().Err(err).Str("event", "backup_delete").Str("file", name).Msg("remove backup failed")
		return fmt.Errorf("remove backup: %w", err)
	}

	backupOperationsTotal.WithLabelValues("delete", "ok").Inc()
	s.log.Info().
		Str("event", "backup_delete").
		Str("username", actor).
		Str("file", name).
		Msg("backup deleted")
	return nil
}

func (s *BackupService) rejectFile(op, name, actor string, err error) {
	backupOperationsTotal.WithLabelValues(op, "rejected").Inc()
	s.log.Warn().Err(err).
		Str("event", "backup_"+op).
		Str("username", actor).
		Str("file", name).
		Msg("backup request rejected")
}

// Prune removes dumps older than retention and returns their names.
func (s *BackupService) Prune(ctx context.Context, retention time.Duration) ([]string, error) {
	if retention <= 0 {
		return nil, nil
	}

	stale, err := s.dir.OlderThan(s.now().Add(-retention))
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(stale))
	for _, f := range stale {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.Delete(f.Name, "scheduler"); err != nil {
			s.log.Warn().Err(err).Str("file", f.Name).Msg("prune backup failed")
			continue
		}
		removed = append(removed, f.Name)
	}

	backupOperationsTotal.WithLabelValues("prune", "ok").Add(float64(len(removed)))
	return removed, nil
}
