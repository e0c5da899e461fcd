package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"rosterdesk/internal/models"
	"rosterdesk/internal/queue"
	"rosterdesk/internal/service"
)

type Backups interface {
	Create(ctx context.Context, actor string) (models.BackupFile, error)
	Path(name string) (string, error)
	Prune(ctx context.Context, retention time.Duration) ([]string, error)
}

// OffsiteStore receives copies of finished dumps.
type OffsiteStore interface {
	UploadBackup(ctx context.Context, name, localPath string) (int64, error)
	RemoveBackup(ctx context.Context, name string) error
}

type Processor struct {
	backups   Backups
	offsite   OffsiteStore
	retention time.Duration
	logger    zerolog.Logger
}

// NewProcessor builds the worker's task handler. offsite may be nil, in
// which case offsite tasks are acknowledged and skipped.
func NewProcessor(backups Backups, offsite OffsiteStore, retention time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		backups:   backups,
		offsite:   offsite,
		retention: retention,
		logger:    logger,
	}
}

// Handle runs one task. Returning an error leaves the message pending for
// redelivery, so only transient failures are returned.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	task, err := queue.DecodeTask(msg)
	if err != nil {
		p.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping malformed task")
		return nil
	}

	log := p.logger.With().
		Str("task_id", task.ID).
		Str("task_type", string(task.Type)).
		Logger()

	switch task.Type {
	case queue.TaskBackup:
		return p.handleBackup(ctx, log, task)
	case queue.TaskOffsite:
		return p.handleOffsite(ctx, log, task.File)
	case queue.TaskPrune:
		return p.handlePrune(ctx, log)
	default:
		log.Warn().Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleBackup(ctx context.Context, log zerolog.Logger, task queue.Task) error {
	actor := task.Requester
	if actor == "" {
		actor = "scheduler"
	}

	file, err := p.backups.Create(ctx, actor)
	if err != nil {
		return fmt.Errorf("scheduled backup: %w", err)
	}
	log.Info().Str("file", file.Name).Int64("size", file.Size).Msg("scheduled backup written")

	return p.handleOffsite(ctx, log, file.Name)
}

func (p *Processor) handleOffsite(ctx context.Context, log zerolog.Logger, name string) error {
	if p.offsite == nil {
		log.Debug().Str("file", name).Msg("offsite storage disabled")
		return nil
	}

	path, err := p.backups.Path(name)
	if err != nil {
		if errors.Is(err, service.ErrBackupNotFound) || errors.Is(err, service.ErrInvalidInput) {
			log.Warn().Err(err).Str("file", name).Msg("nothing to copy offsite")
			return nil
		}
		return err
	}

	size, err := p.offsite.UploadBackup(ctx, name, path)
	if err != nil {
		return err
	}
	log.Info().Str("file", name).Int64("size", size).Msg("backup copied offsite")
	return nil
}

func (p *Processor) handlePrune(ctx context.Context, log zerolog.Logger) error {
	removed, err := p.backups.Prune(ctx, p.retention)
	if err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}

	for _, name := range removed {
		if p.offsite == nil {
			break
		}
		if err := p.offsite.RemoveBackup(ctx, name); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("remove offsite copy failed")
		}
	}

	log.Info().Int("removed", len(removed)).Dur("retention", p.retention).Msg("backups pruned")
	return nil
}
