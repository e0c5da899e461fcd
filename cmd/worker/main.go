package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"rosterdesk/internal/backup"
	"rosterdesk/internal/cache"
	"rosterdesk/internal/config"
	"rosterdesk/internal/log"
	"rosterdesk/internal/queue"
	"rosterdesk/internal/service"
	"rosterdesk/internal/storage"
	"rosterdesk/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level, cfg.Logging.ErrorLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	backups := service.NewBackupService(
		backup.NewDir(cfg.Backup.Dir),
		cfg.Postgres.Database,
		backup.NewPgDumpExecutor(cfg.Backup.DumpBinary, cfg.Postgres),
		logger,
	)

	// Left as an untyped nil when disabled so the processor sees no store.
	var offsite tasks.OffsiteStore
	if cfg.Backup.Offsite {
		store, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		offsite = store
	}

	processor := tasks.NewProcessor(backups, offsite, cfg.Backup.Retention, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Queue.Stream,
		cfg.Queue.Group,
		cfg.Queue.Consumer,
		cfg.Queue.ClaimInterval,
		logger,
		processor,
	)

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
