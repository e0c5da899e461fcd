package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"rosterdesk/internal/backup"
	"rosterdesk/internal/cache"
	"rosterdesk/internal/config"
	"rosterdesk/internal/database"
	"rosterdesk/internal/handlers"
	"rosterdesk/internal/jobs"
	"rosterdesk/internal/log"
	"rosterdesk/internal/queue"
	"rosterdesk/internal/repository"
	"rosterdesk/internal/server"
	"rosterdesk/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level, cfg.Logging.ErrorLog)

	ctx := context.Background()

	if err := database.Migrate(cfg.Postgres, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	validator, err := service.NewValidator(cfg.Limits)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build validator")
	}

	users := repository.NewUserRepository(dbPool)
	students := repository.NewStudentRepository(dbPool)
	sessions := repository.NewSessionRepository(redisClient, cfg.Session.Retention)
	publisher := queue.NewPublisher(redisClient, cfg.Queue.Stream)

	var backupOpts []service.BackupServiceOption
	if cfg.Backup.Offsite {
		backupOpts = append(backupOpts, service.WithOffsiteCopies(publisher))
	}

	authService := service.NewAuthService(users, sessions, validator, cfg.Session.Timeout, cfg.Security.BcryptCost, logger)
	studentService := service.NewStudentService(students, validator, logger)
	backupService := service.NewBackupService(
		backup.NewDir(cfg.Backup.Dir),
		cfg.Postgres.Database,
		backup.NewPgDumpExecutor(cfg.Backup.DumpBinary, cfg.Postgres),
		logger,
		backupOpts...,
	)

	handlerSet := handlers.NewHandlerSet(logger, cfg, authService, studentService, backupService,
		handlers.HealthCheck{Name: "postgres", Check: dbPool.Ping},
		handlers.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)

	httpServer, err := server.NewHTTPServer(cfg, logger, handlerSet)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build http server")
	}

	scheduler := jobs.NewScheduler(publisher, cfg.Backup.Schedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop(shutdownCtx)

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
