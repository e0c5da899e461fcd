package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"rosterdesk/internal/queue"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) (string, error)
}

// Scheduler puts the nightly backup and retention tasks on the queue.
// The work itself happens in the worker.
type Scheduler struct {
	cron     *cron.Cron
	queue    Enqueuer
	schedule string
	log      zerolog.Logger
}

func NewScheduler(queue Enqueuer, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		queue:    queue,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil || s.schedule == "" {
		s.log.Info().Msg("scheduled backups disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueNightly); err != nil {
		return fmt.Errorf("backup schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("backup scheduler started")
	return nil
}

// Stop halts the schedule and waits for a running enqueue to finish, or
// for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) enqueueNightly() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, taskType := range []queue.TaskType{queue.TaskBackup, queue.TaskPrune} {
		id, err := s.queue.Enqueue(ctx, queue.Task{Type: taskType, Requester: "scheduler"})
		if err != nil {
			s.log.Error().Err(err).Str("task_type", string(taskType)).Msg("enqueue scheduled task failed")
			continue
		}
		s.log.Info().Str("task_id", id).Str("task_type", string(taskType)).Msg("scheduled task enqueued")
	}
}
