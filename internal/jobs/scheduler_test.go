package jobs

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"rosterdesk/internal/queue"
)

type fakeQueue struct {
	tasks []queue.Task
}

func (f *fakeQueue) Enqueue(_ context.Context, task queue.Task) (string, error) {
	f.tasks = append(f.tasks, task)
	return "id", nil
}

func TestNightlyEnqueuesBackupThenPrune(t *testing.T) {
	q := &fakeQueue{}
	s := NewScheduler(q, "0 0 2 * * *", zerolog.Nop())

	s.enqueueNightly()

	if len(q.tasks) != 2 {
		t.Fatalf("enqueued %d tasks, want 2", len(q.tasks))
	}
	if q.tasks[0].Type != queue.TaskBackup || q.tasks[1].Type != queue.TaskPrune {
		t.Errorf("tasks = %+v", q.tasks)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&fakeQueue{}, "every night", zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStartDisabledWithoutSchedule(t *testing.T) {
	s := NewScheduler(&fakeQueue{}, "", zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	s.Stop(context.Background())
}
