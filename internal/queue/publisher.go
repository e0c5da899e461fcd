package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rosterdesk/internal/ids"
)

// Publisher appends tasks to the backup stream.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// Enqueue fills in the task id and timestamp when absent and returns the
// task id.
func (p *Publisher) Enqueue(ctx context.Context, task Task) (string, error) {
	if task.ID == "" {
		task.ID = ids.New()
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}

	if _, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: task.values(),
	}).Result(); err != nil {
		return "", fmt.Errorf("enqueue %s task: %w", task.Type, err)
	}
	return task.ID, nil
}
