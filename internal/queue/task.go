package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type TaskType string

const (
	// TaskBackup produces a new dump.
	TaskBackup TaskType = "backup"
	// TaskOffsite copies an existing dump to object storage.
	TaskOffsite TaskType = "offsite"
	// TaskPrune removes dumps older than the retention window.
	TaskPrune TaskType = "prune"
)

type Task struct {
	ID         string    `json:"id"`
	Type       TaskType  `json:"type"`
	File       string    `json:"file,omitempty"`
	Requester  string    `json:"requester,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func (t Task) values() map[string]any {
	values := map[string]any{
		"id":          t.ID,
		"type":        string(t.Type),
		"enqueued_at": t.EnqueuedAt.UTC().Format(time.RFC3339Nano),
	}
	if t.File != "" {
		values["file"] = t.File
	}
	if t.Requester != "" {
		values["requester"] = t.Requester
	}
	return values
}

// DecodeTask reads a task back from a stream entry.
func DecodeTask(msg redis.XMessage) (Task, error) {
	raw, err := json.Marshal(msg.Values)
	if err != nil {
		return Task{}, fmt.Errorf("encode values: %w", err)
	}
	var task Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	if task.Type == "" {
		return Task{}, fmt.Errorf("decode task %s: missing type", msg.ID)
	}
	return task, nil
}
