package queue

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// ErrNoTask is returned by Dequeue when no task arrived within the poll
// window. Workers use it to re-check their stop signal between polls.
var ErrNoTask = errors.New("queue: no task available")

// GenerateTask is the payload handed to a pipeline worker. The record itself
// lives in the store; the queue only carries the id.
type GenerateTask struct {
	GenerationID uuid.UUID `json:"generation_id"`
}

// Queue is a minimal at-least-once work queue: producers enqueue JSON
// payloads, workers block-pop them
type Queue interface {
	Enqueue(ctx context.Context, queueName string, payload interface{}) error
	Dequeue(ctx context.Context, queueName string) (string, error)
}

// Marshal creates a JSON payload for a task
func Marshal(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
