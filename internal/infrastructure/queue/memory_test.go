package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryQueue_FIFO(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	first := GenerateTask{GenerationID: uuid.New()}
	second := GenerateTask{GenerationID: uuid.New()}

	if err := q.Enqueue(ctx, "q_test", first); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := q.Enqueue(ctx, "q_test", second); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	payload, err := q.Dequeue(ctx, "q_test")
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	var task GenerateTask
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if task.GenerationID != first.GenerationID {
		t.Fatalf("expected first task, got %s", task.GenerationID)
	}
}

func TestMemoryQueue_EmptyReturnsErrNoTask(t *testing.T) {
	q := NewMemoryQueue()

	if _, err := q.Dequeue(context.Background(), "q_empty"); err != ErrNoTask {
		t.Fatalf("expected ErrNoTask, got %v", err)
	}
}
