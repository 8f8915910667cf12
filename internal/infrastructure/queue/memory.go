package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process queue with the same semantics as the Redis
// one. Used in tests and single-node setups without Redis.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[string]chan string
}

// NewMemoryQueue creates an in-memory queue
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		queues: make(map[string]chan string),
	}
}

func (q *MemoryQueue) channel(queueName string) chan string {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch, ok := q.queues[queueName]
	if !ok {
		ch = make(chan string, 1024)
		q.queues[queueName] = ch
	}
	return ch
}

// Enqueue pushes a JSON payload onto the named queue
func (q *MemoryQueue) Enqueue(ctx context.Context, queueName string, payload interface{}) error {
	payloadStr, err := Marshal(payload)
	if err != nil {
		return err
	}
	select {
	case q.channel(queueName) <- payloadStr:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue blocks up to the poll window for a task and returns its payload
func (q *MemoryQueue) Dequeue(ctx context.Context, queueName string) (string, error) {
	timer := time.NewTimer(pollTimeout)
	defer timer.Stop()

	select {
	case payload := <-q.channel(queueName):
		return payload, nil
	case <-timer.C:
		return "", ErrNoTask
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
