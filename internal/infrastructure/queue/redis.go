package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// pollTimeout bounds each blocking pop so workers can notice shutdown
const pollTimeout = 2 * time.Second

// RedisQueue is a Redis-list backed work queue: LPush to enqueue, BRPop to
// consume
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue creates a Redis-backed queue
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Enqueue pushes a JSON payload onto the named list
func (q *RedisQueue) Enqueue(ctx context.Context, queueName string, payload interface{}) error {
	payloadStr, err := Marshal(payload)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, queueName, payloadStr).Err()
}

// Dequeue blocks up to the poll window for a task and returns its payload.
// Returns ErrNoTask when the window elapses with nothing to do.
func (q *RedisQueue) Dequeue(ctx context.Context, queueName string) (string, error) {
	result, err := q.rdb.BRPop(ctx, pollTimeout, queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoTask
		}
		return "", err
	}
	// result[0] is the queue name, result[1] is the payload
	return result[1], nil
}
