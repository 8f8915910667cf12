package jobcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyGenerationID KeyContext = "generation_id"
	keyWorkerID     KeyContext = "worker_id"
	keyJobStartTime KeyContext = "job_start_time"
)

// JobMetadata holds metadata for one pipeline execution
type JobMetadata struct {
	GenerationID uuid.UUID
	WorkerID     int
	StartTime    time.Time
}

// JobBegin initializes a pipeline job context with metadata and an overall
// timeout so a stuck provider call cannot pin a worker forever
func JobBegin(parentCtx context.Context, generationID uuid.UUID, workerID int, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyGenerationID, generationID)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// Run executes the job function inside an error boundary. Panics are
// recovered and reported as errors so a single bad pipeline cannot take the
// worker down. The pipeline is never retried here: a failed generation record
// is terminal.
func Run(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}

	return jobFunc(ctx)
}

// GetGenerationID extracts the generation ID from context
func GetGenerationID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyGenerationID).(uuid.UUID)
	return id, ok
}

// GetWorkerID extracts the worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetJobStartTime extracts the job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	generationID, _ := GetGenerationID(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		GenerationID: generationID,
		WorkerID:     GetWorkerID(ctx),
		StartTime:    startTime,
	}
}
