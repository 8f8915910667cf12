package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/domain/entities"
	domainrepo "github.com/videogen-team/videogen/internal/domain/repositories"
	"github.com/videogen-team/videogen/internal/infrastructure/queue"
	"github.com/videogen-team/videogen/internal/usecase/media"
	"github.com/videogen-team/videogen/pkg/config"
	"github.com/videogen-team/videogen/pkg/jobcontext"
)

// Service defines video generation orchestration methods
type Service interface {
	StartGeneration(ctx context.Context, prompt string, duration, segments int) (*entities.Generation, error)
	GetGeneration(ctx context.Context, id uuid.UUID) (*entities.Generation, error)
	ListGenerations(ctx context.Context) ([]entities.Generation, error)
	VideoFilePath(ctx context.Context, id uuid.UUID) (string, error)
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type videoService struct {
	repo     domainrepo.GenerationRepository
	queue    queue.Queue
	pipeline *Pipeline
	paths    *media.AssetPaths
	cfg      *config.Config
	logger   *zap.Logger

	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewVideoService constructs the video generation service
func NewVideoService(
	repo domainrepo.GenerationRepository,
	q queue.Queue,
	pipeline *Pipeline,
	paths *media.AssetPaths,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &videoService{
		repo:     repo,
		queue:    q,
		pipeline: pipeline,
		paths:    paths,
		cfg:      cfg,
		logger:   logger,
	}
}

// StartGeneration creates the generation record and hands it to the worker
// pool. It returns as soon as the record is durable and the task is queued;
// clients follow progress by polling.
func (s *videoService) StartGeneration(ctx context.Context, prompt string, duration, segments int) (*entities.Generation, error) {
	g := entities.NewGeneration(prompt, duration, segments)

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	task := queue.GenerateTask{GenerationID: g.ID}
	if err := s.queue.Enqueue(ctx, s.cfg.Pipeline.QueueName, task); err != nil {
		// The record exists but no worker will ever pick it up, so fail it
		// now instead of leaving a permanently "processing" row
		if markErr := s.repo.MarkFailed(ctx, g.ID, "failed to enqueue generation task"); markErr != nil {
			s.logger.Error("Failed to mark unqueued generation as failed",
				zap.String("generation_id", g.ID.String()),
				zap.Error(markErr))
		}
		return nil, errors.ErrQueueFailed("enqueue", err)
	}

	s.logger.Info("Generation queued",
		zap.String("generation_id", g.ID.String()),
		zap.Int("duration", duration),
		zap.Int("segments", segments))

	return g, nil
}

// GetGeneration returns the current state of one generation
func (s *videoService) GetGeneration(ctx context.Context, id uuid.UUID) (*entities.Generation, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.ErrGenerationNotFound(id.String())
	}
	return g, nil
}

// ListGenerations returns recent generations, newest first
func (s *videoService) ListGenerations(ctx context.Context) ([]entities.Generation, error) {
	return s.repo.List(ctx, 100)
}

// VideoFilePath resolves the on-disk path of a completed generation's video
func (s *videoService) VideoFilePath(ctx context.Context, id uuid.UUID) (string, error) {
	g, err := s.GetGeneration(ctx, id)
	if err != nil {
		return "", err
	}
	if g.Status != entities.GenerationStatusCompleted {
		return "", errors.ErrVideoNotReady(id.String(), string(g.Status))
	}

	videoPath := s.paths.VideoPath(id)
	if _, err := os.Stat(videoPath); err != nil {
		return "", errors.ErrNotFound("video file")
	}
	return videoPath, nil
}

// StartWorkerPool starts the pipeline worker goroutines
func (s *videoService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	s.logger.Info("🚀 Starting generation worker pool",
		zap.Int("worker_count", workerCount),
	)

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.generationWorker(ctx, i)
	}

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *videoService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	s.logger.Info("🛑 Stopping generation worker pool...")

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	s.logger.Info("✅ Generation worker pool stopped")

	return nil
}

// generationWorker pops tasks from the queue and runs the pipeline for each.
// The block-pop times out regularly so the stop signal is observed between
// tasks.
func (s *videoService) generationWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	s.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-s.workerStopChan:
			s.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			return
		case <-parentCtx.Done():
			s.logger.Info("👷 Worker context cancelled", zap.Int("worker_id", workerID))
			return
		default:
		}

		payload, err := s.queue.Dequeue(parentCtx, s.cfg.Pipeline.QueueName)
		if err != nil {
			if err == queue.ErrNoTask || parentCtx.Err() != nil {
				continue
			}
			s.logger.Error("Queue dequeue failed",
				zap.Int("worker_id", workerID),
				zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var task queue.GenerateTask
		if err := json.Unmarshal([]byte(payload), &task); err != nil {
			s.logger.Error("Dropping malformed task payload",
				zap.Int("worker_id", workerID),
				zap.Error(err))
			continue
		}

		s.runTask(parentCtx, workerID, task)
	}
}

// runTask executes one pipeline inside the job error boundary. A panic or
// job timeout is persisted as a failed generation so the record does not
// stay stuck in a transient status.
func (s *videoService) runTask(parentCtx context.Context, workerID int, task queue.GenerateTask) {
	jobCtx, cancel := jobcontext.JobBegin(parentCtx, task.GenerationID, workerID, s.cfg.Pipeline.JobTimeout)
	defer cancel()

	err := jobcontext.Run(jobCtx, func(ctx context.Context) error {
		return s.pipeline.Execute(ctx, task.GenerationID)
	})
	if err != nil {
		s.logger.Error("Pipeline run failed",
			zap.Int("worker_id", workerID),
			zap.String("generation_id", task.GenerationID.String()),
			zap.Error(err))
		s.ensureFailed(task.GenerationID)
	}
}

// ensureFailed marks a generation failed if it is still in a transient state.
// The pipeline normally persists its own failure; this covers panics and job
// timeouts that escape it.
func (s *videoService) ensureFailed(generationID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g, err := s.repo.GetByID(ctx, generationID)
	if err != nil || g == nil || g.IsTerminal() {
		return
	}
	if err := s.repo.MarkFailed(ctx, generationID, "generation aborted unexpectedly"); err != nil {
		s.logger.Error("Failed to persist aborted generation",
			zap.String("generation_id", generationID.String()),
			zap.Error(err))
	}
}
