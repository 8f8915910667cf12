package video

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/domain/entities"
	"github.com/videogen-team/videogen/internal/infrastructure/queue"
	"github.com/videogen-team/videogen/internal/usecase/media"
	"github.com/videogen-team/videogen/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	return &config.Config{
		Media: config.MediaConfig{
			ImagesDir: filepath.Join(base, "images"),
			AudioDir:  filepath.Join(base, "audio"),
			VideosDir: filepath.Join(base, "videos"),
		},
		Pipeline: config.PipelineConfig{
			QueueName:   "q_video_generate_test",
			WorkerCount: 2,
			JobTimeout:  30 * time.Second,
		},
	}
}

func newTestService(t *testing.T, repo *fakeRepo, q queue.Queue, pipeline *Pipeline) (Service, *media.AssetPaths) {
	t.Helper()
	cfg := testConfig(t)
	paths := media.NewAssetPaths(&cfg.Media)
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
	return NewVideoService(repo, q, pipeline, paths, cfg, zap.NewNop()), paths
}

func TestStartGeneration_CreatesAndEnqueues(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemoryQueue()
	svc, _ := newTestService(t, repo, q, nil)

	g, err := svc.StartGeneration(context.Background(), "the deep ocean", 60, 3)
	if err != nil {
		t.Fatalf("StartGeneration failed: %v", err)
	}
	if g.Status != entities.GenerationStatusProcessing {
		t.Errorf("expected processing, got %s", g.Status)
	}

	stored, _ := repo.GetByID(context.Background(), g.ID)
	if stored == nil {
		t.Fatal("record not persisted")
	}

	payload, err := q.Dequeue(context.Background(), "q_video_generate_test")
	if err != nil {
		t.Fatalf("no task enqueued: %v", err)
	}
	if payload == "" {
		t.Fatal("empty task payload")
	}
}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, string, interface{}) error {
	return stderrors.New("redis down")
}
func (failingQueue) Dequeue(context.Context, string) (string, error) {
	return "", queue.ErrNoTask
}

func TestStartGeneration_EnqueueFailureFailsRecord(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo, failingQueue{}, nil)

	_, err := svc.StartGeneration(context.Background(), "the deep ocean", 60, 3)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_INTEGRATION_QUEUE_FAILED {
		t.Errorf("expected INTEGRATION_QUEUE_FAILED, got %v", err)
	}

	// The orphaned record must not be left in processing forever
	all, _ := repo.List(context.Background(), 100)
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}
	if all[0].Status != entities.GenerationStatusFailed {
		t.Errorf("expected failed, got %s", all[0].Status)
	}
}

func TestGetGeneration_NotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo, queue.NewMemoryQueue(), nil)

	_, err := svc.GetGeneration(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_GENERATION_NOT_FOUND {
		t.Errorf("expected GENERATION_NOT_FOUND, got %v", err)
	}
}

func TestVideoFilePath_NotReady(t *testing.T) {
	repo := newFakeRepo()
	g := seedGeneration(t, repo)
	svc, _ := newTestService(t, repo, queue.NewMemoryQueue(), nil)

	_, err := svc.VideoFilePath(context.Background(), g.ID)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_VIDEO_NOT_READY {
		t.Errorf("expected VIDEO_NOT_READY, got %v", err)
	}
}

func TestVideoFilePath_Completed(t *testing.T) {
	repo := newFakeRepo()
	g := seedGeneration(t, repo)
	svc, paths := newTestService(t, repo, queue.NewMemoryQueue(), nil)

	videoPath := paths.VideoPath(g.ID)
	if err := os.WriteFile(videoPath, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkCompleted(context.Background(), g.ID, "/v1/videos/"+g.ID.String()+"/file", nil); err != nil {
		t.Fatal(err)
	}

	got, err := svc.VideoFilePath(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("VideoFilePath failed: %v", err)
	}
	if got != videoPath {
		t.Errorf("expected %s, got %s", videoPath, got)
	}
}

func TestVideoFilePath_FileMissing(t *testing.T) {
	repo := newFakeRepo()
	g := seedGeneration(t, repo)
	svc, _ := newTestService(t, repo, queue.NewMemoryQueue(), nil)

	if err := repo.MarkCompleted(context.Background(), g.ID, "/v1/videos/"+g.ID.String()+"/file", nil); err != nil {
		t.Fatal(err)
	}

	_, err := svc.VideoFilePath(context.Background(), g.ID)
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestWorkerPool_ProcessesQueuedGeneration(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemoryQueue()

	pipeline := NewPipeline(repo,
		&fakeScriptGen{script: testScript()},
		&fakeSynth{}, &fakeSynth{},
		&fakeAssembler{path: "/videos/out.mp4"},
		nil,
		zap.NewNop())

	svc, _ := newTestService(t, repo, q, pipeline)

	g, err := svc.StartGeneration(context.Background(), "the deep ocean", 60, 2)
	if err != nil {
		t.Fatalf("StartGeneration failed: %v", err)
	}

	if err := svc.StartWorkerPool(context.Background(), 1); err != nil {
		t.Fatalf("StartWorkerPool failed: %v", err)
	}
	defer svc.StopWorkerPool()

	deadline := time.After(5 * time.Second)
	for {
		stored, _ := repo.GetByID(context.Background(), g.ID)
		if stored != nil && stored.IsTerminal() {
			if stored.Status != entities.GenerationStatusCompleted {
				t.Fatalf("expected completed, got %s (%v)", stored.Status, stored.Error)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("generation did not complete in time")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestWorkerPool_StartTwiceFails(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo, queue.NewMemoryQueue(), nil)

	if err := svc.StartWorkerPool(context.Background(), 1); err != nil {
		t.Fatalf("StartWorkerPool failed: %v", err)
	}
	defer svc.StopWorkerPool()

	if err := svc.StartWorkerPool(context.Background(), 1); err == nil {
		t.Error("expected second StartWorkerPool to fail")
	}
}
