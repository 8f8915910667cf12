package video

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/domain/entities"
	domainrepo "github.com/videogen-team/videogen/internal/domain/repositories"
)

// ScriptGenerator produces a structured script for a prompt
type ScriptGenerator interface {
	Generate(ctx context.Context, prompt string, duration, segments int) (*entities.VideoScript, error)
}

// AssetSynthesizer renders one asset for one segment and returns its path
type AssetSynthesizer interface {
	Synthesize(ctx context.Context, generationID uuid.UUID, segment entities.ScriptSegment) (string, error)
}

// Assembler renders the final video from generated assets
type Assembler interface {
	Assemble(ctx context.Context, generationID uuid.UUID, script *entities.VideoScript) (string, error)
}

// ArchiveStore uploads completed videos to durable object storage
type ArchiveStore interface {
	UploadVideo(ctx context.Context, objectName, filePath string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Pipeline runs one generation end to end: script, per-segment asset fan-out,
// assembly, optional archive upload. Every stage transition is persisted
// before the stage runs so pollers always see current progress. Stages are
// never retried; a stage error marks the record failed and ends the run.
type Pipeline struct {
	repo       domainrepo.GenerationRepository
	scriptGen  ScriptGenerator
	imageSynth AssetSynthesizer
	audioSynth AssetSynthesizer
	assembler  Assembler
	archive    ArchiveStore // nil when archiving is disabled
	logger     *zap.Logger
}

// NewPipeline constructs the generation pipeline. archive may be nil.
func NewPipeline(
	repo domainrepo.GenerationRepository,
	scriptGen ScriptGenerator,
	imageSynth AssetSynthesizer,
	audioSynth AssetSynthesizer,
	assembler Assembler,
	archive ArchiveStore,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		repo:       repo,
		scriptGen:  scriptGen,
		imageSynth: imageSynth,
		audioSynth: audioSynth,
		assembler:  assembler,
		archive:    archive,
		logger:     logger,
	}
}

// Execute runs the pipeline for one generation record
func (p *Pipeline) Execute(ctx context.Context, generationID uuid.UUID) error {
	g, err := p.repo.GetByID(ctx, generationID)
	if err != nil {
		return err
	}
	if g == nil {
		return errors.ErrGenerationNotFound(generationID.String())
	}
	if g.IsTerminal() {
		p.logger.Warn("Skipping pipeline for terminal generation",
			zap.String("generation_id", generationID.String()),
			zap.String("status", string(g.Status)))
		return nil
	}

	logger := p.logger.With(zap.String("generation_id", generationID.String()))
	logger.Info("Pipeline started",
		zap.Int("duration", g.Duration),
		zap.Int("segments", g.Segments))

	// Stage 1: script
	if err := p.repo.UpdateStatus(ctx, generationID, entities.GenerationStatusGeneratingScript); err != nil {
		return p.fail(generationID, logger, err)
	}

	script, err := p.scriptGen.Generate(ctx, g.Prompt, g.Duration, g.Segments)
	if err != nil {
		return p.fail(generationID, logger, err)
	}

	// Persisting the script also advances the record to generating_assets
	if err := p.repo.SaveScript(ctx, generationID, script); err != nil {
		return p.fail(generationID, logger, err)
	}

	// Stage 2: per-segment asset fan-out
	if err := p.generateAssets(ctx, generationID, script, logger); err != nil {
		return p.fail(generationID, logger, err)
	}

	// Stage 3: assembly
	if err := p.repo.UpdateStatus(ctx, generationID, entities.GenerationStatusCreatingVideo); err != nil {
		return p.fail(generationID, logger, err)
	}

	videoPath, err := p.assembler.Assemble(ctx, generationID, script)
	if err != nil {
		return p.fail(generationID, logger, err)
	}

	// Optional archive upload. The video already exists locally, so an
	// archive failure degrades to local-only serving instead of failing the
	// generation.
	archiveURL := p.archiveVideo(ctx, generationID, videoPath, logger)

	videoURL := fmt.Sprintf("/v1/videos/%s/file", generationID)
	if err := p.repo.MarkCompleted(ctx, generationID, videoURL, archiveURL); err != nil {
		return p.fail(generationID, logger, err)
	}

	logger.Info("Pipeline completed", zap.String("video_path", videoPath))
	return nil
}

// generateAssets runs image and audio synthesis for every segment
// concurrently: two goroutines per segment, all joined before the stage
// result is decided. The first error wins; remaining work still runs to
// completion so goroutines never leak.
func (p *Pipeline) generateAssets(ctx context.Context, generationID uuid.UUID, script *entities.VideoScript, logger *zap.Logger) error {
	logger.Info("Generating segment assets", zap.Int("segments", len(script.Segments)))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, segment := range script.Segments {
		wg.Add(2)

		go func(seg entities.ScriptSegment) {
			defer wg.Done()
			if _, err := p.imageSynth.Synthesize(ctx, generationID, seg); err != nil {
				record(err)
			}
		}(segment)

		go func(seg entities.ScriptSegment) {
			defer wg.Done()
			if _, err := p.audioSynth.Synthesize(ctx, generationID, seg); err != nil {
				record(err)
			}
		}(segment)
	}

	wg.Wait()
	return firstErr
}

// archiveVideo uploads the rendered video to object storage with retry and
// returns its archive URL, or nil when archiving is disabled or failed
func (p *Pipeline) archiveVideo(ctx context.Context, generationID uuid.UUID, videoPath string, logger *zap.Logger) *string {
	if p.archive == nil {
		return nil
	}

	objectName := fmt.Sprintf("%s.mp4", generationID)

	// Transient object-store errors are worth retrying; this is the only
	// place the pipeline retries anything
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 1 * time.Minute
	err := backoff.Retry(func() error {
		return p.archive.UploadVideo(ctx, objectName, videoPath)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		logger.Warn("Archive upload failed, serving locally only", zap.Error(err))
		return nil
	}

	url, err := p.archive.GetFileURL(ctx, objectName, 7*24*time.Hour)
	if err != nil {
		logger.Warn("Archive URL generation failed", zap.Error(err))
		return nil
	}

	logger.Info("Video archived", zap.String("object", objectName))
	return &url
}

// fail marks the generation failed with a human-readable diagnostic. The
// write uses a fresh context so a cancelled or timed-out pipeline context
// cannot block the terminal state from persisting.
func (p *Pipeline) fail(generationID uuid.UUID, logger *zap.Logger, cause error) error {
	logger.Error("Pipeline failed", zap.Error(cause))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.repo.MarkFailed(ctx, generationID, failureMessage(cause)); err != nil {
		logger.Error("Failed to persist failure state", zap.Error(err))
	}
	return cause
}

// failureMessage extracts the client-facing message from a pipeline error
func failureMessage(err error) string {
	var appErr errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
