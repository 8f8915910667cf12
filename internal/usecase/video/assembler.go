package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/domain/entities"
	"github.com/videogen-team/videogen/internal/usecase/media"
	"github.com/videogen-team/videogen/pkg/config"
)

// FFmpegAssembler renders the final video from per-segment stills and
// narration tracks. Each segment's still is held on screen for the measured
// length of its audio, so narration never gets cut off when the spoken track
// runs long or short of the nominal segment duration.
type FFmpegAssembler struct {
	paths  *media.AssetPaths
	cfg    *config.MediaConfig
	logger *zap.Logger
}

// NewFFmpegAssembler constructs the assembler
func NewFFmpegAssembler(paths *media.AssetPaths, cfg *config.MediaConfig, logger *zap.Logger) *FFmpegAssembler {
	return &FFmpegAssembler{
		paths:  paths,
		cfg:    cfg,
		logger: logger,
	}
}

// Assemble verifies every segment asset exists, renders one clip per segment
// and concatenates them into the final mp4. It returns the rendered file path.
func (a *FFmpegAssembler) Assemble(ctx context.Context, generationID uuid.UUID, script *entities.VideoScript) (string, error) {
	if script == nil || len(script.Segments) == 0 {
		return "", errors.ErrAssemblyFailed(fmt.Errorf("no script segments to assemble"))
	}

	// Verify all assets up front so a missing file is reported by segment
	// instead of surfacing as an opaque encoder error mid-render
	for _, segment := range script.Segments {
		if _, err := os.Stat(a.paths.ImagePath(generationID, segment.SegmentID)); err != nil {
			return "", errors.ErrMissingAsset("image", segment.SegmentID)
		}
		if _, err := os.Stat(a.paths.AudioPath(generationID, segment.SegmentID)); err != nil {
			return "", errors.ErrMissingAsset("audio", segment.SegmentID)
		}
	}

	workDir, err := os.MkdirTemp("", "videogen-assembly-*")
	if err != nil {
		return "", errors.ErrAssemblyFailed(fmt.Errorf("failed to create work dir: %w", err))
	}
	defer os.RemoveAll(workDir)

	clipPaths := make([]string, 0, len(script.Segments))
	for _, segment := range script.Segments {
		if err := ctx.Err(); err != nil {
			return "", errors.ErrAssemblyFailed(err)
		}

		clipPath := filepath.Join(workDir, fmt.Sprintf("clip_%d.mp4", segment.SegmentID))
		if err := a.renderClip(generationID, segment, clipPath); err != nil {
			return "", errors.ErrAssemblyFailed(fmt.Errorf("segment %d: %w", segment.SegmentID, err))
		}
		clipPaths = append(clipPaths, clipPath)
	}

	videoPath := a.paths.VideoPath(generationID)
	if err := a.concatClips(workDir, clipPaths, videoPath); err != nil {
		return "", errors.ErrAssemblyFailed(err)
	}

	a.logger.Info("Video assembled",
		zap.String("generation_id", generationID.String()),
		zap.Int("segments", len(script.Segments)),
		zap.String("path", videoPath))

	return videoPath, nil
}

// renderClip encodes one still+narration pair into a clip whose length is the
// measured audio duration
func (a *FFmpegAssembler) renderClip(generationID uuid.UUID, segment entities.ScriptSegment, clipPath string) error {
	imagePath := a.paths.ImagePath(generationID, segment.SegmentID)
	audioPath := a.paths.AudioPath(generationID, segment.SegmentID)

	audioDuration, err := probeDuration(audioPath)
	if err != nil {
		return fmt.Errorf("failed to probe audio duration: %w", err)
	}

	still := ffmpeg.Input(imagePath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": a.cfg.FrameRate,
		"t":         fmt.Sprintf("%.3f", audioDuration),
	})
	narration := ffmpeg.Input(audioPath)

	return ffmpeg.Output([]*ffmpeg.Stream{still, narration}, clipPath, ffmpeg.KwArgs{
		"c:v":      a.cfg.VideoCodec,
		"c:a":      a.cfg.AudioCodec,
		"pix_fmt":  "yuv420p",
		"r":        a.cfg.FrameRate,
		"shortest": "",
	}).OverWriteOutput().Silent(true).Run()
}

// concatClips joins the per-segment clips with the concat demuxer. The clips
// share codec settings so the streams are copied, not re-encoded.
func (a *FFmpegAssembler) concatClips(workDir string, clipPaths []string, videoPath string) error {
	listPath := filepath.Join(workDir, "concat.txt")

	list := ""
	for _, clip := range clipPaths {
		list += fmt.Sprintf("file '%s'\n", clip)
	}
	if err := os.WriteFile(listPath, []byte(list), 0o644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}

	err := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(videoPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return fmt.Errorf("failed to concatenate clips: %w", err)
	}
	return nil
}

// probeDuration reads a media file's container duration in seconds
func probeDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, err
	}
	return parseProbeDuration(out)
}

// parseProbeDuration extracts format.duration from ffprobe JSON output
func parseProbeDuration(probeJSON string) (float64, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(probeJSON), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse probe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("probe output has no duration")
	}
	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", probe.Format.Duration, err)
	}
	return duration, nil
}
