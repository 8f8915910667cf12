package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/adapter/dto/generation"
	"github.com/videogen-team/videogen/internal/domain/entities"
	"github.com/videogen-team/videogen/internal/usecase/script"
	videoUsecase "github.com/videogen-team/videogen/internal/usecase/video"
)

// Providers exposes smoke-test endpoints for the external generation
// providers. Assets land under the shared directories with the nil UUID, so
// they never collide with real generations.
type Providers struct {
	scriptGen  *script.Generator
	imageSynth videoUsecase.AssetSynthesizer
	audioSynth videoUsecase.AssetSynthesizer
	logger     *zap.Logger
}

// NewProvidersHandler creates a new providers handler
func NewProvidersHandler(
	scriptGen *script.Generator,
	imageSynth videoUsecase.AssetSynthesizer,
	audioSynth videoUsecase.AssetSynthesizer,
	logger *zap.Logger,
) *Providers {
	return &Providers{
		scriptGen:  scriptGen,
		imageSynth: imageSynth,
		audioSynth: audioSynth,
		logger:     logger,
	}
}

// TestScript handles POST /providers/test-script
func (h *Providers) TestScript(c echo.Context) error {
	var req generation.TestScriptRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Prompt == "" {
		req.Prompt = "Give me 3 daily beauty tips"
	}

	videoScript, err := h.scriptGen.Generate(c.Request().Context(), req.Prompt, 60, 3)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, videoScript)
}

// TestImage handles POST /providers/test-image
func (h *Providers) TestImage(c echo.Context) error {
	var req generation.TestImageRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Prompt == "" {
		req.Prompt = "A beautiful sunset over mountains"
	}

	segment := entities.ScriptSegment{SegmentID: 1, ImagePrompt: req.Prompt}
	imagePath, err := h.imageSynth.Synthesize(c.Request().Context(), uuid.Nil, segment)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]string{"image_path": imagePath})
}

// TestSpeech handles POST /providers/test-speech
func (h *Providers) TestSpeech(c echo.Context) error {
	var req generation.TestSpeechRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Text == "" {
		req.Text = "Hello, this is a test of the text to speech functionality."
	}

	segment := entities.ScriptSegment{SegmentID: 1, Content: req.Text}
	audioPath, err := h.audioSynth.Synthesize(c.Request().Context(), uuid.Nil, segment)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]string{"audio_path": audioPath})
}
