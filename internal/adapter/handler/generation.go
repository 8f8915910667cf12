package handler

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/adapter/dto/generation"
	videoUsecase "github.com/videogen-team/videogen/internal/usecase/video"
)

// Generation handles video generation HTTP requests
type Generation struct {
	videoService videoUsecase.Service
	logger       *zap.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(videoService videoUsecase.Service, logger *zap.Logger) *Generation {
	return &Generation{
		videoService: videoService,
		logger:       logger,
	}
}

// CreateGeneration handles POST /videos. It creates the generation record,
// queues the pipeline and returns immediately; clients poll GET /videos/:id
// for progress.
func (h *Generation) CreateGeneration(c echo.Context) error {
	var req generation.CreateGenerationRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	req.ApplyDefaults()
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	g, err := h.videoService.StartGeneration(c.Request().Context(), req.Prompt, req.Duration, req.Segments)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, generation.FromEntity(g))
}

// GetGeneration handles GET /videos/:id
func (h *Generation) GetGeneration(c echo.Context) error {
	id, err := parseGenerationID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	g, err := h.videoService.GetGeneration(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, generation.FromEntity(g))
}

// ListGenerations handles GET /videos
func (h *Generation) ListGenerations(c echo.Context) error {
	gens, err := h.videoService.ListGenerations(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, generation.FromEntityList(gens))
}

// GetVideoFile handles GET /videos/:id/file. It streams the rendered mp4 for
// completed generations only.
func (h *Generation) GetVideoFile(c echo.Context) error {
	id, err := parseGenerationID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	videoPath, err := h.videoService.VideoFilePath(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "video/mp4")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="video_%s.mp4"`, id))
	return c.File(videoPath)
}

// parseGenerationID reads and validates the :id path parameter
func parseGenerationID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("invalid generation id")
	}
	return id, nil
}
