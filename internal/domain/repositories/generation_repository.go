package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/videogen-team/videogen/internal/domain/entities"
)

// GenerationRepository defines persistence operations for generation records.
// Each status update is an independent durable write; the pipeline is the
// only writer while a generation is in flight, the polling path is read-only.
type GenerationRepository interface {
	Create(ctx context.Context, g *entities.Generation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Generation, error)
	List(ctx context.Context, limit int) ([]entities.Generation, error)

	// Stage transitions
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.GenerationStatus) error
	// SaveScript persists the script and advances to generating_assets in a
	// single update, so a crash cannot leave the record in generating_assets
	// without its script.
	SaveScript(ctx context.Context, id uuid.UUID, script *entities.VideoScript) error
	MarkCompleted(ctx context.Context, id uuid.UUID, videoURL string, archiveURL *string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
