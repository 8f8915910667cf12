package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/videogen-team/videogen/internal/domain/entities"
)

// GenerationRepository handles generation record data operations
type GenerationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new generation repository
func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Create persists a new generation record
func (r *GenerationRepository) Create(ctx context.Context, g *entities.Generation) error {
	if g == nil {
		return errors.New("generation cannot be nil")
	}
	return r.db.WithContext(ctx).Create(g).Error
}

// GetByID retrieves a generation by ID
func (r *GenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Generation, error) {
	var g entities.Generation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// List retrieves generations, most recently created first
func (r *GenerationRepository) List(ctx context.Context, limit int) ([]entities.Generation, error) {
	var generations []entities.Generation
	if limit == 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&generations).Error; err != nil {
		return nil, err
	}
	return generations, nil
}

// UpdateStatus updates the status of a generation
func (r *GenerationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.GenerationStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Generation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// SaveScript persists the script and advances the record to generating_assets
// in one update
func (r *GenerationRepository) SaveScript(ctx context.Context, id uuid.UUID, script *entities.VideoScript) error {
	if script == nil {
		return errors.New("script cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.Generation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"script":     script,
			"status":     entities.GenerationStatusGeneratingAssets,
			"updated_at": time.Now(),
		}).Error
}

// MarkCompleted marks a generation as completed with its video URL
func (r *GenerationRepository) MarkCompleted(ctx context.Context, id uuid.UUID, videoURL string, archiveURL *string) error {
	updates := map[string]interface{}{
		"status":     entities.GenerationStatusCompleted,
		"video_url":  videoURL,
		"updated_at": time.Now(),
	}
	if archiveURL != nil {
		updates["archive_url"] = *archiveURL
	}
	return r.db.WithContext(ctx).
		Model(&entities.Generation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkFailed marks a generation as failed with a diagnostic message
func (r *GenerationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Generation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.GenerationStatusFailed,
			"error":      errMsg,
			"updated_at": time.Now(),
		}).Error
}
