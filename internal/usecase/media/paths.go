package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/videogen-team/videogen/pkg/config"
)

// AssetPaths resolves where generated assets live on disk. All stages and the
// assembler agree on this layout, so a missing file at assembly time always
// means the producing stage failed to write it.
type AssetPaths struct {
	imagesDir string
	audioDir  string
	videosDir string
}

// NewAssetPaths builds the path resolver from media configuration
func NewAssetPaths(cfg *config.MediaConfig) *AssetPaths {
	return &AssetPaths{
		imagesDir: cfg.ImagesDir,
		audioDir:  cfg.AudioDir,
		videosDir: cfg.VideosDir,
	}
}

// EnsureDirs creates the asset directories if they do not exist
func (p *AssetPaths) EnsureDirs() error {
	for _, dir := range []string{p.imagesDir, p.audioDir, p.videosDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create asset directory %s: %w", dir, err)
		}
	}
	return nil
}

// ImagePath returns the path for a segment's still image
func (p *AssetPaths) ImagePath(generationID uuid.UUID, segmentID int) string {
	return filepath.Join(p.imagesDir, fmt.Sprintf("%s_segment_%d.jpg", generationID, segmentID))
}

// AudioPath returns the path for a segment's narration audio
func (p *AssetPaths) AudioPath(generationID uuid.UUID, segmentID int) string {
	return filepath.Join(p.audioDir, fmt.Sprintf("%s_segment_%d.mp3", generationID, segmentID))
}

// VideoPath returns the path for the final rendered video
func (p *AssetPaths) VideoPath(generationID uuid.UUID) string {
	return filepath.Join(p.videosDir, fmt.Sprintf("%s.mp4", generationID))
}
