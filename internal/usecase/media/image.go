package media

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/domain/entities"
)

const (
	// 16:9 frame matching the provider's output resolution
	placeholderWidth  = 1792
	placeholderHeight = 1024

	// Provider prompt length limit
	maxImagePromptLen = 1000
)

// ImageProvider is the image synthesis surface of the media provider client
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// ImageSynthesizer renders one still image per segment. The provider is the
// primary strategy; when it fails the synthesizer degrades to a locally drawn
// placeholder so the pipeline can still produce a video.
type ImageSynthesizer struct {
	provider ImageProvider
	paths    *AssetPaths
	logger   *zap.Logger
}

// NewImageSynthesizer constructs an image synthesizer
func NewImageSynthesizer(provider ImageProvider, paths *AssetPaths, logger *zap.Logger) *ImageSynthesizer {
	return &ImageSynthesizer{
		provider: provider,
		paths:    paths,
		logger:   logger,
	}
}

// Synthesize writes the segment's still image to its canonical path and
// returns that path. Provider failure is not fatal; only failing to write the
// placeholder is.
func (s *ImageSynthesizer) Synthesize(ctx context.Context, generationID uuid.UUID, segment entities.ScriptSegment) (string, error) {
	imagePath := s.paths.ImagePath(generationID, segment.SegmentID)

	data, err := s.provider.GenerateImage(ctx, enhanceImagePrompt(segment.ImagePrompt))
	if err == nil {
		err = os.WriteFile(imagePath, data, 0o644)
		if err == nil {
			return imagePath, nil
		}
	}

	s.logger.Warn("Image provider failed, falling back to placeholder",
		zap.String("generation_id", generationID.String()),
		zap.Int("segment_id", segment.SegmentID),
		zap.Error(err))

	if err := s.writePlaceholder(imagePath, segment); err != nil {
		return "", errors.ErrAssetGenerationFailed("image", segment.SegmentID, err)
	}
	return imagePath, nil
}

// writePlaceholder draws a flat-color frame with the segment label and a
// snippet of the image prompt
func (s *ImageSynthesizer) writePlaceholder(path string, segment entities.ScriptSegment) error {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	bg := color.RGBA{R: 73, G: 109, B: 137, A: 255}
	for y := 0; y < placeholderHeight; y++ {
		for x := 0; x < placeholderWidth; x++ {
			img.Set(x, y, bg)
		}
	}

	snippet := truncateRunes(segment.ImagePrompt, 100)
	drawLabel(img, 50, 500, fmt.Sprintf("Segment %d", segment.SegmentID))
	drawLabel(img, 50, 520, snippet+"...")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create placeholder image: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode placeholder image: %w", err)
	}
	return nil
}

// drawLabel renders a single line of white text at the given pixel position
func drawLabel(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

// enhanceImagePrompt trims the prompt to the provider limit and adds style
// guidance for video-friendly output
func enhanceImagePrompt(prompt string) string {
	return fmt.Sprintf("High quality, photorealistic: %s. Professional lighting, detailed, 16:9 aspect ratio suitable for video.",
		truncateRunes(prompt, maxImagePromptLen))
}

// truncateRunes shortens s to at most n characters without splitting a
// multibyte character at the boundary
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
