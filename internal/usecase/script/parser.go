package script

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/videogen-team/videogen/internal/domain/entities"
)

// Parser handles parsing and validation of script provider responses
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// rawScript mirrors the JSON shape the provider is asked to emit. Segment IDs
// and durations from the provider are ignored and recomputed locally.
type rawScript struct {
	Segments []struct {
		SegmentID   int    `json:"segment_id"`
		Content     string `json:"content"`
		ImagePrompt string `json:"image_prompt"`
	} `json:"segments"`
}

// ParseScriptResponse parses a provider completion into a VideoScript. The
// segments are renumbered 1..N in response order and each gets a uniform
// duration of totalDuration over the *requested* segment count — the model
// may return more or fewer segments than asked, and the timing contract must
// not drift when it does.
func (p *Parser) ParseScriptResponse(content string, totalDuration, requestedSegments int) (*entities.VideoScript, error) {
	// Extract JSON from response (the model might wrap it in markdown code blocks)
	content = extractJSON(content)

	var raw rawScript
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse script JSON: %w", err)
	}

	if len(raw.Segments) == 0 {
		return nil, fmt.Errorf("script response contains no segments")
	}
	if requestedSegments < 1 {
		return nil, fmt.Errorf("requested segment count must be positive, got %d", requestedSegments)
	}

	segmentDuration := float64(totalDuration) / float64(requestedSegments)

	segments := make([]entities.ScriptSegment, 0, len(raw.Segments))
	for i, seg := range raw.Segments {
		if strings.TrimSpace(seg.Content) == "" {
			return nil, fmt.Errorf("segment %d has empty content", i+1)
		}
		if strings.TrimSpace(seg.ImagePrompt) == "" {
			return nil, fmt.Errorf("segment %d has empty image_prompt", i+1)
		}
		segments = append(segments, entities.ScriptSegment{
			SegmentID:   i + 1,
			Content:     seg.Content,
			Duration:    segmentDuration,
			ImagePrompt: seg.ImagePrompt,
		})
	}

	return &entities.VideoScript{
		Segments:      segments,
		TotalDuration: float64(totalDuration),
	}, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
