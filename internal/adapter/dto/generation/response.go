package generation

import (
	"time"

	"github.com/videogen-team/videogen/internal/domain/entities"
)

// SegmentResponse represents one script segment in responses
type SegmentResponse struct {
	SegmentID   int     `json:"segment_id"`
	Content     string  `json:"content"`
	Duration    float64 `json:"duration"`
	ImagePrompt string  `json:"image_prompt"`
}

// ScriptResponse represents the generated script in responses
type ScriptResponse struct {
	Segments      []SegmentResponse `json:"segments"`
	TotalDuration float64           `json:"total_duration"`
}

// GenerationResponse represents a generation in responses
type GenerationResponse struct {
	ID         string          `json:"id"`
	Prompt     string          `json:"prompt"`
	Duration   int             `json:"duration"`
	Segments   int             `json:"segments"`
	Status     string          `json:"status"`
	VideoURL   *string         `json:"video_url,omitempty"`
	ArchiveURL *string         `json:"archive_url,omitempty"`
	Script     *ScriptResponse `json:"script,omitempty"`
	Error      *string         `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ListGenerationsResponse represents a page of generations, newest first
type ListGenerationsResponse struct {
	Generations []GenerationResponse `json:"generations"`
	Count       int                  `json:"count"`
}

// FromEntity converts a generation entity to its response shape
func FromEntity(g *entities.Generation) GenerationResponse {
	resp := GenerationResponse{
		ID:         g.ID.String(),
		Prompt:     g.Prompt,
		Duration:   g.Duration,
		Segments:   g.Segments,
		Status:     string(g.Status),
		VideoURL:   g.VideoURL,
		ArchiveURL: g.ArchiveURL,
		Error:      g.Error,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
	if g.Script != nil {
		resp.Script = scriptFromEntity(g.Script)
	}
	return resp
}

// FromEntityList converts a slice of generation entities
func FromEntityList(gens []entities.Generation) ListGenerationsResponse {
	out := make([]GenerationResponse, 0, len(gens))
	for i := range gens {
		out = append(out, FromEntity(&gens[i]))
	}
	return ListGenerationsResponse{Generations: out, Count: len(out)}
}

func scriptFromEntity(s *entities.VideoScript) *ScriptResponse {
	segments := make([]SegmentResponse, 0, len(s.Segments))
	for _, seg := range s.Segments {
		segments = append(segments, SegmentResponse{
			SegmentID:   seg.SegmentID,
			Content:     seg.Content,
			Duration:    seg.Duration,
			ImagePrompt: seg.ImagePrompt,
		})
	}
	return &ScriptResponse{Segments: segments, TotalDuration: s.TotalDuration}
}
