package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationStatus represents the status of a video generation pipeline
type GenerationStatus string

const (
	GenerationStatusProcessing       GenerationStatus = "processing"        // Record created, pipeline not started yet
	GenerationStatusGeneratingScript GenerationStatus = "generating_script" // Waiting on the script provider
	GenerationStatusGeneratingAssets GenerationStatus = "generating_assets" // Per-segment image/audio fan-out in flight
	GenerationStatusCreatingVideo    GenerationStatus = "creating_video"    // Assembling the final video
	GenerationStatusCompleted        GenerationStatus = "completed"         // Video rendered, video_url populated
	GenerationStatusFailed           GenerationStatus = "failed"            // Terminal, error populated
)

// stageOrder maps forward states to their position in the pipeline. failed is
// reachable from any non-terminal state and is not part of the forward order.
var stageOrder = map[GenerationStatus]int{
	GenerationStatusProcessing:       0,
	GenerationStatusGeneratingScript: 1,
	GenerationStatusGeneratingAssets: 2,
	GenerationStatusCreatingVideo:    3,
	GenerationStatusCompleted:        4,
}

// ScriptSegment is one narration+image unit of the video
type ScriptSegment struct {
	SegmentID   int     `json:"segment_id"`
	Content     string  `json:"content"`
	Duration    float64 `json:"duration"`
	ImagePrompt string  `json:"image_prompt"`
}

// VideoScript is the ordered list of segments produced by the script provider.
// Segment durations are the nominal uniform split; assembly derives the
// authoritative per-segment timing from the measured audio length.
type VideoScript struct {
	Segments      []ScriptSegment `json:"segments"`
	TotalDuration float64         `json:"total_duration"`
}

// Scan implements sql.Scanner interface for GORM
func (s *VideoScript) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &s)
}

// Value implements driver.Valuer interface for GORM
func (s VideoScript) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Generation represents one video generation request and its pipeline state
type Generation struct {
	ID       uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Prompt   string           `json:"prompt" gorm:"type:text;not null"`
	Duration int              `json:"duration" gorm:"type:integer;not null"`
	Segments int              `json:"segments" gorm:"type:integer;not null"`
	Status   GenerationStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'processing'"`

	VideoURL   *string      `json:"video_url,omitempty" gorm:"type:text"`
	ArchiveURL *string      `json:"archive_url,omitempty" gorm:"type:text"`
	Script     *VideoScript `json:"script,omitempty" gorm:"type:jsonb"`
	Error      *string      `json:"error,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewGeneration creates a new generation record in the initial state
func NewGeneration(prompt string, duration, segments int) *Generation {
	return &Generation{
		ID:        uuid.New(),
		Prompt:    prompt,
		Duration:  duration,
		Segments:  segments,
		Status:    GenerationStatusProcessing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// IsTerminal reports whether the generation can no longer change state
func (g *Generation) IsTerminal() bool {
	return g.Status == GenerationStatusCompleted || g.Status == GenerationStatusFailed
}

// CanTransition reports whether moving to next respects the monotonic
// pipeline order: strictly forward through the stages, with failed reachable
// from any non-terminal state
func (g *Generation) CanTransition(next GenerationStatus) bool {
	if g.IsTerminal() {
		return false
	}
	if next == GenerationStatusFailed {
		return true
	}
	cur, ok := stageOrder[g.Status]
	if !ok {
		return false
	}
	nxt, ok := stageOrder[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}

// MarkGeneratingScript marks the pipeline as waiting on the script provider
func (g *Generation) MarkGeneratingScript() {
	g.Status = GenerationStatusGeneratingScript
	g.UpdatedAt = time.Now()
}

// MarkGeneratingAssets attaches the generated script and advances to the
// asset fan-out stage
func (g *Generation) MarkGeneratingAssets(script *VideoScript) {
	g.Status = GenerationStatusGeneratingAssets
	g.Script = script
	g.UpdatedAt = time.Now()
}

// MarkCreatingVideo marks the pipeline as assembling the final video
func (g *Generation) MarkCreatingVideo() {
	g.Status = GenerationStatusCreatingVideo
	g.UpdatedAt = time.Now()
}

// MarkCompleted records the served video URL and completes the pipeline
func (g *Generation) MarkCompleted(videoURL string) {
	g.Status = GenerationStatusCompleted
	g.VideoURL = &videoURL
	g.UpdatedAt = time.Now()
}

// MarkFailed marks the generation as terminally failed with a diagnostic
func (g *Generation) MarkFailed(errMsg string) {
	g.Status = GenerationStatusFailed
	g.Error = &errMsg
	g.UpdatedAt = time.Now()
}

// TableName specifies the table name for GORM
func (Generation) TableName() string {
	return "generations"
}
