package generation

// CreateGenerationRequest represents the request to start a video generation
type CreateGenerationRequest struct {
	Prompt   string `json:"prompt" validate:"required,min=1,max=2000"`
	Duration int    `json:"duration" validate:"omitempty,min=10,max=600"`
	Segments int    `json:"segments" validate:"omitempty,min=1,max=10"`
}

// ApplyDefaults fills optional fields with their defaults
func (r *CreateGenerationRequest) ApplyDefaults() {
	if r.Duration == 0 {
		r.Duration = 60
	}
	if r.Segments == 0 {
		r.Segments = 3
	}
}

// ListGenerationsRequest represents query parameters for listing generations
type ListGenerationsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// TestScriptRequest represents a script provider smoke-test request
type TestScriptRequest struct {
	Prompt string `json:"prompt" validate:"omitempty,max=2000"`
}

// TestImageRequest represents an image provider smoke-test request
type TestImageRequest struct {
	Prompt string `json:"prompt" validate:"omitempty,max=1000"`
}

// TestSpeechRequest represents a TTS provider smoke-test request
type TestSpeechRequest struct {
	Text string `json:"text" validate:"omitempty,max=2000"`
}
