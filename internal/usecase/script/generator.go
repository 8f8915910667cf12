package script

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/domain/entities"
)

// Completer is the chat completion surface the generator needs from the
// script provider client
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator produces structured video scripts from a user prompt via an LLM
type Generator struct {
	client Completer
	parser *Parser
	logger *zap.Logger
}

// NewGenerator constructs a script generator
func NewGenerator(client Completer, logger *zap.Logger) *Generator {
	return &Generator{
		client: client,
		parser: NewParser(),
		logger: logger,
	}
}

// Generate asks the script provider for a narration script split into the
// requested number of segments. A provider failure surfaces as a provider
// error; an unparseable response surfaces as a malformed script error.
// There are no retries at this level.
func (g *Generator) Generate(ctx context.Context, prompt string, duration, segments int) (*entities.VideoScript, error) {
	scriptPrompt := buildScriptPrompt(prompt, duration, segments)

	g.logger.Info("Requesting video script",
		zap.Int("duration", duration),
		zap.Int("segments", segments))

	content, err := g.client.Complete(ctx, scriptPrompt)
	if err != nil {
		return nil, errors.ErrProviderFailed("deepseek", err)
	}

	script, err := g.parser.ParseScriptResponse(content, duration, segments)
	if err != nil {
		g.logger.Warn("Script response did not parse",
			zap.Int("response_length", len(content)),
			zap.Error(err))
		return nil, errors.ErrMalformedScript(err)
	}

	g.logger.Info("Script generated",
		zap.Int("segments", len(script.Segments)),
		zap.Float64("total_duration", script.TotalDuration))

	return script, nil
}

// buildScriptPrompt renders the instruction sent to the script provider. The
// response format is pinned to a JSON object so the parser can stay strict.
func buildScriptPrompt(prompt string, duration, segments int) string {
	segmentDuration := float64(duration) / float64(segments)

	return fmt.Sprintf(`Create a video script for: %q

Requirements:
- Total video duration: %d seconds
- Divide into %d equal segments
- Each segment should be approximately %.1f seconds when spoken
- For each segment, provide:
  1. Engaging narration text (concise but informative)
  2. A detailed image prompt for DALL-E 3 (photorealistic description)

Format your response as JSON:
{
    "segments": [
        {
            "segment_id": 1,
            "content": "Narration text for segment 1",
            "image_prompt": "Detailed photorealistic image description for DALL-E 3"
        },
        ...
    ]
}

Make sure the narration is natural, engaging, and fits the timing. Image prompts should be detailed and photorealistic.`,
		prompt, duration, segments, segmentDuration)
}
