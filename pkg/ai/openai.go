package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/videogen-team/videogen/pkg/config"
)

// OpenAIClient is a minimal client for the OpenAI image generation and
// text-to-speech endpoints
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	imageModel string
	imageSize  string
	ttsModel   string
	ttsVoice   string
	client     *http.Client
}

// NewOpenAIClient creates an OpenAI client using values from the provided
// config. Pass a nil config to fall back to environment variables.
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("OPENAI_API_URL")
		if base == "" {
			base = "https://api.openai.com"
		}
	}

	c := &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    base,
		imageModel: "dall-e-3",
		imageSize:  "1792x1024",
		ttsModel:   "tts-1-hd",
		ttsVoice:   "nova",
		// Image and speech synthesis are slow calls
		client: &http.Client{Timeout: 120 * time.Second},
	}
	if cfg != nil {
		if cfg.ImageModel != "" {
			c.imageModel = cfg.ImageModel
		}
		if cfg.ImageSize != "" {
			c.imageSize = cfg.ImageSize
		}
		if cfg.TTSModel != "" {
			c.ttsModel = cfg.TTSModel
		}
		if cfg.TTSVoice != "" {
			c.ttsVoice = cfg.TTSVoice
		}
	}
	return c
}

// ImageRequest is the shape for image generation requests
type ImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// ImageResponse is a minimal response shape
type ImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage requests one image for the prompt and returns the decoded
// raster bytes
func (o *OpenAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := ImageRequest{
		Model:          o.imageModel,
		Prompt:         prompt,
		Size:           o.imageSize,
		Quality:        "hd",
		ResponseFormat: "b64_json",
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := o.baseURL + "/v1/images/generations"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("openai images returned status %d", resp.StatusCode)
	}

	var ir ImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, err
	}
	if len(ir.Data) == 0 {
		return nil, fmt.Errorf("empty image response from openai")
	}

	raw, err := base64.StdEncoding.DecodeString(ir.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return raw, nil
}

// SpeechRequest is the shape for speech synthesis requests
type SpeechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// GenerateSpeech synthesizes speech for the text and streams the audio
// container to w
func (o *OpenAIClient) GenerateSpeech(ctx context.Context, text string, w io.Writer) error {
	reqBody := SpeechRequest{
		Model: o.ttsModel,
		Voice: o.ttsVoice,
		Input: text,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	endpoint := o.baseURL + "/v1/audio/speech"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("openai speech returned status %d", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to stream speech audio: %w", err)
	}
	return nil
}
