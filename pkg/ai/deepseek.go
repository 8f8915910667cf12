package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/videogen-team/videogen/pkg/config"
)

// DeepSeekClient is a minimal client for DeepSeek chat completions used for
// script generation
type DeepSeekClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewDeepSeekClient creates a DeepSeek client using values from the provided
// config. Pass a nil config to fall back to environment variables.
func NewDeepSeekClient(cfg *config.DeepSeekConfig) *DeepSeekClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("DEEPSEEK_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("DEEPSEEK_API_URL")
		if base == "" {
			base = "https://api.deepseek.com"
		}
	}

	model := "deepseek-chat"
	if cfg != nil && cfg.Model != "" {
		model = cfg.Model
	}

	return &DeepSeekClient{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-turn chat completion and returns the assistant content.
// A non-2xx status is reported as an error without retrying; the caller owns
// retry and fallback policy.
func (d *DeepSeekClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatRequest{
		Model:       d.model,
		Messages:    []map[string]string{{"role": "user", "content": prompt}},
		Temperature: 0.7,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := d.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("deepseek returned status %d", resp.StatusCode)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from deepseek")
	}
	return cr.Choices[0].Message.Content, nil
}
