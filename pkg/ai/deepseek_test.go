package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/videogen-team/videogen/pkg/config"
)

func TestComplete_Success(t *testing.T) {
	// Mock DeepSeek server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Model != "deepseek-chat" {
			t.Fatalf("unexpected model %s", payload.Model)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "hello from the model"}},
			},
		})
	}))
	defer ts.Close()

	client := NewDeepSeekClient(&config.DeepSeekConfig{APIKey: "test-key", BaseURL: ts.URL})

	content, err := client.Complete(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if content != "hello from the model" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestComplete_ProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewDeepSeekClient(&config.DeepSeekConfig{APIKey: "test-key", BaseURL: ts.URL})

	if _, err := client.Complete(context.Background(), "say hello"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer ts.Close()

	client := NewDeepSeekClient(&config.DeepSeekConfig{APIKey: "test-key", BaseURL: ts.URL})

	if _, err := client.Complete(context.Background(), "say hello"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
