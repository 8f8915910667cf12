package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/domain/entities"
	"github.com/videogen-team/videogen/pkg/config"
	"github.com/videogen-team/videogen/pkg/validator"
)

// fakeVideoService implements video.Service for handler tests
type fakeVideoService struct {
	generation *entities.Generation
	list       []entities.Generation
	videoPath  string
	err        error

	lastPrompt   string
	lastDuration int
	lastSegments int
}

func (f *fakeVideoService) StartGeneration(_ context.Context, prompt string, duration, segments int) (*entities.Generation, error) {
	f.lastPrompt = prompt
	f.lastDuration = duration
	f.lastSegments = segments
	return f.generation, f.err
}

func (f *fakeVideoService) GetGeneration(_ context.Context, id uuid.UUID) (*entities.Generation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.generation, nil
}

func (f *fakeVideoService) ListGenerations(_ context.Context) ([]entities.Generation, error) {
	return f.list, f.err
}

func (f *fakeVideoService) VideoFilePath(_ context.Context, _ uuid.UUID) (string, error) {
	return f.videoPath, f.err
}

func (f *fakeVideoService) StartWorkerPool(_ context.Context, _ int) error { return nil }
func (f *fakeVideoService) StopWorkerPool() error                          { return nil }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func newTestRouter(svc *fakeVideoService) (*echo.Echo, *Router) {
	e := newTestEcho()
	h := NewGenerationHandler(svc, zap.NewNop())
	rt := NewRouter(&config.Config{}, h, nil)
	// Provider routes need a providers handler; register video routes only
	e.GET("/health", rt.healthCheck)
	v1 := e.Group("/v1")
	rt.setupVideoRoutes(v1)
	return e, rt
}

func TestCreateGeneration_AppliesDefaults(t *testing.T) {
	g := entities.NewGeneration("the deep ocean", 60, 3)
	svc := &fakeVideoService{generation: g}
	e, _ := newTestRouter(svc)

	body := `{"prompt": "the deep ocean"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/videos", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastDuration != 60 || svc.lastSegments != 3 {
		t.Errorf("defaults not applied: duration=%d segments=%d", svc.lastDuration, svc.lastSegments)
	}

	var resp struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Data.ID != g.ID.String() {
		t.Errorf("expected id %s, got %s", g.ID, resp.Data.ID)
	}
	if resp.Data.Status != "processing" {
		t.Errorf("expected processing, got %s", resp.Data.Status)
	}
}

func TestCreateGeneration_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing prompt", `{"duration": 60}`},
		{"duration too short", `{"prompt": "x", "duration": 5}`},
		{"duration too long", `{"prompt": "x", "duration": 601}`},
		{"too many segments", `{"prompt": "x", "segments": 11}`},
		{"not json", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeVideoService{generation: entities.NewGeneration("x", 60, 3)}
			e, _ := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/v1/videos", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if svc.lastPrompt != "" {
				t.Error("service called despite invalid request")
			}
		})
	}
}

func TestGetGeneration_NotFound(t *testing.T) {
	svc := &fakeVideoService{err: errors.ErrGenerationNotFound(uuid.New().String())}
	e, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Code != string(errors.ErrorCode_GENERATION_NOT_FOUND) {
		t.Errorf("expected GENERATION_NOT_FOUND, got %s", resp.Code)
	}
}

func TestGetGeneration_InvalidID(t *testing.T) {
	svc := &fakeVideoService{}
	e, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListGenerations(t *testing.T) {
	list := []entities.Generation{
		*entities.NewGeneration("first", 60, 3),
		*entities.NewGeneration("second", 30, 2),
	}
	svc := &fakeVideoService{list: list}
	e, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data struct {
			Count       int `json:"count"`
			Generations []struct {
				Prompt string `json:"prompt"`
			} `json:"generations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Data.Count != 2 || len(resp.Data.Generations) != 2 {
		t.Errorf("expected 2 generations, got count=%d len=%d", resp.Data.Count, len(resp.Data.Generations))
	}
}

func TestGetVideoFile_NotReady(t *testing.T) {
	id := uuid.New()
	svc := &fakeVideoService{err: errors.ErrVideoNotReady(id.String(), "generating_assets")}
	e, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+id.String()+"/file", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetVideoFile_ServesFile(t *testing.T) {
	id := uuid.New()
	videoPath := filepath.Join(t.TempDir(), id.String()+".mp4")
	if err := os.WriteFile(videoPath, []byte("mp4-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := &fakeVideoService{videoPath: videoPath}
	e, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+id.String()+"/file", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "mp4-bytes" {
		t.Error("video bytes not served")
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "video/mp4" {
		t.Errorf("expected video/mp4, got %s", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, id.String()) {
		t.Errorf("content disposition should name the file: %s", cd)
	}
}

func TestHealthCheck(t *testing.T) {
	e, _ := newTestRouter(&fakeVideoService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
