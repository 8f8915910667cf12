package script

import (
	"context"
	stderrors "errors"
	"testing"

	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
)

type fakeCompleter struct {
	response string
	err      error
	prompt   string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestGenerate_Success(t *testing.T) {
	client := &fakeCompleter{response: sampleResponse}
	gen := NewGenerator(client, zap.NewNop())

	script, err := gen.Generate(context.Background(), "the deep ocean", 60, 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(script.Segments) != 2 {
		t.Errorf("expected 2 segments, got %d", len(script.Segments))
	}
	if client.prompt == "" {
		t.Fatal("completer was not called")
	}
}

func TestGenerate_DurationFollowsRequestedSegments(t *testing.T) {
	// The response carries 2 segments but 3 were requested; durations stay
	// pinned to the requested split
	client := &fakeCompleter{response: sampleResponse}
	gen := NewGenerator(client, zap.NewNop())

	script, err := gen.Generate(context.Background(), "the deep ocean", 60, 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, seg := range script.Segments {
		if seg.Duration != 20 {
			t.Errorf("segment %d: expected duration 20, got %f", seg.SegmentID, seg.Duration)
		}
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	client := &fakeCompleter{err: stderrors.New("connection refused")}
	gen := NewGenerator(client, zap.NewNop())

	_, err := gen.Generate(context.Background(), "the deep ocean", 60, 2)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrorCode_PROVIDER_FAILED {
		t.Errorf("expected PROVIDER_FAILED, got %s", appErr.Code)
	}
}

func TestGenerate_MalformedResponse(t *testing.T) {
	client := &fakeCompleter{response: "I'd be happy to help with that!"}
	gen := NewGenerator(client, zap.NewNop())

	_, err := gen.Generate(context.Background(), "the deep ocean", 60, 2)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrorCode_MALFORMED_SCRIPT {
		t.Errorf("expected MALFORMED_SCRIPT, got %s", appErr.Code)
	}
}
