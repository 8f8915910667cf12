package entities

import "testing"

func TestCanTransition_ForwardOnly(t *testing.T) {
	g := NewGeneration("intro to tides", 30, 3)

	if !g.CanTransition(GenerationStatusGeneratingScript) {
		t.Fatal("processing should allow generating_script")
	}
	if g.CanTransition(GenerationStatusGeneratingAssets) {
		t.Fatal("processing must not skip to generating_assets")
	}
	if g.CanTransition(GenerationStatusCompleted) {
		t.Fatal("processing must not skip to completed")
	}

	g.MarkGeneratingScript()
	if g.CanTransition(GenerationStatusProcessing) {
		t.Fatal("states must never move backward")
	}
	if !g.CanTransition(GenerationStatusGeneratingAssets) {
		t.Fatal("generating_script should allow generating_assets")
	}
}

func TestCanTransition_FailedFromAnyNonTerminal(t *testing.T) {
	statuses := []func(g *Generation){
		func(g *Generation) {},
		func(g *Generation) { g.MarkGeneratingScript() },
		func(g *Generation) { g.MarkGeneratingScript(); g.MarkGeneratingAssets(&VideoScript{}) },
		func(g *Generation) {
			g.MarkGeneratingScript()
			g.MarkGeneratingAssets(&VideoScript{})
			g.MarkCreatingVideo()
		},
	}

	for i, setup := range statuses {
		g := NewGeneration("p", 30, 3)
		setup(g)
		if !g.CanTransition(GenerationStatusFailed) {
			t.Fatalf("case %d: failed should be reachable from %s", i, g.Status)
		}
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	g := NewGeneration("p", 30, 3)
	g.MarkFailed("boom")
	if g.CanTransition(GenerationStatusGeneratingScript) {
		t.Fatal("failed is terminal")
	}
	if g.CanTransition(GenerationStatusFailed) {
		t.Fatal("failed must not be re-entered")
	}

	g2 := NewGeneration("p", 30, 3)
	g2.MarkGeneratingScript()
	g2.MarkGeneratingAssets(&VideoScript{})
	g2.MarkCreatingVideo()
	g2.MarkCompleted("/v1/videos/x/file")
	if g2.CanTransition(GenerationStatusFailed) {
		t.Fatal("completed is terminal")
	}
	if g2.VideoURL == nil || *g2.VideoURL != "/v1/videos/x/file" {
		t.Fatal("completed must persist video url")
	}
}

func TestMarkFailed_RecordsError(t *testing.T) {
	g := NewGeneration("p", 30, 3)
	g.MarkFailed("script generation failed: deepseek returned status 503")
	if g.Error == nil || *g.Error == "" {
		t.Fatal("failed generation must carry a diagnostic message")
	}
	if !g.IsTerminal() {
		t.Fatal("failed must be terminal")
	}
}
