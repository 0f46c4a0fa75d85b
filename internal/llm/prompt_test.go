package llm

import (
	"strings"
	"testing"

	"github.com/ragvision/ragvision/internal/models"
)

func TestBuildGroundedRequest(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Chunk: &models.DocumentChunk{Filename: "geo.txt", Content: "The capital of Testland is Foo."}, Score: 0.9},
		{Chunk: &models.DocumentChunk{Filename: "fruit.txt", Content: "Bananas are yellow."}, Score: 0.4},
	}
	req := BuildGroundedRequest("What is the capital of Testland?", chunks)

	if req.System == "" {
		t.Error("missing system prompt")
	}
	for _, want := range []string{"[geo.txt]", "[fruit.txt]", "The capital of Testland is Foo.", "Question: What is the capital of Testland?"} {
		if !strings.Contains(req.Query, want) {
			t.Errorf("prompt missing %q:\n%s", want, req.Query)
		}
	}
	if len(req.History) != 0 {
		t.Errorf("grounded request should carry no history, got %d", len(req.History))
	}
}
