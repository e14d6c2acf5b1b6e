package openai

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/option"
)

func TestEmbedder_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env") // Try to load .env from root
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping OpenAI integration test: OPENAI_API_KEY not set")
	}

	e := NewEmbedder(option.WithAPIKey(apiKey))
	e.SetModel("text-embedding-3-small")

	ctx := context.Background()
	vecs, err := e.Embed(ctx, []string{"the quick brown fox", "a lazy dog"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	if len(vecs[0]) == 0 || len(vecs[0]) != len(vecs[1]) {
		t.Errorf("expected equal non-zero dimensions, got %d and %d", len(vecs[0]), len(vecs[1]))
	}
}
