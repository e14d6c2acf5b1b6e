package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/barekit/corpus/pkg/store"
	"github.com/barekit/corpus/pkg/store/memory"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	passages := []struct {
		text string
		vec  []float32
	}{
		{"about cats", []float32{1, 0}},
		{"about dogs", []float32{0, 1}},
		{"about pets", []float32{1, 1}},
	}
	for i, p := range passages {
		if _, err := st.Append(ctx, p.vec, p.text, store.Metadata{Source: "seed", ChunkIndex: i}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	return st
}

func TestAnswer_UsesRetrievedContext(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{vectors: map[string][]float32{"tell me about cats": {1, 0}}}
	gen := &fakeGenerator{out: "  Cats are great.\n"}

	q := NewQuerier(embedder, seededStore(t), gen, WithTopK(2))
	answer, err := q.Answer(ctx, "tell me about cats")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if answer != "Cats are great." {
		t.Errorf("expected trimmed answer, got %q", answer)
	}

	prompt := gen.lastPrompt()
	if !strings.Contains(prompt, "about cats\nabout pets") {
		t.Errorf("expected context block in score order, got prompt:\n%s", prompt)
	}
	if strings.Contains(prompt, "about dogs") {
		t.Errorf("orthogonal passage should not be retrieved with k=2:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Query: tell me about cats") {
		t.Errorf("expected the query in the prompt:\n%s", prompt)
	}
}

func TestAnswer_TopKOverride(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	gen := &fakeGenerator{out: "ok"}

	q := NewQuerier(embedder, seededStore(t), gen, WithTopK(3))
	if _, err := q.AnswerTopK(ctx, "q", 1); err != nil {
		t.Fatalf("AnswerTopK failed: %v", err)
	}

	prompt := gen.lastPrompt()
	if !strings.Contains(prompt, "about cats") {
		t.Errorf("expected best passage in context:\n%s", prompt)
	}
	if strings.Contains(prompt, "about pets") {
		t.Errorf("k=1 must retrieve a single passage:\n%s", prompt)
	}
}

func TestAnswer_EmptyStore(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{out: "I have no sources for that, but..."}

	q := NewQuerier(&fakeEmbedder{}, memory.New(), gen)
	answer, err := q.Answer(ctx, "anything?")
	if err != nil {
		t.Fatalf("Answer on empty store must not fail: %v", err)
	}
	if answer == "" {
		t.Error("expected a non-empty ungrounded answer")
	}

	// The generator still runs, with an empty context block.
	prompt := gen.lastPrompt()
	if prompt == "" {
		t.Fatal("generator was not invoked")
	}
	if !strings.Contains(prompt, "Query: anything?") {
		t.Errorf("expected the query in the prompt:\n%s", prompt)
	}
}

func TestAnswer_EmptyQuery(t *testing.T) {
	q := NewQuerier(&fakeEmbedder{}, memory.New(), &fakeGenerator{out: "x"})
	for _, query := range []string{"", "   "} {
		if _, err := q.Answer(context.Background(), query); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Answer(%q): expected ErrEmptyQuery, got %v", query, err)
		}
	}
}

func TestAnswer_EmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{failOn: map[string]error{"q": errors.New("provider down")}}
	gen := &fakeGenerator{out: "x"}

	q := NewQuerier(embedder, seededStore(t), gen)
	_, err := q.Answer(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error when query embedding fails")
	}
	if !strings.Contains(err.Error(), "failed to embed query") {
		t.Errorf("expected embed failure context, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Error("generator must not run without a query vector")
	}
}

func TestAnswer_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model overloaded")}

	q := NewQuerier(&fakeEmbedder{}, seededStore(t), gen)
	_, err := q.Answer(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error when generation fails")
	}
	if !strings.Contains(err.Error(), "generation failed") {
		t.Errorf("expected generation failure context, got %v", err)
	}
}

func TestRetrieve_ReturnsScoredPassages(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {0, 1}}}

	q := NewQuerier(embedder, seededStore(t), &fakeGenerator{out: "x"})
	results, err := q.Retrieve(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Passage.Text != "about dogs" {
		t.Errorf("expected best match first, got %q", results[0].Passage.Text)
	}
}
