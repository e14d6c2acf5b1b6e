package rag

import (
	"context"
	"fmt"
	"sync"
)

// Test doubles shared by the ingest and query tests.

type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
}

func (f *fakeExtractor) Extract(ctx context.Context, source string) (string, error) {
	if err, ok := f.errs[source]; ok {
		return "", err
	}
	text, ok := f.texts[source]
	if !ok {
		return "", fmt.Errorf("unknown source %s", source)
	}
	return text, nil
}

// fakeEmbedder returns a fixed vector per text, or a constant vector when no
// mapping is given. Calls are counted for assertions about fan-out and
// failure short-circuits.
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   int
	vectors map[string][]float32
	failOn  map[string]error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err, ok := f.failOn[text]; ok {
			return nil, err
		}
		if vec, ok := f.vectors[text]; ok {
			out[i] = vec
			continue
		}
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	out     string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}
