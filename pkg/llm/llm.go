package llm

import "context"

// Generator maps a prompt to generated text, bounded by a maximum output
// length in tokens. Latency and failure belong to the caller: a provider
// error is surfaced, never retried here.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}
