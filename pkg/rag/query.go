package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/barekit/corpus/pkg/embed"
	"github.com/barekit/corpus/pkg/llm"
	"github.com/barekit/corpus/pkg/store"
)

const (
	// DefaultTopK is how many passages back a query unless overridden.
	DefaultTopK = 5

	// DefaultMaxAnswerTokens bounds the generator's output length.
	DefaultMaxAnswerTokens = 200

	promptTemplate = "Use the following context to answer the query:\n\n%s\n\nQuery: %s\nAnswer:"
)

// ErrEmptyQuery indicates a blank query string, a malformed input rather
// than a provider failure.
var ErrEmptyQuery = errors.New("rag: empty query")

// Querier answers free-text queries by retrieving the most relevant stored
// passages and handing them to a text-generation model as context.
type Querier struct {
	embedder    embed.Embedder
	store       store.VectorStore
	generator   llm.Generator
	topK        int
	maxTokens   int
	callTimeout time.Duration
	debug       bool
}

// QuerierOption configures a Querier.
type QuerierOption func(*Querier)

// WithTopK sets the default number of passages retrieved per query.
func WithTopK(k int) QuerierOption {
	return func(q *Querier) {
		if k > 0 {
			q.topK = k
		}
	}
}

// WithMaxAnswerTokens bounds the generator's output length.
func WithMaxAnswerTokens(n int) QuerierOption {
	return func(q *Querier) {
		if n > 0 {
			q.maxTokens = n
		}
	}
}

// WithQueryCallTimeout bounds each embedding and generation call. Zero
// disables the per-call bound.
func WithQueryCallTimeout(d time.Duration) QuerierOption {
	return func(q *Querier) { q.callTimeout = d }
}

// WithQueryDebug enables debug logging.
func WithQueryDebug(enable bool) QuerierOption {
	return func(q *Querier) { q.debug = enable }
}

// NewQuerier creates a query pipeline over the given collaborators.
func NewQuerier(embedder embed.Embedder, st store.VectorStore, generator llm.Generator, opts ...QuerierOption) *Querier {
	q := &Querier{
		embedder:  embedder,
		store:     st,
		generator: generator,
		topK:      DefaultTopK,
		maxTokens: DefaultMaxAnswerTokens,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Answer runs the query pipeline with the configured top-K.
func (q *Querier) Answer(ctx context.Context, query string) (string, error) {
	return q.AnswerTopK(ctx, query, q.topK)
}

// AnswerTopK embeds the query, retrieves the k most relevant passages,
// assembles them into a context block and asks the generator. An empty
// store produces an empty context block: the generator still runs, so the
// query path degrades to an ungrounded answer instead of failing.
func (q *Querier) AnswerTopK(ctx context.Context, query string, k int) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}
	if k <= 0 {
		k = q.topK
	}

	vecs, err := q.embedCall(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := q.store.Retrieve(ctx, vecs, k)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}
	if q.debug {
		slog.Info("passages retrieved", "query", query, "k", k, "hits", len(results))
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Passage.Text
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(texts, "\n"), query)

	answer, err := q.generateCall(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// Retrieve exposes the ranked passages for a query without generation,
// for callers that want the raw evidence.
func (q *Querier) Retrieve(ctx context.Context, query string, k int) ([]store.ScoredPassage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = q.topK
	}
	vecs, err := q.embedCall(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return q.store.Retrieve(ctx, vecs, k)
}

func (q *Querier) embedCall(ctx context.Context, query string) ([]float32, error) {
	if q.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.callTimeout)
		defer cancel()
	}
	vecs, err := q.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}
	return vecs[0], nil
}

func (q *Querier) generateCall(ctx context.Context, prompt string) (string, error) {
	if q.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.callTimeout)
		defer cancel()
	}
	return q.generator.Generate(ctx, prompt, q.maxTokens)
}
