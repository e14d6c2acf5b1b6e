package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/barekit/corpus/pkg/embed"
)

// Embedder wraps another embedder with a Redis cache. Chunks that appear in
// more than one ingestion run (or in more than one source) hit the provider
// only once. Cache keys include the model name so switching models never
// serves stale vectors.
type Embedder struct {
	inner  embed.Embedder
	client *redis.Client
	model  string
	ttl    time.Duration
}

// New creates a caching embedder around inner. model names the embedding
// model for key scoping. A zero ttl caches without expiry.
func New(inner embed.Embedder, client *redis.Client, model string, ttl time.Duration) *Embedder {
	return &Embedder{inner: inner, client: client, model: model, ttl: ttl}
}

// Embed returns cached vectors where available and calls the inner embedder
// for the rest, preserving input order. Cache write failures are ignored:
// the cache is an optimization, never a correctness dependency.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		vec, err := e.lookup(ctx, text)
		if err != nil {
			missTexts = append(missTexts, text)
			missIdx = append(missIdx, i)
			continue
		}
		vectors[i] = vec
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := e.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(fresh), len(missTexts))
	}

	for i, vec := range fresh {
		vectors[missIdx[i]] = vec
		if b, err := json.Marshal(vec); err == nil {
			e.client.Set(ctx, e.key(missTexts[i]), b, e.ttl)
		}
	}
	return vectors, nil
}

// lookup fetches one cached vector. Any failure, including an unreachable
// cache, counts as a miss.
func (e *Embedder) lookup(ctx context.Context, text string) ([]float32, error) {
	b, err := e.client.Get(ctx, e.key(text)).Bytes()
	if err != nil {
		return nil, err
	}
	var vec []float32
	if err := json.Unmarshal(b, &vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *Embedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", e.model, hex.EncodeToString(sum[:]))
}
