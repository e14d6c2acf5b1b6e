package store

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"
)

// Passage is the unit of storage and retrieval: a chunk of text together with
// its embedding vector and provenance metadata. Passages are immutable once
// appended.
type Passage struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Vector   []float32 `json:"vector"`
	Metadata Metadata  `json:"metadata"`
}

// Metadata carries the recognized provenance fields for a passage.
type Metadata struct {
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
	IngestedAt time.Time `json:"ingested_at"`
}

// ScoredPassage pairs a passage with its similarity score against a query.
type ScoredPassage struct {
	Passage Passage `json:"passage"`
	Score   float64 `json:"score"`
}

var (
	// ErrDimensionMismatch indicates a vector whose length disagrees with the
	// dimension the store is bound to. This is a configuration error and is
	// never retried.
	ErrDimensionMismatch = errors.New("store: vector dimension mismatch")

	// ErrInvalidTopK indicates a non-positive k passed to Retrieve.
	ErrInvalidTopK = errors.New("store: top-k must be positive")
)

// VectorStore holds passages and answers similarity-ranked top-k retrieval.
//
// A store is bound to a single vector dimension, fixed either at construction
// or by the first successful Append. Append must be atomic with respect to
// concurrent appends; Retrieve may run concurrently with Append and observes
// only fully recorded passages.
//
// Retrieve on an empty store returns an empty slice, not an error: an empty
// knowledge base is a normal state, not an exceptional one.
type VectorStore interface {
	// Append records one passage and returns its assigned id.
	Append(ctx context.Context, vector []float32, text string, meta Metadata) (string, error)
	// Retrieve returns the min(k, size) highest-scoring passages for the
	// query vector, ordered by non-increasing cosine similarity. Ties keep
	// insertion order.
	Retrieve(ctx context.Context, query []float32, k int) ([]ScoredPassage, error)
}

// Cosine returns the cosine similarity of two vectors. A zero-magnitude
// vector has no defined angle; its similarity is reported as 0 so that
// ranking stays total instead of propagating a division by zero.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every passage against the query and returns the top k in
// non-increasing score order. The sort is stable, so equal scores keep the
// order of the input slice. Backends without a native similarity operator
// load their passages and rank here, which keeps every backend's results
// exact and identical.
func Rank(passages []Passage, query []float32, k int) []ScoredPassage {
	scored := make([]ScoredPassage, len(passages))
	for i, p := range passages {
		scored[i] = ScoredPassage{Passage: p, Score: Cosine(p.Vector, query)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
