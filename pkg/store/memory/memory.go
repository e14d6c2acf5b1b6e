package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/barekit/corpus/pkg/store"
)

// Store is the reference in-memory vector store: brute-force cosine ranking
// over every passage. Exact, ordered, and good for collections that fit in
// one process.
type Store struct {
	mu        sync.RWMutex
	dimension int
	passages  []store.Passage
	seq       int
}

// New creates an empty store. The vector dimension is bound by the first
// successful Append.
func New() *Store {
	return &Store{}
}

// NewWithDimension creates an empty store bound to the given dimension.
func NewWithDimension(d int) *Store {
	return &Store{dimension: d}
}

// Append records one passage. Appends are serialized; a failed append leaves
// the store unchanged. Appending the same content twice stores two passages:
// the store has no dedup semantics.
func (s *Store) Append(ctx context.Context, vector []float32, text string, meta store.Metadata) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(vector)
	}
	if len(vector) != s.dimension {
		return "", store.ErrDimensionMismatch
	}

	s.seq++
	id := strconv.Itoa(s.seq)

	// Copy the vector so a caller reusing its slice cannot mutate the passage.
	vec := make([]float32, len(vector))
	copy(vec, vector)

	s.passages = append(s.passages, store.Passage{
		ID:       id,
		Text:     text,
		Vector:   vec,
		Metadata: meta,
	})
	return id, nil
}

// Retrieve returns the top k passages by cosine similarity, ties broken by
// insertion order. An empty store yields an empty slice.
func (s *Store) Retrieve(ctx context.Context, query []float32, k int) ([]store.ScoredPassage, error) {
	if k <= 0 {
		return nil, store.ErrInvalidTopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.passages) == 0 {
		return []store.ScoredPassage{}, nil
	}
	if len(query) != s.dimension {
		return nil, store.ErrDimensionMismatch
	}
	return store.Rank(s.passages, query, k), nil
}

// Len reports the number of stored passages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages)
}
