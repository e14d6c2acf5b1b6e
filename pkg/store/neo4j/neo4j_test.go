package neo4j

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/barekit/corpus/pkg/store"
)

func TestStore_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env") // Try to load .env from root
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("Skipping Neo4j integration test: NEO4J_URI not set")
	}
	username := os.Getenv("NEO4J_USERNAME")
	password := os.Getenv("NEO4J_PASSWORD")

	s, err := New(uri, username, password, "")
	if err != nil {
		t.Skipf("Skipping Neo4j integration test: connect failed: %v", err)
	}
	ctx := context.Background()
	defer s.Close(ctx)

	vectors := [][]float32{{1, 0, 0, 0, 0, 0, 0}, {0, 1, 0, 0, 0, 0, 0}}
	for i, v := range vectors {
		if _, err := s.Append(ctx, v, "passage", store.Metadata{
			Source:     "doc.pdf",
			ChunkIndex: i,
			IngestedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	results, err := s.Retrieve(ctx, []float32{1, 0, 0, 0, 0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	// A fresh store over the same database, as after a restart, binds to the
	// persisted dimension before any append.
	reopened, err := New(uri, username, password, "")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close(ctx)

	if _, err := reopened.Append(ctx, []float32{1, 2}, "bad", store.Metadata{}); !errors.Is(err, store.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on append after reopen, got %v", err)
	}
	if _, err := reopened.Retrieve(ctx, []float32{1, 2}, 1); !errors.Is(err, store.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on retrieve after reopen, got %v", err)
	}
}
