package mongo

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/barekit/corpus/pkg/store"
)

func TestStore_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env") // Try to load .env from root
	uri := os.Getenv("MONGO_URL")
	if uri == "" {
		t.Skip("Skipping Mongo integration test: MONGO_URL not set")
	}

	ctx := context.Background()
	client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Disconnect(ctx)
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("Skipping Mongo integration test: ping failed: %v", err)
	}

	collection := "passages_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	defer client.Database("corpus_test").Collection(collection).Drop(ctx)

	s, err := New(ctx, client, "corpus_test", collection, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	for i, v := range vectors {
		if _, err := s.Append(ctx, v, "passage", store.Metadata{
			Source:     "doc.pdf",
			ChunkIndex: i,
			IngestedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	results, err := s.Retrieve(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Passage.Metadata.ChunkIndex != 0 {
		t.Errorf("expected exact match first, got chunk %d", results[0].Passage.Metadata.ChunkIndex)
	}

	// A fresh store over the same collection, as after a restart, binds to
	// the persisted dimension: mismatched vectors fail instead of slipping in
	// next to the existing passages.
	reopened, err := New(ctx, client, "corpus_test", collection, 0)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, err := reopened.Append(ctx, []float32{1, 2}, "bad", store.Metadata{}); !errors.Is(err, store.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on append after reopen, got %v", err)
	}
	if _, err := reopened.Retrieve(ctx, []float32{1, 2}, 2); !errors.Is(err, store.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on retrieve after reopen, got %v", err)
	}
}
