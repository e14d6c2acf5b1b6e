package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/barekit/corpus/pkg/store"
)

// Store implements store.VectorStore using Qdrant.
//
// Point ids are derived from (source, chunk index, text), so re-ingesting
// the same source upserts in place instead of appending duplicates. That is
// a deliberate divergence from the in-memory store, which keeps duplicates.
// Ranking also diverges on ties: Qdrant's ordering of equal-score points is
// unspecified, so the in-memory store's insertion-order tie-break does not
// carry over.
type Store struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// New creates a Qdrant-backed store, creating the collection with cosine
// distance if it does not exist. The dimension must be known up front
// because the collection schema needs it.
func New(host string, port int, collectionName string, vectorSize uint64) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s := &Store{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}

	if err := s.initCollection(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) initCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     s.vectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}
	return nil
}

// Append stores one passage as a Qdrant point and returns its id.
func (s *Store) Append(ctx context.Context, vector []float32, text string, meta store.Metadata) (string, error) {
	if uint64(len(vector)) != s.vectorSize {
		return "", store.ErrDimensionMismatch
	}

	id := store.PassageID(meta.Source, meta.ChunkIndex, text)
	payload := map[string]*qdrant.Value{
		"content":     qdrant.NewValueString(text),
		"source":      qdrant.NewValueString(meta.Source),
		"chunk_index": qdrant.NewValueInt(int64(meta.ChunkIndex)),
		"ingested_at": qdrant.NewValueString(meta.IngestedAt.Format(time.RFC3339)),
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		}},
		Wait: &wait,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert point: %w", err)
	}
	return id, nil
}

// Retrieve queries the collection for the k nearest points by cosine
// similarity.
func (s *Store) Retrieve(ctx context.Context, query []float32, k int) ([]store.ScoredPassage, error) {
	if k <= 0 {
		return nil, store.ErrInvalidTopK
	}
	if uint64(len(query)) != s.vectorSize {
		return nil, store.ErrDimensionMismatch
	}

	limit := uint64(k)
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]store.ScoredPassage, len(res))
	for i, hit := range res {
		p := store.Passage{ID: hit.Id.GetUuid()}
		if c, ok := hit.Payload["content"]; ok {
			p.Text = c.GetStringValue()
		}
		if v, ok := hit.Payload["source"]; ok {
			p.Metadata.Source = v.GetStringValue()
		}
		if v, ok := hit.Payload["chunk_index"]; ok {
			p.Metadata.ChunkIndex = int(v.GetIntegerValue())
		}
		if v, ok := hit.Payload["ingested_at"]; ok {
			if t, err := time.Parse(time.RFC3339, v.GetStringValue()); err == nil {
				p.Metadata.IngestedAt = t
			}
		}
		results[i] = store.ScoredPassage{Passage: p, Score: float64(hit.Score)}
	}
	return results, nil
}
