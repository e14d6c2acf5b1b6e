package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/barekit/corpus/pkg/store"
	"github.com/barekit/corpus/pkg/store/consts"
)

// Store implements store.VectorStore using Neo4j. Each source document is a
// node linked to its passage nodes; retrieval loads all passages and ranks
// client-side.
//
// Passage nodes are merged on a deterministic id, so re-ingesting the same
// source updates in place instead of appending duplicates. Passages load
// ordered by ingestion timestamp, which has second precision: equal-score
// passages from different sources ingested within the same second may not
// keep insertion order, unlike the in-memory store.
type Store struct {
	driver    neo4j.DriverWithContext
	dbName    string
	dimension int
}

// New creates a Neo4j-backed store. If the database already holds passage
// nodes, the store binds to their vector dimension; otherwise the first
// Append binds it.
func New(uri, username, password, dbName string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}

	if dbName == "" {
		dbName = "neo4j"
	}
	s := &Store{driver: driver, dbName: dbName}

	session := driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: dbName})
	defer session.Close(ctx)

	dim, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		cypher := fmt.Sprintf("MATCH (p:%s) RETURN p.%s LIMIT 1", consts.LabelPassage, consts.ColVector)
		res, err := tx.Run(ctx, cypher, nil)
		if err != nil {
			return 0, err
		}
		if res.Next(ctx) {
			if list, ok := res.Record().Values[0].([]any); ok {
				return len(list), nil
			}
		}
		return 0, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect passages: %w", err)
	}
	s.dimension = dim.(int)

	return s, nil
}

// Append merges the source node and the passage node linked to it.
func (s *Store) Append(ctx context.Context, vector []float32, text string, meta store.Metadata) (string, error) {
	if s.dimension == 0 {
		s.dimension = len(vector)
	}
	if len(vector) != s.dimension {
		return "", store.ErrDimensionMismatch
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	id := store.PassageID(meta.Source, meta.ChunkIndex, text)

	// Neo4j list properties hold float64.
	vec := make([]float64, len(vector))
	for i, v := range vector {
		vec[i] = float64(v)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
		MERGE (s:%s {id: $source})
		MERGE (p:%s {id: $id})
		SET p.%s = $content,
			p.%s = $chunkIndex,
			p.%s = $ingestedAt,
			p.%s = $vector
		MERGE (s)-[:%s]->(p)
		RETURN p
		`, consts.LabelSource, consts.LabelPassage,
			consts.ColContent, consts.ColChunkIndex, consts.ColIngestedAt, consts.ColVector,
			consts.RelHasPassage)

		params := map[string]any{
			"source":     meta.Source,
			"id":         id,
			"content":    text,
			"chunkIndex": meta.ChunkIndex,
			"ingestedAt": meta.IngestedAt.Format(time.RFC3339),
			"vector":     vec,
		}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	if err != nil {
		return "", fmt.Errorf("failed to write passage: %w", err)
	}
	return id, nil
}

// Retrieve loads every passage and ranks client-side.
func (s *Store) Retrieve(ctx context.Context, query []float32, k int) ([]store.ScoredPassage, error) {
	if k <= 0 {
		return nil, store.ErrInvalidTopK
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		cypher := fmt.Sprintf(`
		MATCH (s:%s)-[:%s]->(p:%s)
		RETURN s.id, p.id, p.%s, p.%s, p.%s, p.%s
		ORDER BY p.%s ASC, p.%s ASC
		`, consts.LabelSource, consts.RelHasPassage, consts.LabelPassage,
			consts.ColContent, consts.ColChunkIndex, consts.ColIngestedAt, consts.ColVector,
			consts.ColIngestedAt, consts.ColChunkIndex)

		res, err := tx.Run(ctx, cypher, nil)
		if err != nil {
			return nil, err
		}

		var passages []store.Passage
		for res.Next(ctx) {
			record := res.Record()

			sourceID, _ := record.Get("s.id")
			passageID, _ := record.Get("p.id")
			content, _ := record.Get("p." + consts.ColContent)
			chunkIndex, _ := record.Get("p." + consts.ColChunkIndex)
			ingestedAt, _ := record.Get("p." + consts.ColIngestedAt)
			rawVec, _ := record.Get("p." + consts.ColVector)

			var p store.Passage
			if id, ok := passageID.(string); ok {
				p.ID = id
			}
			if text, ok := content.(string); ok {
				p.Text = text
			}
			if src, ok := sourceID.(string); ok {
				p.Metadata.Source = src
			}
			if idx, ok := chunkIndex.(int64); ok {
				p.Metadata.ChunkIndex = int(idx)
			}
			if ts, ok := ingestedAt.(string); ok {
				if t, err := time.Parse(time.RFC3339, ts); err == nil {
					p.Metadata.IngestedAt = t
				}
			}
			if list, ok := rawVec.([]any); ok {
				vec := make([]float32, len(list))
				for i, v := range list {
					if f, ok := v.(float64); ok {
						vec[i] = float32(f)
					}
				}
				p.Vector = vec
			}
			passages = append(passages, p)
		}
		return passages, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load passages: %w", err)
	}

	passages := result.([]store.Passage)
	if len(passages) == 0 {
		return []store.ScoredPassage{}, nil
	}
	if s.dimension == 0 {
		s.dimension = len(passages[0].Vector)
	}
	if len(query) != s.dimension {
		return nil, store.ErrDimensionMismatch
	}
	return store.Rank(passages, query, k), nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
