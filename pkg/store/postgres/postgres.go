package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/barekit/corpus/pkg/store"
	"github.com/barekit/corpus/pkg/store/consts"
)

// Store implements store.VectorStore using pgvector. Ranking runs inside
// Postgres with the cosine distance operator, so retrieval cost stays on
// the database.
type Store struct {
	db        *gorm.DB
	dimension int
}

// PassageModel represents the database schema for a passage.
type PassageModel struct {
	ID         string `gorm:"primaryKey"`
	Content    string
	Source     string
	ChunkIndex int
	IngestedAt time.Time
	Embedding  pgvector.Vector `gorm:"type:vector(1536)"` // Adjust dimension as needed
}

// TableName overrides the table name.
func (PassageModel) TableName() string {
	return consts.TableNamePassages
}

// New creates a pgvector-backed store. dimension must match the vector
// column's declared size.
func New(dsn string, dimension int) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	if err := db.AutoMigrate(&PassageModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db, dimension: dimension}, nil
}

// Append upserts one passage row keyed by its deterministic id.
func (s *Store) Append(ctx context.Context, vector []float32, text string, meta store.Metadata) (string, error) {
	if len(vector) != s.dimension {
		return "", store.ErrDimensionMismatch
	}

	id := store.PassageID(meta.Source, meta.ChunkIndex, text)
	model := PassageModel{
		ID:         id,
		Content:    text,
		Source:     meta.Source,
		ChunkIndex: meta.ChunkIndex,
		IngestedAt: meta.IngestedAt,
		Embedding:  pgvector.NewVector(vector),
	}

	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return "", fmt.Errorf("failed to save passage: %w", err)
	}
	return id, nil
}

// Retrieve orders by cosine distance ascending and converts distance back
// to similarity for the caller.
func (s *Store) Retrieve(ctx context.Context, query []float32, k int) ([]store.ScoredPassage, error) {
	if k <= 0 {
		return nil, store.ErrInvalidTopK
	}
	if len(query) != s.dimension {
		return nil, store.ErrDimensionMismatch
	}

	type row struct {
		PassageModel
		Distance float64
	}

	var rows []row
	err := s.db.WithContext(ctx).
		Model(&PassageModel{}).
		Select("*, embedding <=> ? AS distance", pgvector.NewVector(query)).
		Order("distance ASC").
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}

	results := make([]store.ScoredPassage, len(rows))
	for i, r := range rows {
		results[i] = store.ScoredPassage{
			Passage: store.Passage{
				ID:     r.ID,
				Text:   r.Content,
				Vector: r.Embedding.Slice(),
				Metadata: store.Metadata{
					Source:     r.Source,
					ChunkIndex: r.ChunkIndex,
					IngestedAt: r.IngestedAt,
				},
			},
			// pgvector's <=> operator yields cosine distance.
			Score: 1 - r.Distance,
		}
	}
	return results, nil
}
