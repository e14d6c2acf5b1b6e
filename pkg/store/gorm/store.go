package gorm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/barekit/corpus/pkg/store"
	"github.com/barekit/corpus/pkg/store/consts"
)

// Store implements store.VectorStore over any GORM dialect. Vectors are
// stored JSON-encoded; ranking loads all rows and scores client-side, which
// keeps results identical to the in-memory store. Suited to the same
// collection sizes as brute-force search, with persistence on top.
type Store struct {
	db        *gorm.DB
	dimension int
}

// PassageModel represents the database schema for a passage.
type PassageModel struct {
	gorm.Model
	Content    string
	Source     string `gorm:"index"`
	ChunkIndex int
	IngestedAt time.Time
	Vector     []byte `gorm:"type:json"` // JSON-encoded []float32
}

// TableName overrides the table name.
func (PassageModel) TableName() string {
	return consts.TableNamePassages
}

// New creates a GORM-backed store. If the table already holds passages, the
// store binds to their dimension; otherwise the first Append binds it.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&PassageModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &Store{db: db}

	var first PassageModel
	err := db.Order("id ASC").First(&first).Error
	switch {
	case err == nil:
		var vec []float32
		if jsonErr := json.Unmarshal(first.Vector, &vec); jsonErr != nil {
			return nil, fmt.Errorf("failed to decode stored vector: %w", jsonErr)
		}
		s.dimension = len(vec)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Empty table, dimension binds on first append.
	default:
		return nil, fmt.Errorf("failed to inspect table: %w", err)
	}

	return s, nil
}

// Append inserts one passage row. Row ids are auto-incremented, so re-
// ingesting the same source appends duplicates, matching the in-memory
// store's semantics.
func (s *Store) Append(ctx context.Context, vector []float32, text string, meta store.Metadata) (string, error) {
	if s.dimension == 0 {
		s.dimension = len(vector)
	}
	if len(vector) != s.dimension {
		return "", store.ErrDimensionMismatch
	}

	b, err := json.Marshal(vector)
	if err != nil {
		return "", fmt.Errorf("failed to encode vector: %w", err)
	}

	model := PassageModel{
		Content:    text,
		Source:     meta.Source,
		ChunkIndex: meta.ChunkIndex,
		IngestedAt: meta.IngestedAt,
		Vector:     b,
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", fmt.Errorf("failed to save passage: %w", err)
	}
	return strconv.FormatUint(uint64(model.ID), 10), nil
}

// Retrieve loads every passage in insertion order and ranks client-side.
func (s *Store) Retrieve(ctx context.Context, query []float32, k int) ([]store.ScoredPassage, error) {
	if k <= 0 {
		return nil, store.ErrInvalidTopK
	}

	var models []PassageModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load passages: %w", err)
	}
	if len(models) == 0 {
		return []store.ScoredPassage{}, nil
	}
	if len(query) != s.dimension {
		return nil, store.ErrDimensionMismatch
	}

	passages := make([]store.Passage, len(models))
	for i, m := range models {
		var vec []float32
		if err := json.Unmarshal(m.Vector, &vec); err != nil {
			return nil, fmt.Errorf("failed to decode vector for passage %d: %w", m.ID, err)
		}
		passages[i] = store.Passage{
			ID:     strconv.FormatUint(uint64(m.ID), 10),
			Text:   m.Content,
			Vector: vec,
			Metadata: store.Metadata{
				Source:     m.Source,
				ChunkIndex: m.ChunkIndex,
				IngestedAt: m.IngestedAt,
			},
		}
	}
	return store.Rank(passages, query, k), nil
}
