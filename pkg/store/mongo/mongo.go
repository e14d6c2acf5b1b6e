package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/barekit/corpus/pkg/store"
	"github.com/barekit/corpus/pkg/store/consts"
)

// Store implements store.VectorStore using MongoDB. Retrieval loads the
// collection and ranks client-side, so results match the in-memory store.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	dimension  int
}

// PassageDoc is the collection schema for a passage.
type PassageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Content    string             `bson:"content"`
	Source     string             `bson:"source"`
	ChunkIndex int                `bson:"chunk_index"`
	IngestedAt time.Time          `bson:"ingested_at"`
	Vector     []float32          `bson:"vector"`
}

// New creates a Mongo-backed store over the given client. If the collection
// already holds passages, the store binds to their dimension; otherwise the
// first Append binds it. Pass dimension > 0 to fix it up front.
func New(ctx context.Context, client *mongo.Client, dbName, collectionName string, dimension int) (*Store, error) {
	if dbName == "" {
		dbName = consts.DefaultDBName
	}
	if collectionName == "" {
		collectionName = consts.TableNamePassages
	}
	s := &Store{
		client:     client,
		collection: client.Database(dbName).Collection(collectionName),
		dimension:  dimension,
	}

	if s.dimension == 0 {
		var first PassageDoc
		err := s.collection.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.M{"_id": 1})).Decode(&first)
		switch {
		case err == nil:
			s.dimension = len(first.Vector)
		case errors.Is(err, mongo.ErrNoDocuments):
			// Empty collection, dimension binds on first append.
		default:
			return nil, fmt.Errorf("failed to inspect collection: %w", err)
		}
	}

	return s, nil
}

// Append inserts one passage document and returns its object id. Duplicate
// content is appended again, matching the in-memory store's semantics.
func (s *Store) Append(ctx context.Context, vector []float32, text string, meta store.Metadata) (string, error) {
	if s.dimension == 0 {
		s.dimension = len(vector)
	}
	if len(vector) != s.dimension {
		return "", store.ErrDimensionMismatch
	}

	doc := PassageDoc{
		Content:    text,
		Source:     meta.Source,
		ChunkIndex: meta.ChunkIndex,
		IngestedAt: meta.IngestedAt,
		Vector:     vector,
	}

	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert passage: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Retrieve loads every passage in insertion order and ranks client-side.
func (s *Store) Retrieve(ctx context.Context, query []float32, k int) ([]store.ScoredPassage, error) {
	if k <= 0 {
		return nil, store.ErrInvalidTopK
	}

	opts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load passages: %w", err)
	}
	defer cursor.Close(ctx)

	var passages []store.Passage
	for cursor.Next(ctx) {
		var doc PassageDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode passage: %w", err)
		}
		passages = append(passages, store.Passage{
			ID:     doc.ID.Hex(),
			Text:   doc.Content,
			Vector: doc.Vector,
			Metadata: store.Metadata{
				Source:     doc.Source,
				ChunkIndex: doc.ChunkIndex,
				IngestedAt: doc.IngestedAt,
			},
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

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
