// Package factory builds a vector store from configuration, following the
// same backend-selection switch the rest of the module's adapters use.
package factory

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/barekit/corpus/pkg/store"
	"github.com/barekit/corpus/pkg/store/memory"
	mongostore "github.com/barekit/corpus/pkg/store/mongo"
	"github.com/barekit/corpus/pkg/store/mssql"
	"github.com/barekit/corpus/pkg/store/mysql"
	"github.com/barekit/corpus/pkg/store/neo4j"
	"github.com/barekit/corpus/pkg/store/postgres"
	"github.com/barekit/corpus/pkg/store/qdrant"
	"github.com/barekit/corpus/pkg/store/sqlite"
)

type Type string

const (
	TypeMemory   Type = "memory"
	TypeQdrant   Type = "qdrant"
	TypePostgres Type = "postgres"
	TypeSQLite   Type = "sqlite"
	TypeMySQL    Type = "mysql"
	TypeMSSQL    Type = "mssql"
	TypeMongo    Type = "mongo"
	TypeNeo4j    Type = "neo4j"
)

// Config holds configuration for store backends. Not every field applies to
// every backend; unused fields are ignored.
type Config struct {
	Type             Type
	ConnectionString string
	Username         string
	Password         string
	DBName           string
	Collection       string
	Host             string
	Port             int
	Dimension        int
}

// New creates a vector store based on the configuration.
func New(ctx context.Context, cfg Config) (store.VectorStore, error) {
	switch cfg.Type {
	case TypeMemory, "":
		if cfg.Dimension > 0 {
			return memory.NewWithDimension(cfg.Dimension), nil
		}
		return memory.New(), nil

	case TypeQdrant:
		host := cfg.Host
		if host == "" {
			host = "localhost"
		}
		port := cfg.Port
		if port == 0 {
			port = 6334
		}
		collection := cfg.Collection
		if collection == "" {
			collection = "corpus_passages"
		}
		if cfg.Dimension <= 0 {
			return nil, fmt.Errorf("qdrant store requires a vector dimension")
		}
		return qdrant.New(host, port, collection, uint64(cfg.Dimension))

	case TypePostgres:
		if cfg.Dimension <= 0 {
			return nil, fmt.Errorf("postgres store requires a vector dimension")
		}
		return postgres.New(cfg.ConnectionString, cfg.Dimension)

	case TypeSQLite:
		return sqlite.New(cfg.ConnectionString)

	case TypeMySQL:
		return mysql.New(cfg.ConnectionString)

	case TypeMSSQL:
		return mssql.New(cfg.ConnectionString)

	case TypeMongo:
		opts := options.Client().ApplyURI(cfg.ConnectionString)
		client, err := mongodrv.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		return mongostore.New(ctx, client, cfg.DBName, cfg.Collection, cfg.Dimension)

	case TypeNeo4j:
		return neo4j.New(cfg.ConnectionString, cfg.Username, cfg.Password, cfg.DBName)

	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

// NewRedisClient parses a Redis URL and verifies connectivity, for wiring
// the embedding cache.
func NewRedisClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
