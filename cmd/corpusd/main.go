// Command corpusd serves a retrieval-augmented question answering API over
// an ingested document corpus.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	openaisdk "github.com/openai/openai-go"

	"github.com/barekit/corpus/pkg/config"
	"github.com/barekit/corpus/pkg/embed"
	embedopenai "github.com/barekit/corpus/pkg/embed/openai"
	"github.com/barekit/corpus/pkg/embed/rediscache"
	"github.com/barekit/corpus/pkg/extract"
	"github.com/barekit/corpus/pkg/extract/pdf"
	"github.com/barekit/corpus/pkg/extract/web"
	llmopenai "github.com/barekit/corpus/pkg/llm/openai"
	"github.com/barekit/corpus/pkg/rag"
	"github.com/barekit/corpus/pkg/server"
	"github.com/barekit/corpus/pkg/store/factory"
)

func main() {
	configPath := flag.String("config", "corpus.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vectorStore, err := factory.New(ctx, cfg.StoreFactoryConfig())
	if err != nil {
		slog.Error("failed to initialize vector store", "error", err)
		os.Exit(1)
	}

	openaiEmbedder := embedopenai.NewEmbedder()
	if cfg.EmbeddingModel != "" {
		openaiEmbedder.SetModel(openaisdk.EmbeddingModel(cfg.EmbeddingModel))
	}

	var embedder embed.Embedder = openaiEmbedder
	if cfg.Redis.URL != "" {
		client, err := factory.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			slog.Error("failed to connect embedding cache", "error", err)
			os.Exit(1)
		}
		ttl := time.Duration(cfg.Redis.TTLSecs) * time.Second
		embedder = rediscache.New(openaiEmbedder, client, openaiEmbedder.Model(), ttl)
		slog.Info("embedding cache enabled")
	}

	generator := llmopenai.New()
	if cfg.GenerationModel != "" {
		generator.SetModel(cfg.GenerationModel)
	}

	extractor := &extract.Dispatcher{
		Web: web.New(&http.Client{Timeout: cfg.CallTimeout()}),
		PDF: pdf.New(),
	}

	ingestor := rag.NewIngestor(extractor, embedder, vectorStore,
		rag.WithChunkLimit(cfg.ChunkLimit),
		rag.WithCallTimeout(cfg.CallTimeout()),
		rag.WithIngestDebug(cfg.Debug),
	)
	querier := rag.NewQuerier(embedder, vectorStore, generator,
		rag.WithTopK(cfg.TopK),
		rag.WithMaxAnswerTokens(cfg.MaxAnswerTokens),
		rag.WithQueryCallTimeout(cfg.CallTimeout()),
		rag.WithQueryDebug(cfg.Debug),
	)

	if len(cfg.Sources) > 0 {
		slog.Info("ingesting startup sources", "count", len(cfg.Sources))
		report := ingestor.Ingest(ctx, cfg.Sources)
		slog.Info("startup ingestion done", "stored", report.Stored(), "failed", report.Failed())
	}

	srv := server.New(cfg.Listen, querier, ingestor)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
