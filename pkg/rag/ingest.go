// Package rag orchestrates the retrieval pipeline: ingestion of source
// documents into a vector store, and answering queries against it with a
// text-generation model.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/barekit/corpus/pkg/chunk"
	"github.com/barekit/corpus/pkg/embed"
	"github.com/barekit/corpus/pkg/extract"
	"github.com/barekit/corpus/pkg/store"
)

// SourceReport describes the outcome of ingesting one source.
type SourceReport struct {
	Source string
	Chunks int
	Stored int
	Err    error
}

// Report enumerates per-source outcomes of one Ingest call, in input order.
type Report struct {
	Sources []SourceReport
}

// Failed returns the number of sources that did not complete.
func (r Report) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Stored returns the total number of passages stored across all sources.
func (r Report) Stored() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Stored
	}
	return n
}

// Ingestor runs extract -> chunk -> embed -> append for each source.
type Ingestor struct {
	extractor   extract.Extractor
	embedder    embed.Embedder
	store       store.VectorStore
	splitter    *chunk.Splitter
	concurrency int
	callTimeout time.Duration
	debug       bool
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithChunkLimit sets the chunk size bound in tokens. The default is 512.
// A non-positive limit is rejected: the current splitter stays in place and
// the rejection is logged.
func WithChunkLimit(limit int) IngestorOption {
	return func(in *Ingestor) {
		s, err := chunk.New(limit, 0)
		if err != nil {
			slog.Warn("chunk limit rejected, keeping current splitter", "limit", limit, "error", err)
			return
		}
		in.splitter = s
	}
}

// WithSplitter replaces the chunking policy entirely, e.g. to enable
// overlapping windows.
func WithSplitter(s *chunk.Splitter) IngestorOption {
	return func(in *Ingestor) { in.splitter = s }
}

// WithConcurrency bounds how many embedding calls are in flight per source.
// The default is 4.
func WithConcurrency(n int) IngestorOption {
	return func(in *Ingestor) {
		if n > 0 {
			in.concurrency = n
		}
	}
}

// WithCallTimeout bounds each extraction and embedding call. Zero disables
// the per-call bound.
func WithCallTimeout(d time.Duration) IngestorOption {
	return func(in *Ingestor) { in.callTimeout = d }
}

// WithIngestDebug enables debug logging.
func WithIngestDebug(enable bool) IngestorOption {
	return func(in *Ingestor) { in.debug = enable }
}

// NewIngestor creates an ingestion pipeline over the given collaborators.
func NewIngestor(extractor extract.Extractor, embedder embed.Embedder, st store.VectorStore, opts ...IngestorOption) *Ingestor {
	in := &Ingestor{
		extractor:   extractor,
		embedder:    embedder,
		store:       st,
		concurrency: 4,
	}
	in.splitter, _ = chunk.New(512, 0)
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest processes each source independently: a failure in one source is
// recorded in its report entry and never stops the others. Re-ingesting a
// source appends its passages again; the pipeline does not deduplicate.
func (in *Ingestor) Ingest(ctx context.Context, sources []string) Report {
	report := Report{Sources: make([]SourceReport, len(sources))}
	for i, source := range sources {
		report.Sources[i] = in.ingestSource(ctx, source)
		if sr := report.Sources[i]; sr.Err != nil {
			slog.Error("source ingestion failed", "source", source, "error", sr.Err)
		} else if in.debug {
			slog.Info("source ingested", "source", source, "chunks", sr.Chunks, "stored", sr.Stored)
		}
	}
	return report
}

func (in *Ingestor) ingestSource(ctx context.Context, source string) SourceReport {
	sr := SourceReport{Source: source}

	text, err := in.withTimeout(ctx, func(ctx context.Context) (string, error) {
		return in.extractor.Extract(ctx, source)
	})
	if err != nil {
		sr.Err = fmt.Errorf("extraction failed: %w", err)
		return sr
	}

	chunks := in.splitter.Split(text)
	sr.Chunks = len(chunks)
	if len(chunks) == 0 {
		return sr
	}

	vectors, embedErr := in.embedAll(ctx, chunks)
	now := time.Now().UTC()

	// Append the successfully embedded prefix in chunk order so passage
	// order matches source order, then record the failure that cut the
	// source short, if any.
	for i := range vectors {
		meta := store.Metadata{Source: source, ChunkIndex: i, IngestedAt: now}
		if _, err := in.store.Append(ctx, vectors[i], chunks[i], meta); err != nil {
			sr.Err = fmt.Errorf("append failed at chunk %d: %w", i, err)
			return sr
		}
		sr.Stored++
	}
	if embedErr != nil {
		sr.Err = embedErr
	}
	return sr
}

// embedAll fans out one embedding call per chunk, bounded by the configured
// concurrency, and fans results back in preserving chunk order. It returns
// the vectors for the unbroken prefix of chunks preceding the first failure,
// together with that failure.
func (in *Ingestor) embedAll(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	errs := make([]error, len(chunks))
	sem := make(chan struct{}, in.concurrency)

	var wg sync.WaitGroup
	for i, text := range chunks {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out, err := in.withTimeoutVecs(ctx, []string{text})
			if err != nil {
				errs[i] = err
				return
			}
			vectors[i] = out[0]
		}(i, text)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return vectors[:i], fmt.Errorf("embedding failed at chunk %d: %w", i, err)
		}
	}
	return vectors, nil
}

func (in *Ingestor) withTimeout(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	if in.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.callTimeout)
		defer cancel()
	}
	return call(ctx)
}

func (in *Ingestor) withTimeoutVecs(ctx context.Context, texts []string) ([][]float32, error) {
	if in.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.callTimeout)
		defer cancel()
	}
	out, err := in.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(out), len(texts))
	}
	return out, nil
}
