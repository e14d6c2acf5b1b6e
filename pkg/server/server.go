// Package server exposes the query and ingestion pipelines over HTTP with
// JSON request and response bodies. Every request gets a structured reply:
// an answer, a report, or an error payload.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/barekit/corpus/pkg/rag"
)

// Server wires the pipelines to HTTP handlers.
type Server struct {
	querier  *rag.Querier
	ingestor *rag.Ingestor
	httpSrv  *http.Server
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type queryResponse struct {
	Response string `json:"response"`
}

type ingestRequest struct {
	Sources []string `json:"sources"`
}

type sourceResult struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
	Stored int    `json:"stored"`
	Error  string `json:"error,omitempty"`
}

type ingestResponse struct {
	Sources []sourceResult `json:"sources"`
	Stored  int            `json:"stored"`
	Failed  int            `json:"failed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a server for the given pipelines listening on addr.
func New(addr string, querier *rag.Querier, ingestor *rag.Ingestor) *Server {
	s := &Server{querier: querier, ingestor: ingestor}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // ingestion of large sources is slow
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("server listening", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	start := time.Now()
	answer, err := s.querier.AnswerTopK(r.Context(), req.Query, req.TopK)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, rag.ErrEmptyQuery) {
			status = http.StatusBadRequest
		}
		slog.Error("query failed", "error", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	slog.Info("query answered", "duration", time.Since(start))
	writeJSON(w, http.StatusOK, queryResponse{Response: answer})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if len(req.Sources) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no sources given"})
		return
	}

	report := s.ingestor.Ingest(r.Context(), req.Sources)

	resp := ingestResponse{
		Sources: make([]sourceResult, len(report.Sources)),
		Stored:  report.Stored(),
		Failed:  report.Failed(),
	}
	for i, sr := range report.Sources {
		res := sourceResult{Source: sr.Source, Chunks: sr.Chunks, Stored: sr.Stored}
		if sr.Err != nil {
			res.Error = sr.Err.Error()
		}
		resp.Sources[i] = res
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
