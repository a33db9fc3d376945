package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"docqa/internal/contextutil"
	"docqa/internal/indexer"
)

// ReindexHandler handles HTTP requests to re-run ingestion.
type ReindexHandler struct {
	pipeline *indexer.Pipeline
}

// NewReindexHandler creates a new ReindexHandler.
func NewReindexHandler(pipeline *indexer.Pipeline) *ReindexHandler {
	return &ReindexHandler{pipeline: pipeline}
}

// ReindexRequest represents the HTTP request payload for reindexing.
type ReindexRequest struct {
	// Force clears the vector index and rebuilds it from scratch.
	Force bool `json:"force"`
}

// ReindexResponse represents the HTTP response payload for reindexing.
type ReindexResponse struct {
	Status string `json:"status"`
}

// ServeHTTP handles reindex requests. An empty body defaults to a
// non-forced, idempotent run.
func (h *ReindexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// An empty body defaults to a non-forced run
	var req ReindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	logger.InfoContext(ctx, "reindex requested", "force", req.Force)

	if err := h.pipeline.Setup(ctx, req.Force); err != nil {
		logger.ErrorContext(ctx, "reindex failed", "error", err, "force", req.Force)

		if errors.Is(err, indexer.ErrNoDocuments) || errors.Is(err, indexer.ErrNoChunks) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "Reindex failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ReindexResponse{Status: "ok"})
}
