package handlers

import (
	"encoding/json"
	"net/http"

	"docqa/internal/contextutil"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

// StatusHandler reports the state of the document registry and vector index.
type StatusHandler struct {
	registry storage.DocumentStore
	store    vectorstore.VectorStore
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(registry storage.DocumentStore, store vectorstore.VectorStore) *StatusHandler {
	return &StatusHandler{registry: registry, store: store}
}

// DocumentStatus is one registered document in the status response.
type DocumentStatus struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Format      string `json:"format"`
	ChunkCount  int    `json:"chunk_count"`
	ConvertedAt string `json:"converted_at"`
}

// StatusResponse represents the HTTP response payload for status.
type StatusResponse struct {
	Documents    []DocumentStatus `json:"documents"`
	TotalChunks  int              `json:"total_chunks"`
	IndexedCount int              `json:"indexed_count"`
}

// ServeHTTP handles status requests.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	records, err := h.registry.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	indexed, err := h.store.Count(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count indexed entries", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Vector index unavailable")
		return
	}

	resp := StatusResponse{
		Documents:    make([]DocumentStatus, 0, len(records)),
		IndexedCount: indexed,
	}
	for _, record := range records {
		resp.Documents = append(resp.Documents, DocumentStatus{
			Name:        record.Name,
			Title:       record.Title,
			Format:      record.Format,
			ChunkCount:  record.ChunkCount,
			ConvertedAt: record.ConvertedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
		resp.TotalChunks += record.ChunkCount
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
	}
}
