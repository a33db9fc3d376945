package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"docqa/internal/contextutil"
	"docqa/internal/rag"
)

// AskHandler handles HTTP requests for question answering.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest represents the HTTP request payload for question answering.
// This mirrors the rag.AskRequest but is defined here for HTTP layer separation.
type AskRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// AskResponse represents the HTTP response payload for question answering.
type AskResponse struct {
	Answer    string       `json:"answer"`
	Formatted string       `json:"formatted"`
	Sources   []rag.Source `json:"sources"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for question answering. With ?stream=true
// the answer is delivered as Server-Sent Events; otherwise the full response
// is returned as JSON once generation completes.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreaming(w, r, req)
		return
	}

	ragResp, err := h.engine.Ask(ctx, rag.AskRequest{Question: req.Question, K: req.K}, nil)
	if err != nil {
		h.handleEngineError(w, ctx, err)
		return
	}

	resp := AskResponse{
		Answer:    ragResp.Answer,
		Formatted: ragResp.Formatted,
		Sources:   ragResp.Sources,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
}

// handleStreaming delivers the answer as Server-Sent Events, one event per
// generated fragment followed by the citations block and a done signal.
func (h *AskHandler) handleStreaming(w http.ResponseWriter, r *http.Request, req AskRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, err := h.engine.Ask(ctx, rag.AskRequest{Question: req.Question, K: req.K}, func(fragment string) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", fragment); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			// Client went away; nothing left to write
			logger.InfoContext(ctx, "streaming abandoned", "reason", ctx.Err())
			return
		}
		logger.ErrorContext(ctx, "error streaming answer", "error", err)
		_, _ = fmt.Fprintf(w, "data: {\"error\":%q}\n\n", err.Error())
		flusher.Flush()
		return
	}

	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// handleEngineError maps engine errors to appropriate HTTP status codes.
func (h *AskHandler) handleEngineError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "engine error", "error", err)

	var validationErr *rag.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	if errors.Is(err, rag.ErrExternalService) {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	writeError(w, http.StatusInternalServerError, "Failed to process question")
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
