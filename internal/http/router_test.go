package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa/internal/rag"
	rag_mocks "docqa/internal/rag/mocks"
	storage_mocks "docqa/internal/storage/mocks"
	vectorstore_mocks "docqa/internal/vectorstore/mocks"
)

func newTestRouter(t *testing.T) (nethttp.Handler, *rag_mocks.MockEngine, *storage_mocks.MockDocumentStore, *vectorstore_mocks.MockVectorStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	engine := rag_mocks.NewMockEngine(ctrl)
	registry := storage_mocks.NewMockDocumentStore(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)

	router := NewRouter(&Deps{
		Engine:   engine,
		Registry: registry,
		Store:    store,
	})
	return router, engine, registry, store
}

func TestRouter_Health(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_Ask(t *testing.T) {
	router, engine, _, _ := newTestRouter(t)

	engine.EXPECT().
		Ask(gomock.Any(), rag.AskRequest{Question: "q"}, gomock.Nil()).
		Return(rag.AskResponse{Answer: "a"}, nil)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/ask", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["answer"] != "a" {
		t.Errorf("answer = %v, want a", resp["answer"])
	}
}

func TestRouter_Status(t *testing.T) {
	router, _, registry, store := newTestRouter(t)

	registry.EXPECT().ListAll(gomock.Any()).Return(nil, nil)
	store.EXPECT().Count(gomock.Any()).Return(0, nil)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(nethttp.MethodOptions, "/api/ask", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusNoContent {
		t.Fatalf("status = %d, want 204 for preflight", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want request origin", got)
	}
}
