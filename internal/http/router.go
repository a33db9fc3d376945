package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docqa/internal/handlers"
	"docqa/internal/indexer"
	"docqa/internal/rag"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine   rag.Engine
	Pipeline *indexer.Pipeline
	Registry storage.DocumentStore
	Store    vectorstore.VectorStore
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Engine)
	reindexHandler := handlers.NewReindexHandler(deps.Pipeline)
	statusHandler := handlers.NewStatusHandler(deps.Registry, deps.Store)
	healthHandler := handlers.NewHealthHandler()

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/reindex", reindexHandler)
		r.Method(http.MethodGet, "/status", statusHandler)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}
