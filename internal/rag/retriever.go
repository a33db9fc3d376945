package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docqa/internal/contextutil"
	"docqa/internal/vectorstore"
)

// contextSeparator joins retrieved chunk texts into the context string.
const contextSeparator = "\n\n---\n\n"

// Retriever converts a query into an embedding, searches the vector index
// and assembles a ranked context bundle with source attribution.
type Retriever struct {
	embedder Embedder
	store    vectorstore.VectorStore
	logger   *slog.Logger
}

// NewRetriever creates a new Retriever.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   slog.Default(),
	}
}

// Retrieve embeds the query, searches the index for the k nearest chunks and
// assembles the context bundle. Zero results yield an empty bundle and a nil
// error. A collaborator failure propagates as a retrieval failure; no partial
// context is ever returned.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (ContextBundle, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return ContextBundle{}, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return ContextBundle{}, fmt.Errorf("no embedding returned for query")
	}

	results, err := r.store.Search(ctx, embeddings[0], k)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector index", "error", err)
		return ContextBundle{}, fmt.Errorf("failed to search vector index: %w", err)
	}

	if len(results) == 0 {
		logger.InfoContext(ctx, "no search results found", "k", k)
		return ContextBundle{}, nil
	}

	// Results arrive in ascending-distance order, which is
	// descending-similarity order. Similarity values are not thresholded
	// here; filtering is the caller's policy.
	parts := make([]string, 0, len(results))
	sources := make([]Source, 0, len(results))
	for _, result := range results {
		parts = append(parts, result.Text)
		sources = append(sources, Source{
			Name:       result.Meta.Source,
			ChunkIndex: result.Meta.ChunkIndex,
			Similarity: 1 - result.Distance,
		})
	}

	bundle := ContextBundle{
		Context: strings.Join(parts, contextSeparator),
		Sources: sources,
	}

	logger.InfoContext(ctx, "context retrieved", "chunks", len(results), "context_length", len(bundle.Context))
	return bundle, nil
}
