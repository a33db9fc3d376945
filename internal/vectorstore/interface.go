package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docqa/internal/vectorstore VectorStore

import (
	"context"
	"fmt"
)

// ChunkMeta is the fixed-shape metadata attached to every indexed entry.
// It is validated at insertion time rather than duck-typed at read time.
type ChunkMeta struct {
	Source      string `json:"source"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Validate checks the metadata invariants: a non-empty source and
// 0 <= ChunkIndex < TotalChunks.
func (m ChunkMeta) Validate() error {
	if m.Source == "" {
		return fmt.Errorf("chunk metadata: source must not be empty")
	}
	if m.TotalChunks <= 0 {
		return fmt.Errorf("chunk metadata: total_chunks must be positive, got %d", m.TotalChunks)
	}
	if m.ChunkIndex < 0 || m.ChunkIndex >= m.TotalChunks {
		return fmt.Errorf("chunk metadata: chunk_index %d out of range [0, %d)", m.ChunkIndex, m.TotalChunks)
	}
	return nil
}

// Entry is a chunk prepared for indexing: its identity, embedding vector,
// original text and metadata. Entries are immutable once inserted and are
// removed only by a full clear.
type Entry struct {
	ID     string
	Vector []float32
	Text   string
	Meta   ChunkMeta
}

// SearchResult is a single nearest-neighbor hit. Distance is cosine distance
// (0 = identical, 2 = maximally dissimilar for normalized vectors);
// similarity is 1 - Distance.
type SearchResult struct {
	ID       string
	Text     string
	Meta     ChunkMeta
	Distance float32
}

// VectorStore defines the interface for the durable vector index.
// Insertion is upsert-by-id so re-ingesting unchanged content is idempotent.
type VectorStore interface {
	// Upsert inserts or replaces entries by id. All entries are validated
	// (vector dimension and metadata shape) before any write; a single bad
	// entry fails the whole batch. Writes are visible to subsequent
	// searches as soon as the call returns.
	Upsert(ctx context.Context, entries []Entry) error

	// Search returns the k nearest entries by ascending cosine distance.
	// k must be >= 1. If fewer than k entries exist, all are returned.
	// An empty index yields an empty result set, not an error.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)

	// Count returns the current total entry count.
	Count(ctx context.Context) (int, error)

	// Clear removes all entries. Clearing an already-empty index is not an
	// error.
	Clear(ctx context.Context) error
}
