package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_pipeline_deps.go -package=mocks docqa/internal/indexer Converter,Embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"docqa/internal/contextutil"
	"docqa/internal/converter"
	"docqa/internal/splitter"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

var (
	// ErrNoDocuments indicates the documents directory held no convertible
	// documents, so there is nothing to serve questions from.
	ErrNoDocuments = errors.New("no documents found to ingest")

	// ErrNoChunks indicates conversion succeeded but chunking produced no
	// chunks (for example, all documents were effectively empty).
	ErrNoChunks = errors.New("documents produced no chunks")
)

// Converter turns the source files of a documents directory into plain-text
// documents.
type Converter interface {
	ConvertAll(ctx context.Context) ([]converter.Document, error)
}

// Embedder generates one embedding vector per input text, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline orchestrates ingestion: convert, register, chunk, embed, index.
type Pipeline struct {
	converter Converter
	splitter  *splitter.Splitter
	embedder  Embedder
	store     vectorstore.VectorStore
	registry  storage.DocumentStore
	batchSize int
	logger    *slog.Logger
}

// New creates an ingestion pipeline. batchSize bounds how many chunk texts go
// to the embedder per call.
func New(
	conv Converter,
	split *splitter.Splitter,
	embedder Embedder,
	store vectorstore.VectorStore,
	registry storage.DocumentStore,
	batchSize int,
) *Pipeline {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Pipeline{
		converter: conv,
		splitter:  split,
		embedder:  embedder,
		store:     store,
		registry:  registry,
		batchSize: batchSize,
		logger:    slog.Default(),
	}
}

// Setup runs the full ingestion flow. It is idempotent: when the vector index
// already holds entries and forceRebuild is false, embedding and indexing are
// skipped. With forceRebuild the index is cleared and rebuilt from scratch.
// The document registry is refreshed on every run either way.
func (p *Pipeline) Setup(ctx context.Context, forceRebuild bool) error {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := p.converter.ConvertAll(ctx)
	if err != nil {
		return fmt.Errorf("document conversion failed: %w", err)
	}
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	logger.InfoContext(ctx, "documents converted", "count", len(docs))

	chunks, err := p.registerAndChunk(ctx, docs)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return ErrNoChunks
	}

	stats := splitter.Stats(chunks)
	logger.InfoContext(ctx, "corpus chunked",
		"total_chunks", stats.TotalChunks,
		"avg_chunk_size", stats.AvgChunkSize,
		"min_chunk_size", stats.MinChunkSize,
		"max_chunk_size", stats.MaxChunkSize,
		"sources", len(stats.Sources),
	)

	count, err := p.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index state: %w", err)
	}

	if count > 0 && !forceRebuild {
		logger.InfoContext(ctx, "index already populated, skipping embedding",
			"indexed_count", count, "chunk_count", len(chunks))
		return nil
	}

	if forceRebuild && count > 0 {
		logger.InfoContext(ctx, "force rebuild requested, clearing index", "indexed_count", count)
		if err := p.store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	}

	if err := p.embedAndIndex(ctx, chunks); err != nil {
		return err
	}

	logger.InfoContext(ctx, "ingestion complete",
		"documents", len(docs), "chunks", len(chunks), "force_rebuild", forceRebuild)
	return nil
}

// registerAndChunk records every converted document in the registry and
// splits it into chunks. The registry record carries a content hash so an
// operator can tell whether the source changed since the last run.
func (p *Pipeline) registerAndChunk(ctx context.Context, docs []converter.Document) ([]splitter.Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var chunks []splitter.Chunk
	for _, doc := range docs {
		docChunks := p.splitter.SplitDocument(doc.Text, doc.Name)

		record := &storage.DocumentRecord{
			ID:         uuid.New().String(),
			Name:       doc.Name,
			Title:      doc.Title,
			Format:     doc.Format,
			Hash:       contentHash(doc.Text),
			ChunkCount: len(docChunks),
		}
		if err := p.registry.Upsert(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to register document %s: %w", doc.Name, err)
		}
		if err := p.registry.SetChunkCount(ctx, doc.Name, len(docChunks)); err != nil {
			return nil, fmt.Errorf("failed to record chunk count for %s: %w", doc.Name, err)
		}

		logger.InfoContext(ctx, "document chunked",
			"document", doc.Name, "chunks", len(docChunks))
		chunks = append(chunks, docChunks...)
	}

	return chunks, nil
}

// embedAndIndex embeds all chunk texts in batches and writes the whole entry
// set to the vector store in one validated upsert.
func (p *Pipeline) embedAndIndex(ctx context.Context, chunks []splitter.Chunk) error {
	logger := contextutil.LoggerFromContext(ctx)

	entries := make([]vectorstore.Entry, 0, len(chunks))
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunk batch [%d:%d]: %w", start, end, err)
		}

		for i, chunk := range batch {
			entries = append(entries, vectorstore.Entry{
				ID:     chunk.ID(),
				Vector: vectors[i],
				Text:   chunk.Text,
				Meta: vectorstore.ChunkMeta{
					Source:      chunk.Source,
					ChunkIndex:  chunk.Index,
					TotalChunks: chunk.TotalChunks,
				},
			})
		}

		logger.InfoContext(ctx, "chunk batch embedded", "from", start, "to", end)
	}

	if err := p.store.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}
	return nil
}

// contentHash returns the SHA256 hex digest of the document text.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
