package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks docqa/internal/rag Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks docqa/internal/rag Generator
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks -mock_names=Engine=MockEngine docqa/internal/rag Engine

import "context"

// Embedder converts a batch of texts into fixed-dimension vectors, order
// preserved 1:1. This interface is defined from the consumer's perspective.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator is the generation capability: a prompt plus a system instruction
// produce either a full answer or a stream of answer fragments.
type Generator interface {
	// Generate returns the complete answer text.
	Generate(ctx context.Context, system, prompt string) (string, error)
	// Stream calls the callback once per produced fragment, in order.
	Stream(ctx context.Context, system, prompt string, callback func(token string) error) error
}

// Source attributes one retrieved chunk to its document of origin.
type Source struct {
	// Name is the source document name.
	Name string `json:"source"`
	// ChunkIndex is the chunk's 0-based rank within the document.
	ChunkIndex int `json:"chunk_index"`
	// Similarity is 1 - cosine distance for this chunk against the query.
	Similarity float32 `json:"similarity"`
}

// ContextBundle is the assembled retrieval result for one query: the
// concatenated context string and per-chunk source attribution, in
// descending-similarity order.
type ContextBundle struct {
	Context string
	Sources []Source
}

// Empty reports whether retrieval produced no results. This is a valid,
// non-error outcome that callers handle distinctly from a retrieval failure.
func (b ContextBundle) Empty() bool {
	return len(b.Sources) == 0
}

// AskRequest represents one question against the indexed corpus.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// K optionally overrides the number of context chunks to retrieve.
	K int `json:"k,omitempty"`
}

// AskResponse represents the outcome of one question.
type AskResponse struct {
	// Answer is the raw generated answer text.
	Answer string `json:"answer"`
	// Formatted is the final markdown rendering with grouped citations.
	Formatted string `json:"formatted"`
	// Sources are the chunks that conditioned the answer.
	Sources []Source `json:"sources"`
}

// Engine answers questions by retrieving relevant chunks and streaming a
// generated answer conditioned on them.
type Engine interface {
	// Ask answers a question. If emit is non-nil it receives answer
	// fragments in order as they are produced, followed by the citations
	// block; with a nil emit the answer is generated in one shot. Each call
	// owns an independent generation; cancelling ctx abandons it without
	// touching the index.
	Ask(ctx context.Context, req AskRequest, emit func(fragment string) error) (AskResponse, error)
}
