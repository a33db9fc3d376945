package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docqa/internal/config"
	"docqa/internal/converter"
	"docqa/internal/embedding"
	"docqa/internal/http"
	"docqa/internal/indexer"
	"docqa/internal/llm"
	"docqa/internal/rag"
	"docqa/internal/splitter"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize the document registry database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	registry := storage.NewDocumentRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDimension)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "dimension", cfg.EmbeddingDimension)

	// Validate embedding client vector size (fail-fast)
	embedder := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDimension)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingDimension {
		log.Fatalf("Embedding vector size mismatch: expected %d", cfg.EmbeddingDimension)
	}
	slog.Info("Embedding client validated", "dimension", cfg.EmbeddingDimension)

	// Create the ingestion pipeline
	split, err := splitter.New(cfg.ChunkSize, cfg.ChunkOverlap, config.DefaultSeparators)
	if err != nil {
		log.Fatalf("Failed to create splitter: %v", err)
	}
	conv := converter.New(cfg.DocsDir)
	pipeline := indexer.New(conv, split, embedder, vectorStore, registry, cfg.EmbeddingBatchSize)

	// Run ingestion before serving requests. A partially-ingested corpus
	// would answer questions from incomplete context, so failure is fatal.
	if err := pipeline.Setup(ctx, cfg.ForceRebuild); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	slog.Info("Ingestion complete", "docs_dir", cfg.DocsDir)

	// Create the RAG engine
	llmClient := llm.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel)
	retriever := rag.NewRetriever(embedder, vectorStore)
	engine := rag.NewEngine(retriever, llmClient, cfg.TopK)
	slog.Info("RAG engine initialized", "model", cfg.OllamaModel, "top_k", cfg.TopK)

	// Create router with dependencies
	router := http.NewRouter(&http.Deps{
		Engine:   engine,
		Pipeline: pipeline,
		Registry: registry,
		Store:    vectorStore,
	})

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
