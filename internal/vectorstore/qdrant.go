package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"docqa/internal/contextutil"
)

// QdrantStore implements VectorStore using a Qdrant collection with the
// cosine distance metric. The metric is fixed for the collection's lifetime;
// changing it requires a full rebuild.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// NewQdrantStore creates a new Qdrant vector store client bound to a single
// collection. urlStr should be in the format "http://host:port"
// (e.g., "http://localhost:6333"). The gRPC port is derived from the HTTP port.
func NewQdrantStore(urlStr, collection string, dimension int) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC port is typically the HTTP port + 1
	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client:     client,
		collection: collection,
		dimension:  dimension,
	}, nil
}

// EnsureCollection creates the collection with the configured dimensionality
// and cosine distance if it does not exist. If it exists, the vector size is
// validated against the configured dimensionality.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(s.dimension),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		logger.InfoContext(ctx, "collection created", "collection", s.collection, "dimension", s.dimension)
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}
	if int(params.Size) != s.dimension {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", s.dimension, params.Size)
	}

	logger.InfoContext(ctx, "collection validated", "collection", s.collection, "dimension", s.dimension)
	return nil
}

// Upsert inserts or replaces entries by id. Every entry's vector dimension
// and metadata shape are validated before anything is written, so a single
// malformed entry fails the batch rather than being skipped silently.
// The write waits for commit so it is visible to subsequent searches.
func (s *QdrantStore) Upsert(ctx context.Context, entries []Entry) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(entries) == 0 {
		return nil
	}

	if err := s.validateEntries(entries); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, entry := range entries {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(entry.ID)),
			Vectors: qdrant.NewVectors(entry.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":     entry.ID,
				"text":         entry.Text,
				"source":       entry.Meta.Source,
				"chunk_index":  entry.Meta.ChunkIndex,
				"total_chunks": entry.Meta.TotalChunks,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert entries", "collection", s.collection, "count", len(entries), "error", err)
		return fmt.Errorf("failed to upsert entries: %w", err)
	}

	logger.InfoContext(ctx, "upserted entries", "collection", s.collection, "count", len(entries))
	return nil
}

// Search returns the k nearest entries by ascending cosine distance.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, expected %d", len(vector), s.dimension)
	}

	limit := uint64(k)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search entries", "collection", s.collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		result, err := resultFromPayload(point.Payload)
		if err != nil {
			return nil, fmt.Errorf("malformed payload for point %s: %w", point.Id.GetUuid(), err)
		}
		// Qdrant reports cosine similarity as the score
		result.Distance = 1 - point.Score
		results = append(results, result)
	}

	logger.InfoContext(ctx, "search completed", "collection", s.collection, "k", k, "results", len(results))
	return results, nil
}

// Count returns the exact number of entries in the collection.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return int(count), nil
}

// Clear removes all entries by dropping and recreating the collection.
// Clearing an already-empty collection is a no-op, not an error.
func (s *QdrantStore) Clear(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}

	logger.InfoContext(ctx, "collection cleared", "collection", s.collection)
	return nil
}

// validateEntries checks vector dimensions and metadata shape for the whole
// batch before any write happens.
func (s *QdrantStore) validateEntries(entries []Entry) error {
	for i, entry := range entries {
		if entry.ID == "" {
			return fmt.Errorf("entry %d: id must not be empty", i)
		}
		if len(entry.Vector) != s.dimension {
			return fmt.Errorf("entry %q: vector has dimension %d, expected %d", entry.ID, len(entry.Vector), s.dimension)
		}
		if err := entry.Meta.Validate(); err != nil {
			return fmt.Errorf("entry %q: %w", entry.ID, err)
		}
	}
	return nil
}

// pointID maps a chunk identity string to a deterministic UUID. Qdrant point
// ids must be UUIDs or unsigned integers, so the human-readable chunk id
// lives in the payload and the point id is derived from it. The same chunk id
// always maps to the same point id, which is what makes Upsert idempotent.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

// resultFromPayload reconstructs a SearchResult (minus distance) from a
// point's payload, validating the fixed metadata shape.
func resultFromPayload(payload map[string]*qdrant.Value) (SearchResult, error) {
	var result SearchResult

	result.ID = payloadString(payload, "chunk_id")
	result.Text = payloadString(payload, "text")
	result.Meta = ChunkMeta{
		Source:      payloadString(payload, "source"),
		ChunkIndex:  payloadInt(payload, "chunk_index"),
		TotalChunks: payloadInt(payload, "total_chunks"),
	}

	if err := result.Meta.Validate(); err != nil {
		return SearchResult{}, err
	}
	return result, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadInt(payload map[string]*qdrant.Value, key string) int {
	if v, ok := payload[key]; ok {
		return int(v.GetIntegerValue())
	}
	return 0
}
