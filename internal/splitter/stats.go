package splitter

import (
	"math"
	"unicode/utf8"
)

// ChunkStats summarizes a chunked corpus.
type ChunkStats struct {
	// TotalChunks is the number of chunks across all documents.
	TotalChunks int `json:"total_chunks"`
	// TotalRunes is the combined rune count of all chunk texts.
	TotalRunes int `json:"total_runes"`
	// AvgChunkSize is the mean chunk size in runes, rounded to 2 decimals.
	AvgChunkSize float64 `json:"avg_chunk_size"`
	// MinChunkSize is the smallest chunk size in runes.
	MinChunkSize int `json:"min_chunk_size"`
	// MaxChunkSize is the largest chunk size in runes.
	MaxChunkSize int `json:"max_chunk_size"`
	// Sources lists the distinct source documents in first-seen order.
	Sources []string `json:"sources"`
}

// Stats computes summary statistics for a set of chunks.
// An empty input yields the zero-value stats.
func Stats(chunks []Chunk) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{Sources: []string{}}
	}

	stats := ChunkStats{
		TotalChunks:  len(chunks),
		MinChunkSize: math.MaxInt,
	}

	seen := make(map[string]bool)
	for _, chunk := range chunks {
		size := utf8.RuneCountInString(chunk.Text)
		stats.TotalRunes += size
		if size < stats.MinChunkSize {
			stats.MinChunkSize = size
		}
		if size > stats.MaxChunkSize {
			stats.MaxChunkSize = size
		}
		if !seen[chunk.Source] {
			seen[chunk.Source] = true
			stats.Sources = append(stats.Sources, chunk.Source)
		}
	}

	mean := float64(stats.TotalRunes) / float64(stats.TotalChunks)
	stats.AvgChunkSize = math.Round(mean*100) / 100

	return stats
}
