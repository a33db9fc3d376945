package storage

import "time"

// DocumentRecord represents a converted document tracked in the registry.
type DocumentRecord struct {
	ID          string    // UUID
	Name        string    // Stable document name (file name), unique
	Title       string    // Display title extracted during conversion
	Format      string    // Original format (pdf, docx, txt, md)
	Hash        string    // SHA256 hex string of the normalized text
	ChunkCount  int       // Number of chunks produced on the last ingestion
	ConvertedAt time.Time // When the document was last converted
}
