package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docqa/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document registry operations.
type DocumentStore interface {
	// Upsert inserts or updates a document record keyed by name.
	// The record's ID must be set before calling this method.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// GetByName gets a document by its name. Returns ErrNotFound if not found.
	GetByName(ctx context.Context, name string) (*DocumentRecord, error)
	// ListAll returns all document records ordered by name.
	ListAll(ctx context.Context) ([]*DocumentRecord, error)
	// SetChunkCount records the number of chunks produced for a document.
	SetChunkCount(ctx context.Context, name string, count int) error
}

// DocumentRepo provides methods for document registry operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts or updates a document record keyed by name.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, title, format, hash, chunk_count)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			title = excluded.title,
			format = excluded.format,
			hash = excluded.hash,
			converted_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Name, doc.Title, doc.Format, doc.Hash, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetByName gets a document by its name. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByName(ctx context.Context, name string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, title, format, hash, chunk_count, converted_at
		 FROM documents WHERE name = ?`,
		name,
	).Scan(&doc.ID, &doc.Name, &doc.Title, &doc.Format, &doc.Hash, &doc.ChunkCount, &doc.ConvertedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// ListAll returns all document records ordered by name.
// Returns an empty slice if no documents exist (not an error).
func (r *DocumentRepo) ListAll(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, title, format, hash, chunk_count, converted_at
		 FROM documents ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Title, &doc.Format, &doc.Hash, &doc.ChunkCount, &doc.ConvertedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// SetChunkCount records the number of chunks produced for a document.
func (r *DocumentRepo) SetChunkCount(ctx context.Context, name string, count int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET chunk_count = ? WHERE name = ?",
		count, name,
	)
	if err != nil {
		return fmt.Errorf("failed to set chunk count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
