package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testRecord(name string) *DocumentRecord {
	return &DocumentRecord{
		ID:         uuid.New().String(),
		Name:       name,
		Title:      "A Title",
		Format:     "md",
		Hash:       "abc123",
		ChunkCount: 4,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestDocumentRepo_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepo(db)
	ctx := context.Background()

	doc := testRecord("guide.md")
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByName(ctx, "guide.md")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.Name != "guide.md" || got.Title != "A Title" || got.Format != "md" {
		t.Errorf("GetByName() = %+v, want stored record", got)
	}
	if got.Hash != "abc123" {
		t.Errorf("Hash = %q, want abc123", got.Hash)
	}
	if got.ConvertedAt.IsZero() {
		t.Error("ConvertedAt is zero, want a timestamp")
	}
}

func TestDocumentRepo_UpsertReplacesByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepo(db)
	ctx := context.Background()

	first := testRecord("guide.md")
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	second := testRecord("guide.md")
	second.Title = "Updated Title"
	second.Hash = "def456"
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, err := repo.GetByName(ctx, "guide.md")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.Title != "Updated Title" || got.Hash != "def456" {
		t.Errorf("GetByName() = %+v, want updated record", got)
	}
	// The original id survives the update
	if got.ID != first.ID {
		t.Errorf("ID = %q, want original %q", got.ID, first.ID)
	}

	docs, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("ListAll() returned %d records, want 1 after re-upsert", len(docs))
	}
}

func TestDocumentRepo_GetByName_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepo(db)

	_, err := repo.GetByName(context.Background(), "missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByName() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_ListAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepo(db)
	ctx := context.Background()

	for _, name := range []string{"b.md", "a.md", "c.txt"} {
		if err := repo.Upsert(ctx, testRecord(name)); err != nil {
			t.Fatalf("Upsert(%s) error = %v", name, err)
		}
	}

	docs, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("ListAll() returned %d records, want 3", len(docs))
	}
	// Ordered by name
	if docs[0].Name != "a.md" || docs[1].Name != "b.md" || docs[2].Name != "c.txt" {
		t.Errorf("ListAll() order = [%s, %s, %s], want name order", docs[0].Name, docs[1].Name, docs[2].Name)
	}
}

func TestDocumentRepo_ListAll_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepo(db)

	docs, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ListAll() returned %d records, want 0", len(docs))
	}
}

func TestDocumentRepo_SetChunkCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepo(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, testRecord("guide.md")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := repo.SetChunkCount(ctx, "guide.md", 9); err != nil {
		t.Fatalf("SetChunkCount() error = %v", err)
	}

	got, err := repo.GetByName(ctx, "guide.md")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.ChunkCount != 9 {
		t.Errorf("ChunkCount = %d, want 9", got.ChunkCount)
	}
}

func TestDocumentRepo_SetChunkCount_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepo(db)

	err := repo.SetChunkCount(context.Background(), "missing.md", 3)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetChunkCount() error = %v, want ErrNotFound", err)
	}
}
