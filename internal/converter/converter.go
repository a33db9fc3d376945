package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docqa/internal/contextutil"
)

// Document is a source file converted to plain text, ready for chunking.
type Document struct {
	Name   string // File name including extension, stable chunk id prefix
	Title  string // Display title extracted during conversion
	Format string // pdf, docx, txt or md
	Text   string // Normalized plain text
}

// Converter reads supported files from a documents directory and converts
// them to plain text.
type Converter struct {
	docsDir string
	logger  *slog.Logger
}

// New creates a converter over the given documents directory.
func New(docsDir string) *Converter {
	return &Converter{
		docsDir: docsDir,
		logger:  slog.Default(),
	}
}

// ConvertAll scans the documents directory and converts every supported file.
// Files that fail to convert are logged and skipped so one corrupt file does
// not block ingestion of the rest. Unsupported extensions and subdirectories
// are ignored. A missing or empty directory yields an empty slice, nil error.
func (c *Converter) ConvertAll(ctx context.Context) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	entries, err := os.ReadDir(c.docsDir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WarnContext(ctx, "documents directory does not exist", "dir", c.docsDir)
			return []Document{}, nil
		}
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		format, ok := formatForFile(name)
		if !ok {
			continue
		}

		doc, err := c.convertFile(name, format)
		if err != nil {
			logger.ErrorContext(ctx, "failed to convert document, skipping",
				"file", name, "format", format, "error", err)
			continue
		}
		if strings.TrimSpace(doc.Text) == "" {
			logger.WarnContext(ctx, "document has no extractable text, skipping", "file", name)
			continue
		}

		docs = append(docs, doc)
		logger.InfoContext(ctx, "converted document",
			"file", name, "format", format, "text_length", len(doc.Text))
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// convertFile dispatches to the parser for the file's format.
func (c *Converter) convertFile(name, format string) (Document, error) {
	path := filepath.Join(c.docsDir, name)

	var (
		text  string
		title string
		err   error
	)
	switch format {
	case "pdf":
		text, err = extractPDFText(path)
		title = titleFromFilename(name)
	case "docx":
		text, title, err = extractDocxText(path)
		if title == "" {
			title = titleFromFilename(name)
		}
	case "md":
		text, title, err = readMarkdown(path)
		if title == "" {
			title = titleFromFilename(name)
		}
	case "txt":
		text, err = readPlainText(path)
		title = titleFromFilename(name)
	default:
		return Document{}, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return Document{}, err
	}

	return Document{
		Name:   name,
		Title:  title,
		Format: format,
		Text:   normalizeText(text),
	}, nil
}

// formatForFile maps a file name to its document format by extension.
func formatForFile(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "pdf", true
	case ".docx":
		return "docx", true
	case ".md", ".markdown":
		return "md", true
	case ".txt":
		return "txt", true
	default:
		return "", false
	}
}

// readPlainText reads a text file as-is.
func readPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// normalizeText collapses runs of three or more newlines and trims
// surrounding whitespace so chunk boundaries stay meaningful.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
