package converter

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestConvertAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "# Project Notes\n\nSome content here.")
	writeFile(t, dir, "readme.txt", "plain text content")
	writeFile(t, dir, "ignored.xlsx", "binary junk")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	c := New(dir)
	docs, err := c.ConvertAll(context.Background())
	if err != nil {
		t.Fatalf("ConvertAll() error = %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("ConvertAll() returned %d documents, want 2: %+v", len(docs), docs)
	}

	// Sorted by name
	if docs[0].Name != "notes.md" || docs[1].Name != "readme.txt" {
		t.Errorf("document order = [%s, %s], want [notes.md, readme.txt]", docs[0].Name, docs[1].Name)
	}
	if docs[0].Title != "Project Notes" {
		t.Errorf("markdown title = %q, want Project Notes", docs[0].Title)
	}
	if docs[0].Format != "md" {
		t.Errorf("format = %q, want md", docs[0].Format)
	}
	if docs[1].Title != "Readme" {
		t.Errorf("txt title = %q, want Readme", docs[1].Title)
	}
	if docs[1].Text != "plain text content" {
		t.Errorf("txt text = %q", docs[1].Text)
	}
}

func TestConvertAll_MissingDirectory(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "does-not-exist"))
	docs, err := c.ConvertAll(context.Background())
	if err != nil {
		t.Fatalf("ConvertAll() error = %v, want nil for missing directory", err)
	}
	if len(docs) != 0 {
		t.Errorf("ConvertAll() returned %d documents, want 0", len(docs))
	}
}

func TestConvertAll_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", "this is not a pdf")
	writeFile(t, dir, "good.txt", "still converted")

	c := New(dir)
	docs, err := c.ConvertAll(context.Background())
	if err != nil {
		t.Fatalf("ConvertAll() error = %v, want nil (corrupt file is skipped)", err)
	}
	if len(docs) != 1 || docs[0].Name != "good.txt" {
		t.Errorf("ConvertAll() = %+v, want only good.txt", docs)
	}
}

func TestConvertAll_SkipsEmptyDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.txt", "   \n\n  ")

	c := New(dir)
	docs, err := c.ConvertAll(context.Background())
	if err != nil {
		t.Fatalf("ConvertAll() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ConvertAll() returned %d documents, want 0 for whitespace-only file", len(docs))
	}
}

func TestFormatForFile(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: "doc.pdf", want: "pdf", wantOK: true},
		{name: "doc.PDF", want: "pdf", wantOK: true},
		{name: "doc.docx", want: "docx", wantOK: true},
		{name: "doc.md", want: "md", wantOK: true},
		{name: "doc.markdown", want: "md", wantOK: true},
		{name: "doc.txt", want: "txt", wantOK: true},
		{name: "doc.doc", wantOK: false},
		{name: "doc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := formatForFile(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("formatForFile(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("formatForFile(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "windows line endings", input: "a\r\nb", want: "a\nb"},
		{name: "collapses blank runs", input: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "trims whitespace", input: "  text  \n", want: "text"},
		{name: "keeps paragraph breaks", input: "a\n\nb", want: "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(tt.input); got != tt.want {
				t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractMarkdownTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "h1 title", content: "# Main Title\n\nbody", want: "Main Title"},
		{name: "h2 fallback", content: "## Section Title\n\nbody", want: "Section Title"},
		{name: "h1 wins over earlier h2", content: "## Early\n\n# Real Title", want: "Real Title"},
		{name: "no headings", content: "just text", want: ""},
		{name: "empty content", content: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMarkdownTitle([]byte(tt.content)); got != tt.want {
				t.Errorf("extractMarkdownTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{filename: "user_guide.pdf", want: "User Guide"},
		{filename: "release-notes.txt", want: "Release Notes"},
		{filename: "README.md", want: "README"},
		{filename: "simple.docx", want: "Simple"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := titleFromFilename(tt.filename); got != tt.want {
				t.Errorf("titleFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

// writeDocx builds a minimal DOCX archive for testing.
func writeDocx(t *testing.T, path string, paragraphs []string, title string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create docx: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	zw := zip.NewWriter(f)

	doc, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create document.xml: %v", err)
	}
	body := `<?xml version="1.0"?><document xmlns:w="ns"><body>`
	for _, p := range paragraphs {
		body += `<p><r><t>` + p + `</t></r></p>`
	}
	body += `</body></document>`
	if _, err := doc.Write([]byte(body)); err != nil {
		t.Fatalf("failed to write document.xml: %v", err)
	}

	if title != "" {
		core, err := zw.Create("docProps/core.xml")
		if err != nil {
			t.Fatalf("failed to create core.xml: %v", err)
		}
		coreContent := `<?xml version="1.0"?><coreProperties><title>` + title + `</title></coreProperties>`
		if _, err := core.Write([]byte(coreContent)); err != nil {
			t.Fatalf("failed to write core.xml: %v", err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close docx archive: %v", err)
	}
}

func TestExtractDocxText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.docx")
	writeDocx(t, path, []string{"First paragraph.", "Second paragraph."}, "Quarterly Report")

	text, title, err := extractDocxText(path)
	if err != nil {
		t.Fatalf("extractDocxText() error = %v", err)
	}
	if want := "First paragraph.\nSecond paragraph."; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
	if title != "Quarterly Report" {
		t.Errorf("title = %q, want Quarterly Report", title)
	}
}

func TestExtractDocxText_NoTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "untitled.docx")
	writeDocx(t, path, []string{"Content."}, "")

	_, title, err := extractDocxText(path)
	if err != nil {
		t.Fatalf("extractDocxText() error = %v", err)
	}
	if title != "" {
		t.Errorf("title = %q, want empty", title)
	}
}

func TestExtractDocxText_NotAnArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.docx")
	writeFile(t, dir, "fake.docx", "not a zip")

	if _, _, err := extractDocxText(path); err == nil {
		t.Fatal("extractDocxText() expected error for non-zip file")
	}
}

func TestExtractPDFText_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")
	writeFile(t, dir, "empty.pdf", "")

	text, err := extractPDFText(path)
	if err != nil {
		t.Fatalf("extractPDFText() error = %v, want nil for empty file", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}
