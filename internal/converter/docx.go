package converter

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// coreXML mirrors docProps/core.xml, which carries document properties.
type coreXML struct {
	Title string `xml:"title"`
}

// extractDocxText extracts the paragraph text and the stored title of a DOCX
// file. A DOCX file is a ZIP archive; the body lives in word/document.xml and
// the title, when set, in docProps/core.xml.
func extractDocxText(path string) (string, string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to open docx archive: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	text, err := docxBodyText(&reader.Reader)
	if err != nil {
		return "", "", err
	}

	return text, docxTitle(&reader.Reader), nil
}

// docxBodyText extracts the paragraph text from word/document.xml.
func docxBodyText(reader *zip.Reader) (string, error) {
	content, err := readZipFile(reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", fmt.Errorf("docx archive has no word/document.xml")
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, t := range run.Text {
				b.WriteString(t.Content)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// docxTitle reads the title property from docProps/core.xml, "" if unset.
func docxTitle(reader *zip.Reader) string {
	content, err := readZipFile(reader, "docProps/core.xml")
	if err != nil || content == nil {
		return ""
	}

	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}

// readZipFile returns the contents of the named archive entry, nil if absent.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, nil
}
