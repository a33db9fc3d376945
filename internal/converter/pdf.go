package converter

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// extractPDFText extracts the plain text of a PDF file. Returns an empty
// string and nil error for a PDF with no extractable text.
func extractPDFText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return "", nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plainReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return string(out), nil
}
