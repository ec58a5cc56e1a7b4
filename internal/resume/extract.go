// Package resume extracts plain text from resume files for match scoring.
package resume

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads the resume at path and returns its plain text. Only
// PDF files are supported. An error means "no resume available this run";
// callers degrade to placeholder scoring rather than failing.
func ExtractText(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no resume path configured")
	}
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return "", fmt.Errorf("unsupported resume format %q, only PDF is supported", filepath.Ext(path))
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening resume %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading resume text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("resume %s contains no extractable text", path)
	}
	return text, nil
}
