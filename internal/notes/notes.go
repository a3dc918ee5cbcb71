// Package notes imports sidecar note documents (transcripts, lecture
// notes) that accompany a notebook upload, producing an outline.
package notes

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/inkgest/inkgest/internal/outline"
)

// Importer converts raw notes bytes into an Outline.
type Importer interface {
	Import(r io.Reader, filename string) (*outline.Outline, error)
}

// SupportedExtensions lists sidecar formats this service can import.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported notes extension: %s", ext)
	}
}

// IsSupportedExtension checks if a notes file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
