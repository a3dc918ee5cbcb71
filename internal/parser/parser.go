// Package parser turns raw notebook file bytes into a document model.
package parser

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/inkgest/inkgest/internal/document"
)

// Parser converts raw notebook bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xopp": true,
	".xoj":  true,
}

// ForFile returns the appropriate parser for a filename. log receives
// recoverable parse warnings; pdf may be nil to skip background-PDF
// resolution.
func ForFile(filename string, log *slog.Logger, pdf document.PdfResolver) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xopp", ".xoj":
		return &NotebookParser{Log: log, Pdf: pdf}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
