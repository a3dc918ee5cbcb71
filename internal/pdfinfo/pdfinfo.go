// Package pdfinfo inspects background PDFs referenced by notebooks.
package pdfinfo

import (
	"bytes"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
)

// Resolver implements document.PdfResolver using the pure-Go pdf library.
type Resolver struct{}

func (Resolver) NumPages(path string) (int, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

func (Resolver) NumPagesFromBytes(data []byte) (int, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return reader.NumPage(), nil
}
