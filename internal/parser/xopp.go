package parser

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"

	"github.com/inkgest/inkgest/internal/document"
	"github.com/inkgest/inkgest/internal/xmlstream"
	"github.com/inkgest/inkgest/internal/xopp"
)

// contentEntry is the XML member of zip-packed notebooks.
const contentEntry = "content.xml"

// NotebookParser handles .xopp and .xoj files. Both extensions cover three
// containers, distinguished by sniffing: a gzip-compressed XML stream
// (the classic format), a zip archive holding content.xml plus attachment
// entries (the newer format), or bare XML.
type NotebookParser struct {
	Log *slog.Logger
	Pdf document.PdfResolver
}

func (p *NotebookParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	// Zip needs random access and the uploads are size-capped anyway, so
	// buffer the whole container.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read notebook: %w", err)
	}

	var (
		xmlSrc      io.ReadCloser
		attachments document.AttachmentSource
	)
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		xmlSrc = zr
	case len(data) >= 2 && data[0] == 'P' && data[1] == 'K':
		za, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("open notebook archive: %w", err)
		}
		content, err := za.Open(contentEntry)
		if err != nil {
			return nil, fmt.Errorf("notebook archive has no %s: %w", contentEntry, err)
		}
		xmlSrc = content
		attachments = &zipAttachments{archive: za}
	default:
		xmlSrc = io.NopCloser(bytes.NewReader(data))
	}

	reader := xmlstream.NewReader(xmlSrc)
	defer reader.Close()

	builder := document.NewBuilder(log, p.Pdf, attachments, filename)
	if err := xopp.NewParser(reader, builder, log).Parse(); err != nil {
		return nil, fmt.Errorf("parse notebook: %w", err)
	}

	doc := builder.Document()
	if !doc.Complete {
		log.Warn("notebook ended before the root element was closed", "filename", filename)
	}
	return doc, nil
}

// zipAttachments resolves attachment names against the notebook archive.
type zipAttachments struct {
	archive *zip.Reader
}

func (z *zipAttachments) ReadAttachment(name string) ([]byte, error) {
	f, err := z.archive.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (z *zipAttachments) HasAttachment(name string) bool {
	f, err := z.archive.Open(name)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
