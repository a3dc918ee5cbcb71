package parser

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"testing"

	"github.com/inkgest/inkgest/internal/document"
)

const minimalXML = `<xournal creator="test" fileversion="4">` +
	`<page width="100" height="200">` +
	`<background type="solid" color="#ffffffff" style="plain"/>` +
	`<layer><stroke tool="pen" color="#000000ff" width="1">0 0 10 10</stroke></layer>` +
	`</page></xournal>`

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zipNotebook(t *testing.T, content string, attachments map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("content.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	for name, data := range attachments {
		aw, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := aw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func checkMinimalDocument(t *testing.T, doc *document.Document) {
	t.Helper()
	if !doc.Complete {
		t.Error("expected completed parse")
	}
	if doc.Creator != "test" || doc.FileVersion != 4 {
		t.Errorf("header mismatch: %q v%d", doc.Creator, doc.FileVersion)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected one page, got %d", len(doc.Pages))
	}
	page := doc.Pages[0]
	if page.Width != 100 || page.Height != 200 {
		t.Errorf("page size mismatch: %gx%g", page.Width, page.Height)
	}
	if len(page.Layers) != 1 || len(page.Layers[0].Elements) != 1 {
		t.Fatalf("layer shape mismatch: %+v", page.Layers)
	}
	stroke, ok := page.Layers[0].Elements[0].(*document.Stroke)
	if !ok || len(stroke.Points) != 2 {
		t.Errorf("stroke mismatch: %#v", page.Layers[0].Elements[0])
	}
}

func TestParseGzipNotebook(t *testing.T) {
	p := &NotebookParser{Log: testLog()}
	doc, err := p.Parse(bytes.NewReader(gzipBytes(t, minimalXML)), "note.xopp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkMinimalDocument(t, doc)
}

func TestParsePlainXMLNotebook(t *testing.T) {
	p := &NotebookParser{Log: testLog()}
	doc, err := p.Parse(bytes.NewReader([]byte(minimalXML)), "note.xoj")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkMinimalDocument(t, doc)
}

func TestParseZipNotebookWithAttachment(t *testing.T) {
	content := `<xournal creator="test" fileversion="4">` +
		`<page width="100" height="200">` +
		`<background type="solid" color="#ffffffff" style="plain"/>` +
		`<layer><image left="0" top="0" right="5" bottom="5"><attachment path="img.png"/></image></layer>` +
		`</page></xournal>`
	data := zipNotebook(t, content, map[string][]byte{"img.png": []byte("pngbytes")})

	p := &NotebookParser{Log: testLog()}
	doc, err := p.Parse(bytes.NewReader(data), "note.xopp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, ok := doc.Pages[0].Layers[0].Elements[0].(*document.Image)
	if !ok {
		t.Fatalf("expected an image, got %#v", doc.Pages[0].Layers[0].Elements[0])
	}
	if string(img.Data) != "pngbytes" {
		t.Errorf("attachment not loaded from the archive: %q", img.Data)
	}
}

func TestParseZipWithoutContentFails(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.Close()

	p := &NotebookParser{Log: testLog()}
	if _, err := p.Parse(bytes.NewReader(buf.Bytes()), "note.xopp"); err == nil {
		t.Error("expected error for a zip without content.xml")
	}
}

func TestParseMalformedNotebookFails(t *testing.T) {
	p := &NotebookParser{Log: testLog()}
	if _, err := p.Parse(bytes.NewReader([]byte(`<xournal`)), "note.xopp"); err == nil {
		t.Error("expected error for truncated XML")
	}
}

func TestForFile(t *testing.T) {
	if _, err := ForFile("a.xopp", testLog(), nil); err != nil {
		t.Errorf("expected .xopp to be supported: %v", err)
	}
	if _, err := ForFile("a.xoj", testLog(), nil); err != nil {
		t.Errorf("expected .xoj to be supported: %v", err)
	}
	if _, err := ForFile("a.pdf", testLog(), nil); err == nil {
		t.Error("expected .pdf to be rejected")
	}
	if !IsSupportedExtension("NOTE.XOPP") {
		t.Error("extension check should be case-insensitive")
	}
}
