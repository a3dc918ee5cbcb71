package document

import (
	"io"
	"log/slog"
	"testing"

	"github.com/inkgest/inkgest/internal/xopp"
)

func testBuilder() *Builder {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBuilder(log, nil, nil, "notebook.xopp")
}

func pts(coords ...float64) []xopp.Point {
	var out []xopp.Point
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, xopp.Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func addStroke(b *Builder) {
	b.AddStroke(xopp.ToolPen, xopp.ColorBlack, 1.5, -1, xopp.CapRound, nil, "", 0)
}

func TestBuilderAssemblesDocument(t *testing.T) {
	b := testBuilder()

	b.AddXournal("creator", 4)
	b.AddPage(100, 200)
	b.SetBgSolid(xopp.PageType{Format: xopp.FormatPlain}, xopp.ColorWhite)
	name := "Layer 1"
	b.AddLayer(&name)
	addStroke(b)
	b.SetStrokePoints(pts(0, 0, 1, 1), nil)
	b.FinalizeStroke()
	b.FinalizeLayer()
	b.FinalizePage()
	b.FinalizeDocument()

	doc := b.Document()
	if !doc.Complete || !b.IsParsingComplete() {
		t.Fatal("expected completed document")
	}
	if doc.Creator != "creator" || doc.FileVersion != 4 {
		t.Errorf("header mismatch: %q v%d", doc.Creator, doc.FileVersion)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected one page, got %d", len(doc.Pages))
	}
	page := doc.Pages[0]
	if page.Background.Type != BackgroundSolid || page.Background.Color != xopp.ColorWhite {
		t.Errorf("background mismatch: %+v", page.Background)
	}
	if len(page.Layers) != 1 || page.Layers[0].Name == nil || *page.Layers[0].Name != "Layer 1" {
		t.Fatalf("layer mismatch: %+v", page.Layers)
	}
	if len(page.Layers[0].Elements) != 1 {
		t.Fatalf("expected one element, got %d", len(page.Layers[0].Elements))
	}
	stroke, ok := page.Layers[0].Elements[0].(*Stroke)
	if !ok || len(stroke.Points) != 2 {
		t.Errorf("stroke mismatch: %#v", page.Layers[0].Elements[0])
	}
}

func TestLayerlessPageGetsEmptyLayer(t *testing.T) {
	b := testBuilder()
	b.AddPage(10, 10)
	b.FinalizePage()
	b.FinalizeDocument()

	doc := b.Document()
	if len(doc.Pages) != 1 || len(doc.Pages[0].Layers) != 1 {
		t.Fatalf("expected an auto-inserted layer, got %+v", doc.Pages)
	}
	if len(doc.Pages[0].Layers[0].Elements) != 0 {
		t.Error("auto-inserted layer should be empty")
	}
}

func TestStrokeWithTooFewPointsKeepsNoPoints(t *testing.T) {
	b := testBuilder()
	b.AddPage(10, 10)
	b.AddLayer(nil)
	addStroke(b)
	b.SetStrokePoints(pts(1, 1), nil)
	b.FinalizeStroke()
	b.FinalizeLayer()

	stroke := b.pagesStroke(t)
	if len(stroke.Points) != 0 {
		t.Errorf("expected the short point list to be dropped, got %d points", len(stroke.Points))
	}
}

// pagesStroke digs out the single stroke of the first layer.
func (b *Builder) pagesStroke(t *testing.T) *Stroke {
	t.Helper()
	layer := b.pages[0].Layers[0]
	if len(layer.Elements) != 1 {
		t.Fatalf("expected one element, got %d", len(layer.Elements))
	}
	stroke, ok := layer.Elements[0].(*Stroke)
	if !ok {
		t.Fatalf("expected a stroke, got %#v", layer.Elements[0])
	}
	return stroke
}

func TestPressureCountMismatchIgnored(t *testing.T) {
	b := testBuilder()
	b.AddPage(10, 10)
	b.AddLayer(nil)
	addStroke(b)
	b.SetStrokePoints(pts(0, 0, 1, 1, 2, 2), []float64{0.5})
	b.FinalizeStroke()
	b.FinalizeLayer()

	stroke := b.pagesStroke(t)
	if stroke.Pressures != nil {
		t.Errorf("expected mismatched pressures to be dropped, got %v", stroke.Pressures)
	}
	if len(stroke.Points) != 3 {
		t.Errorf("points should survive the pressure mismatch, got %d", len(stroke.Points))
	}
}

func TestExcessPressuresTrimmed(t *testing.T) {
	b := testBuilder()
	b.AddPage(10, 10)
	b.AddLayer(nil)
	addStroke(b)
	b.SetStrokePoints(pts(0, 0, 1, 1), []float64{0.5, 0.6, 0.7})
	b.FinalizeStroke()
	b.FinalizeLayer()

	stroke := b.pagesStroke(t)
	if len(stroke.Pressures) != 1 {
		t.Errorf("expected pressures trimmed to segment count, got %v", stroke.Pressures)
	}
}

func TestNullPressuresSplitStroke(t *testing.T) {
	b := testBuilder()
	b.AddPage(10, 10)
	b.AddLayer(nil)
	addStroke(b)
	// Segments: ok, ok, dead, ok — the stroke splits into two portions.
	b.SetStrokePoints(pts(0, 0, 1, 1, 2, 2, 3, 3, 4, 4), []float64{0.5, 0.5, 0, 0.5})
	b.FinalizeStroke()
	b.FinalizeLayer()

	layer := b.pages[0].Layers[0]
	if len(layer.Elements) != 2 {
		t.Fatalf("expected the stroke to split into 2, got %d", len(layer.Elements))
	}
	first := layer.Elements[0].(*Stroke)
	second := layer.Elements[1].(*Stroke)
	if len(first.Points) != 3 || len(first.Pressures) != 2 {
		t.Errorf("first portion mismatch: %d points, %d pressures", len(first.Points), len(first.Pressures))
	}
	if len(second.Points) != 2 || len(second.Pressures) != 1 {
		t.Errorf("second portion mismatch: %d points, %d pressures", len(second.Points), len(second.Pressures))
	}
	if second.Points[0].X != 3 {
		t.Errorf("second portion should start at the revived segment, got %+v", second.Points)
	}
}

func TestAllNullPressuresDeleteStroke(t *testing.T) {
	b := testBuilder()
	b.AddPage(10, 10)
	b.AddLayer(nil)
	addStroke(b)
	b.SetStrokePoints(pts(0, 0, 1, 1, 2, 2), []float64{0, -1})
	b.FinalizeStroke()
	b.FinalizeLayer()

	layer := b.pages[0].Layers[0]
	if len(layer.Elements) != 0 {
		t.Errorf("expected the dead stroke to be removed, got %d elements", len(layer.Elements))
	}
}

func TestPdfFilenameRecordedAndPagesSelected(t *testing.T) {
	b := testBuilder()
	b.AddPage(10, 10)
	b.LoadBgPdf(false, "doc.pdf")
	b.SetBgPdf(0)
	b.FinalizePage()
	b.AddPage(10, 10)
	b.SetBgPdf(2)
	b.FinalizePage()
	b.FinalizeDocument()

	doc := b.Document()
	if doc.PdfFilename != "doc.pdf" {
		t.Errorf("expected recorded PDF filename, got %q", doc.PdfFilename)
	}
	if doc.Pages[0].Background.PdfPage != 0 || doc.Pages[1].Background.PdfPage != 2 {
		t.Errorf("page selections mismatch: %+v, %+v",
			doc.Pages[0].Background, doc.Pages[1].Background)
	}
}

type fakeAttachments struct {
	files map[string][]byte
}

func (f *fakeAttachments) ReadAttachment(name string) ([]byte, error) {
	if data, ok := f.files[name]; ok {
		return data, nil
	}
	return nil, io.ErrUnexpectedEOF
}

func (f *fakeAttachments) HasAttachment(name string) bool {
	_, ok := f.files[name]
	return ok
}

func TestImageAttachmentResolution(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	att := &fakeAttachments{files: map[string][]byte{"img.png": []byte("bytes")}}
	b := NewBuilder(log, nil, att, "notebook.xopp")

	b.AddPage(10, 10)
	b.AddLayer(nil)
	b.AddImage(0, 0, 5, 5)
	b.SetImageAttachment("img.png")
	b.FinalizeImage()
	b.FinalizeLayer()

	layer := b.pages[0].Layers[0]
	img := layer.Elements[0].(*Image)
	if string(img.Data) != "bytes" || img.Attachment != "img.png" {
		t.Errorf("attachment not resolved: %+v", img)
	}
}

func TestAudioAttachmentVerification(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	att := &fakeAttachments{files: map[string][]byte{"ok.mp3": nil}}
	b := NewBuilder(log, nil, att, "notebook.xopp")

	b.AddAudioAttachment("ok.mp3")
	b.AddAudioAttachment("missing.mp3")

	doc := b.Document()
	if len(doc.AudioFiles) != 1 || doc.AudioFiles[0] != "ok.mp3" {
		t.Errorf("expected only the present attachment, got %v", doc.AudioFiles)
	}
}

func TestAttachedPdfMissing(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	att := &fakeAttachments{files: map[string][]byte{}}
	b := NewBuilder(log, nil, att, "notebook.xopp")

	b.AddPage(10, 10)
	b.LoadBgPdf(true, "bg.pdf")

	doc := b.Document()
	if !doc.AttachedPdfMissing || doc.MissingPdfFilename != "bg.pdf" {
		t.Errorf("expected missing attached PDF to be tracked, got %+v", doc)
	}
}
