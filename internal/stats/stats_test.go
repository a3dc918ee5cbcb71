package stats

import (
	"math"
	"testing"

	"github.com/inkgest/inkgest/internal/document"
	"github.com/inkgest/inkgest/internal/xopp"
)

func sampleDocument() *document.Document {
	name := "Layer 1"
	return &document.Document{
		Creator:      "test",
		FileVersion:  4,
		PdfFilename:  "bg.pdf",
		PdfPageCount: 3,
		AudioFiles:   []string{"a.mp3"},
		Complete:     true,
		Pages: []*document.Page{
			{
				Width:  100,
				Height: 100,
				Background: document.Background{
					Type:    document.BackgroundPdf,
					PdfPage: 1,
				},
				Layers: []*document.Layer{
					{
						Name: &name,
						Elements: []document.Element{
							&document.Stroke{
								Tool:   xopp.ToolPen,
								Points: []xopp.Point{{X: 0, Y: 0}, {X: 3, Y: 4}},
							},
							&document.Stroke{
								Tool:   xopp.ToolHighlighter,
								Points: []xopp.Point{{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 0, Y: 5}},
							},
							&document.Text{Contents: "hi"},
							&document.Image{Data: []byte{1}},
							&document.TexImage{TexSource: "x^2"},
						},
					},
				},
			},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleDocument())

	if s.Pages != 1 || s.Layers != 1 {
		t.Errorf("structure counts mismatch: %+v", s)
	}
	if s.Strokes != 2 || s.TextBoxes != 1 || s.Images != 1 || s.TexImages != 1 {
		t.Errorf("element counts mismatch: %+v", s)
	}
	if s.Points != 5 {
		t.Errorf("expected 5 points, got %d", s.Points)
	}
	// 3-4-5 triangle plus two vertical segments of 2 and 3.
	if math.Abs(s.InkLength-10) > 1e-9 {
		t.Errorf("expected ink length 10, got %g", s.InkLength)
	}
	if s.StrokesPerTool["pen"] != 1 || s.StrokesPerTool["highlighter"] != 1 {
		t.Errorf("per-tool counts mismatch: %v", s.StrokesPerTool)
	}
	if !s.HasPdfBackground || s.PdfPageCount != 3 {
		t.Errorf("pdf info mismatch: %+v", s)
	}
	if s.AudioFiles != 1 {
		t.Errorf("expected 1 audio file, got %d", s.AudioFiles)
	}
}

func TestCheckCleanDocument(t *testing.T) {
	if findings := Check(sampleDocument()); len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

func TestCheckFlagsProblems(t *testing.T) {
	doc := sampleDocument()
	doc.Complete = false
	doc.AttachedPdfMissing = true
	doc.MissingPdfFilename = "gone.pdf"
	doc.Pages[0].Width = 0
	doc.Pages[0].Background.PdfPage = 9
	doc.Pages[0].Layers[0].Elements = append(doc.Pages[0].Layers[0].Elements,
		&document.Stroke{Points: []xopp.Point{{X: 1, Y: 1}}},
		&document.Image{},
		&document.TexImage{},
	)

	findings := Check(doc)
	codes := make(map[string]int)
	for _, f := range findings {
		codes[f.Code]++
	}
	for _, want := range []string{
		"incomplete", "missing_pdf", "degenerate_page",
		"pdf_page_out_of_range", "degenerate_stroke", "empty_image",
		"missing_tex_source",
	} {
		if codes[want] == 0 {
			t.Errorf("expected finding %q, got %v", want, codes)
		}
	}
}
