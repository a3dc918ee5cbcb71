// Package stats computes per-notebook statistics and integrity findings,
// and tracks a rolling window of parse latencies for the API.
package stats

import (
	"math"

	"github.com/inkgest/inkgest/internal/document"
)

// Summary aggregates a parsed notebook for API responses and archival.
type Summary struct {
	Creator     string `json:"creator"`
	FileVersion int    `json:"file_version,omitempty"`

	Pages  int `json:"pages"`
	Layers int `json:"layers"`

	Strokes   int `json:"strokes"`
	TextBoxes int `json:"text_boxes"`
	Images    int `json:"images"`
	TexImages int `json:"tex_images"`

	Points    int     `json:"points"`
	InkLength float64 `json:"ink_length"`

	StrokesPerTool map[string]int `json:"strokes_per_tool,omitempty"`

	AudioFiles       int  `json:"audio_files"`
	HasPdfBackground bool `json:"has_pdf_background"`
	PdfPageCount     int  `json:"pdf_page_count,omitempty"`
}

// Summarize walks a document and aggregates its contents.
func Summarize(doc *document.Document) Summary {
	s := Summary{
		Creator:          doc.Creator,
		FileVersion:      doc.FileVersion,
		Pages:            len(doc.Pages),
		AudioFiles:       len(doc.AudioFiles),
		HasPdfBackground: doc.PdfFilename != "",
		PdfPageCount:     doc.PdfPageCount,
		StrokesPerTool:   make(map[string]int),
	}

	for _, page := range doc.Pages {
		s.Layers += len(page.Layers)
		for _, layer := range page.Layers {
			for _, el := range layer.Elements {
				switch e := el.(type) {
				case *document.Stroke:
					s.Strokes++
					s.Points += len(e.Points)
					s.StrokesPerTool[e.Tool.String()]++
					for i := 1; i < len(e.Points); i++ {
						dx := e.Points[i].X - e.Points[i-1].X
						dy := e.Points[i].Y - e.Points[i-1].Y
						s.InkLength += math.Hypot(dx, dy)
					}
				case *document.Text:
					s.TextBoxes++
				case *document.Image:
					s.Images++
				case *document.TexImage:
					s.TexImages++
				}
			}
		}
	}

	if len(s.StrokesPerTool) == 0 {
		s.StrokesPerTool = nil
	}
	return s
}
