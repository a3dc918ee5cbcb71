package stats

import (
	"fmt"

	"github.com/inkgest/inkgest/internal/document"
)

// Finding flags a consistency problem in a parsed notebook. Findings are
// informational; the document is still usable.
type Finding struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Page    int    `json:"page,omitempty"` // 1-based, 0 when document-wide
}

// Check runs the integrity rules over a document.
func Check(doc *document.Document) []Finding {
	var findings []Finding

	if !doc.Complete {
		findings = append(findings, Finding{
			Code:    "incomplete",
			Message: "document ended before the root element was closed",
		})
	}
	if doc.AttachedPdfMissing {
		findings = append(findings, Finding{
			Code:    "missing_pdf",
			Message: fmt.Sprintf("attached background PDF not found: %s", doc.MissingPdfFilename),
		})
	}

	for i, page := range doc.Pages {
		pageNo := i + 1
		if page.Width <= 0 || page.Height <= 0 {
			findings = append(findings, Finding{
				Code:    "degenerate_page",
				Message: fmt.Sprintf("page has non-positive size %gx%g", page.Width, page.Height),
				Page:    pageNo,
			})
		}
		if page.Background.Type == document.BackgroundPdf &&
			doc.PdfPageCount > 0 && page.Background.PdfPage >= uint64(doc.PdfPageCount) {
			findings = append(findings, Finding{
				Code:    "pdf_page_out_of_range",
				Message: fmt.Sprintf("background selects PDF page %d of %d", page.Background.PdfPage+1, doc.PdfPageCount),
				Page:    pageNo,
			})
		}
		for _, layer := range page.Layers {
			for _, el := range layer.Elements {
				switch e := el.(type) {
				case *document.Stroke:
					if len(e.Points) < 2 {
						findings = append(findings, Finding{
							Code:    "degenerate_stroke",
							Message: fmt.Sprintf("stroke has %d points", len(e.Points)),
							Page:    pageNo,
						})
					}
					if len(e.Pressures) > 0 && len(e.Pressures) != len(e.Points)-1 {
						findings = append(findings, Finding{
							Code:    "pressure_mismatch",
							Message: fmt.Sprintf("stroke has %d pressure values for %d points", len(e.Pressures), len(e.Points)),
							Page:    pageNo,
						})
					}
				case *document.Image:
					if len(e.Data) == 0 && e.Attachment == "" {
						findings = append(findings, Finding{
							Code:    "empty_image",
							Message: "image carries neither data nor an attachment",
							Page:    pageNo,
						})
					}
				case *document.TexImage:
					if e.TexSource == "" {
						findings = append(findings, Finding{
							Code:    "missing_tex_source",
							Message: "TEX image has no source text",
							Page:    pageNo,
						})
					}
				}
			}
		}
	}

	return findings
}
