// Package document holds the typed model of a parsed notebook and the
// builder that assembles it from parser events.
package document

import "github.com/inkgest/inkgest/internal/xopp"

// Document is a fully parsed notebook.
type Document struct {
	Creator     string
	FileVersion int

	Pages []*Page

	// AudioFiles lists audio attachments referenced by the document.
	AudioFiles []string

	// PDF background state. The first pdf background with a filename
	// wins; later ones only select pages.
	PdfFilename        string
	PdfAttach          bool
	PdfPageCount       int
	AttachedPdfMissing bool
	MissingPdfFilename string

	// Complete is set once the root element closed cleanly.
	Complete bool
}

// BackgroundType discriminates the background variants of a page.
type BackgroundType int

const (
	BackgroundDefault BackgroundType = iota
	BackgroundSolid
	BackgroundPixmap
	BackgroundPixmapCloned
	BackgroundPdf
)

// Background describes how a page is painted behind its layers.
type Background struct {
	Type BackgroundType
	Name string

	// Solid
	PageType xopp.PageType
	Color    xopp.Color

	// Pixmap and PDF
	Filename string
	Attach   bool

	// Cloned pixmap
	ClonedPage uint64

	// PDF page selection (zero-based)
	PdfPage uint64
}

// Page is one notebook page.
type Page struct {
	Width, Height float64
	Background    Background
	Layers        []*Layer
}

// Layer groups the elements drawn at one z-level. Name is nil when the
// file did not carry one.
type Layer struct {
	Name     *string
	Elements []Element
}

// Element is one drawable item on a layer: *Stroke, *Text, *Image or
// *TexImage.
type Element interface {
	element()
}

// Stroke is a pen, eraser or highlighter trail.
type Stroke struct {
	Tool      xopp.StrokeTool
	Color     xopp.Color
	Width     float64
	Fill      int
	CapStyle  xopp.StrokeCapStyle
	LineStyle *xopp.LineStyle

	Points []xopp.Point
	// Pressures holds one width factor per segment (len(Points)-1 values)
	// when the stroke is pressure-sensitive.
	Pressures []float64

	AudioFilename  string
	AudioTimestamp uint64
}

// Text is a text box.
type Text struct {
	Font     string
	Size     float64
	X, Y     float64
	Color    xopp.Color
	Contents string

	AudioFilename  string
	AudioTimestamp uint64
}

// Image is a raster image placed on the page.
type Image struct {
	X, Y          float64
	Width, Height float64
	Data          []byte
	Attachment    string
}

// TexImage is a rendered LaTeX formula with its source.
type TexImage struct {
	X, Y          float64
	Width, Height float64
	TexSource     string
	Data          []byte
	Attachment    string
}

func (*Stroke) element()   {}
func (*Text) element()     {}
func (*Image) element()    {}
func (*TexImage) element() {}
