package document

import (
	"log/slog"
	"math"

	"github.com/inkgest/inkgest/internal/xopp"
)

// PdfResolver inspects a background PDF, typically to learn its page
// count. Implementations live outside this package so the builder stays
// free of PDF parsing.
type PdfResolver interface {
	NumPages(path string) (int, error)
	NumPagesFromBytes(data []byte) (int, error)
}

// AttachmentSource resolves attachment names against the notebook
// container (the zip archive for zip-packed notebooks). A nil source means
// the container carries no attachments.
type AttachmentSource interface {
	ReadAttachment(name string) ([]byte, error)
	HasAttachment(name string) bool
}

// Builder assembles a Document from parser events. It implements
// xopp.DocumentBuilder.
type Builder struct {
	log         *slog.Logger
	pdf         PdfResolver
	attachments AttachmentSource
	// basePath is the notebook file path, used to resolve attach-domain
	// resources stored next to the file as "<path>.<name>".
	basePath string

	doc   *Document
	pages []*Page

	page     *Page
	layer    *Layer
	stroke   *Stroke
	text     *Text
	image    *Image
	teximage *TexImage

	// Extra strokes produced when a corrupted pressure list forces a
	// stroke to be split; flushed on FinalizeStroke.
	splitStrokes []*Stroke
}

// NewBuilder returns a builder for one document parse. pdf and
// attachments may be nil.
func NewBuilder(log *slog.Logger, pdf PdfResolver, attachments AttachmentSource, basePath string) *Builder {
	return &Builder{
		log:         log,
		pdf:         pdf,
		attachments: attachments,
		basePath:    basePath,
		doc:         &Document{},
	}
}

// Document returns the assembled document.
func (b *Builder) Document() *Document { return b.doc }

func (b *Builder) AddXournal(creator string, fileVersion int) {
	b.doc.Creator = creator
	b.doc.FileVersion = fileVersion
}

func (b *Builder) AddMrWriter(creator string) {
	b.doc.Creator = creator
}

func (b *Builder) FinalizeDocument() {
	b.doc.Pages = append(b.doc.Pages, b.pages...)
	b.pages = nil
	b.doc.Complete = true
}

func (b *Builder) AddPage(width, height float64) {
	b.page = &Page{Width: width, Height: height}
	b.pages = append(b.pages, b.page)
}

func (b *Builder) FinalizePage() {
	if b.page == nil {
		return
	}
	// A page with no layers still gets one, so that consumers can draw on
	// it without special cases.
	if len(b.page.Layers) == 0 {
		b.page.Layers = append(b.page.Layers, &Layer{})
	}
	b.page = nil
}

func (b *Builder) AddAudioAttachment(filename string) {
	if b.attachments != nil && !b.attachments.HasAttachment(filename) {
		b.log.Warn("could not open audio attachment", "filename", filename)
		return
	}
	b.doc.AudioFiles = append(b.doc.AudioFiles, filename)
}

func (b *Builder) SetBgName(name string) {
	if b.page == nil {
		return
	}
	b.page.Background.Name = name
}

func (b *Builder) SetBgSolid(pageType xopp.PageType, color xopp.Color) {
	if b.page == nil {
		return
	}
	b.page.Background.Type = BackgroundSolid
	b.page.Background.PageType = pageType
	b.page.Background.Color = color
}

func (b *Builder) SetBgPixmap(attach bool, filename string) {
	if b.page == nil {
		return
	}
	b.page.Background.Type = BackgroundPixmap
	b.page.Background.Attach = attach
	b.page.Background.Filename = filename
	b.page.Background.PageType = xopp.PageType{Format: xopp.FormatImage}
}

func (b *Builder) SetBgPixmapCloned(pageNr uint64) {
	if b.page == nil {
		return
	}
	if pageNr >= uint64(len(b.pages)) {
		b.log.Warn("cloned background references a page not seen yet", "page", pageNr)
	}
	b.page.Background.Type = BackgroundPixmapCloned
	b.page.Background.ClonedPage = pageNr
	b.page.Background.PageType = xopp.PageType{Format: xopp.FormatImage}
}

func (b *Builder) LoadBgPdf(attach bool, filename string) {
	b.doc.PdfFilename = filename
	b.doc.PdfAttach = attach

	if attach && b.attachments != nil {
		// The PDF is an attachment inside the notebook container.
		data, err := b.attachments.ReadAttachment(filename)
		if err != nil {
			b.doc.AttachedPdfMissing = true
			b.doc.MissingPdfFilename = filename
			return
		}
		if b.pdf != nil {
			n, err := b.pdf.NumPagesFromBytes(data)
			if err != nil {
				b.log.Warn("error reading background PDF", "filename", filename, "error", err)
				return
			}
			b.doc.PdfPageCount = n
		}
		return
	}

	path := filename
	if attach {
		// Attached PDFs of gzip notebooks sit next to the file.
		path = b.basePath + "." + filename
	}
	if b.pdf != nil {
		n, err := b.pdf.NumPages(path)
		if err != nil {
			b.log.Warn("could not read background PDF", "path", path, "error", err)
			if attach {
				b.doc.AttachedPdfMissing = true
				b.doc.MissingPdfFilename = path
			}
			return
		}
		b.doc.PdfPageCount = n
	}
}

func (b *Builder) SetBgPdf(pageno uint64) {
	if b.page == nil {
		return
	}
	b.page.Background.Type = BackgroundPdf
	b.page.Background.PdfPage = pageno
	b.page.Background.PageType = xopp.PageType{Format: xopp.FormatPdf}
}

func (b *Builder) AddLayer(name *string) {
	b.layer = &Layer{Name: name}
}

func (b *Builder) FinalizeLayer() {
	if b.page == nil || b.layer == nil {
		b.layer = nil
		return
	}
	b.page.Layers = append(b.page.Layers, b.layer)
	b.layer = nil
}

func (b *Builder) AddStroke(tool xopp.StrokeTool, color xopp.Color, width float64, fill int,
	capStyle xopp.StrokeCapStyle, lineStyle *xopp.LineStyle, audioFilename string, audioTimestamp uint64) {
	b.stroke = &Stroke{
		Tool:           tool,
		Color:          color,
		Width:          width,
		Fill:           fill,
		CapStyle:       capStyle,
		LineStyle:      lineStyle,
		AudioFilename:  audioFilename,
		AudioTimestamp: audioTimestamp,
	}
}

func (b *Builder) SetStrokePoints(points []xopp.Point, pressures []float64) {
	if b.stroke == nil {
		return
	}
	if len(points) < 2 {
		b.log.Warn("ignoring stroke with less than two points")
		return
	}
	b.stroke.Points = points

	if len(pressures) == 0 {
		return
	}
	if len(pressures)+1 < len(points) {
		b.log.Warn("wrong number of pressure values",
			"got", len(pressures), "expected", len(points)-1)
		return
	}
	for _, v := range pressures {
		if !(v > 0) || math.IsNaN(v) {
			// May delete the stroke entirely.
			b.fixNullPressureValues(pressures)
			return
		}
	}
	if len(pressures) >= len(points) {
		pressures = pressures[:len(points)-1]
	}
	b.stroke.Pressures = pressures
}

// fixNullPressureValues repairs strokes from old files that carry
// non-positive pressure values: the dead segments are invisible anyway,
// so the stroke is cut into the runs of valid pressures, and dropped
// completely when no valid run remains.
func (b *Builder) fixNullPressureValues(pressures []float64) {
	points := b.stroke.Points
	if len(pressures) >= len(points) {
		pressures = pressures[:len(points)-1]
	}

	type portion struct {
		points    []xopp.Point
		pressures []float64
	}
	var portions []portion
	i := 0
	for i < len(pressures) {
		if !(pressures[i] > 0) || math.IsNaN(pressures[i]) {
			i++
			continue
		}
		j := i
		for j < len(pressures) && pressures[j] > 0 && !math.IsNaN(pressures[j]) {
			j++
		}
		// Pressure k covers the segment between points k and k+1.
		portions = append(portions, portion{
			points:    append([]xopp.Point(nil), points[i:j+1]...),
			pressures: append([]float64(nil), pressures[i:j]...),
		})
		i = j
	}

	if len(portions) == 0 {
		b.log.Warn("removing stroke without any valid pressure value")
		b.stroke = nil
		return
	}

	proto := *b.stroke
	b.stroke.Points = portions[0].points
	b.stroke.Pressures = portions[0].pressures
	for _, po := range portions[1:] {
		s := proto
		s.Points = po.points
		s.Pressures = po.pressures
		b.splitStrokes = append(b.splitStrokes, &s)
	}
}

func (b *Builder) FinalizeStroke() {
	// The pressure fix may have deleted the stroke.
	if b.stroke != nil && b.layer != nil {
		b.layer.Elements = append(b.layer.Elements, b.stroke)
		for _, s := range b.splitStrokes {
			b.layer.Elements = append(b.layer.Elements, s)
		}
	}
	b.stroke = nil
	b.splitStrokes = nil
}

func (b *Builder) AddText(font string, size, x, y float64, color xopp.Color, audioFilename string, audioTimestamp uint64) {
	b.text = &Text{
		Font:           font,
		Size:           size,
		X:              x,
		Y:              y,
		Color:          color,
		AudioFilename:  audioFilename,
		AudioTimestamp: audioTimestamp,
	}
}

func (b *Builder) SetTextContents(contents string) {
	if b.text == nil {
		return
	}
	b.text.Contents = contents
}

func (b *Builder) FinalizeText() {
	if b.text != nil && b.layer != nil {
		b.layer.Elements = append(b.layer.Elements, b.text)
	}
	b.text = nil
}

func (b *Builder) AddImage(left, top, right, bottom float64) {
	b.image = &Image{
		X:      left,
		Y:      top,
		Width:  right - left,
		Height: bottom - top,
	}
}

func (b *Builder) SetImageData(data []byte) {
	if b.image == nil {
		return
	}
	b.image.Data = data
}

func (b *Builder) SetImageAttachment(path string) {
	if b.image == nil {
		return
	}
	b.image.Attachment = path
	if b.attachments != nil {
		data, err := b.attachments.ReadAttachment(path)
		if err != nil {
			b.log.Warn("could not read image attachment", "path", path, "error", err)
			return
		}
		b.image.Data = data
	}
}

func (b *Builder) FinalizeImage() {
	if b.image != nil && b.layer != nil {
		b.layer.Elements = append(b.layer.Elements, b.image)
	}
	b.image = nil
}

func (b *Builder) AddTexImage(left, top, right, bottom float64, texSource string) {
	b.teximage = &TexImage{
		X:         left,
		Y:         top,
		Width:     right - left,
		Height:    bottom - top,
		TexSource: texSource,
	}
}

func (b *Builder) SetTexImageData(data []byte) {
	if b.teximage == nil {
		return
	}
	b.teximage.Data = data
}

func (b *Builder) SetTexImageAttachment(path string) {
	if b.teximage == nil {
		return
	}
	b.teximage.Attachment = path
	if b.attachments != nil {
		data, err := b.attachments.ReadAttachment(path)
		if err != nil {
			b.log.Warn("could not read TEX image attachment", "path", path, "error", err)
			return
		}
		b.teximage.Data = data
	}
}

func (b *Builder) FinalizeTexImage() {
	if b.teximage != nil && b.layer != nil {
		b.layer.Elements = append(b.layer.Elements, b.teximage)
	}
	b.teximage = nil
}

func (b *Builder) IsParsingComplete() bool { return b.doc.Complete }
