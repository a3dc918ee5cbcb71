// Package xopp parses the XML of .xoj / .xopp notebook documents into
// typed events on a DocumentBuilder.
//
// The parser is a recursive driver over an xmlstream.Reader. It keeps an
// explicit stack of open tags, validates open/close balance, and degrades
// gracefully on unknown content: structural damage (mismatched or stray
// closing tags, reader failures) is fatal, everything else is a logged
// warning.
package xopp

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkgest/inkgest/internal/xmlstream"
)

// Parser drives a Reader and forwards document events to a builder.
// It lives for a single document parse.
type Parser struct {
	reader  *xmlstream.Reader
	handler DocumentBuilder
	log     *slog.Logger

	hierarchy []TagType
	node      xmlstream.Node

	// Only the first PDF background with a filename loads the PDF;
	// later ones merely select pages.
	pdfFilenameParsed bool

	// Audio reference buffered from a preceding <timestamp> element,
	// consumed by the next stroke or text element.
	tempFilename  string
	tempTimestamp uint64

	// Pressure values accumulated from the stroke attributes, shipped
	// together with the point list.
	pressureBuffer []float64
}

// NewParser returns a parser reading from r and emitting into handler.
// Warnings about recoverable content problems go to log.
func NewParser(r *xmlstream.Reader, handler DocumentBuilder, log *slog.Logger) *Parser {
	return &Parser{
		reader:  r,
		handler: handler,
		log:     log,
	}
}

// Parse consumes the whole document. Structural errors abort the parse;
// the builder has received every event issued up to that point.
func (p *Parser) Parse() error {
	return p.parse((*Parser).processRoot)
}

type processFunc func(*Parser) error

// parse reads the next node and, while nodes stay at or below the current
// nesting level, hands them to process. Process functions are responsible
// for reading the node that follows them before returning. When a node
// one level up appears it is left as the current node for the caller.
func (p *Parser) parse(process processFunc) error {
	if err := p.next(); err != nil {
		return err
	}
	if p.node.Type != xmlstream.Opening {
		return nil
	}
	startDepth := len(p.hierarchy)
	for p.node.Type != xmlstream.End && p.effectiveDepth() >= startDepth {
		if err := process(p); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) next() error {
	node, err := p.reader.ReadNode()
	if err != nil {
		return err
	}
	p.node = node
	return nil
}

// effectiveDepth is the nesting level the current node belongs to; a
// closing node counts one shallower than the stack it is about to pop.
func (p *Parser) effectiveDepth() int {
	if p.node.Type == xmlstream.Closing {
		return len(p.hierarchy) - 1
	}
	return len(p.hierarchy)
}

// openTag maps the current opening node to its tag type and pushes it on
// the hierarchy unless the element is empty (no closing tag will come).
func (p *Parser) openTag() TagType {
	t := tagNameToType(p.node.Name)
	if !p.node.Empty {
		p.hierarchy = append(p.hierarchy, t)
	}
	return t
}

// closeTag pops the hierarchy, verifying the closing tag matches.
func (p *Parser) closeTag(t TagType) error {
	if len(p.hierarchy) == 0 {
		return fmt.Errorf("error parsing XML file: found closing tag %q at document root", t)
	}
	top := p.hierarchy[len(p.hierarchy)-1]
	if top != t {
		return fmt.Errorf("error parsing XML file: closing tag %q does not correspond to last open element %q", t, top)
	}
	p.hierarchy = p.hierarchy[:len(p.hierarchy)-1]
	return nil
}

func (p *Parser) top() TagType {
	if len(p.hierarchy) == 0 {
		return TagUnknown
	}
	return p.hierarchy[len(p.hierarchy)-1]
}

func (p *Parser) processRoot() error {
	switch p.node.Type {
	case xmlstream.Opening:
		if p.node.Empty {
			return errors.New("error parsing XML file: the document root tag is empty")
		}
		tag := p.openTag()
		switch tag {
		case TagXournal:
			p.parseXournalTag()
		case TagMrWriter:
			p.parseMrWriterTag()
		default:
			// Attempt parsing the document anyway.
			p.log.Warn("unexpected root tag", "tag", string(p.node.Name))
		}
		return p.parse((*Parser).processDocument)
	case xmlstream.Closing:
		// Parsing is done; keep reading. A further element is processed
		// like a root element; stray text is a reader error.
		p.handler.FinalizeDocument()
		if err := p.closeTag(tagNameToType(p.node.Name)); err != nil {
			return err
		}
		return p.next()
	default:
		p.log.Warn("ignoring unexpected node at document root", "node", p.node.Type.String())
		return p.next()
	}
}

func (p *Parser) processDocument() error {
	switch p.node.Type {
	case xmlstream.Opening:
		isEmpty := p.node.Empty
		tag := p.openTag()
		switch tag {
		case TagTitle, TagPreview:
			// Not needed; the body is ignored below.
		case TagPage:
			p.parsePageTag()
			if isEmpty {
				p.log.Warn("found empty page")
				p.handler.FinalizePage()
				break
			}
			return p.parse((*Parser).processPage)
		case TagAudio:
			p.parseAudioTag()
		default:
			p.log.Warn("ignoring unexpected tag in document", "tag", string(p.node.Name))
		}
		return p.next()
	case xmlstream.Text:
		// Text from title or preview is expected and dropped.
		if p.top() != TagTitle && p.top() != TagPreview {
			p.log.Warn("ignoring unexpected text in document", "tag", p.top().String())
		}
		return p.next()
	case xmlstream.Closing:
		if p.top() == TagPage {
			p.handler.FinalizePage()
		}
		if err := p.closeTag(tagNameToType(p.node.Name)); err != nil {
			return err
		}
		return p.next()
	default:
		p.log.Warn("ignoring unexpected node in document", "node", p.node.Type.String())
		return p.next()
	}
}

func (p *Parser) processPage() error {
	switch p.node.Type {
	case xmlstream.Opening:
		isEmpty := p.node.Empty
		tag := p.openTag()
		switch tag {
		case TagBackground:
			p.parseBackgroundTag()
		case TagLayer:
			p.parseLayerTag()
			if isEmpty {
				// No warning: an empty page holds an empty layer.
				p.handler.FinalizeLayer()
				break
			}
			return p.parse((*Parser).processLayer)
		default:
			p.log.Warn("ignoring unexpected tag in page", "tag", string(p.node.Name))
		}
		return p.next()
	case xmlstream.Closing:
		if p.top() == TagLayer {
			p.handler.FinalizeLayer()
		}
		if err := p.closeTag(tagNameToType(p.node.Name)); err != nil {
			return err
		}
		return p.next()
	default:
		p.log.Warn("ignoring unexpected node in page", "node", p.node.Type.String())
		return p.next()
	}
}

func (p *Parser) processLayer() error {
	switch p.node.Type {
	case xmlstream.Opening:
		isEmpty := p.node.Empty
		tag := p.openTag()
		switch tag {
		case TagTimestamp:
			p.parseTimestampTag()
		case TagStroke:
			p.parseStrokeTag()
			if isEmpty {
				p.log.Warn("found empty stroke")
				p.handler.FinalizeStroke()
			}
		case TagText:
			p.parseTextTag()
			if isEmpty {
				p.log.Warn("found empty text")
				p.handler.FinalizeText()
			}
		case TagImage:
			p.parseImageTag()
			if isEmpty {
				p.log.Warn("found empty image")
				p.handler.FinalizeImage()
				break
			}
			// An image may carry an attachment child. If it does not,
			// the nested parse returns right away.
			return p.parse((*Parser).processAttachment)
		case TagTexImage:
			p.parseTexImageTag()
			if isEmpty {
				p.log.Warn("found empty TEX image")
				p.handler.FinalizeTexImage()
				break
			}
			return p.parse((*Parser).processAttachment)
		default:
			p.log.Warn("ignoring unexpected tag in layer", "tag", string(p.node.Name))
		}
		return p.next()
	case xmlstream.Text:
		switch p.top() {
		case TagStroke:
			if err := p.parseStrokeText(); err != nil {
				return err
			}
		case TagText:
			p.parseTextText()
		case TagImage:
			p.parseImageText()
		case TagTexImage:
			p.parseTexImageText()
		default:
			p.log.Warn("ignoring unexpected text in layer", "tag", p.top().String())
		}
		return p.next()
	case xmlstream.Closing:
		switch p.top() {
		case TagStroke:
			p.handler.FinalizeStroke()
		case TagText:
			p.handler.FinalizeText()
		case TagImage:
			p.handler.FinalizeImage()
		case TagTexImage:
			p.handler.FinalizeTexImage()
		}
		if err := p.closeTag(tagNameToType(p.node.Name)); err != nil {
			return err
		}
		return p.next()
	default:
		p.log.Warn("ignoring unexpected node in layer", "node", p.node.Type.String())
		return p.next()
	}
}

func (p *Parser) processAttachment() error {
	switch p.node.Type {
	case xmlstream.Opening:
		tag := p.openTag()
		switch tag {
		case TagAttachment:
			p.parseAttachment()
		default:
			p.log.Warn("ignoring unexpected tag in image or TEX image", "tag", string(p.node.Name))
		}
		return p.next()
	case xmlstream.Text:
		switch p.top() {
		case TagImage:
			p.parseImageText()
		case TagTexImage:
			p.parseTexImageText()
		default:
			p.log.Warn("ignoring unexpected text in image or TEX image", "tag", p.top().String())
		}
		return p.next()
	case xmlstream.Closing:
		if err := p.closeTag(tagNameToType(p.node.Name)); err != nil {
			return err
		}
		return p.next()
	default:
		p.log.Warn("ignoring unexpected node in image or TEX image", "node", p.node.Type.String())
		return p.next()
	}
}

func (p *Parser) parseXournalTag() {
	attrs := p.node.Attrs

	creator, ok := p.getAttribString(attrs, attrCreator)
	if !ok {
		// Older files carry only a version string.
		if version, ok := p.getAttribString(attrs, attrVersion); ok {
			creator = "Xournal " + version
		} else {
			creator = "Unknown"
		}
	}

	fileVersion := p.getAttribIntMandatory(attrs, attrFileVersion, 1, true)

	p.handler.AddXournal(creator, fileVersion)
}

func (p *Parser) parseMrWriterTag() {
	attrs := p.node.Attrs

	creator := "Unknown"
	if version, ok := p.getAttribString(attrs, attrVersion); ok {
		creator = "MrWriter " + version
	}

	p.handler.AddMrWriter(creator)
}

func (p *Parser) parsePageTag() {
	attrs := p.node.Attrs

	width := p.getAttribDoubleMandatory(attrs, attrWidth, 0, true)
	height := p.getAttribDoubleMandatory(attrs, attrHeight, 0, true)

	p.handler.AddPage(width, height)
}

func (p *Parser) parseAudioTag() {
	attrs := p.node.Attrs

	filename := p.getAttribStringMandatory(attrs, attrAudioFilename, "", true)

	p.handler.AddAudioAttachment(filename)
}

func (p *Parser) parseBackgroundTag() {
	attrs := p.node.Attrs

	if name, ok := p.getAttribString(attrs, attrName); ok {
		p.handler.SetBgName(name)
	}

	typ, ok := p.getAttribString(attrs, attrType)
	if !ok {
		// No sensible default exists: the remaining attributes depend
		// on the type.
		p.log.Warn("attribute type not found in background tag, ignoring tag")
		return
	}
	switch typ {
	case "solid":
		p.parseBgSolid(attrs)
	case "pixmap":
		p.parseBgPixmap(attrs)
	case "pdf":
		p.parseBgPdf(attrs)
	default:
		p.log.Warn("ignoring unknown background type", "type", typ)
	}
}

func (p *Parser) parseBgSolid(attrs []xmlstream.Attr) {
	var pt PageType
	if style, ok := p.getAttribString(attrs, attrStyle); ok {
		pt.Format = PageTypeFormatForString(style)
	}
	pt.Config = p.getAttribStringMandatory(attrs, attrConfig, "", false)

	color := p.getAttribColorMandatory(attrs, ColorWhite, true)

	p.handler.SetBgSolid(pt, color)
}

func (p *Parser) parseBgPixmap(attrs []xmlstream.Attr) {
	domain := p.getAttribDomainMandatory(attrs, attrDomain, DomainAbsolute, true)

	if domain != DomainClone {
		filename := p.getAttribStringMandatory(attrs, attrFilename, "", true)
		p.handler.SetBgPixmap(domain == DomainAttach, filename)
	} else {
		// For cloned backgrounds the filename attribute carries the page
		// number the image is cloned from.
		pageNr := p.getAttribUintMandatory(attrs, attrFilename, 0, true)
		p.handler.SetBgPixmapCloned(pageNr)
	}
}

func (p *Parser) parseBgPdf(attrs []xmlstream.Attr) {
	if !p.pdfFilenameParsed {
		domain := p.getAttribDomainMandatory(attrs, attrDomain, DomainAbsolute, true)
		if domain == DomainClone {
			p.log.Warn("domain clone is invalid for PDF backgrounds, using absolute instead")
			domain = DomainAbsolute
		}

		filename := p.getAttribStringMandatory(attrs, attrFilename, "", true)
		if filename != "" {
			p.pdfFilenameParsed = true
			p.handler.LoadBgPdf(domain == DomainAttach, filename)
		} else {
			p.log.Warn("PDF background filename is empty")
		}
	}

	pageno := p.getAttribUintMandatory(attrs, attrPageNumber, 1, true)
	if pageno > 0 {
		pageno--
	}
	p.handler.SetBgPdf(pageno)
}

func (p *Parser) parseLayerTag() {
	attrs := p.node.Attrs

	var name *string
	if n, ok := p.getAttribString(attrs, attrName); ok {
		name = &n
	}

	p.handler.AddLayer(name)
}

func (p *Parser) parseTimestampTag() {
	// Compatibility: newer files store audio timestamps in the stroke or
	// text attributes instead of a separate element.
	attrs := p.node.Attrs

	if p.tempFilename != "" {
		p.log.Warn("discarding unused audio timestamp element", "filename", p.tempFilename)
	}

	p.tempFilename = p.getAttribStringMandatory(attrs, attrAudioFilename, "", true)
	p.tempTimestamp = p.getAttribUintMandatory(attrs, attrTimestamp, 0, true)
}

func (p *Parser) parseStrokeTag() {
	attrs := p.node.Attrs

	tool := p.getAttribToolMandatory(attrs, attrTool, ToolPen, true)
	color := p.getAttribColorMandatory(attrs, ColorBlack, false)

	// The width attribute holds the nominal width followed, in Xournal and
	// Xournal++ files, by the per-segment pressure values.
	widthStr := p.getAttribStringMandatory(attrs, attrWidth, "1", true)
	width, rest, ok := scanDouble([]byte(widthStr))
	if !ok {
		width = 0
		rest = []byte(widthStr)
	}

	// MrWriter writes pressures in a separate attribute.
	if pressures, ok := p.getAttribString(attrs, attrPressures); ok {
		rest = []byte(pressures)
	}
	for hasMeaningfulRemainder(rest) {
		pressure, next, ok := scanDouble(rest)
		if !ok {
			p.log.Warn("a pressure point could not be parsed as double",
				"remaining", remainderForLog(rest))
			break
		}
		p.pressureBuffer = append(p.pressureBuffer, pressure)
		rest = next
	}

	fill := p.getAttribIntMandatory(attrs, attrFill, -1, false)
	capStyle := p.getAttribCapStyleMandatory(attrs, attrCapStyle, CapRound, false)

	var lineStyle *LineStyle
	if ls, ok := p.getAttribLineStyle(attrs, attrStyle); ok {
		lineStyle = &ls
	}

	p.takeAudioAttributes(attrs, "stroke")

	p.handler.AddStroke(tool, color, width, fill, capStyle, lineStyle,
		p.tempFilename, p.tempTimestamp)

	p.tempFilename = ""
	p.tempTimestamp = 0
}

func (p *Parser) parseStrokeText() error {
	// Null-terminating lets the scanner run off the slice end safely; the
	// reader guarantees the text still lies in its buffer.
	data, err := p.reader.NullTerminate(p.node.Text)
	if err != nil {
		return err
	}

	pointVector := make([]Point, 0, len(p.pressureBuffer))
	for hasMeaningfulRemainder(data) {
		x, rest, okX := scanDouble(data)
		y, rest2, okY := scanDouble(rest)
		if !okX || !okY {
			p.log.Warn("a stroke coordinate could not be parsed as double",
				"remaining", remainderForLog(data))
			break
		}
		pointVector = append(pointVector, Point{X: x, Y: y})
		data = rest2
	}

	p.handler.SetStrokePoints(pointVector, p.pressureBuffer)
	p.pressureBuffer = nil
	return nil
}

func (p *Parser) parseTextTag() {
	attrs := p.node.Attrs

	font := p.getAttribStringMandatory(attrs, attrFont, "Sans", true)
	size := p.getAttribDoubleMandatory(attrs, attrSize, 12, true)
	x := p.getAttribDoubleMandatory(attrs, attrXCoord, 0, true)
	y := p.getAttribDoubleMandatory(attrs, attrYCoord, 0, true)
	color := p.getAttribColorMandatory(attrs, ColorBlack, false)

	p.takeAudioAttributes(attrs, "text")

	p.handler.AddText(font, size, x, y, color, p.tempFilename, p.tempTimestamp)

	p.tempFilename = ""
	p.tempTimestamp = 0
}

func (p *Parser) parseTextText() {
	p.handler.SetTextContents(string(p.node.Text))
}

func (p *Parser) parseImageTag() {
	attrs := p.node.Attrs

	left := p.getAttribDoubleMandatory(attrs, attrLeft, 0, true)
	top := p.getAttribDoubleMandatory(attrs, attrTop, 0, true)
	right := p.getAttribDoubleMandatory(attrs, attrRight, 0, true)
	bottom := p.getAttribDoubleMandatory(attrs, attrBottom, 0, true)

	p.handler.AddImage(left, top, right, bottom)
}

func (p *Parser) parseImageText() {
	p.handler.SetImageData(p.decodeBase64(p.node.Text))
}

func (p *Parser) parseTexImageTag() {
	attrs := p.node.Attrs

	left := p.getAttribDoubleMandatory(attrs, attrLeft, 0, true)
	top := p.getAttribDoubleMandatory(attrs, attrTop, 0, true)
	right := p.getAttribDoubleMandatory(attrs, attrRight, 0, true)
	bottom := p.getAttribDoubleMandatory(attrs, attrBottom, 0, true)

	text := p.getAttribStringMandatory(attrs, attrText, "", true)

	// The legacy "texlength" attribute is ignored.

	p.handler.AddTexImage(left, top, right, bottom, text)
}

func (p *Parser) parseTexImageText() {
	p.handler.SetTexImageData(p.decodeBase64(p.node.Text))
}

func (p *Parser) parseAttachment() {
	attrs := p.node.Attrs

	path := p.getAttribStringMandatory(attrs, attrPath, "", true)

	switch p.top() {
	case TagImage:
		p.handler.SetImageAttachment(path)
	case TagTexImage:
		p.handler.SetTexImageAttachment(path)
	}
}

// takeAudioAttributes applies the audio attribution rule: an element with
// its own non-empty fn attribute wins over a buffered timestamp element.
func (p *Parser) takeAudioAttributes(attrs []xmlstream.Attr, element string) {
	fn, ok := p.getAttribString(attrs, attrAudioFilename)
	if !ok || fn == "" {
		return
	}
	if p.tempFilename != "" {
		p.log.Warn("discarding audio timestamp element, tag contains fn attribute", "tag", element)
	}
	p.tempFilename = fn
	p.tempTimestamp = p.getAttribUintMandatory(attrs, attrTimestamp, 0, true)
}

// hasMeaningfulRemainder reports whether data still holds something other
// than whitespace before the terminating NUL.
func hasMeaningfulRemainder(data []byte) bool {
	for _, c := range data {
		if c == 0 {
			return false
		}
		if !isSpaceByte(c) {
			return true
		}
	}
	return false
}

// remainderForLog trims the NUL terminator for warning output.
func remainderForLog(data []byte) string {
	for i, c := range data {
		if c == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
