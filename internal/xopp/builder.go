package xopp

// DocumentBuilder consumes the typed events a Parser emits, in strict
// document order. For a given element, its add event happens before its
// payload events, which happen before its finalize event.
//
// Background selection for a page is exactly one of SetBgSolid,
// SetBgPixmap, SetBgPixmapCloned, or LoadBgPdf followed by SetBgPdf
// (subsequent PDF pages receive only SetBgPdf). SetBgName may precede
// the chosen variant.
type DocumentBuilder interface {
	AddXournal(creator string, fileVersion int)
	AddMrWriter(creator string)
	FinalizeDocument()

	AddPage(width, height float64)
	FinalizePage()

	AddAudioAttachment(filename string)

	SetBgName(name string)
	SetBgSolid(pageType PageType, color Color)
	SetBgPixmap(attach bool, filename string)
	SetBgPixmapCloned(pageNr uint64)
	LoadBgPdf(attach bool, filename string)
	SetBgPdf(pageno uint64)

	AddLayer(name *string)
	FinalizeLayer()

	AddStroke(tool StrokeTool, color Color, width float64, fill int,
		capStyle StrokeCapStyle, lineStyle *LineStyle, audioFilename string, audioTimestamp uint64)
	SetStrokePoints(points []Point, pressures []float64)
	FinalizeStroke()

	AddText(font string, size, x, y float64, color Color, audioFilename string, audioTimestamp uint64)
	SetTextContents(contents string)
	FinalizeText()

	AddImage(left, top, right, bottom float64)
	SetImageData(data []byte)
	SetImageAttachment(path string)
	FinalizeImage()

	AddTexImage(left, top, right, bottom float64, texSource string)
	SetTexImageData(data []byte)
	SetTexImageAttachment(path string)
	FinalizeTexImage()

	// IsParsingComplete reports whether FinalizeDocument has been seen.
	IsParsingComplete() bool
}
