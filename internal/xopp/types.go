package xopp

// Point is one stroke coordinate.
type Point struct {
	X, Y float64
}

// StrokeTool identifies the drawing tool that produced a stroke.
type StrokeTool int

const (
	ToolPen StrokeTool = iota
	ToolEraser
	ToolHighlighter
)

var strokeToolNames = [...]string{"pen", "eraser", "highlighter"}

func (t StrokeTool) String() string {
	if int(t) < len(strokeToolNames) {
		return strokeToolNames[t]
	}
	return "pen"
}

func parseStrokeTool(s string) (StrokeTool, bool) {
	switch s {
	case "pen":
		return ToolPen, true
	case "eraser":
		return ToolEraser, true
	case "highlighter":
		return ToolHighlighter, true
	}
	return ToolPen, false
}

// StrokeCapStyle is the line cap of a stroke.
type StrokeCapStyle int

const (
	CapRound StrokeCapStyle = iota
	CapButt
	CapSquare
)

var capStyleNames = [...]string{"round", "butt", "square"}

func (c StrokeCapStyle) String() string {
	if int(c) < len(capStyleNames) {
		return capStyleNames[c]
	}
	return "round"
}

func parseCapStyle(s string) (StrokeCapStyle, bool) {
	switch s {
	case "round":
		return CapRound, true
	case "butt":
		return CapButt, true
	case "square":
		return CapSquare, true
	}
	return CapRound, false
}

// Domain says where a background resource lives: an absolute path, an
// attachment next to (or inside) the notebook file, or a clone of another
// page's background.
type Domain int

const (
	DomainAbsolute Domain = iota
	DomainAttach
	DomainClone
)

var domainNames = [...]string{"absolute", "attach", "clone"}

func (d Domain) String() string {
	if int(d) < len(domainNames) {
		return domainNames[d]
	}
	return "absolute"
}

func parseDomain(s string) (Domain, bool) {
	switch s {
	case "absolute":
		return DomainAbsolute, true
	case "attach":
		return DomainAttach, true
	case "clone":
		return DomainClone, true
	}
	return DomainAbsolute, false
}

// LineStyle is a dash pattern. An empty Dashes slice means a solid line.
// Dash lengths are multiplied by the stroke width at render time.
type LineStyle struct {
	Dashes []float64
}

var (
	dashPattern    = []float64{6, 2}
	dashDotPattern = []float64{6, 2, 0.5, 2}
	dotPattern     = []float64{0.5, 2}
)

// parseLineStyle understands the predefined style names plus "cust:"
// followed by a space-separated dash list.
func parseLineStyle(s string) (LineStyle, bool) {
	switch s {
	case "plain":
		return LineStyle{}, true
	case "dash":
		return LineStyle{Dashes: append([]float64(nil), dashPattern...)}, true
	case "dashdot":
		return LineStyle{Dashes: append([]float64(nil), dashDotPattern...)}, true
	case "dot":
		return LineStyle{Dashes: append([]float64(nil), dotPattern...)}, true
	}
	if len(s) > 5 && s[:5] == "cust:" {
		var dashes []float64
		rest := []byte(s[5:])
		for {
			v, next, ok := scanDouble(rest)
			if !ok {
				break
			}
			dashes = append(dashes, v)
			rest = next
		}
		if len(dashes) > 0 {
			return LineStyle{Dashes: dashes}, true
		}
	}
	return LineStyle{}, false
}

// PageTypeFormat is the ruling of a solid background.
type PageTypeFormat int

const (
	FormatPlain PageTypeFormat = iota
	FormatLined
	FormatRuled
	FormatGraph
	FormatStaves
	FormatDotted
	FormatIsoDotted
	FormatIsoGraph
	FormatCopy
	FormatPdf
	FormatImage
)

var pageTypeFormatNames = [...]string{
	"plain", "lined", "ruled", "graph", "staves", "dotted",
	"isodotted", "isograph", "copy", "pdf", "image",
}

func (f PageTypeFormat) String() string {
	if int(f) < len(pageTypeFormatNames) {
		return pageTypeFormatNames[f]
	}
	return "plain"
}

// PageTypeFormatForString maps a background style string onto a format.
// Unknown styles fall back to plain.
func PageTypeFormatForString(s string) PageTypeFormat {
	for i, name := range pageTypeFormatNames {
		if s == name {
			return PageTypeFormat(i)
		}
	}
	return FormatPlain
}

// PageType is the ruling plus its free-form configuration string.
type PageType struct {
	Format PageTypeFormat
	Config string
}
