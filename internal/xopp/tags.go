package xopp

// TagType enumerates the element names of the .xoj / .xopp wire format.
type TagType int

const (
	TagUnknown TagType = iota
	TagXournal
	TagMrWriter
	TagTitle
	TagPreview
	TagPage
	TagAudio
	TagBackground
	TagLayer
	TagTimestamp
	TagStroke
	TagText
	TagImage
	TagTexImage
	TagAttachment
)

var tagNames = [...]string{
	TagUnknown:    "<unknown>",
	TagXournal:    "xournal",
	TagMrWriter:   "MrWriter",
	TagTitle:      "title",
	TagPreview:    "preview",
	TagPage:       "page",
	TagAudio:      "audio",
	TagBackground: "background",
	TagLayer:      "layer",
	TagTimestamp:  "timestamp",
	TagStroke:     "stroke",
	TagText:       "text",
	TagImage:      "image",
	TagTexImage:   "teximage",
	TagAttachment: "attachment",
}

func (t TagType) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "<unknown>"
}

func tagNameToType(name []byte) TagType {
	switch string(name) {
	case "MrWriter":
		return TagMrWriter
	case "attachment":
		return TagAttachment
	case "audio":
		return TagAudio
	case "background":
		return TagBackground
	case "image":
		return TagImage
	case "layer":
		return TagLayer
	case "page":
		return TagPage
	case "preview":
		return TagPreview
	case "stroke":
		return TagStroke
	case "teximage":
		return TagTexImage
	case "text":
		return TagText
	case "timestamp":
		return TagTimestamp
	case "title":
		return TagTitle
	case "xournal":
		return TagXournal
	}
	return TagUnknown
}

// Attribute names of the wire format.
const (
	attrCreator     = "creator"
	attrVersion     = "version" // also on MrWriter
	attrFileVersion = "fileversion"

	attrWidth  = "width" // page size; on stroke it carries the width/pressure list
	attrHeight = "height"

	attrName       = "name" // background and layer
	attrType       = "type"
	attrStyle      = "style" // background and stroke
	attrConfig     = "config"
	attrColor      = "color" // background, stroke and text
	attrDomain     = "domain"
	attrFilename   = "filename"
	attrPageNumber = "pageno"

	attrAudioFilename = "fn" // timestamp, stroke, text and audio
	attrTimestamp     = "ts"

	attrTool      = "tool"
	attrPressures = "pressures"
	attrFill      = "fill"
	attrCapStyle  = "capStyle"

	attrFont   = "font"
	attrSize   = "size"
	attrXCoord = "x"
	attrYCoord = "y"

	attrLeft   = "left" // image and teximage
	attrTop    = "top"
	attrRight  = "right"
	attrBottom = "bottom"

	attrText = "text" // teximage source

	attrPath = "path" // attachment
)
