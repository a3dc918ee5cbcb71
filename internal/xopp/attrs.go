package xopp

import (
	"encoding/base64"
	"strconv"

	"github.com/inkgest/inkgest/internal/xmlstream"
)

// attrValue finds an attribute by name in the ordered pair list.
func attrValue(attrs []xmlstream.Attr, name string) ([]byte, bool) {
	for _, a := range attrs {
		if string(a.Name) == name {
			return a.Value, true
		}
	}
	return nil, false
}

// scanDouble parses a leading, locale-independent (dot-separated) double
// from data, skipping leading whitespace. A NUL byte terminates the scan.
// Returns the value, the remaining bytes and whether a value was parsed.
func scanDouble(data []byte) (float64, []byte, bool) {
	i := 0
	for i < len(data) && isSpaceByte(data[i]) {
		i++
	}
	start := i
	if i < len(data) && (data[i] == '+' || data[i] == '-') {
		i++
	}
	digits := 0
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		i++
		digits++
	}
	if i < len(data) && data[i] == '.' {
		i++
		for i < len(data) && data[i] >= '0' && data[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, data, false
	}
	if i < len(data) && (data[i] == 'e' || data[i] == 'E') {
		j := i + 1
		if j < len(data) && (data[j] == '+' || data[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(data) && data[j] >= '0' && data[j] <= '9' {
			j++
			expDigits++
		}
		if expDigits > 0 {
			i = j
		}
	}
	v, err := strconv.ParseFloat(string(data[start:i]), 64)
	if err != nil {
		return 0, data, false
	}
	return v, data[i:], true
}

// scanInt parses a leading signed integer, skipping leading whitespace.
func scanInt(data []byte) (int64, []byte, bool) {
	i := 0
	for i < len(data) && isSpaceByte(data[i]) {
		i++
	}
	start := i
	if i < len(data) && (data[i] == '+' || data[i] == '-') {
		i++
	}
	digits := 0
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		i++
		digits++
	}
	if digits == 0 {
		return 0, data, false
	}
	v, err := strconv.ParseInt(string(data[start:i]), 10, 64)
	if err != nil {
		return 0, data, false
	}
	return v, data[i:], true
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// getAttribString returns the attribute value as a string copy.
func (p *Parser) getAttribString(attrs []xmlstream.Attr, name string) (string, bool) {
	v, ok := attrValue(attrs, name)
	if !ok {
		return "", false
	}
	return string(v), true
}

func (p *Parser) getAttribStringMandatory(attrs []xmlstream.Attr, name, def string, warn bool) string {
	if v, ok := p.getAttribString(attrs, name); ok {
		return v
	}
	if warn {
		p.warnMissingAttr(name, def)
	}
	return def
}

func (p *Parser) getAttribDouble(attrs []xmlstream.Attr, name string) (float64, bool) {
	raw, ok := attrValue(attrs, name)
	if !ok {
		return 0, false
	}
	v, rest, parsed := scanDouble(raw)
	if !parsed {
		p.warnUnparsableAttr(name, "double", raw)
		return 0, false
	}
	if len(rest) > 0 {
		p.warnPartialAttr(name)
	}
	return v, true
}

func (p *Parser) getAttribDoubleMandatory(attrs []xmlstream.Attr, name string, def float64, warn bool) float64 {
	if v, ok := p.getAttribDouble(attrs, name); ok {
		return v
	}
	if warn {
		p.warnMissingAttr(name, strconv.FormatFloat(def, 'g', -1, 64))
	}
	return def
}

func (p *Parser) getAttribInt(attrs []xmlstream.Attr, name string) (int, bool) {
	raw, ok := attrValue(attrs, name)
	if !ok {
		return 0, false
	}
	v, rest, parsed := scanInt(raw)
	if !parsed {
		p.warnUnparsableAttr(name, "int", raw)
		return 0, false
	}
	if len(rest) > 0 {
		p.warnPartialAttr(name)
	}
	return int(v), true
}

func (p *Parser) getAttribIntMandatory(attrs []xmlstream.Attr, name string, def int, warn bool) int {
	if v, ok := p.getAttribInt(attrs, name); ok {
		return v
	}
	if warn {
		p.warnMissingAttr(name, strconv.Itoa(def))
	}
	return def
}

func (p *Parser) getAttribUint(attrs []xmlstream.Attr, name string) (uint64, bool) {
	raw, ok := attrValue(attrs, name)
	if !ok {
		return 0, false
	}
	v, rest, parsed := scanInt(raw)
	if !parsed || v < 0 {
		p.warnUnparsableAttr(name, "size", raw)
		return 0, false
	}
	if len(rest) > 0 {
		p.warnPartialAttr(name)
	}
	return uint64(v), true
}

func (p *Parser) getAttribUintMandatory(attrs []xmlstream.Attr, name string, def uint64, warn bool) uint64 {
	if v, ok := p.getAttribUint(attrs, name); ok {
		return v
	}
	if warn {
		p.warnMissingAttr(name, strconv.FormatUint(def, 10))
	}
	return def
}

func (p *Parser) getAttribTool(attrs []xmlstream.Attr, name string) (StrokeTool, bool) {
	raw, ok := attrValue(attrs, name)
	if !ok {
		return ToolPen, false
	}
	tool, parsed := parseStrokeTool(string(raw))
	if !parsed {
		p.warnUnparsableAttr(name, "stroke tool", raw)
		return ToolPen, false
	}
	return tool, true
}

func (p *Parser) getAttribToolMandatory(attrs []xmlstream.Attr, name string, def StrokeTool, warn bool) StrokeTool {
	if v, ok := p.getAttribTool(attrs, name); ok {
		return v
	}
	if warn {
		p.warnMissingAttr(name, def.String())
	}
	return def
}

func (p *Parser) getAttribCapStyle(attrs []xmlstream.Attr, name string) (StrokeCapStyle, bool) {
	raw, ok := attrValue(attrs, name)
	if !ok {
		return CapRound, false
	}
	cs, parsed := parseCapStyle(string(raw))
	if !parsed {
		p.warnUnparsableAttr(name, "cap style", raw)
		return CapRound, false
	}
	return cs, true
}

func (p *Parser) getAttribCapStyleMandatory(attrs []xmlstream.Attr, name string, def StrokeCapStyle, warn bool) StrokeCapStyle {
	if v, ok := p.getAttribCapStyle(attrs, name); ok {
		return v
	}
	if warn {
		p.warnMissingAttr(name, def.String())
	}
	return def
}

func (p *Parser) getAttribDomain(attrs []xmlstream.Attr, name string) (Domain, bool) {
	raw, ok := attrValue(attrs, name)
	if !ok {
		return DomainAbsolute, false
	}
	d, parsed := parseDomain(string(raw))
	if !parsed {
		p.warnUnparsableAttr(name, "domain", raw)
		return DomainAbsolute, false
	}
	return d, true
}

func (p *Parser) getAttribDomainMandatory(attrs []xmlstream.Attr, name string, def Domain, warn bool) Domain {
	if v, ok := p.getAttribDomain(attrs, name); ok {
		return v
	}
	if warn {
		p.warnMissingAttr(name, def.String())
	}
	return def
}

func (p *Parser) getAttribLineStyle(attrs []xmlstream.Attr, name string) (LineStyle, bool) {
	raw, ok := attrValue(attrs, name)
	if !ok {
		return LineStyle{}, false
	}
	ls, parsed := parseLineStyle(string(raw))
	if !parsed {
		p.warnUnparsableAttr(name, "line style", raw)
		return LineStyle{}, false
	}
	return ls, true
}

// getAttribColorMandatory resolves the "color" attribute: hex code first,
// then (for backgrounds) the paper-tint translations, then predefined
// names.
func (p *Parser) getAttribColorMandatory(attrs []xmlstream.Attr, def Color, bg bool) Color {
	raw, ok := attrValue(attrs, attrColor)
	if !ok {
		p.warnMissingAttr(attrColor, "#"+strconv.FormatUint(uint64(def), 16))
		return def
	}
	s := string(raw)
	if c, ok := parseColorCode(s); ok {
		return c
	}
	// Background tints shadow the identically named stroke colours.
	if bg {
		if c, ok := parseBgColor(s); ok {
			return c
		}
	}
	if c, ok := parsePredefinedColor(s); ok {
		return c
	}
	p.warnUnparsableAttr(attrColor, "color", raw)
	return def
}

// decodeBase64 decodes a base64 payload, tolerating embedded whitespace.
func (p *Parser) decodeBase64(data []byte) []byte {
	compact := make([]byte, 0, len(data))
	for _, c := range data {
		if !isSpaceByte(c) {
			compact = append(compact, c)
		}
	}
	out := make([]byte, base64.StdEncoding.DecodedLen(len(compact)))
	n, err := base64.StdEncoding.Decode(out, compact)
	if err != nil {
		p.log.Warn("discarding malformed base64 payload", "error", err)
		return nil
	}
	return out[:n]
}

func (p *Parser) warnMissingAttr(name, def string) {
	p.log.Warn("mandatory attribute not found, using default",
		"attribute", name, "default", def)
}

func (p *Parser) warnPartialAttr(name string) {
	p.log.Warn("attribute was not entirely parsed", "attribute", name)
}

func (p *Parser) warnUnparsableAttr(name, typ string, value []byte) {
	p.log.Warn("attribute could not be parsed",
		"attribute", name, "type", typ, "value", string(value))
}
