package xopp

import "strconv"

// Color is an RGBA colour packed as 0xRRGGBBAA.
type Color uint32

const (
	ColorBlack Color = 0x000000ff
	ColorWhite Color = 0xffffffff
)

// predefinedColors are the stroke colour names written by older files.
var predefinedColors = []struct {
	name  string
	color Color
}{
	{"black", 0x000000ff},
	{"blue", 0x3333ccff},
	{"red", 0xff0000ff},
	{"green", 0x008000ff},
	{"gray", 0x808080ff},
	{"lightblue", 0x00c0ffff},
	{"lightgreen", 0x00ff00ff},
	{"magenta", 0xff00ffff},
	{"orange", 0xff8000ff},
	{"yellow", 0xffff00ff},
	{"white", 0xffffffff},
}

// backgroundColors are name translations specific to solid backgrounds;
// the paper tints do not match the stroke palette.
var backgroundColors = []struct {
	name  string
	color Color
}{
	{"blue", 0xa0e8ffff},
	{"pink", 0xffc0d4ff},
	{"green", 0x80ffc0ff},
	{"orange", 0xffc080ff},
	{"yellow", 0xffff80ff},
	{"white", 0xffffffff},
}

// parseColorCode parses "#RRGGBB" or "#RRGGBBAA" hex colour codes.
func parseColorCode(s string) (Color, bool) {
	if len(s) == 0 || s[0] != '#' {
		return 0, false
	}
	hex := s[1:]
	switch len(hex) {
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, false
		}
		return Color(v<<8 | 0xff), true
	case 8:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, false
		}
		return Color(v), true
	}
	return 0, false
}

func parsePredefinedColor(s string) (Color, bool) {
	for _, p := range predefinedColors {
		if p.name == s {
			return p.color, true
		}
	}
	return 0, false
}

func parseBgColor(s string) (Color, bool) {
	for _, p := range backgroundColors {
		if p.name == s {
			return p.color, true
		}
	}
	return 0, false
}
