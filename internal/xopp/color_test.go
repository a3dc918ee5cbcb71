package xopp

import "testing"

func TestParseColorCode(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#ffffffff", ColorWhite, true},
		{"#000000ff", ColorBlack, true},
		{"#3333cc", 0x3333ccff, true}, // six digits imply opaque
		{"#12345678", 0x12345678, true},
		{"ffffffff", 0, false}, // missing '#'
		{"#fff", 0, false},
		{"#gggggggg", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseColorCode(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseColorCode(%q) = (%#08x, %t), want (%#08x, %t)",
				tt.in, uint32(got), ok, uint32(tt.want), tt.ok)
		}
	}
}

func TestParsePredefinedColor(t *testing.T) {
	if c, ok := parsePredefinedColor("magenta"); !ok || c != 0xff00ffff {
		t.Errorf("expected magenta, got (%#08x, %t)", uint32(c), ok)
	}
	if _, ok := parsePredefinedColor("mauve"); ok {
		t.Error("expected unknown name to fail")
	}
}

func TestParseBgColorTranslations(t *testing.T) {
	// Paper tints differ from the stroke palette of the same name.
	if c, ok := parseBgColor("blue"); !ok || c != 0xa0e8ffff {
		t.Errorf("expected pale blue tint, got (%#08x, %t)", uint32(c), ok)
	}
	if c, ok := parseBgColor("pink"); !ok || c != 0xffc0d4ff {
		t.Errorf("expected pink tint, got (%#08x, %t)", uint32(c), ok)
	}
	if _, ok := parseBgColor("black"); ok {
		t.Error("black is not a background tint")
	}
}
