package colorutil

import (
	"image/color"
	"math"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want string
	}{
		{Red, "#FF0000"},
		{Green, "#00FF00"},
		{Blue, "#0000FF"},
		{White, "#FFFFFF"},
		{Black, "#000000"},
		{Yellow, "#FFFF00"},
		{Cyan, "#00FFFF"},
		{Magenta, "#FF00FF"},
		{color.RGBA{R: 0x12, G: 0xAB, B: 0x0F, A: 255}, "#12AB0F"},
	}
	for _, tt := range tests {
		got := Hex(tt.c)
		if got != tt.want {
			t.Errorf("Hex(%v) = %q, want %q", tt.c, got, tt.want)
		}
		back, err := ParseHex(got)
		if err != nil {
			t.Errorf("ParseHex(%q) error: %v", got, err)
			continue
		}
		if back != tt.c {
			t.Errorf("ParseHex(%q) = %v, want %v", got, back, tt.c)
		}
	}
}

func TestParseHexInvalid(t *testing.T) {
	for _, s := range []string{"", "FF0000", "#GG0000", "#FFF"} {
		if _, err := ParseHex(s); err == nil {
			t.Errorf("ParseHex(%q) should fail", s)
		}
	}
}

func TestToRGBA(t *testing.T) {
	got := ToRGBA(color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	want := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	if got != want {
		t.Errorf("ToRGBA = %v, want %v", got, want)
	}
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		h, s, v float64
	}{
		{"red", 255, 0, 0, 0, 255, 255},
		{"green", 0, 255, 0, 60, 255, 255},
		{"blue", 0, 0, 255, 120, 255, 255},
		{"white", 255, 255, 255, 0, 0, 255},
		{"black", 0, 0, 0, 0, 0, 0},
		{"gray", 128, 128, 128, 0, 0, 128},
	}
	for _, tt := range tests {
		h, s, v := RGBToHSV(tt.r, tt.g, tt.b)
		if math.Abs(h-tt.h) > 0.5 || math.Abs(s-tt.s) > 0.5 || math.Abs(v-tt.v) > 0.5 {
			t.Errorf("%s: RGBToHSV = (%.1f, %.1f, %.1f), want (%.1f, %.1f, %.1f)",
				tt.name, h, s, v, tt.h, tt.s, tt.v)
		}
	}
}
