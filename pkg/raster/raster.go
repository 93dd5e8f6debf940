// Package raster provides pixel drawing primitives for overlay rendering.
// Both the interactive canvas and the headless annotation renderer draw
// through these helpers so that output is identical in either path.
package raster

import (
	"image"
	"image/color"
)

// Glyph dimensions of the built-in 3x5 bitmap font, in font units.
const (
	GlyphWidth  = 3
	GlyphHeight = 5
	GlyphGap    = 1 // Horizontal gap between glyphs
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and common symbols.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'*': {0b000, 0b101, 0b010, 0b101, 0b000},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	'/': {0b001, 0b001, 0b010, 0b100, 0b100},
	'%': {0b101, 0b001, 0b010, 0b100, 0b101},
	':': {0b000, 0b010, 0b000, 0b010, 0b000},
	'_': {0b000, 0b000, 0b000, 0b000, 0b111},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// charPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func charPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// TextWidth returns the rendered pixel width of text at the given scale.
func TextWidth(text string, scale int) int {
	if scale < 1 {
		scale = 1
	}
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	return (n*(GlyphWidth+GlyphGap) - GlyphGap) * scale
}

// TextHeight returns the rendered pixel height of text at the given scale.
func TextHeight(scale int) int {
	if scale < 1 {
		scale = 1
	}
	return GlyphHeight * scale
}

// DrawText draws text with its top-left corner at (x, y).
// Each font pixel becomes a scale x scale block.
func DrawText(img *image.RGBA, text string, x, y, scale int, col color.RGBA) {
	if scale < 1 {
		scale = 1
	}
	bounds := img.Bounds()
	cursor := x
	for _, ch := range text {
		pattern := charPattern(ch)
		for row := 0; row < GlyphHeight; row++ {
			for bit := 0; bit < GlyphWidth; bit++ {
				if pattern[row]&(1<<(GlyphWidth-1-bit)) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := cursor + bit*scale + dx
						py := y + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							img.Set(px, py, col)
						}
					}
				}
			}
		}
		cursor += (GlyphWidth + GlyphGap) * scale
	}
}

// DrawTextCentered draws text centered on (cx, cy).
func DrawTextCentered(img *image.RGBA, text string, cx, cy, scale int, col color.RGBA) {
	x := cx - TextWidth(text, scale)/2
	y := cy - TextHeight(scale)/2
	DrawText(img, text, x, y, scale, col)
}

// DrawLine draws a line between two points using Bresenham's algorithm.
func DrawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	bounds := img.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					img.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// FillRect fills a rectangle, clipped to the image bounds.
func FillRect(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
				img.Set(x, y, col)
			}
		}
	}
}
