package raster

import (
	"image"
	"image/color"
	"testing"
)

var testColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

func countPixels(img *image.RGBA, col color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == col {
				n++
			}
		}
	}
	return n
}

func TestTextWidth(t *testing.T) {
	tests := []struct {
		text  string
		scale int
		want  int
	}{
		{"", 1, 0},
		{"1", 1, 3},
		{"12", 1, 7},
		{"12", 2, 14},
		{"123", 1, 11},
	}
	for _, tt := range tests {
		if got := TextWidth(tt.text, tt.scale); got != tt.want {
			t.Errorf("TextWidth(%q, %d) = %d, want %d", tt.text, tt.scale, got, tt.want)
		}
	}
}

func TestDrawTextStaysInBox(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	DrawText(img, "42", 10, 20, 2, testColor)

	if countPixels(img, testColor) == 0 {
		t.Fatal("no pixels drawn")
	}
	w := TextWidth("42", 2)
	h := TextHeight(2)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != testColor {
				continue
			}
			if x < 10 || x >= 10+w || y < 20 || y >= 20+h {
				t.Fatalf("pixel (%d, %d) outside text box %dx%d at (10, 20)", x, y, w, h)
			}
		}
	}
}

func TestDrawTextClipsAtEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	// Must not panic when the text extends past every edge.
	DrawText(img, "999", -5, -3, 3, testColor)
	DrawText(img, "999", 8, 8, 3, testColor)
}

func TestDrawTextCentered(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	DrawTextCentered(img, "8", 50, 50, 1, testColor)

	// Glyph 8 lights all four corners of its 3x5 cell.
	minX, minY, maxX, maxY := 100, 100, 0, 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if img.RGBAAt(x, y) == testColor {
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	if cx < 48 || cx > 52 || cy < 48 || cy > 52 {
		t.Errorf("glyph center (%d, %d), want near (50, 50)", cx, cy)
	}
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		wantMin        int
	}{
		{"horizontal", 5, 10, 25, 10, 21},
		{"vertical", 10, 5, 10, 25, 21},
		{"diagonal", 0, 0, 20, 20, 21},
		{"single point", 7, 7, 7, 7, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 40, 40))
			DrawLine(img, tt.x1, tt.y1, tt.x2, tt.y2, testColor, 1)
			if got := countPixels(img, testColor); got < tt.wantMin {
				t.Errorf("drew %d pixels, want at least %d", got, tt.wantMin)
			}
		})
	}
}

func TestDrawLineThickness(t *testing.T) {
	thin := image.NewRGBA(image.Rect(0, 0, 40, 40))
	thick := image.NewRGBA(image.Rect(0, 0, 40, 40))
	DrawLine(thin, 5, 20, 35, 20, testColor, 1)
	DrawLine(thick, 5, 20, 35, 20, testColor, 3)
	if countPixels(thick, testColor) <= countPixels(thin, testColor) {
		t.Error("thickness 3 should cover more pixels than thickness 1")
	}
}

func TestFillRectClips(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	FillRect(img, -5, -5, 4, 4, testColor)
	if got := countPixels(img, testColor); got != 25 {
		t.Errorf("filled %d pixels, want 25", got)
	}
}
