package canvas

import (
	"image/color"

	"gridviz/pkg/geometry"
)

// Overlay is a named set of lines and text labels drawn over the image in
// a single color. Overlays are toggled and recolored by the side panel
// controls without rebuilding their geometry.
type Overlay struct {
	Lines  []geometry.Segment
	Labels []Label

	Color     color.RGBA
	Visible   bool
	Thickness int // Line thickness in image pixels
	TextScale int // Bitmap font scale in image pixels

	// Z orders overlays during compositing; lower draws first.
	Z int
}

// Label is one piece of text centered on an image coordinate.
type Label struct {
	Text string
	X, Y float64
}
