package annotate

import (
	"image"
	"image/draw"

	"gridviz/pkg/raster"
)

// Render composites overlay sets onto a copy of the base image. This is
// the headless path used by the annotate command and by tests; the
// interactive canvas draws the same sets itself so it can apply zoom and
// per-overlay visibility.
func Render(base image.Image, sets []*OverlaySet) *image.RGBA {
	bounds := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), base, bounds.Min, draw.Src)

	for _, set := range sets {
		drawSet(out, set)
	}
	return out
}

func drawSet(out *image.RGBA, set *OverlaySet) {
	for _, line := range set.Lines {
		raster.DrawLine(out,
			int(line.X1), int(line.Y1), int(line.X2), int(line.Y2),
			set.Color, set.Thickness)
	}
	for _, label := range set.Labels {
		if label.Text == "" {
			continue
		}
		raster.DrawTextCentered(out, label.Text, int(label.X), int(label.Y), set.TextScale, set.Color)
	}
}
