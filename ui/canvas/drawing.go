package canvas

import (
	"image"

	"gridviz/pkg/raster"
)

// draw produces the composited output for the Fyne raster: the base image
// scaled by the current zoom, then the visible overlays in Z order.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	if ic.layer == nil || ic.layer.Image == nil {
		return output
	}

	ic.compositeBase(output)

	for _, name := range ic.OverlayNames() {
		overlay := ic.overlays[name]
		if overlay == nil || !overlay.Visible {
			continue
		}
		ic.drawOverlay(output, overlay)
	}

	return output
}

// compositeBase scales the base image into the output with nearest-neighbor
// sampling. Opacity below 1.0 dims the image so overlays stand out.
func (ic *ImageCanvas) compositeBase(output *image.RGBA) {
	src := ic.layer.Image
	srcBounds := src.Bounds()
	outBounds := output.Bounds()

	opacity := ic.layer.Opacity
	if !ic.layer.Visible {
		return
	}

	for y := outBounds.Min.Y; y < outBounds.Max.Y; y++ {
		srcY := srcBounds.Min.Y + int(float64(y)/ic.zoom)
		if srcY < srcBounds.Min.Y || srcY >= srcBounds.Max.Y {
			continue
		}
		for x := outBounds.Min.X; x < outBounds.Max.X; x++ {
			srcX := srcBounds.Min.X + int(float64(x)/ic.zoom)
			if srcX < srcBounds.Min.X || srcX >= srcBounds.Max.X {
				continue
			}
			r, g, b, a := src.At(srcX, srcY).RGBA()
			if opacity < 1.0 {
				r = uint32(float64(r) * opacity)
				g = uint32(float64(g) * opacity)
				b = uint32(float64(b) * opacity)
			}
			i := output.PixOffset(x, y)
			output.Pix[i+0] = uint8(r >> 8)
			output.Pix[i+1] = uint8(g >> 8)
			output.Pix[i+2] = uint8(b >> 8)
			output.Pix[i+3] = uint8(a >> 8)
		}
	}
}

// drawOverlay draws one overlay scaled by the current zoom.
func (ic *ImageCanvas) drawOverlay(output *image.RGBA, overlay *Overlay) {
	thickness := overlay.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	// Keep lines visible when zoomed in.
	if ic.zoom > 2 {
		thickness = int(float64(thickness) * ic.zoom / 2)
	}

	for _, line := range overlay.Lines {
		raster.DrawLine(output,
			int(line.X1*ic.zoom), int(line.Y1*ic.zoom),
			int(line.X2*ic.zoom), int(line.Y2*ic.zoom),
			overlay.Color, thickness)
	}

	scale := overlay.TextScale
	if scale <= 0 {
		scale = 1
	}
	if ic.zoom > 1 {
		scale = int(float64(scale) * ic.zoom)
	}
	for _, label := range overlay.Labels {
		if label.Text == "" {
			continue
		}
		raster.DrawTextCentered(output, label.Text,
			int(label.X*ic.zoom), int(label.Y*ic.zoom),
			scale, overlay.Color)
	}
}
