package canvas

import (
	goimage "image"
	"image/color"
	"math"
	"testing"

	gridimage "gridviz/internal/image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

var testRed = color.RGBA{R: 255, A: 255}

func testCanvas(t *testing.T) *ImageCanvas {
	t.Helper()
	test.NewApp()

	ic := NewImageCanvas()
	layer := gridimage.NewLayer()
	layer.Name = "plate1"
	layer.Image = goimage.NewRGBA(goimage.Rect(0, 0, 400, 300))
	ic.SetLayer(layer)
	return ic
}

// TestFitToWindowTracksResize verifies that, while fit-to-window is
// active, viewport size changes arriving through the renderer re-fit
// the zoom.
func TestFitToWindowTracksResize(t *testing.T) {
	ic := testCanvas(t)
	ic.SetFitToWindow(true)

	ic.CheckResize(fyne.NewSize(200, 150))
	if math.Abs(ic.Zoom()-0.5) > 1e-9 {
		t.Fatalf("zoom after 200x150 viewport = %.3f, want 0.5", ic.Zoom())
	}

	ic.CheckResize(fyne.NewSize(400, 300))
	if math.Abs(ic.Zoom()-1.0) > 1e-9 {
		t.Fatalf("zoom after 400x300 viewport = %.3f, want 1.0", ic.Zoom())
	}
	if !ic.FitToWindowEnabled() {
		t.Error("fit-to-window should stay enabled across resizes")
	}

	// The same size again is a no-op.
	ic.CheckResize(fyne.NewSize(400, 300))
	if math.Abs(ic.Zoom()-1.0) > 1e-9 {
		t.Errorf("zoom changed on repeated size: %.3f", ic.Zoom())
	}
}

// TestManualZoomStopsFitTracking verifies an explicit zoom disables
// fit-to-window so later resizes leave the zoom alone.
func TestManualZoomStopsFitTracking(t *testing.T) {
	ic := testCanvas(t)
	ic.SetFitToWindow(true)
	ic.CheckResize(fyne.NewSize(200, 150))

	ic.SetZoom(2.0)
	if ic.FitToWindowEnabled() {
		t.Fatal("manual zoom should disable fit-to-window")
	}

	ic.CheckResize(fyne.NewSize(100, 75))
	if math.Abs(ic.Zoom()-2.0) > 1e-9 {
		t.Errorf("zoom after resize = %.3f, want 2.0 (tracking off)", ic.Zoom())
	}
}

// TestRendererLayoutDrivesCheckResize verifies the renderer feeds layout
// sizes into the resize tracking.
func TestRendererLayoutDrivesCheckResize(t *testing.T) {
	ic := testCanvas(t)
	ic.SetFitToWindow(true)

	renderer := ic.CreateRenderer()
	renderer.Layout(fyne.NewSize(200, 150))
	if math.Abs(ic.Zoom()-0.5) > 1e-9 {
		t.Fatalf("zoom after layout = %.3f, want 0.5", ic.Zoom())
	}

	renderer.Layout(fyne.NewSize(800, 600))
	if math.Abs(ic.Zoom()-2.0) > 1e-9 {
		t.Errorf("zoom after second layout = %.3f, want 2.0", ic.Zoom())
	}
}

func TestOverlayVisibilityAndColor(t *testing.T) {
	ic := testCanvas(t)
	ic.SetOverlay("grid", &Overlay{Visible: true})

	ic.SetOverlayVisible("grid", false)
	if ic.Overlay("grid").Visible {
		t.Error("overlay should be hidden")
	}

	ic.SetOverlayColor("grid", testRed)
	if ic.Overlay("grid").Color != testRed {
		t.Error("overlay color not applied")
	}

	// Unknown names are ignored, not created.
	ic.SetOverlayVisible("nope", true)
	if ic.Overlay("nope") != nil {
		t.Error("unknown overlay should stay absent")
	}
}
