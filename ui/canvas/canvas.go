// Package canvas provides an image canvas with pan, zoom, and named
// annotation overlays.
package canvas

import (
	"image/color"
	"math"
	"sort"

	gridimage "gridviz/internal/image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

// ImageCanvas displays the current image with its annotation overlays.
type ImageCanvas struct {
	widget.BaseWidget

	// Base image
	layer *gridimage.Layer

	// Overlays keyed by name (e.g. "grid", "text:gene")
	overlays map[string]*Overlay

	// Display state
	raster *fynecanvas.Raster
	zoom   float64

	// Container
	scroll  *zoomScroll
	content *clickableContent
	imgSize fyne.Size

	// Fit to window
	fitToWindow    bool
	lastScrollSize fyne.Size

	// Callbacks
	onZoomChange func(zoom float64)
	onLeftClick  func(x, y float64) // Left click at image coordinates
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *ImageCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *ImageCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// clickableContent wraps the raster to handle mouse events.
type clickableContent struct {
	widget.BaseWidget
	canvas *ImageCanvas
	raster *fynecanvas.Raster
}

func newClickableContent(ic *ImageCanvas, raster *fynecanvas.Raster) *clickableContent {
	cc := &clickableContent{
		canvas: ic,
		raster: raster,
	}
	cc.ExtendBaseWidget(cc)
	return cc
}

func (cc *clickableContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(cc.raster)
}

func (cc *clickableContent) MinSize() fyne.Size {
	return cc.raster.MinSize()
}

func (cc *clickableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		cc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		cc.canvas.ZoomOut()
	}
}

// Tapped handles left-click events, reporting image coordinates.
func (cc *clickableContent) Tapped(ev *fyne.PointEvent) {
	if cc.canvas.onLeftClick == nil {
		return
	}

	// Reject clicks outside widget bounds; ev.Position should already be
	// relative to the widget.
	size := cc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}

	scrollOffset := cc.canvas.scroll.Offset()
	canvasX := float64(ev.Position.X + scrollOffset.X)
	canvasY := float64(ev.Position.Y + scrollOffset.Y)

	cc.canvas.onLeftClick(canvasX/cc.canvas.zoom, canvasY/cc.canvas.zoom)
}

// NewImageCanvas creates a new image canvas.
func NewImageCanvas() *ImageCanvas {
	ic := &ImageCanvas{
		zoom:     1.0,
		imgSize:  fyne.NewSize(400, 300),
		overlays: make(map[string]*Overlay),
	}
	ic.ExtendBaseWidget(ic)

	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels

	ic.content = newClickableContent(ic, ic.raster)
	ic.scroll = newZoomScroll(ic.content, ic)

	return ic
}

// Container returns the canvas for embedding in a layout.
func (ic *ImageCanvas) Container() fyne.CanvasObject {
	return ic
}

// SetLayer sets the base image layer.
func (ic *ImageCanvas) SetLayer(layer *gridimage.Layer) {
	ic.layer = layer
	ic.updateContentSize()
	ic.Refresh()
}

// Layer returns the current base image layer.
func (ic *ImageCanvas) Layer() *gridimage.Layer {
	return ic.layer
}

// SetOverlay installs or replaces an overlay with the given name.
func (ic *ImageCanvas) SetOverlay(name string, overlay *Overlay) {
	ic.overlays[name] = overlay
	ic.Refresh()
}

// Overlay returns the named overlay, or nil.
func (ic *ImageCanvas) Overlay(name string) *Overlay {
	return ic.overlays[name]
}

// OverlayNames returns the installed overlay names in draw order.
func (ic *ImageCanvas) OverlayNames() []string {
	names := make([]string, 0, len(ic.overlays))
	for name := range ic.overlays {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		zi, zj := ic.overlays[names[i]].Z, ic.overlays[names[j]].Z
		if zi != zj {
			return zi < zj
		}
		return names[i] < names[j]
	})
	return names
}

// SetOverlayVisible toggles an overlay. Unknown names are ignored.
func (ic *ImageCanvas) SetOverlayVisible(name string, visible bool) {
	if overlay, ok := ic.overlays[name]; ok {
		overlay.Visible = visible
		ic.Refresh()
	}
}

// SetOverlayColor recolors an overlay. Unknown names are ignored.
func (ic *ImageCanvas) SetOverlayColor(name string, col color.RGBA) {
	if overlay, ok := ic.overlays[name]; ok {
		overlay.Color = col
		ic.Refresh()
	}
}

// ClearOverlay removes the named overlay.
func (ic *ImageCanvas) ClearOverlay(name string) {
	delete(ic.overlays, name)
	ic.Refresh()
}

// ClearAllOverlays removes every overlay.
func (ic *ImageCanvas) ClearAllOverlays() {
	ic.overlays = make(map[string]*Overlay)
	ic.Refresh()
}

// SetZoom sets the zoom level, clamped to the allowed range.
func (ic *ImageCanvas) SetZoom(zoom float64) {
	zoom = math.Max(minZoom, math.Min(maxZoom, zoom))
	if zoom == ic.zoom {
		return
	}
	ic.zoom = zoom
	ic.fitToWindow = false
	ic.updateContentSize()
	ic.Refresh()
	if ic.onZoomChange != nil {
		ic.onZoomChange(ic.zoom)
	}
}

// Zoom returns the current zoom level.
func (ic *ImageCanvas) Zoom() float64 {
	return ic.zoom
}

// ZoomIn increases zoom by one step.
func (ic *ImageCanvas) ZoomIn() {
	ic.SetZoom(ic.zoom * zoomStep)
}

// ZoomOut decreases zoom by one step.
func (ic *ImageCanvas) ZoomOut() {
	ic.SetZoom(ic.zoom / zoomStep)
}

// FitToWindow zooms so the whole image fits the scroll viewport.
func (ic *ImageCanvas) FitToWindow() {
	ic.fitToSize(ic.scroll.Size())
}

// fitToSize zooms the image to fill the given viewport size.
func (ic *ImageCanvas) fitToSize(size fyne.Size) {
	if ic.layer == nil || size.Width <= 0 || size.Height <= 0 {
		return
	}
	zx := float64(size.Width) / float64(ic.layer.Width())
	zy := float64(size.Height) / float64(ic.layer.Height())
	ic.SetZoom(math.Min(zx, zy))
	ic.fitToWindow = true
}

// SetFitToWindow enables or disables fit-to-window tracking on resize.
func (ic *ImageCanvas) SetFitToWindow(fit bool) {
	ic.fitToWindow = fit
	if fit {
		ic.FitToWindow()
	}
}

// FitToWindowEnabled reports whether fit-to-window tracking is active.
func (ic *ImageCanvas) FitToWindowEnabled() bool {
	return ic.fitToWindow
}

// CheckResize re-fits the image when the viewport size changed while
// fit-to-window is active. Called from the renderer's Layout.
func (ic *ImageCanvas) CheckResize(size fyne.Size) {
	if !ic.fitToWindow || size == ic.lastScrollSize {
		return
	}
	ic.lastScrollSize = size
	ic.fitToSize(size)
}

// OnZoomChange sets the zoom change callback.
func (ic *ImageCanvas) OnZoomChange(callback func(zoom float64)) {
	ic.onZoomChange = callback
}

// OnLeftClick sets the left click callback (image coordinates).
func (ic *ImageCanvas) OnLeftClick(callback func(x, y float64)) {
	ic.onLeftClick = callback
}

// Refresh redraws the canvas.
func (ic *ImageCanvas) Refresh() {
	if ic.raster != nil {
		ic.raster.Refresh()
	}
	ic.BaseWidget.Refresh()
}

func (ic *ImageCanvas) updateContentSize() {
	if ic.layer == nil {
		return
	}
	w := float32(float64(ic.layer.Width()) * ic.zoom)
	h := float32(float64(ic.layer.Height()) * ic.zoom)
	ic.imgSize = fyne.NewSize(w, h)
	ic.content.Resize(ic.imgSize)
	ic.scroll.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &imageCanvasRenderer{canvas: ic}
}

// MinSize implements fyne.Widget.
func (ic *ImageCanvas) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

// imageCanvasRenderer lays out the scroll viewport and feeds size changes
// back to the canvas so fit-to-window tracks window resizes.
type imageCanvasRenderer struct {
	canvas *ImageCanvas
}

func (r *imageCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
	r.canvas.CheckResize(size)
}

func (r *imageCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *imageCanvasRenderer) Refresh() {
	r.canvas.scroll.Refresh()
}

func (r *imageCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *imageCanvasRenderer) Destroy() {}
