// Package panels provides UI panels for the application.
package panels

import (
	"fmt"
	"path/filepath"

	gridimage "gridviz/internal/image"
	"gridviz/internal/pipeline"
	"gridviz/pkg/config"
	"gridviz/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	ws        *pipeline.Workspace
	canvas    *canvas.ImageCanvas
	container *container.AppTabs

	imagePanel    *ImagePanel
	gridPanel     *GridPanel
	annotatePanel *AnnotatePanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(ws *pipeline.Workspace, cv *canvas.ImageCanvas, cfg *config.Config) *SidePanel {
	sp := &SidePanel{
		ws:     ws,
		canvas: cv,
	}

	sp.imagePanel = NewImagePanel(ws, cv)
	sp.gridPanel = NewGridPanel(ws, cv, cfg, sp.imagePanel.CurrentImage)
	sp.annotatePanel = NewAnnotatePanel(ws, cv, cfg, sp.imagePanel.CurrentImage)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Image", sp.imagePanel.Container()),
		container.NewTabItem("Grid", sp.gridPanel.Container()),
		container.NewTabItem("Annotate", sp.annotatePanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.imagePanel.SetWindow(w)
	sp.gridPanel.SetWindow(w)
	sp.annotatePanel.SetWindow(w)
}

// ShowOpenImageDialog opens the image file dialog, for the File menu.
func (sp *SidePanel) ShowOpenImageDialog() {
	sp.imagePanel.showOpenDialog()
}

// ApplyProject restores panel selections from a loaded project.
func (sp *SidePanel) ApplyProject(proj *pipeline.ProjectFile) {
	sp.annotatePanel.ApplySlots(proj.DatasetSlots)
	sp.annotatePanel.ApplyOverlaySettings(proj.Overlays)
}

// CollectProject stores panel selections into a project about to be saved.
func (sp *SidePanel) CollectProject(proj *pipeline.ProjectFile) {
	proj.DatasetSlots = sp.annotatePanel.Slots()
	proj.Overlays = sp.annotatePanel.OverlaySettings()
	proj.Grids = sp.gridPanel.Grids()
	if layer := sp.canvas.Layer(); layer != nil {
		proj.ImagePath = layer.Path
	}
	proj.CSVPath = sp.annotatePanel.CSVPath()
}

// ImagePanel handles image loading and base layer appearance.
type ImagePanel struct {
	ws        *pipeline.Workspace
	canvas    *canvas.ImageCanvas
	window    fyne.Window
	container fyne.CanvasObject

	currentImage string

	infoLabel    *widget.Label
	visibleCheck *widget.Check
	opacity      *widget.Slider
}

// NewImagePanel creates the image panel.
func NewImagePanel(ws *pipeline.Workspace, cv *canvas.ImageCanvas) *ImagePanel {
	ip := &ImagePanel{
		ws:     ws,
		canvas: cv,
	}

	ip.infoLabel = widget.NewLabel("No image loaded")
	ip.infoLabel.Wrapping = fyne.TextWrapWord

	openButton := widget.NewButton("Open Image...", func() {
		ip.showOpenDialog()
	})

	ip.visibleCheck = widget.NewCheck("Show Image", func(checked bool) {
		if layer := cv.Layer(); layer != nil {
			layer.Visible = checked
			cv.Refresh()
		}
	})
	ip.visibleCheck.SetChecked(true)

	ip.opacity = widget.NewSlider(0, 100)
	ip.opacity.SetValue(100)
	ip.opacity.OnChanged = func(val float64) {
		if layer := cv.Layer(); layer != nil {
			layer.Opacity = val / 100.0
			cv.Refresh()
		}
	}

	ip.container = container.NewVBox(
		widget.NewCard("Image", "", container.NewVBox(
			openButton,
			ip.infoLabel,
			ip.visibleCheck,
			widget.NewLabel("Opacity:"),
			ip.opacity,
		)),
	)

	// Images can also arrive via project load; show whatever enters
	// the workspace.
	ws.On(pipeline.EventImageLoaded, func(data interface{}) {
		name, ok := data.(string)
		if !ok {
			return
		}
		layer, err := ws.Image(name)
		if err != nil {
			return
		}
		ip.showLayer(layer)
	})

	return ip
}

// Container returns the panel container.
func (ip *ImagePanel) Container() fyne.CanvasObject {
	return ip.container
}

// SetWindow sets the parent window for dialogs.
func (ip *ImagePanel) SetWindow(w fyne.Window) {
	ip.window = w
}

// CurrentImage returns the workspace name of the displayed image.
func (ip *ImagePanel) CurrentImage() string {
	return ip.currentImage
}

// LoadImage loads an image file into the workspace. The image-loaded
// event installs it on the canvas.
func (ip *ImagePanel) LoadImage(path string) error {
	layer, err := gridimage.Load(path)
	if err != nil {
		return err
	}
	ip.ws.SetImage(layer)
	ip.ws.SetModified(true)
	return nil
}

// showLayer puts a layer on the canvas and updates the info display.
func (ip *ImagePanel) showLayer(layer *gridimage.Layer) {
	ip.currentImage = layer.Name
	ip.canvas.ClearAllOverlays()
	ip.canvas.SetLayer(layer)
	ip.canvas.SetFitToWindow(true)
	ip.visibleCheck.SetChecked(layer.Visible)
	ip.opacity.SetValue(layer.Opacity * 100)

	info := fmt.Sprintf("%s\n%dx%d pixels", filepath.Base(layer.Path), layer.Width(), layer.Height())
	if layer.DPI > 0 {
		info += fmt.Sprintf("\nDPI: %.0f", layer.DPI)
	}
	ip.infoLabel.SetText(info)
}

func (ip *ImagePanel) showOpenDialog() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if err := ip.LoadImage(path); err != nil {
			dialog.ShowError(err, ip.window)
		}
	}, ip.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}))
	fd.Show()
}
