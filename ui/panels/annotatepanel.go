package panels

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gridviz/internal/annotate"
	"gridviz/internal/measure"
	"gridviz/internal/pipeline"
	"gridviz/pkg/colorutil"
	"gridviz/pkg/config"
	"gridviz/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// AnnotatePanel binds up to three text datasets to a grid, triggers
// overlay construction, and exposes the per-overlay visibility toggles
// and color pickers.
type AnnotatePanel struct {
	ws        *pipeline.Workspace
	canvas    *canvas.ImageCanvas
	cfg       *config.Config
	window    fyne.Window
	container fyne.CanvasObject

	currentImage func() string

	gridSelect  *widget.Select
	slotSelects [annotate.MaxDatasets]*widget.Select
	loadLabel   *widget.Label
	csvPath     string

	// Overlay controls, rebuilt after each annotate run.
	controlsBox *fyne.Container

	// Settings restored from a project, applied on the next annotate.
	pendingSettings map[string]pipeline.OverlaySetting
}

// NewAnnotatePanel creates the annotation panel.
func NewAnnotatePanel(ws *pipeline.Workspace, cv *canvas.ImageCanvas, cfg *config.Config, currentImage func() string) *AnnotatePanel {
	ap := &AnnotatePanel{
		ws:              ws,
		canvas:          cv,
		cfg:             cfg,
		currentImage:    currentImage,
		pendingSettings: make(map[string]pipeline.OverlaySetting),
	}

	ap.gridSelect = widget.NewSelect(nil, nil)
	ws.On(pipeline.EventGridDefined, func(data interface{}) {
		ap.gridSelect.Options = ws.GridNames()
		if name, ok := data.(string); ok {
			ap.gridSelect.SetSelected(name)
		}
		ap.gridSelect.Refresh()
	})

	for i := range ap.slotSelects {
		ap.slotSelects[i] = widget.NewSelect(nil, nil)
	}
	ws.On(pipeline.EventMeasurementsLoaded, func(interface{}) {
		ap.refreshDatasetOptions()
	})

	ap.loadLabel = widget.NewLabel("No labels loaded")
	ap.loadLabel.Wrapping = fyne.TextWrapWord

	loadButton := widget.NewButton("Load Labels CSV...", func() {
		ap.showLoadDialog()
	})

	annotateButton := widget.NewButton("Annotate", func() {
		if err := ap.runAnnotate(); err != nil {
			dialog.ShowError(err, ap.window)
		}
	})

	ap.controlsBox = container.NewVBox()

	slotForm := widget.NewForm(
		widget.NewFormItem("Grid", ap.gridSelect),
		widget.NewFormItem("Dataset 1", ap.slotSelects[0]),
		widget.NewFormItem("Dataset 2", ap.slotSelects[1]),
		widget.NewFormItem("Dataset 3", ap.slotSelects[2]),
	)

	ap.container = container.NewVBox(
		widget.NewCard("Text Datasets", "", container.NewVBox(
			loadButton,
			ap.loadLabel,
			slotForm,
			annotateButton,
		)),
		widget.NewCard("Overlays", "", ap.controlsBox),
	)

	return ap
}

// Container returns the panel container.
func (ap *AnnotatePanel) Container() fyne.CanvasObject {
	return ap.container
}

// SetWindow sets the parent window for dialogs.
func (ap *AnnotatePanel) SetWindow(w fyne.Window) {
	ap.window = w
}

// CSVPath returns the last loaded CSV path, for project persistence.
func (ap *AnnotatePanel) CSVPath() string {
	return ap.csvPath
}

// Slots returns the dataset names bound to the three annotation slots.
func (ap *AnnotatePanel) Slots() [annotate.MaxDatasets]string {
	var slots [annotate.MaxDatasets]string
	for i, sel := range ap.slotSelects {
		if sel.Selected != "(none)" {
			slots[i] = sel.Selected
		}
	}
	return slots
}

// ApplySlots restores dataset slot selections from a project.
func (ap *AnnotatePanel) ApplySlots(slots [annotate.MaxDatasets]string) {
	ap.refreshDatasetOptions()
	for i, name := range slots {
		if name != "" {
			ap.slotSelects[i].SetSelected(name)
		}
	}
}

// OverlaySettings captures the current overlay colors and visibility.
func (ap *AnnotatePanel) OverlaySettings() []pipeline.OverlaySetting {
	var settings []pipeline.OverlaySetting
	for _, name := range ap.canvas.OverlayNames() {
		overlay := ap.canvas.Overlay(name)
		settings = append(settings, pipeline.OverlaySetting{
			Name:    name,
			Color:   colorutil.Hex(overlay.Color),
			Visible: overlay.Visible,
		})
	}
	return settings
}

// ApplyOverlaySettings stores project overlay settings to apply after the
// next annotate run builds the overlays.
func (ap *AnnotatePanel) ApplyOverlaySettings(settings []pipeline.OverlaySetting) {
	ap.pendingSettings = make(map[string]pipeline.OverlaySetting)
	for _, s := range settings {
		ap.pendingSettings[s.Name] = s
	}
}

func (ap *AnnotatePanel) refreshDatasetOptions() {
	options := append([]string{"(none)"}, ap.ws.Measurements.Names(ap.currentImage())...)
	for _, sel := range ap.slotSelects {
		sel.Options = options
		sel.Refresh()
	}
	ap.loadLabel.SetText(fmt.Sprintf("%d datasets available", len(options)-1))
}

func (ap *AnnotatePanel) showLoadDialog() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if err := ap.LoadCSV(path); err != nil {
			dialog.ShowError(err, ap.window)
		}
	}, ap.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	fd.Show()
}

// LoadCSV loads datasets from a CSV file into the measurement store for
// the current image.
func (ap *AnnotatePanel) LoadCSV(path string) error {
	imageName := ap.currentImage()
	if imageName == "" {
		return fmt.Errorf("load an image before loading labels")
	}
	datasets, err := measure.LoadCSV(path)
	if err != nil {
		return err
	}
	for _, ds := range datasets {
		ap.ws.Measurements.Add(imageName, ds)
	}
	ap.csvPath = path
	ap.loadLabel.SetText(fmt.Sprintf("Loaded %d datasets from %s", len(datasets), filepath.Base(path)))
	ap.ws.Emit(pipeline.EventMeasurementsLoaded, imageName)
	ap.ws.SetModified(true)
	return nil
}

// runAnnotate builds the overlays for the current selections and installs
// them on the canvas with their interactive controls.
func (ap *AnnotatePanel) runAnnotate() error {
	imageName := ap.currentImage()
	if imageName == "" {
		return fmt.Errorf("no image loaded")
	}
	gridName := ap.gridSelect.Selected
	if gridName == "" {
		return fmt.Errorf("no grid selected")
	}

	slots := ap.Slots()

	opts := annotate.DefaultOptions()
	opts.TextScale = ap.cfg.Render.TextScale
	opts.TickMargin = ap.cfg.Render.TickMargin
	opts.LineThickness = ap.cfg.Render.LineThickness

	sets, err := annotate.Build(ap.ws, imageName, gridName, slots[:], opts)
	if err != nil {
		return err
	}

	ap.canvas.ClearAllOverlays()
	for z, set := range sets {
		overlay := &canvas.Overlay{
			Lines:     set.Lines,
			Color:     set.Color,
			Visible:   true,
			Thickness: set.Thickness,
			TextScale: set.TextScale,
			Z:         z,
		}
		for _, label := range set.Labels {
			overlay.Labels = append(overlay.Labels, canvas.Label{Text: label.Text, X: label.X, Y: label.Y})
		}
		if s, ok := ap.pendingSettings[set.Name]; ok {
			overlay.Visible = s.Visible
			if col, err := colorutil.ParseHex(s.Color); err == nil {
				overlay.Color = col
			}
		}
		ap.canvas.SetOverlay(set.Name, overlay)
	}
	ap.pendingSettings = make(map[string]pipeline.OverlaySetting)

	ap.rebuildControls()
	ap.ws.Emit(pipeline.EventAnnotationsChanged, gridName)
	ap.ws.SetModified(true)
	return nil
}

// rebuildControls recreates the show/hide toggle and color picker row for
// every installed overlay.
func (ap *AnnotatePanel) rebuildControls() {
	ap.controlsBox.Objects = nil
	for _, name := range ap.canvas.OverlayNames() {
		overlayName := name
		overlay := ap.canvas.Overlay(overlayName)

		check := widget.NewCheck("Show "+overlayName, func(checked bool) {
			ap.canvas.SetOverlayVisible(overlayName, checked)
		})
		check.SetChecked(overlay.Visible)

		colorButton := widget.NewButton("Color...", func() {
			picker := dialog.NewColorPicker("Overlay Color", overlayName, func(c color.Color) {
				ap.canvas.SetOverlayColor(overlayName, colorutil.ToRGBA(c))
			}, ap.window)
			picker.Advanced = true
			picker.Show()
		})

		ap.controlsBox.Add(container.NewBorder(nil, nil, nil, colorButton, check))
	}
	ap.controlsBox.Refresh()
}
