package panels

import (
	"fmt"
	"strconv"

	"gridviz/internal/grid"
	"gridviz/internal/pipeline"
	"gridviz/internal/spots"
	"gridviz/pkg/config"
	"gridviz/pkg/geometry"
	"gridviz/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// GridPanel defines grids: manually from two corner spots clicked on the
// canvas, or automatically by detecting spots and fitting a lattice.
type GridPanel struct {
	ws        *pipeline.Workspace
	canvas    *canvas.ImageCanvas
	cfg       *config.Config
	window    fyne.Window
	container fyne.CanvasObject

	currentImage func() string

	nameEntry *widget.Entry
	rowsEntry *widget.Entry
	colsEntry *widget.Entry

	columnOrder *widget.Select
	rowOrder    *widget.Select
	ordering    *widget.Select

	firstCorner    *geometry.Point2D
	oppositeCorner *geometry.Point2D
	cornerLabel    *widget.Label
	capturing      int // 0 = not capturing, 1 = first corner, 2 = opposite

	statusLabel *widget.Label
}

// NewGridPanel creates the grid definition panel.
func NewGridPanel(ws *pipeline.Workspace, cv *canvas.ImageCanvas, cfg *config.Config, currentImage func() string) *GridPanel {
	gp := &GridPanel{
		ws:           ws,
		canvas:       cv,
		cfg:          cfg,
		currentImage: currentImage,
	}

	gp.nameEntry = widget.NewEntry()
	gp.nameEntry.SetText("grid1")

	gp.rowsEntry = widget.NewEntry()
	gp.rowsEntry.SetText(strconv.Itoa(cfg.Grid.Rows))
	gp.colsEntry = widget.NewEntry()
	gp.colsEntry.SetText(strconv.Itoa(cfg.Grid.Columns))

	gp.columnOrder = widget.NewSelect([]string{"Left to right", "Right to left"}, nil)
	gp.columnOrder.SetSelectedIndex(0)
	gp.rowOrder = widget.NewSelect([]string{"Top to bottom", "Bottom to top"}, nil)
	gp.rowOrder.SetSelectedIndex(0)
	gp.ordering = widget.NewSelect([]string{"Rows first", "Columns first"}, nil)
	gp.ordering.SetSelectedIndex(0)

	gp.cornerLabel = widget.NewLabel("No corners set")
	gp.statusLabel = widget.NewLabel("")
	gp.statusLabel.Wrapping = fyne.TextWrapWord

	firstButton := widget.NewButton("Click First Corner Spot", func() {
		gp.capturing = 1
		gp.statusLabel.SetText("Click the center of the first corner spot on the image")
	})
	oppositeButton := widget.NewButton("Click Opposite Corner Spot", func() {
		gp.capturing = 2
		gp.statusLabel.SetText("Click the center of the diagonally opposite corner spot")
	})

	cv.OnLeftClick(gp.handleClick)

	defineButton := widget.NewButton("Define Grid", func() {
		if err := gp.defineGrid(); err != nil {
			dialog.ShowError(err, gp.window)
		}
	})
	autoButton := widget.NewButton("Auto Detect Spots", func() {
		if err := gp.autoDetect(); err != nil {
			dialog.ShowError(err, gp.window)
		}
	})

	form := widget.NewForm(
		widget.NewFormItem("Name", gp.nameEntry),
		widget.NewFormItem("Rows", gp.rowsEntry),
		widget.NewFormItem("Columns", gp.colsEntry),
		widget.NewFormItem("Columns run", gp.columnOrder),
		widget.NewFormItem("Rows run", gp.rowOrder),
		widget.NewFormItem("Numbering", gp.ordering),
	)

	gp.container = container.NewVBox(
		widget.NewCard("Grid Definition", "", form),
		widget.NewCard("Manual", "", container.NewVBox(
			firstButton,
			oppositeButton,
			gp.cornerLabel,
			defineButton,
		)),
		widget.NewCard("Automatic", "", container.NewVBox(
			autoButton,
		)),
		gp.statusLabel,
	)

	return gp
}

// Container returns the panel container.
func (gp *GridPanel) Container() fyne.CanvasObject {
	return gp.container
}

// SetWindow sets the parent window for dialogs.
func (gp *GridPanel) SetWindow(w fyne.Window) {
	gp.window = w
}

// Grids returns all grids currently defined in the workspace.
func (gp *GridPanel) Grids() []*grid.Info {
	var out []*grid.Info
	for _, name := range gp.ws.GridNames() {
		if g, err := gp.ws.Grid(name); err == nil {
			out = append(out, g)
		}
	}
	return out
}

func (gp *GridPanel) handleClick(x, y float64) {
	switch gp.capturing {
	case 1:
		gp.firstCorner = &geometry.Point2D{X: x, Y: y}
	case 2:
		gp.oppositeCorner = &geometry.Point2D{X: x, Y: y}
	default:
		return
	}
	gp.capturing = 0
	gp.updateCornerLabel()
}

func (gp *GridPanel) updateCornerLabel() {
	text := ""
	if gp.firstCorner != nil {
		text += fmt.Sprintf("First: (%.0f, %.0f)", gp.firstCorner.X, gp.firstCorner.Y)
	}
	if gp.oppositeCorner != nil {
		if text != "" {
			text += "  "
		}
		text += fmt.Sprintf("Opposite: (%.0f, %.0f)", gp.oppositeCorner.X, gp.oppositeCorner.Y)
	}
	if text == "" {
		text = "No corners set"
	}
	gp.cornerLabel.SetText(text)
}

// parseDims reads rows/cols from the form.
func (gp *GridPanel) parseDims() (int, int, error) {
	rows, err := strconv.Atoi(gp.rowsEntry.Text)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row count %q", gp.rowsEntry.Text)
	}
	cols, err := strconv.Atoi(gp.colsEntry.Text)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column count %q", gp.colsEntry.Text)
	}
	return rows, cols, nil
}

// applyConventions copies the orientation selections onto a grid.
func (gp *GridPanel) applyConventions(g *grid.Info) {
	g.LeftToRight = gp.columnOrder.SelectedIndex() == 0
	g.TopToBottom = gp.rowOrder.SelectedIndex() == 0
	if gp.ordering.SelectedIndex() == 1 {
		g.Ordering = grid.OrderColumnsFirst
	} else {
		g.Ordering = grid.OrderRowsFirst
	}
}

func (gp *GridPanel) defineGrid() error {
	if gp.firstCorner == nil || gp.oppositeCorner == nil {
		return fmt.Errorf("set both corner spots first")
	}
	rows, cols, err := gp.parseDims()
	if err != nil {
		return err
	}

	g, err := grid.DefineByCorners(gp.nameEntry.Text, rows, cols, *gp.firstCorner, *gp.oppositeCorner)
	if err != nil {
		return err
	}
	gp.applyConventions(g)

	if err := gp.ws.SetGrid(g); err != nil {
		return err
	}
	gp.ws.SetModified(true)
	gp.statusLabel.SetText(fmt.Sprintf("Defined %dx%d grid %q (pitch %.1fx%.1f)",
		g.Rows, g.Cols, g.Name, g.XSpacing, g.YSpacing))
	return nil
}

func (gp *GridPanel) autoDetect() error {
	imageName := gp.currentImage()
	if imageName == "" {
		return fmt.Errorf("load an image first")
	}
	layer, err := gp.ws.Image(imageName)
	if err != nil {
		return err
	}
	rows, cols, err := gp.parseDims()
	if err != nil {
		return err
	}

	params := spots.DefaultParams()
	params.MinDiameter = gp.cfg.Detection.MinDiameter
	params.MaxDiameter = gp.cfg.Detection.MaxDiameter
	params.Threshold = gp.cfg.Detection.Threshold
	params.MaxSaturation = gp.cfg.Detection.MaxSaturation

	result, err := spots.Detect(layer.Image, params)
	if err != nil {
		return err
	}

	g, rms, err := grid.Fit(gp.nameEntry.Text, rows, cols, result.Centers)
	if err != nil {
		return fmt.Errorf("grid fit from %d detected spots: %w", len(result.Centers), err)
	}
	gp.applyConventions(g)

	if err := gp.ws.SetGrid(g); err != nil {
		return err
	}
	gp.ws.SetModified(true)
	gp.statusLabel.SetText(fmt.Sprintf("Fitted grid %q from %d spots (%d rejected), RMS %.1f px",
		g.Name, len(result.Centers), result.Rejected, rms))
	return nil
}
