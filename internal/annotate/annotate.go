// Package annotate builds grid and text overlays for a previously computed
// image. It reads grid geometry and text datasets from the workspace,
// reorders dataset entries through the grid's spot table, and produces
// named overlay sets the display canvas (or the headless renderer) draws.
package annotate

import (
	"fmt"
	"image/color"
	"strconv"

	"gridviz/internal/grid"
	"gridviz/internal/measure"
	"gridviz/internal/pipeline"
	"gridviz/pkg/colorutil"
	"gridviz/pkg/geometry"
	"gridviz/pkg/raster"
)

// MaxDatasets is the number of annotation slots per grid.
const MaxDatasets = 3

// GridOverlayName is the name of the grid-lines overlay.
const GridOverlayName = "grid"

// TextOverlayName returns the overlay name for a dataset.
func TextOverlayName(dataset string) string {
	return "text:" + dataset
}

// Options configures overlay construction.
type Options struct {
	TextScale     int // Bitmap font scale factor
	TickMargin    int // Gap between the grid edge and tick labels, pixels
	LineThickness int // Grid line thickness, pixels

	GridColor     color.RGBA
	DatasetColors [MaxDatasets]color.RGBA
}

// DefaultOptions returns the conventional appearance: white grid lines and
// red, green, blue text in dataset-slot order.
func DefaultOptions() Options {
	return Options{
		TextScale:     2,
		TickMargin:    8,
		LineThickness: 1,
		GridColor:     colorutil.White,
		DatasetColors: [MaxDatasets]color.RGBA{colorutil.Red, colorutil.Green, colorutil.Blue},
	}
}

// TextLabel is one piece of text centered on an image coordinate.
type TextLabel struct {
	Text string
	X, Y float64
}

// OverlaySet is a named group of lines and labels drawn in one color.
// Visibility and color overrides live in the canvas, not here.
type OverlaySet struct {
	Name      string
	Color     color.RGBA
	Lines     []geometry.Segment
	Labels    []TextLabel
	Thickness int
	TextScale int
}

// Build constructs the overlays for one image: the grid lines with row and
// column tick labels, plus one text overlay per supplied dataset (up to
// three). Dataset values are reordered through the grid's spot table and
// placed at cell centers, each slot at a different vertical offset so the
// sets don't collide. Any missing workspace key aborts the whole build;
// the caller reports the error and the pipeline step halts.
func Build(ws *pipeline.Workspace, imageName, gridName string, datasetNames []string, opts Options) ([]*OverlaySet, error) {
	if len(datasetNames) > MaxDatasets {
		return nil, fmt.Errorf("at most %d datasets per grid, got %d", MaxDatasets, len(datasetNames))
	}

	if _, err := ws.Image(imageName); err != nil {
		return nil, err
	}
	g, err := ws.Grid(gridName)
	if err != nil {
		return nil, err
	}

	sets := []*OverlaySet{buildGridOverlay(g, opts)}

	table := g.SpotTable()
	for slot, name := range datasetNames {
		if name == "" {
			continue
		}
		ds, err := ws.Measurements.Get(imageName, name)
		if err != nil {
			return nil, err
		}
		set, err := buildTextOverlay(g, ds, table, slot, opts)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	return sets, nil
}

// buildGridOverlay produces the grid lines and the axis tick labels.
// Column numbers run along the top edge and row numbers along the left
// edge, ordered by the grid's orientation flags.
func buildGridOverlay(g *grid.Info, opts Options) *OverlaySet {
	set := &OverlaySet{
		Name:      GridOverlayName,
		Color:     opts.GridColor,
		Lines:     g.LineSegments(),
		Thickness: opts.LineThickness,
		TextScale: opts.TextScale,
	}

	b := g.Bounds()
	tickY := b.Y - float64(opts.TickMargin)
	for col, n := range g.ColumnLabels() {
		set.Labels = append(set.Labels, TextLabel{
			Text: strconv.Itoa(n),
			X:    g.CellCenter(0, col).X,
			Y:    tickY,
		})
	}
	tickX := b.X - float64(opts.TickMargin)
	for row, n := range g.RowLabels() {
		set.Labels = append(set.Labels, TextLabel{
			Text: strconv.Itoa(n),
			X:    tickX,
			Y:    g.CellCenter(row, 0).Y,
		})
	}
	return set
}

// buildTextOverlay places one dataset's reordered values at cell centers.
// Slot 0 sits one text row above center, slot 1 on center, slot 2 below.
func buildTextOverlay(g *grid.Info, ds *measure.TextDataset, table []int, slot int, opts Options) (*OverlaySet, error) {
	values, err := measure.ReorderBySpotTable(ds.Values, table)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", ds.Name, err)
	}

	rowHeight := float64(raster.TextHeight(opts.TextScale) + 2)
	yOffset := float64(slot-1) * rowHeight

	set := &OverlaySet{
		Name:      TextOverlayName(ds.Name),
		Color:     opts.DatasetColors[slot],
		TextScale: opts.TextScale,
		Labels:    make([]TextLabel, 0, len(values)),
	}
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			c := g.CellCenter(row, col)
			set.Labels = append(set.Labels, TextLabel{
				Text: values[row*g.Cols+col],
				X:    c.X,
				Y:    c.Y + yOffset,
			})
		}
	}
	return set, nil
}
