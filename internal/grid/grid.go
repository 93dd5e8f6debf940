// Package grid defines the grid geometry shared between the pipeline
// workspace, the spot detector, and the annotation renderer. A grid is a
// logical array of regularly spaced spots overlaid on an image; each spot
// carries a data index assigned by the numbering convention (orientation
// flags plus ordering).
package grid

import (
	"fmt"

	"gridviz/pkg/geometry"
)

// Ordering controls whether spot numbering fills a row before moving to
// the next row, or fills a column first.
type Ordering int

const (
	OrderRowsFirst    Ordering = iota // Number across a row, then advance to the next row
	OrderColumnsFirst                 // Number down a column, then advance to the next column
)

func (o Ordering) String() string {
	if o == OrderColumnsFirst {
		return "columns first"
	}
	return "rows first"
}

// Info holds the geometry of a defined grid.
type Info struct {
	Name string `json:"name"`

	Rows int `json:"rows"`
	Cols int `json:"cols"`

	// Pitch between adjacent spot centers, in pixels.
	XSpacing float64 `json:"x_spacing"`
	YSpacing float64 `json:"y_spacing"`

	// Center of the top-left cell, in image coordinates.
	XTopLeft float64 `json:"x_top_left"`
	YTopLeft float64 `json:"y_top_left"`

	// Numbering convention. LeftToRight means column numbers increase
	// left to right; TopToBottom means row numbers increase downward.
	LeftToRight bool     `json:"left_to_right"`
	TopToBottom bool     `json:"top_to_bottom"`
	Ordering    Ordering `json:"ordering"`
}

// New returns a grid with the conventional numbering (left to right,
// top to bottom, rows first).
func New(name string, rows, cols int) *Info {
	return &Info{
		Name:        name,
		Rows:        rows,
		Cols:        cols,
		LeftToRight: true,
		TopToBottom: true,
		Ordering:    OrderRowsFirst,
	}
}

// Cells returns the total number of grid cells.
func (g *Info) Cells() int {
	return g.Rows * g.Cols
}

// TotalWidth returns the grid width in pixels, edge to edge.
func (g *Info) TotalWidth() float64 {
	return float64(g.Cols) * g.XSpacing
}

// TotalHeight returns the grid height in pixels, edge to edge.
func (g *Info) TotalHeight() float64 {
	return float64(g.Rows) * g.YSpacing
}

// Bounds returns the outer rectangle of the grid. The edges sit half a
// pitch outside the outermost spot centers.
func (g *Info) Bounds() geometry.Rect {
	return geometry.Rect{
		X:      g.XTopLeft - g.XSpacing/2,
		Y:      g.YTopLeft - g.YSpacing/2,
		Width:  g.TotalWidth(),
		Height: g.TotalHeight(),
	}
}

// CellCenter returns the center of the cell at the given display position.
// Row 0 is the top row and column 0 the leftmost column regardless of the
// numbering convention.
func (g *Info) CellCenter(row, col int) geometry.Point2D {
	return geometry.Point2D{
		X: g.XTopLeft + float64(col)*g.XSpacing,
		Y: g.YTopLeft + float64(row)*g.YSpacing,
	}
}

// DataIndex returns the data index of the cell at display position
// (row, col) under the grid's numbering convention.
func (g *Info) DataIndex(row, col int) int {
	r := row
	if !g.TopToBottom {
		r = g.Rows - 1 - row
	}
	c := col
	if !g.LeftToRight {
		c = g.Cols - 1 - col
	}
	if g.Ordering == OrderColumnsFirst {
		return c*g.Rows + r
	}
	return r*g.Cols + c
}

// SpotTable returns the display-position to data-index table: entry
// row*Cols+col holds the data index shown in that cell. The table is a
// permutation of 0..Cells()-1 by construction.
func (g *Info) SpotTable() []int {
	table := make([]int, g.Cells())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			table[row*g.Cols+col] = g.DataIndex(row, col)
		}
	}
	return table
}

// ColumnLabels returns the column numbers in left-to-right display order.
// Numbers are 1-based.
func (g *Info) ColumnLabels() []int {
	labels := make([]int, g.Cols)
	for col := 0; col < g.Cols; col++ {
		if g.LeftToRight {
			labels[col] = col + 1
		} else {
			labels[col] = g.Cols - col
		}
	}
	return labels
}

// RowLabels returns the row numbers in top-to-bottom display order.
// Numbers are 1-based.
func (g *Info) RowLabels() []int {
	labels := make([]int, g.Rows)
	for row := 0; row < g.Rows; row++ {
		if g.TopToBottom {
			labels[row] = row + 1
		} else {
			labels[row] = g.Rows - row
		}
	}
	return labels
}

// LineSegments returns the segments forming the grid lines: Cols+1
// vertical and Rows+1 horizontal lines on the cell boundaries.
func (g *Info) LineSegments() []geometry.Segment {
	b := g.Bounds()
	segs := make([]geometry.Segment, 0, g.Cols+g.Rows+2)
	for i := 0; i <= g.Cols; i++ {
		x := b.X + float64(i)*g.XSpacing
		segs = append(segs, geometry.Segment{X1: x, Y1: b.Y, X2: x, Y2: b.Y + b.Height})
	}
	for i := 0; i <= g.Rows; i++ {
		y := b.Y + float64(i)*g.YSpacing
		segs = append(segs, geometry.Segment{X1: b.X, Y1: y, X2: b.X + b.Width, Y2: y})
	}
	return segs
}

// Validate checks the grid parameters and confirms the spot table is a
// permutation of 0..Cells()-1.
func (g *Info) Validate() error {
	if g.Rows < 1 || g.Cols < 1 {
		return fmt.Errorf("grid %q: dimensions must be positive, got %dx%d", g.Name, g.Rows, g.Cols)
	}
	if g.XSpacing <= 0 || g.YSpacing <= 0 {
		return fmt.Errorf("grid %q: spacing must be positive, got %.2fx%.2f", g.Name, g.XSpacing, g.YSpacing)
	}
	seen := make([]bool, g.Cells())
	for _, idx := range g.SpotTable() {
		if idx < 0 || idx >= g.Cells() {
			return fmt.Errorf("grid %q: spot index %d out of range", g.Name, idx)
		}
		if seen[idx] {
			return fmt.Errorf("grid %q: spot index %d assigned twice", g.Name, idx)
		}
		seen[idx] = true
	}
	return nil
}

// DefineByCorners builds a grid from the centers of two diagonally
// opposite corner spots, the way a user marks a plate manually. The two
// points may be given in any order. A single row or column has no pitch
// along its short axis; that axis reuses the other axis's pitch (1 for a
// lone cell).
func DefineByCorners(name string, rows, cols int, a, b geometry.Point2D) (*Info, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	g := New(name, rows, cols)
	if cols > 1 {
		g.XSpacing = (maxX - minX) / float64(cols-1)
	}
	if rows > 1 {
		g.YSpacing = (maxY - minY) / float64(rows-1)
	}
	if cols <= 1 {
		g.XSpacing = g.YSpacing
		if g.XSpacing <= 0 {
			g.XSpacing = 1
		}
	}
	if rows <= 1 {
		g.YSpacing = g.XSpacing
		if g.YSpacing <= 0 {
			g.YSpacing = 1
		}
	}
	g.XTopLeft = minX
	g.YTopLeft = minY

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
