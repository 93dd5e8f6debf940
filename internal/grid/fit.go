package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"gridviz/pkg/geometry"
)

// Fit estimates grid geometry from detected spot centers. Each center is
// assigned to a provisional cell using the bounding box of the centers,
// then pitch and origin are refined by least-squares regression of the
// coordinates against the assigned indexes. Returns the fitted grid and
// the RMS residual in pixels.
func Fit(name string, rows, cols int, centers []geometry.Point2D) (*Info, float64, error) {
	if rows < 1 || cols < 1 {
		return nil, 0, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(centers) < 2 {
		return nil, 0, fmt.Errorf("need at least 2 spot centers to fit a grid, got %d", len(centers))
	}
	if len(centers) > rows*cols {
		return nil, 0, fmt.Errorf("%d spot centers exceed grid capacity %dx%d", len(centers), rows, cols)
	}

	box := geometry.BoundingBox(centers)

	// Provisional pitch from the bounding box. Degenerate axes (single
	// row or column, or all centers collinear) get a unit pitch so the
	// index assignment below collapses to index 0.
	dx := 1.0
	if cols > 1 && box.Width > 0 {
		dx = box.Width / float64(cols-1)
	}
	dy := 1.0
	if rows > 1 && box.Height > 0 {
		dy = box.Height / float64(rows-1)
	}

	colIdx := make([]float64, len(centers))
	rowIdx := make([]float64, len(centers))
	xs := make([]float64, len(centers))
	ys := make([]float64, len(centers))
	for i, c := range centers {
		colIdx[i] = clampIndex((c.X-box.X)/dx, cols)
		rowIdx[i] = clampIndex((c.Y-box.Y)/dy, rows)
		xs[i] = c.X
		ys[i] = c.Y
	}

	g := New(name, rows, cols)
	g.XTopLeft, g.XSpacing = fitAxis(colIdx, xs, box.X, dx)
	g.YTopLeft, g.YSpacing = fitAxis(rowIdx, ys, box.Y, dy)

	if err := g.Validate(); err != nil {
		return nil, 0, err
	}

	// RMS distance from each center to its fitted cell center.
	var sumSq float64
	for i, c := range centers {
		cell := g.CellCenter(int(rowIdx[i]), int(colIdx[i]))
		d := c.Distance(cell)
		sumSq += d * d
	}
	rms := math.Sqrt(sumSq / float64(len(centers)))

	return g, rms, nil
}

// fitAxis regresses coordinates against assigned cell indexes. When the
// indexes carry no variance (single occupied row/column) the provisional
// estimate is kept.
func fitAxis(idx, coord []float64, origin, pitch float64) (float64, float64) {
	if !hasVariance(idx) {
		return coordMean(coord), pitch
	}
	alpha, beta := stat.LinearRegression(idx, coord, nil, false)
	if beta <= 0 {
		return origin, pitch
	}
	return alpha, beta
}

func hasVariance(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return true
		}
	}
	return false
}

func coordMean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// clampIndex rounds a fractional index and clamps it to [0, n-1].
func clampIndex(v float64, n int) float64 {
	i := math.Round(v)
	if i < 0 {
		i = 0
	}
	if i > float64(n-1) {
		i = float64(n - 1)
	}
	return i
}
