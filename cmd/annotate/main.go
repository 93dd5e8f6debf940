// Command annotate renders grid and text annotations onto an image without
// starting the GUI. It is useful for batch runs and for checking detection
// parameters from the command line.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"strings"

	"gridviz/internal/annotate"
	"gridviz/internal/grid"
	gridimage "gridviz/internal/image"
	"gridviz/internal/measure"
	"gridviz/internal/pipeline"
	"gridviz/internal/spots"
	"gridviz/pkg/config"
	"gridviz/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to spot image (TIFF, PNG, or JPEG)")
	csvPath := flag.String("csv", "", "Path to CSV with one column per text dataset")
	outPath := flag.String("out", "", "Output PNG path")
	rows := flag.Int("rows", 0, "Number of grid rows (0 uses config default)")
	cols := flag.Int("cols", 0, "Number of grid columns (0 uses config default)")
	corner1 := flag.String("corner1", "", "First corner cell center as x,y")
	corner2 := flag.String("corner2", "", "Opposite corner cell center as x,y")
	auto := flag.Bool("auto", false, "Fit the grid from detected spots instead of corners")
	datasets := flag.String("datasets", "", "Comma-separated dataset names to draw (max 3; default: first columns of the CSV)")
	flag.Parse()

	if *imagePath == "" || *outPath == "" {
		fmt.Println("Usage: annotate -image <path> -out <path.png> [-csv <path>] [-rows N -cols N] [-corner1 x,y -corner2 x,y | -auto]")
		os.Exit(1)
	}

	cfg := config.LoadDefault()
	if *rows == 0 {
		*rows = cfg.Grid.Rows
	}
	if *cols == 0 {
		*cols = cfg.Grid.Columns
	}

	layer, err := gridimage.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s: %dx%d pixels\n", layer.Name, layer.Width(), layer.Height())

	ws := pipeline.NewWorkspace()
	ws.SetImage(layer)

	g, err := defineGrid(layer, cfg, *rows, *cols, *corner1, *corner2, *auto)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Grid definition failed: %v\n", err)
		os.Exit(1)
	}
	if err := ws.SetGrid(g); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid grid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Grid %q: %dx%d, pitch %.1fx%.1f, first cell (%.1f, %.1f)\n",
		g.Name, g.Rows, g.Cols, g.XSpacing, g.YSpacing, g.XTopLeft, g.YTopLeft)

	var names []string
	if *csvPath != "" {
		loaded, err := measure.LoadCSV(*csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load CSV: %v\n", err)
			os.Exit(1)
		}
		for _, ds := range loaded {
			ws.Measurements.Add(layer.Name, ds)
		}
		names = pickDatasets(loaded, *datasets)
		fmt.Printf("Loaded %d datasets, drawing %v\n", len(loaded), names)
	}

	opts := annotate.DefaultOptions()
	opts.TextScale = cfg.Render.TextScale
	opts.TickMargin = cfg.Render.TickMargin
	opts.LineThickness = cfg.Render.LineThickness

	sets, err := annotate.Build(ws, layer.Name, g.Name, names, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Annotation failed: %v\n", err)
		os.Exit(1)
	}

	out := annotate.Render(layer.Image, sets)

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode PNG: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outPath)
}

// defineGrid builds the grid either from two corner cell centers or by
// detecting spots and fitting.
func defineGrid(layer *gridimage.Layer, cfg *config.Config, rows, cols int, corner1, corner2 string, auto bool) (*grid.Info, error) {
	if auto {
		params := spots.DefaultParams()
		params.MinDiameter = cfg.Detection.MinDiameter
		params.MaxDiameter = cfg.Detection.MaxDiameter
		params.Threshold = cfg.Detection.Threshold
		params.MaxSaturation = cfg.Detection.MaxSaturation

		result, err := spots.Detect(layer.Image, params)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Detected %d spots (%d rejected)\n", len(result.Centers), result.Rejected)

		g, rms, err := grid.Fit("grid1", rows, cols, result.Centers)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Fit RMS residual: %.2f px\n", rms)
		return g, nil
	}

	a, err := parsePoint(corner1)
	if err != nil {
		return nil, fmt.Errorf("corner1: %w", err)
	}
	b, err := parsePoint(corner2)
	if err != nil {
		return nil, fmt.Errorf("corner2: %w", err)
	}
	return grid.DefineByCorners("grid1", rows, cols, a, b)
}

func parsePoint(s string) (geometry.Point2D, error) {
	var p geometry.Point2D
	if s == "" {
		return p, fmt.Errorf("missing coordinate (expected x,y)")
	}
	if _, err := fmt.Sscanf(s, "%f,%f", &p.X, &p.Y); err != nil {
		return p, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	return p, nil
}

// pickDatasets selects up to three dataset names, either the requested ones
// or the first CSV columns.
func pickDatasets(loaded []*measure.TextDataset, requested string) []string {
	if requested != "" {
		var names []string
		for _, n := range strings.Split(requested, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		return names
	}
	var names []string
	for _, ds := range loaded {
		if len(names) == annotate.MaxDatasets {
			break
		}
		names = append(names, ds.Name)
	}
	return names
}
