package annotate

import (
	"fmt"
	goimage "image"
	"testing"

	"gridviz/internal/grid"
	"gridviz/internal/image"
	"gridviz/internal/measure"
	"gridviz/internal/pipeline"
)

func testWorkspace(t *testing.T, rows, cols int) *pipeline.Workspace {
	t.Helper()
	w := pipeline.NewWorkspace()

	layer := image.NewLayer()
	layer.Name = "plate1"
	layer.Image = goimage.NewRGBA(goimage.Rect(0, 0, 400, 300))
	w.SetImage(layer)

	g := grid.New("g1", rows, cols)
	g.XSpacing = 40
	g.YSpacing = 30
	g.XTopLeft = 60
	g.YTopLeft = 50
	if err := w.SetGrid(g); err != nil {
		t.Fatalf("SetGrid failed: %v", err)
	}
	return w
}

func sequentialDataset(name string, n int) *measure.TextDataset {
	ds := &measure.TextDataset{Name: name}
	for i := 0; i < n; i++ {
		ds.Values = append(ds.Values, fmt.Sprintf("%s%d", name, i))
	}
	return ds
}

// TestBuildLabelCounts verifies each dataset yields exactly rows*cols
// labels and the grid overlay carries the tick labels and lines.
func TestBuildLabelCounts(t *testing.T) {
	const rows, cols = 3, 4
	w := testWorkspace(t, rows, cols)
	w.Measurements.Add("plate1", sequentialDataset("a", rows*cols))
	w.Measurements.Add("plate1", sequentialDataset("b", rows*cols))

	sets, err := Build(w, "plate1", "g1", []string{"a", "b"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(sets) != 3 {
		t.Fatalf("expected grid + 2 text overlays, got %d", len(sets))
	}

	gridSet := sets[0]
	if gridSet.Name != GridOverlayName {
		t.Errorf("first overlay is %q, want %q", gridSet.Name, GridOverlayName)
	}
	if len(gridSet.Lines) != (rows+1)+(cols+1) {
		t.Errorf("expected %d grid lines, got %d", (rows+1)+(cols+1), len(gridSet.Lines))
	}
	if len(gridSet.Labels) != rows+cols {
		t.Errorf("expected %d tick labels, got %d", rows+cols, len(gridSet.Labels))
	}

	for _, set := range sets[1:] {
		if len(set.Labels) != rows*cols {
			t.Errorf("overlay %q has %d labels, want %d", set.Name, len(set.Labels), rows*cols)
		}
	}
}

// TestBuildReorderBijection checks every dataset value appears exactly once
// across the rendered labels, for each numbering convention.
func TestBuildReorderBijection(t *testing.T) {
	const rows, cols = 2, 3
	for _, leftToRight := range []bool{true, false} {
		for _, ordering := range []grid.Ordering{grid.OrderRowsFirst, grid.OrderColumnsFirst} {
			w := testWorkspace(t, rows, cols)
			g, _ := w.Grid("g1")
			g.LeftToRight = leftToRight
			g.Ordering = ordering

			w.Measurements.Add("plate1", sequentialDataset("v", rows*cols))

			sets, err := Build(w, "plate1", "g1", []string{"v"}, DefaultOptions())
			if err != nil {
				t.Fatalf("Build failed (ltr=%v %v): %v", leftToRight, ordering, err)
			}

			counts := make(map[string]int)
			for _, label := range sets[1].Labels {
				counts[label.Text]++
			}
			for i := 0; i < rows*cols; i++ {
				key := fmt.Sprintf("v%d", i)
				if counts[key] != 1 {
					t.Errorf("value %s appears %d times (ltr=%v %v)", key, counts[key], leftToRight, ordering)
				}
			}
		}
	}
}

// TestBuildSlotOffsets verifies the three dataset slots land on distinct
// vertical positions at the same cell.
func TestBuildSlotOffsets(t *testing.T) {
	const rows, cols = 2, 2
	w := testWorkspace(t, rows, cols)
	for _, name := range []string{"a", "b", "c"} {
		w.Measurements.Add("plate1", sequentialDataset(name, rows*cols))
	}

	sets, err := Build(w, "plate1", "g1", []string{"a", "b", "c"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(sets) != 4 {
		t.Fatalf("expected 4 overlays, got %d", len(sets))
	}

	y0 := sets[1].Labels[0].Y
	y1 := sets[2].Labels[0].Y
	y2 := sets[3].Labels[0].Y
	if !(y0 < y1 && y1 < y2) {
		t.Errorf("slot offsets not ascending: %.1f, %.1f, %.1f", y0, y1, y2)
	}

	opts := DefaultOptions()
	if sets[1].Color != opts.DatasetColors[0] ||
		sets[2].Color != opts.DatasetColors[1] ||
		sets[3].Color != opts.DatasetColors[2] {
		t.Error("dataset slot colors not applied in order")
	}
}

// TestBuildMissingKeys verifies lookup failures abort the build.
func TestBuildMissingKeys(t *testing.T) {
	w := testWorkspace(t, 2, 2)
	w.Measurements.Add("plate1", sequentialDataset("a", 4))

	if _, err := Build(w, "nosuch", "g1", nil, DefaultOptions()); err == nil {
		t.Error("expected error for missing image")
	}
	if _, err := Build(w, "plate1", "nosuch", nil, DefaultOptions()); err == nil {
		t.Error("expected error for missing grid")
	}
	if _, err := Build(w, "plate1", "g1", []string{"nosuch"}, DefaultOptions()); err == nil {
		t.Error("expected error for missing dataset")
	}
	if _, err := Build(w, "plate1", "g1", []string{"a", "a", "a", "a"}, DefaultOptions()); err == nil {
		t.Error("expected error for too many datasets")
	}

	// Dataset length must match the cell count.
	w.Measurements.Add("plate1", sequentialDataset("short", 3))
	if _, err := Build(w, "plate1", "g1", []string{"short"}, DefaultOptions()); err == nil {
		t.Error("expected error for dataset/grid size mismatch")
	}
}

// TestBuildSkipsEmptySlots verifies empty slot names are allowed and skipped.
func TestBuildSkipsEmptySlots(t *testing.T) {
	w := testWorkspace(t, 2, 2)
	w.Measurements.Add("plate1", sequentialDataset("a", 4))

	sets, err := Build(w, "plate1", "g1", []string{"", "a", ""}, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected grid + 1 text overlay, got %d", len(sets))
	}
	if sets[1].Name != TextOverlayName("a") {
		t.Errorf("unexpected overlay name %q", sets[1].Name)
	}
	// Slot 1 is the centered slot.
	if sets[1].Color != DefaultOptions().DatasetColors[1] {
		t.Error("skipped slot shifted the color assignment")
	}
}

// TestRenderChangesPixels renders overlays and checks grid-line pixels
// take the overlay color.
func TestRenderChangesPixels(t *testing.T) {
	w := testWorkspace(t, 2, 2)
	w.Measurements.Add("plate1", sequentialDataset("a", 4))

	sets, err := Build(w, "plate1", "g1", []string{"a"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	layer, _ := w.Image("plate1")
	out := Render(layer.Image, sets)

	if out.Bounds() != layer.Image.Bounds() {
		t.Errorf("render changed image bounds: %v", out.Bounds())
	}

	// A point on the top-left corner of the grid must be a grid line.
	g, _ := w.Grid("g1")
	b := g.Bounds()
	r, gr, bl, _ := out.At(int(b.X), int(b.Y)).RGBA()
	if r>>8 != 255 || gr>>8 != 255 || bl>>8 != 255 {
		t.Errorf("expected white grid pixel, got %d,%d,%d", r>>8, gr>>8, bl>>8)
	}
}
