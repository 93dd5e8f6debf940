package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gridviz/internal/grid"
	"gridviz/internal/image"
)

// TestWorkspaceLookups verifies the by-name lookups and their errors.
func TestWorkspaceLookups(t *testing.T) {
	w := NewWorkspace()

	if _, err := w.Image("plate1"); err == nil {
		t.Error("expected error for missing image")
	}
	if _, err := w.Grid("g1"); err == nil {
		t.Error("expected error for missing grid")
	}

	layer := image.NewLayer()
	layer.Name = "plate1"
	w.SetImage(layer)

	got, err := w.Image("plate1")
	if err != nil {
		t.Fatalf("Image lookup failed: %v", err)
	}
	if got != layer {
		t.Error("Image returned a different layer")
	}

	g := grid.New("g1", 2, 3)
	g.XSpacing = 10
	g.YSpacing = 10
	if err := w.SetGrid(g); err != nil {
		t.Fatalf("SetGrid failed: %v", err)
	}
	if _, err := w.Grid("g1"); err != nil {
		t.Errorf("Grid lookup failed: %v", err)
	}

	// Invalid grids must be rejected before they reach the map.
	bad := grid.New("bad", 0, 3)
	if err := w.SetGrid(bad); err == nil {
		t.Error("expected error for invalid grid")
	}
	if _, err := w.Grid("bad"); err == nil {
		t.Error("invalid grid should not be stored")
	}
}

// TestWorkspaceEvents verifies listeners fire with the event payload.
func TestWorkspaceEvents(t *testing.T) {
	w := NewWorkspace()

	var gotName string
	w.On(EventGridDefined, func(data interface{}) {
		gotName, _ = data.(string)
	})

	g := grid.New("g1", 2, 2)
	g.XSpacing = 5
	g.YSpacing = 5
	if err := w.SetGrid(g); err != nil {
		t.Fatalf("SetGrid failed: %v", err)
	}

	if gotName != "g1" {
		t.Errorf("listener got %q, want %q", gotName, "g1")
	}

	var modified bool
	w.On(EventModified, func(data interface{}) {
		modified, _ = data.(bool)
	})
	w.SetModified(true)
	if !modified {
		t.Error("modified event not delivered")
	}
}

// TestProjectSaveLoad round-trips a project with a grid and CSV datasets.
func TestProjectSaveLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "labels.csv")
	if err := os.WriteFile(csvPath, []byte("gene\na\nb\nc\nd\n"), 0o644); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}

	g := grid.New("plate", 2, 2)
	g.XSpacing = 10
	g.YSpacing = 10
	g.XTopLeft = 5
	g.YTopLeft = 5

	proj := &ProjectFile{
		Name:    "test project",
		CSVPath: csvPath,
		Grids:   []*grid.Info{g},
	}
	proj.DatasetSlots[0] = "gene"
	proj.Overlays = []OverlaySetting{{Name: "grid", Color: "#FFFFFF", Visible: true}}

	w := NewWorkspace()
	projPath := filepath.Join(dir, "test.gvproj")
	if err := w.SaveProject(projPath, proj); err != nil {
		t.Fatalf("SaveProject failed: %v", err)
	}

	// CSV path must be stored relative to the project file.
	data, err := os.ReadFile(projPath)
	if err != nil {
		t.Fatalf("failed to read project file: %v", err)
	}
	var onDisk ProjectFile
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("project file is not valid JSON: %v", err)
	}
	if filepath.IsAbs(onDisk.CSVPath) {
		t.Errorf("CSV path not relativized: %s", onDisk.CSVPath)
	}

	// Loading without an image skips the CSV (datasets are per-image),
	// but grids and slots must come back.
	w2 := NewWorkspace()
	loaded, err := w2.LoadProject(projPath)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if loaded.DatasetSlots[0] != "gene" {
		t.Errorf("dataset slot lost: %v", loaded.DatasetSlots)
	}
	if _, err := w2.Grid("plate"); err != nil {
		t.Errorf("grid not restored: %v", err)
	}
	if len(loaded.Overlays) != 1 || loaded.Overlays[0].Name != "grid" {
		t.Errorf("overlay settings lost: %v", loaded.Overlays)
	}
}
