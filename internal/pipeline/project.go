package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gridviz/internal/grid"
	"gridviz/internal/image"
	"gridviz/internal/measure"
)

// ProjectFile represents a grid viewer project file (.gvproj).
type ProjectFile struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Paths relative to the project file.
	ImagePath string `json:"image,omitempty"`
	CSVPath   string `json:"labels_csv,omitempty"`

	Grids []*grid.Info `json:"grids,omitempty"`

	// Dataset names bound to the three annotation slots. Empty = unused.
	DatasetSlots [3]string `json:"dataset_slots"`

	// Overlay appearance, keyed by overlay name.
	Overlays []OverlaySetting `json:"overlays,omitempty"`
}

// OverlaySetting persists per-overlay visibility and color.
type OverlaySetting struct {
	Name    string `json:"name"`
	Color   string `json:"color"` // #RRGGBB
	Visible bool   `json:"visible"`
}

// LoadProject loads a project from the specified path, loading the image
// and CSV datasets it references and installing its grid definitions.
func (w *Workspace) LoadProject(path string) (*ProjectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj ProjectFile
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}

	w.mu.Lock()
	w.ProjectPath = path
	w.Modified = false
	w.mu.Unlock()

	projectDir := filepath.Dir(path)

	var imageName string
	if proj.ImagePath != "" {
		layer, err := image.Load(filepath.Join(projectDir, proj.ImagePath))
		if err != nil {
			return nil, err
		}
		imageName = layer.Name
		w.SetImage(layer)
	}

	for _, g := range proj.Grids {
		if err := w.SetGrid(g); err != nil {
			return nil, err
		}
	}

	if proj.CSVPath != "" && imageName != "" {
		datasets, err := measure.LoadCSV(filepath.Join(projectDir, proj.CSVPath))
		if err != nil {
			return nil, err
		}
		for _, ds := range datasets {
			w.Measurements.Add(imageName, ds)
		}
		w.Emit(EventMeasurementsLoaded, imageName)
	}

	w.Emit(EventProjectLoaded, path)
	return &proj, nil
}

// SaveProject writes the project to the specified path. Image and CSV
// paths are stored relative to the project file when possible.
func (w *Workspace) SaveProject(path string, proj *ProjectFile) error {
	if proj.Version == 0 {
		proj.Version = 1
	}
	if proj.Created.IsZero() {
		proj.Created = time.Now()
	}
	proj.Modified = time.Now()

	projectDir := filepath.Dir(path)
	proj.ImagePath = relativize(projectDir, proj.ImagePath)
	proj.CSVPath = relativize(projectDir, proj.CSVPath)

	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	w.mu.Lock()
	w.ProjectPath = path
	w.Modified = false
	w.mu.Unlock()

	w.Emit(EventProjectSaved, path)
	return nil
}

// relativize converts an absolute path to one relative to dir when it can.
func relativize(dir, path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return rel
}
