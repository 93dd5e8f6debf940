// Package pipeline provides the shared workspace that pipeline steps and
// UI panels read from and write to, plus project persistence and events.
package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"gridviz/internal/grid"
	"gridviz/internal/image"
	"gridviz/internal/measure"
)

// EventType identifies different workspace events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventImageLoaded
	EventGridDefined
	EventMeasurementsLoaded
	EventAnnotationsChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Workspace holds the shared pipeline state: named images, named grids,
// and the measurement store. Earlier pipeline steps populate it; the
// annotation renderer only reads from it.
type Workspace struct {
	mu sync.RWMutex

	ProjectPath string
	Modified    bool

	images map[string]*image.Layer
	grids  map[string]*grid.Info

	Measurements *measure.Store

	listeners map[EventType][]EventListener
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		images:       make(map[string]*image.Layer),
		grids:        make(map[string]*grid.Info),
		Measurements: measure.NewStore(),
		listeners:    make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (w *Workspace) On(event EventType, listener EventListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners[event] = append(w.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (w *Workspace) Emit(event EventType, data interface{}) {
	w.mu.RLock()
	listeners := w.listeners[event]
	w.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (w *Workspace) SetModified(modified bool) {
	w.mu.Lock()
	w.Modified = modified
	w.mu.Unlock()
	w.Emit(EventModified, modified)
}

// SetImage stores an image layer under its name.
func (w *Workspace) SetImage(layer *image.Layer) {
	w.mu.Lock()
	w.images[layer.Name] = layer
	w.mu.Unlock()
	w.Emit(EventImageLoaded, layer.Name)
}

// Image returns the named image layer. A missing name is an error that
// callers propagate to the UI; nothing here recovers from it.
func (w *Workspace) Image(name string) (*image.Layer, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	layer, ok := w.images[name]
	if !ok {
		return nil, fmt.Errorf("image %q not in workspace", name)
	}
	return layer, nil
}

// ImageNames returns the loaded image names, sorted.
func (w *Workspace) ImageNames() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.images))
	for name := range w.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetGrid stores a grid definition under its name.
func (w *Workspace) SetGrid(g *grid.Info) error {
	if err := g.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	w.grids[g.Name] = g
	w.mu.Unlock()
	w.Emit(EventGridDefined, g.Name)
	return nil
}

// Grid returns the named grid definition.
func (w *Workspace) Grid(name string) (*grid.Info, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	g, ok := w.grids[name]
	if !ok {
		return nil, fmt.Errorf("grid %q not in workspace", name)
	}
	return g, nil
}

// GridNames returns the defined grid names, sorted.
func (w *Workspace) GridNames() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.grids))
	for name := range w.grids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
