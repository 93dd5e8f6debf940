// Package mainwindow provides the main application window.
package mainwindow

import (
	"path/filepath"

	"gridviz/internal/pipeline"
	"gridviz/internal/version"
	"gridviz/pkg/config"
	"gridviz/ui/canvas"
	"gridviz/ui/panels"
	"gridviz/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	prefKeyLastDir      = "lastDirectory"
	prefKeyLastProject  = "lastProject"
	prefKeyWindowWidth  = "windowWidth"
	prefKeyWindowHeight = "windowHeight"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	ws        *pipeline.Workspace
	prefs     *prefs.Prefs
	canvas    *canvas.ImageCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	project *pipeline.ProjectFile
}

// New creates a new main window.
func New(fyneApp fyne.App, ws *pipeline.Workspace, cfg *config.Config, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Grid Viewer")

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		ws:      ws,
		prefs:   appPrefs,
		project: &pipeline.ProjectFile{Name: "untitled"},
	}

	mw.setupUI(cfg)
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI(cfg *config.Config) {
	mw.canvas = canvas.NewImageCanvas()

	mw.sidePanel = panels.NewSidePanel(mw.ws, mw.canvas, cfg)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar, // top
		nil,     // bottom
		nil,     // left
		nil,     // right
		mw.canvas.Container(),
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.28)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(
		float32(mw.prefs.Float(prefKeyWindowWidth, 1200)),
		float32(mw.prefs.Float(prefKeyWindowHeight, 800)),
	))
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", func() {
		mw.canvas.ZoomOut()
	})
	zoomInBtn := widget.NewButton("+", func() {
		mw.canvas.ZoomIn()
	})
	fitBtn := widget.NewButton("Fit", func() {
		mw.canvas.SetFitToWindow(true)
	})
	actualBtn := widget.NewButton("1:1", func() {
		mw.canvas.SetZoom(1.0)
	})

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.sidePanel.ShowOpenImageDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project...", mw.onSaveProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to Window", func() { mw.canvas.SetFitToWindow(true) }),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(1.0) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for workspace events.
func (mw *MainWindow) setupEventHandlers() {
	mw.ws.On(pipeline.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("Grid Viewer - " + filepath.Base(path))
			mw.updateStatus("Project loaded: " + path)
		}
	})

	mw.ws.On(pipeline.EventImageLoaded, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.updateStatus("Image loaded: " + name)
		}
	})

	mw.ws.On(pipeline.EventGridDefined, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.updateStatus("Grid defined: " + name)
		}
	})

	mw.ws.On(pipeline.EventAnnotationsChanged, func(data interface{}) {
		mw.canvas.Refresh()
		mw.updateStatus("Annotations updated")
	})

	mw.ws.On(pipeline.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if err := mw.OpenProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".gvproj"}))
	if dir := mw.getLastDir(); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

// OpenProject loads a project file and applies it to the UI.
func (mw *MainWindow) OpenProject(path string) error {
	proj, err := mw.ws.LoadProject(path)
	if err != nil {
		return err
	}
	mw.project = proj
	mw.sidePanel.ApplyProject(proj)
	mw.SetTitle("Grid Viewer - " + filepath.Base(path))
	mw.saveLastDir(path)
	mw.prefs.SetString(prefKeyLastProject, path)
	return nil
}

func (mw *MainWindow) onSaveProject() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		mw.sidePanel.CollectProject(mw.project)
		if err := mw.ws.SaveProject(path, mw.project); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.SetTitle("Grid Viewer - " + filepath.Base(path))
		mw.updateStatus("Project saved: " + path)
		mw.saveLastDir(path)
		mw.prefs.SetString(prefKeyLastProject, path)
	}, mw.Window)
	fd.SetFileName("untitled.gvproj")
	if dir := mw.getLastDir(); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		"Grid Viewer "+version.Version+"\n\nGrid overlay and annotation viewer for image analysis pipelines.",
		mw.Window)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// SavePreferences records the window geometry and writes preferences
// to disk.
func (mw *MainWindow) SavePreferences() error {
	size := mw.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefKeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefKeyWindowHeight, float64(size.Height))
	}
	return mw.prefs.Save()
}
