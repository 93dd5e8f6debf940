// Package main provides the entry point for the Grid Viewer application.
package main

import (
	"log"
	"os"
	"time"

	"gridviz/internal/pipeline"
	"gridviz/internal/version"
	"gridviz/pkg/config"
	"gridviz/ui/mainwindow"
	"gridviz/ui/prefs"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const appTitle = "Grid Viewer"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := app.NewWithID("gridviz")

	cfg := config.LoadDefault()
	ws := pipeline.NewWorkspace()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, ws, cfg, appPrefs)

	// Handle command line arguments
	if len(os.Args) > 1 {
		projectPath := os.Args[1]
		if err := win.OpenProject(projectPath); err != nil {
			log.Printf("Failed to load project %s: %v", projectPath, err)
		}
	}

	setupHotReload(win)

	win.SetOnClosed(func() {
		if err := win.SavePreferences(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
	})

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := pipeline.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if restart {
					log.Println("Hot reload: saving preferences before restart...")
					if err := win.SavePreferences(); err != nil {
						log.Printf("Hot reload: preference save failed: %v", err)
					}
					log.Println("Hot reload: restarting...")
					if err := reloader.Restart(); err != nil {
						log.Printf("Hot reload: restart failed: %v", err)
					}
				} else {
					reloader.ResetBaseline()
					reloader.Start()
				}
			}, win.Window)
	})

	reloader.Start()
}
