package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"tent/internal/config"
	"tent/internal/logging"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "tent.yaml", "settings file")
	scenePath := flag.String("scene", "", "scene file to open (overrides the settings file)")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *scenePath != "" {
		settings.ScenePath = *scenePath
	}
	config.Apply(settings)
	settings = config.Current()

	log := logging.Must(settings.Log.Level, settings.Log.Encoding)
	defer log.Sync()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(settings.Window)
	if err != nil {
		panic(err)
	}

	app, err := setupEditor(window, settings, log)
	if err != nil {
		log.Fatal("editor setup", zap.Error(err))
	}
	defer app.Dispose()

	NewEditorLoop(window, app, settings, log).Run()
}
