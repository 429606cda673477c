package main

import (
	"cmp"
	"errors"
	"os"
	"slices"

	"tent/internal/config"
	"tent/internal/editor"
	"tent/internal/graphics"
	"tent/internal/graphics/renderables/sceneview"
	"tent/internal/graphics/renderables/selection"
	"tent/internal/graphics/renderer"
	"tent/internal/input"
	"tent/internal/registry"
	"tent/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

func setupWindow(ws config.WindowSettings) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(ws.Width, ws.Height, ws.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	// Disable V-Sync; the frame loop has its own limiter
	glfw.SwapInterval(0)

	return window, nil
}

// Editor holds the initialized editor components
type Editor struct {
	Shaders  *registry.Shaders
	Textures *graphics.TextureCache
	Session  *editor.Session
	Renderer *renderer.Renderer
	View     *sceneview.SceneView
	Input    *input.InputManager
	Watcher  *editor.FileWatcher
}

// shaderSpecs lists the configured programs in name order
func shaderSpecs(programs map[string]config.ShaderProgram) []registry.ShaderSpec {
	specs := make([]registry.ShaderSpec, 0, len(programs))
	for name, p := range programs {
		specs = append(specs, registry.ShaderSpec{Name: name, Vertex: p.Vertex, Fragment: p.Fragment})
	}
	slices.SortFunc(specs, func(a, b registry.ShaderSpec) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return specs
}

func setupEditor(window *glfw.Window, s config.Settings, log *zap.Logger) (*Editor, error) {
	shaders := registry.NewShaders(log.Named("shaders"))
	if err := shaders.Init(shaderSpecs(s.Shaders), graphics.CompileSpec); err != nil {
		// programs that built stay usable; entities naming the others are skipped
		log.Warn("some shaders failed to build", zap.Error(err))
	}
	if _, err := shaders.Lookup(s.DefaultShader); err != nil {
		shaders.Close()
		return nil, err
	}

	textures := graphics.NewTextureCache(log.Named("textures"))

	objects := scene.NewObjectManager(shaders, textures,
		scene.WithLogger(log.Named("scene")),
		scene.WithMaxLights(s.MaxLights),
		scene.WithDefaultShader(s.DefaultShader),
		scene.WithDefaultTexture(s.DefaultTexture),
	)

	policy, err := scene.ParseLightPolicy(s.LightPolicy)
	if err != nil {
		log.Warn("light policy", zap.Error(err))
	}
	loader := scene.NewLoader(scene.WithLightPolicy(policy), scene.WithLoaderLogger(log.Named("loader")))
	session := editor.NewSession(objects, loader, s.ScenePath, log.Named("editor"))

	if _, err := os.Stat(s.ScenePath); err == nil {
		report, err := session.Open(s.ScenePath)
		if err != nil {
			log.Error("scene not loaded", zap.String("path", s.ScenePath), zap.Error(err))
		} else {
			logReport(log, report)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Error("scene not loaded", zap.String("path", s.ScenePath), zap.Error(err))
	}

	width, height := window.GetSize()
	camera := graphics.NewCamera(width, height)
	camera.Speed = s.Camera.Speed
	camera.MaxSpeed = s.Camera.MaxSpeed
	camera.Sensitivity = s.Camera.Sensitivity

	backend := graphics.NewSceneBackend(s.MaxLights, uint32(s.LightBinding))
	view := sceneview.NewSceneView(objects, backend, log.Named("draw"))
	r, err := renderer.NewRenderer(camera,
		view,
		selection.NewSelection(session, s.OutlineShader.Vertex, s.OutlineShader.Fragment),
	)
	if err != nil {
		textures.Dispose()
		shaders.Close()
		return nil, err
	}

	app := &Editor{
		Shaders:  shaders,
		Textures: textures,
		Session:  session,
		Renderer: r,
		View:     view,
		Input:    input.NewInputManager(),
	}

	if s.WatchScene && s.ScenePath != "" {
		w, err := editor.NewFileWatcher(s.ScenePath, editor.DefaultSettle, log.Named("watch"))
		if err != nil {
			log.Warn("scene file not watched", zap.Error(err))
		} else {
			app.Watcher = w
		}
	}

	app.Input.Attach(window)
	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		r.UpdateViewport(fbWidth, fbHeight)
	})
	fbWidth, fbHeight := window.GetFramebufferSize()
	r.UpdateViewport(fbWidth, fbHeight)

	return app, nil
}

func logReport(log *zap.Logger, report *scene.LoadReport) {
	log.Info("scene loaded",
		zap.String("path", report.Path),
		zap.Int("entities", report.Loaded),
		zap.Int("lights", report.Lights),
		zap.Int("droppedLights", report.DroppedLight),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("placeholders", len(report.Placeholders)),
	)
	for _, issue := range report.Skipped {
		log.Warn("record skipped", zap.Int("record", issue.Record), zap.Error(issue.Err))
	}
}

// Dispose releases GL resources in reverse order of creation
func (e *Editor) Dispose() {
	if e.Watcher != nil {
		e.Watcher.Close()
	}
	e.Renderer.Dispose()
	e.Textures.Dispose()
	e.Shaders.Close()
}
