package sceneview

import (
	"tent/internal/graphics"
	renderer "tent/internal/graphics/renderer"
	"tent/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// Drawer is the part of the ObjectManager the view needs
type Drawer interface {
	DrawAll(b scene.Backend) error
}

// SceneView draws the scene's entities every frame
type SceneView struct {
	scene   Drawer
	backend *graphics.SceneBackend
	log     *zap.Logger

	// Wireframe draws polygon edges only
	Wireframe bool

	lastErr string
}

func NewSceneView(s Drawer, backend *graphics.SceneBackend, log *zap.Logger) *SceneView {
	if log == nil {
		log = zap.NewNop()
	}
	return &SceneView{scene: s, backend: backend, log: log}
}

// Init uploads meshes and allocates the light buffer
func (v *SceneView) Init() error {
	return v.backend.Init()
}

// Render runs the scene's draw pass. Errors are logged once per distinct
// message so a persistent problem does not flood the log every frame.
func (v *SceneView) Render(ctx renderer.RenderContext) {
	v.backend.SetFrame(ctx.View, ctx.Proj, ctx.Camera.Position)
	if v.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	err := v.scene.DrawAll(v.backend)
	if err == nil {
		v.lastErr = ""
		return
	}
	if msg := err.Error(); msg != v.lastErr {
		v.lastErr = msg
		v.log.Error("scene draw pass", zap.Error(err))
	}
}

func (v *SceneView) Dispose() {
	v.backend.Dispose()
}

func (v *SceneView) SetViewport(width, height int) {}
