package selection

import (
	"tent/internal/graphics"
	renderer "tent/internal/graphics/renderer"
	"tent/internal/profiling"
	"tent/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Source reports the entity to outline
type Source interface {
	Selected() (scene.Drawable, bool)
}

// Outline scale relative to the entity so the lines sit just outside it
const outlineScale = 1.02

// cubeEdges are the 12 edges of the unit cube as line segments
var cubeEdges = []float32{
	// Front face
	-0.5, -0.5, 0.5, 0.5, -0.5, 0.5,
	0.5, -0.5, 0.5, 0.5, 0.5, 0.5,
	0.5, 0.5, 0.5, -0.5, 0.5, 0.5,
	-0.5, 0.5, 0.5, -0.5, -0.5, 0.5,

	// Back face
	-0.5, -0.5, -0.5, 0.5, -0.5, -0.5,
	0.5, -0.5, -0.5, 0.5, 0.5, -0.5,
	0.5, 0.5, -0.5, -0.5, 0.5, -0.5,
	-0.5, 0.5, -0.5, -0.5, -0.5, -0.5,

	// Connecting edges
	-0.5, -0.5, 0.5, -0.5, -0.5, -0.5,
	0.5, -0.5, 0.5, 0.5, -0.5, -0.5,
	0.5, 0.5, 0.5, 0.5, 0.5, -0.5,
	-0.5, 0.5, 0.5, -0.5, 0.5, -0.5,
}

// Selection draws a box outline around the selected entity
type Selection struct {
	source   Source
	vertPath string
	fragPath string
	Color    mgl32.Vec3
	shader   *graphics.Shader
	vao, vbo uint32
}

func NewSelection(source Source, vertPath, fragPath string) *Selection {
	return &Selection{
		source:   source,
		vertPath: vertPath,
		fragPath: fragPath,
		Color:    mgl32.Vec3{1.0, 0.65, 0.0},
	}
}

func (s *Selection) Init() error {
	var err error
	s.shader, err = graphics.NewShader(s.vertPath, s.fragPath)
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &s.vao)
	gl.BindVertexArray(s.vao)
	gl.GenBuffers(1, &s.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cubeEdges)*4, gl.Ptr(cubeEdges), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
	return nil
}

func (s *Selection) Render(ctx renderer.RenderContext) {
	d, ok := s.source.Selected()
	if !ok {
		return
	}
	defer profiling.Track("renderer.renderSelection")()

	model := OutlineMatrix(d.Common().Transform)

	s.shader.Use()
	s.shader.SetMatrix4("proj", &ctx.Proj[0])
	s.shader.SetMatrix4("view", &ctx.View[0])
	s.shader.SetMatrix4("model", &model[0])
	s.shader.SetVector3("color", s.Color[0], s.Color[1], s.Color[2])

	gl.BindVertexArray(s.vao)
	gl.LineWidth(1.0)
	gl.DrawArrays(gl.LINES, 0, int32(len(cubeEdges)/3))
	gl.BindVertexArray(0)
}

// OutlineMatrix is the entity's model matrix with the box grown slightly
func OutlineMatrix(t scene.Transform) mgl32.Mat4 {
	return t.Matrix().Mul4(mgl32.Scale3D(outlineScale, outlineScale, outlineScale))
}

func (s *Selection) Dispose() {
	if s.vao != 0 {
		gl.DeleteVertexArrays(1, &s.vao)
	}
	if s.vbo != 0 {
		gl.DeleteBuffers(1, &s.vbo)
	}
	if s.shader != nil {
		s.shader.Delete()
	}
}

func (s *Selection) SetViewport(width, height int) {}
