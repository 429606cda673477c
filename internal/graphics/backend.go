package graphics

import (
	"fmt"

	"tent/internal/meshing"
	"tent/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform and block names the scene shaders are expected to declare
const (
	LightsBlockName = "Lights"

	// ShaderLightSlots is the array length of the Lights block
	ShaderLightSlots = 256

	uniformModel     = "model"
	uniformView      = "view"
	uniformProj      = "projection"
	uniformTexture   = "tex1"
	uniformTint      = "lightColor"
	uniformEmissive  = "emissive"
	uniformHasTex    = "hasTexture"
	uniformViewPos   = "viewPos"
	uniformMaxLights = "numLights"
)

type meshBuffers struct {
	vao, vbo uint32
	count    int32
}

// SceneBackend draws scene entities with GL. Each kind's mesh is uploaded
// once at Init; the light buffer is a uniform buffer sized for capacity
// records and bound to a fixed binding point.
type SceneBackend struct {
	capacity int
	binding  uint32

	meshes  map[scene.Kind]meshBuffers
	ubo     uint32
	blocked map[uint32]bool
	shaders map[uint32]*Shader

	view, proj mgl32.Mat4
	viewPos    mgl32.Vec3
}

// NewSceneBackend creates a backend whose light buffer holds capacity
// records at the given binding point
func NewSceneBackend(capacity int, binding uint32) *SceneBackend {
	return &SceneBackend{
		capacity: max(capacity, 1),
		binding:  binding,
		meshes:   make(map[scene.Kind]meshBuffers),
		blocked:  make(map[uint32]bool),
		shaders:  make(map[uint32]*Shader),
		view:     mgl32.Ident4(),
		proj:     mgl32.Ident4(),
	}
}

// Init uploads the primitive meshes and allocates the light buffer
func (b *SceneBackend) Init() error {
	for _, kind := range []scene.Kind{scene.KindCube, scene.KindQuad, scene.KindSphere, scene.KindLight, scene.KindModel} {
		b.meshes[kind] = uploadMesh(meshing.ForKind(kind))
	}

	// the block is declared with ShaderLightSlots entries; the tail past
	// capacity stays zero so it never lights anything
	zero := make([]byte, max(b.capacity, ShaderLightSlots)*scene.LightRecordSize)
	gl.GenBuffers(1, &b.ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.ubo)
	gl.BufferData(gl.UNIFORM_BUFFER, len(zero), gl.Ptr(zero), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, b.binding, b.ubo)

	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("scene backend init: gl error 0x%x", e)
	}
	return nil
}

func uploadMesh(m meshing.Mesh) meshBuffers {
	var mb meshBuffers
	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	gl.GenBuffers(1, &mb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*4, gl.Ptr(m.Vertices), gl.STATIC_DRAW)

	stride := int32(meshing.VertexStride)
	gl.VertexAttribPointerWithOffset(0, meshing.PositionComponents, gl.FLOAT, false, stride, 0)
	gl.VertexAttribPointerWithOffset(1, meshing.UVComponents, gl.FLOAT, false, stride, 3*4)
	gl.VertexAttribPointerWithOffset(2, meshing.NormalComponents, gl.FLOAT, false, stride, 5*4)
	gl.EnableVertexAttribArray(0)
	gl.EnableVertexAttribArray(1)
	gl.EnableVertexAttribArray(2)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	mb.count = int32(m.VertexCount())
	return mb
}

// SetFrame sets the camera matrices used by the following draws
func (b *SceneBackend) SetFrame(view, proj mgl32.Mat4, viewPos mgl32.Vec3) {
	b.view, b.proj, b.viewPos = view, proj, viewPos
}

// Capacity returns the light buffer size in records
func (b *SceneBackend) Capacity() int {
	return b.capacity
}

// WriteLights copies packed records into the uniform buffer
func (b *SceneBackend) WriteLights(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > b.capacity*scene.LightRecordSize {
		return &scene.BufferOverrunError{
			Lights:   (offset + len(data)) / scene.LightRecordSize,
			Capacity: b.capacity,
		}
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.ubo)
	gl.BufferSubData(gl.UNIFORM_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return nil
}

// BindLights attaches the uniform buffer to its binding point
func (b *SceneBackend) BindLights() error {
	gl.BindBufferBase(gl.UNIFORM_BUFFER, b.binding, b.ubo)
	return nil
}

func (b *SceneBackend) program(id uint32) *Shader {
	s, ok := b.shaders[id]
	if !ok {
		s = &Shader{ID: id}
		b.shaders[id] = s
	}
	if !b.blocked[id] {
		BindUniformBlock(id, LightsBlockName, b.binding)
		b.blocked[id] = true
	}
	return s
}

// Draw renders one entity
func (b *SceneBackend) Draw(call scene.DrawCall) error {
	mb, ok := b.meshes[call.Mesh]
	if !ok {
		return fmt.Errorf("no mesh for %s", call.Mesh)
	}
	if call.Shader.ID == 0 {
		return fmt.Errorf("%w: %q has no program", scene.ErrUnknownShader, call.Shader.Name)
	}

	s := b.program(call.Shader.ID)
	s.Use()
	s.SetMatrix4(uniformModel, &call.Model[0])
	s.SetMatrix4(uniformView, &b.view[0])
	s.SetMatrix4(uniformProj, &b.proj[0])
	s.SetVector3(uniformViewPos, b.viewPos[0], b.viewPos[1], b.viewPos[2])
	s.SetVector4(uniformTint, call.Tint)
	s.SetBool(uniformEmissive, call.Emissive)
	s.SetInt(uniformMaxLights, int32(b.capacity))

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, call.Texture.ID)
	s.SetInt(uniformTexture, 0)
	s.SetBool(uniformHasTex, call.Texture.Loaded())

	gl.BindVertexArray(mb.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, mb.count)
	gl.BindVertexArray(0)
	return nil
}

// Dispose frees the meshes and the light buffer
func (b *SceneBackend) Dispose() {
	for kind, mb := range b.meshes {
		gl.DeleteVertexArrays(1, &mb.vao)
		gl.DeleteBuffers(1, &mb.vbo)
		delete(b.meshes, kind)
	}
	if b.ubo != 0 {
		gl.DeleteBuffers(1, &b.ubo)
		b.ubo = 0
	}
	clear(b.blocked)
	clear(b.shaders)
}
