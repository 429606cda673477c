package scene

import "github.com/go-gl/mathgl/mgl32"

// ShaderHandle references a compiled shading program held by a ShaderRegistry
type ShaderHandle struct {
	Name string
	ID   uint32
}

// ShaderRegistry resolves shader names to handles
type ShaderRegistry interface {
	Lookup(name string) (ShaderHandle, error)
}

// Texture references a loaded texture. A zero ID with a non-empty Path is
// the placeholder left behind by a failed load.
type Texture struct {
	Path   string
	ID     uint32
	Width  int
	Height int
}

// Loaded reports whether the texture is backed by a real resource
func (t Texture) Loaded() bool {
	return t.ID != 0
}

// TextureLoader loads textures by path
type TextureLoader interface {
	Load(path string) (Texture, error)
}

// DrawCall describes one entity draw
type DrawCall struct {
	Mesh     Kind
	Model    mgl32.Mat4
	Texture  Texture
	Shader   ShaderHandle
	Tint     mgl32.Vec4
	Emissive bool
}

// Backend is the render device the scene draws through. WriteLights copies
// packed light records into the shared light buffer at a byte offset and
// BindLights makes the buffer visible to every following draw.
type Backend interface {
	Draw(call DrawCall) error
	WriteLights(offset int, data []byte) error
	BindLights() error
}
