package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a flat world-space transform. Rotation holds Euler angles in
// degrees, applied X then Y then Z.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// DefaultTransform returns the identity transform
func DefaultTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix composes the model matrix T * Rx * Ry * Rz * S
func (t Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(t.Rotation[0])))
	m = m.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(t.Rotation[1])))
	m = m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(t.Rotation[2])))
	return m.Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Renderable is implemented by every entity variant
type Renderable interface {
	Render(b Backend) error
}

// Drawable is one scene entity. The variant set is closed: *Cube, *Quad,
// *Sphere, *Light and *Model.
type Drawable interface {
	Renderable
	Kind() Kind
	IsLight() bool
	Common() *Base
}

// Base is the record shared by every variant
type Base struct {
	Tag string
	Transform
	Texture Texture
	Shader  ShaderHandle
	Active  bool

	owner *ObjectManager
}

func newBase(tag string, t Transform) Base {
	return Base{Tag: tag, Transform: t, Active: true}
}

// Common returns the shared record
func (o *Base) Common() *Base { return o }

// IsLight reports false; the Light variant overrides it
func (o *Base) IsLight() bool { return false }

func (o *Base) drawCall(mesh Kind) DrawCall {
	return DrawCall{
		Mesh:    mesh,
		Model:   o.Matrix(),
		Texture: o.Texture,
		Shader:  o.Shader,
		Tint:    mgl32.Vec4{1, 1, 1, 1},
	}
}

// Cube is a unit cube centred on its position
type Cube struct{ Base }

func (c *Cube) Kind() Kind { return KindCube }

func (c *Cube) Render(b Backend) error { return b.Draw(c.drawCall(KindCube)) }

// Quad is a unit quad in the XY plane
type Quad struct{ Base }

func (q *Quad) Kind() Kind { return KindQuad }

func (q *Quad) Render(b Backend) error { return b.Draw(q.drawCall(KindQuad)) }

// Sphere is a unit-diameter UV sphere
type Sphere struct{ Base }

func (s *Sphere) Kind() Kind { return KindSphere }

func (s *Sphere) Render(b Backend) error { return b.Draw(s.drawCall(KindSphere)) }

// Model is an imported mesh. The backend owns the geometry lookup.
type Model struct{ Base }

func (m *Model) Kind() Kind { return KindModel }

func (m *Model) Render(b Backend) error { return b.Draw(m.drawCall(KindModel)) }

// Attenuation holds the point light falloff coefficients
type Attenuation struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

// DefaultAttenuation covers roughly 50 units of range
func DefaultAttenuation() Attenuation {
	return Attenuation{Constant: 1.0, Linear: 0.09, Quadratic: 0.032}
}

// Validate rejects negative, non-finite or all-zero coefficients
func (a Attenuation) Validate() error {
	for _, v := range [3]float32{a.Constant, a.Linear, a.Quadratic} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) || v < 0 {
			return fmt.Errorf("%w: attenuation %v", ErrInvalidField, a)
		}
	}
	if a.Constant == 0 && a.Linear == 0 && a.Quadratic == 0 {
		return fmt.Errorf("%w: attenuation is all zero", ErrInvalidField)
	}
	return nil
}

// Light is a point light. It renders its own marker geometry tinted with
// its color and contributes one record to the light buffer.
type Light struct {
	Base
	Color       mgl32.Vec4
	Attenuation Attenuation
}

func (l *Light) Kind() Kind { return KindLight }

func (l *Light) IsLight() bool { return true }

func (l *Light) Render(b Backend) error {
	call := l.drawCall(KindLight)
	call.Tint = l.Color
	call.Emissive = true
	return b.Draw(call)
}

// Record returns the light's buffer record. Inactive lights emit a zero
// color so stale data in their slot is overwritten.
func (l *Light) Record() LightRecord {
	rec := LightRecord{
		Position:    l.Position,
		Color:       l.Color,
		Attenuation: l.Attenuation,
	}
	if !l.Active {
		rec.Color = mgl32.Vec4{}
	}
	return rec
}

// NewDrawable builds the variant for kind with the given tag and transform.
// Lights start white with DefaultAttenuation.
func NewDrawable(kind Kind, tag string, t Transform) (Drawable, error) {
	obj := newBase(tag, t)
	switch kind {
	case KindCube:
		return &Cube{obj}, nil
	case KindQuad:
		return &Quad{obj}, nil
	case KindSphere:
		return &Sphere{obj}, nil
	case KindModel:
		return &Model{obj}, nil
	case KindLight:
		return &Light{
			Base:        obj,
			Color:       mgl32.Vec4{1, 1, 1, 1},
			Attenuation: DefaultAttenuation(),
		}, nil
	}
	return nil, &ConfigError{Op: "new drawable", Name: kind.String(), Err: ErrUnknownKind}
}
