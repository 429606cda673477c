package meshing

import (
	"math"

	"tent/internal/scene"
)

// Vertex layout shared by every primitive: position xyz, uv, normal xyz
const (
	PositionComponents = 3
	UVComponents       = 2
	NormalComponents   = 3
	FloatsPerVertex    = PositionComponents + UVComponents + NormalComponents
	VertexStride       = FloatsPerVertex * 4
)

// Mesh is interleaved, non-indexed triangle data
type Mesh struct {
	Vertices []float32
}

// VertexCount returns the number of vertices
func (m Mesh) VertexCount() int {
	return len(m.Vertices) / FloatsPerVertex
}

// Bounds returns the axis-aligned extent of the mesh
func (m Mesh) Bounds() (lo, hi [3]float32) {
	if len(m.Vertices) == 0 {
		return
	}
	for i := 0; i < 3; i++ {
		lo[i], hi[i] = m.Vertices[i], m.Vertices[i]
	}
	for v := 0; v < len(m.Vertices); v += FloatsPerVertex {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], m.Vertices[v+i])
			hi[i] = max(hi[i], m.Vertices[v+i])
		}
	}
	return
}

type face struct {
	normal [3]float32
	// corners counter-clockwise seen from outside, starting bottom-left in uv space
	corners [4][3]float32
}

var cubeFaces = [6]face{
	{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
	{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
	{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
	{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
}

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func appendQuad(dst []float32, f face) []float32 {
	for _, i := range [6]int{0, 1, 2, 2, 3, 0} {
		p, uv := f.corners[i], quadUVs[i]
		dst = append(dst, p[0], p[1], p[2], uv[0], uv[1], f.normal[0], f.normal[1], f.normal[2])
	}
	return dst
}

// Cube returns a unit cube centred on the origin, 36 vertices
func Cube() Mesh {
	v := make([]float32, 0, 36*FloatsPerVertex)
	for _, f := range cubeFaces {
		v = appendQuad(v, f)
	}
	return Mesh{Vertices: v}
}

// Quad returns a unit quad in the XY plane facing +Z, 6 vertices
func Quad() Mesh {
	return Mesh{Vertices: appendQuad(nil, cubeFaces[1].withZ(0))}
}

func (f face) withZ(z float32) face {
	for i := range f.corners {
		f.corners[i][2] = z
	}
	return f
}

// Sphere returns a UV sphere of diameter 1. sectors and stacks are clamped
// to at least 3 and 2.
func Sphere(sectors, stacks int) Mesh {
	sectors = max(sectors, 3)
	stacks = max(stacks, 2)

	point := func(sector, stack int) (pos [3]float32, uv [2]float32) {
		phi := math.Pi/2 - math.Pi*float64(stack)/float64(stacks)
		theta := 2 * math.Pi * float64(sector) / float64(sectors)
		x := math.Cos(phi) * math.Cos(theta)
		y := math.Sin(phi)
		z := math.Cos(phi) * math.Sin(theta)
		pos = [3]float32{float32(x), float32(y), float32(z)}
		uv = [2]float32{float32(sector) / float32(sectors), 1 - float32(stack)/float32(stacks)}
		return
	}

	v := make([]float32, 0, sectors*(stacks-1)*6*FloatsPerVertex)
	emit := func(sector, stack int) {
		n, uv := point(sector, stack)
		v = append(v, n[0]*0.5, n[1]*0.5, n[2]*0.5, uv[0], uv[1], n[0], n[1], n[2])
	}
	for st := 0; st < stacks; st++ {
		for se := 0; se < sectors; se++ {
			// the first and last stacks collapse to a single triangle
			if st != 0 {
				emit(se, st)
				emit(se+1, st)
				emit(se, st+1)
			}
			if st != stacks-1 {
				emit(se+1, st)
				emit(se+1, st+1)
				emit(se, st+1)
			}
		}
	}
	return Mesh{Vertices: v}
}

// DefaultSphereSectors and DefaultSphereStacks set the sphere resolution
// used by ForKind
const (
	DefaultSphereSectors = 36
	DefaultSphereStacks  = 18
)

// ForKind returns the geometry drawn for an entity kind. Lights and models
// without imported geometry use the cube.
func ForKind(kind scene.Kind) Mesh {
	switch kind {
	case scene.KindQuad:
		return Quad()
	case scene.KindSphere:
		return Sphere(DefaultSphereSectors, DefaultSphereStacks)
	}
	return Cube()
}
