package meshing

import (
	"math"
	"testing"

	"tent/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCubeCounts(t *testing.T) {
	m := Cube()
	assert.Equal(t, 36, m.VertexCount())
	assert.Len(t, m.Vertices, 36*8)

	lo, hi := m.Bounds()
	assert.Equal(t, [3]float32{-0.5, -0.5, -0.5}, lo)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, hi)
}

func TestQuadIsFlat(t *testing.T) {
	m := Quad()
	assert.Equal(t, 6, m.VertexCount())
	lo, hi := m.Bounds()
	assert.Equal(t, float32(0), lo[2])
	assert.Equal(t, float32(0), hi[2])
}

func TestSphereCounts(t *testing.T) {
	tests := []struct {
		sectors, stacks int
		want            int
	}{
		{36, 18, 6 * 36 * 17},
		{3, 2, 6 * 3},
		{0, 0, 6 * 3}, // clamped
	}
	for _, tt := range tests {
		m := Sphere(tt.sectors, tt.stacks)
		assert.Equal(t, tt.want, m.VertexCount(), "sectors=%d stacks=%d", tt.sectors, tt.stacks)
	}
}

func TestSphereRadius(t *testing.T) {
	m := Sphere(12, 8)
	for v := 0; v < len(m.Vertices); v += FloatsPerVertex {
		p := mgl32.Vec3{m.Vertices[v], m.Vertices[v+1], m.Vertices[v+2]}
		assert.InDelta(t, 0.5, p.Len(), 1e-5)
	}
}

// Every triangle must wind counter-clockwise seen from outside so that back
// face culling keeps it.
func TestWindingFacesOutward(t *testing.T) {
	for name, m := range map[string]Mesh{"cube": Cube(), "quad": Quad(), "sphere": Sphere(16, 8)} {
		stride := FloatsPerVertex
		for tri := 0; tri+3*stride <= len(m.Vertices); tri += 3 * stride {
			var p [3]mgl32.Vec3
			for i := range p {
				o := tri + i*stride
				p[i] = mgl32.Vec3{m.Vertices[o], m.Vertices[o+1], m.Vertices[o+2]}
			}
			n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
			if n.Len() < 1e-9 {
				continue
			}
			normal := mgl32.Vec3{m.Vertices[tri+5], m.Vertices[tri+6], m.Vertices[tri+7]}
			if n.Dot(normal) <= 0 {
				t.Fatalf("%s: triangle at %d winds inward", name, tri/(3*stride))
			}
		}
	}
}

func TestForKind(t *testing.T) {
	assert.Equal(t, 36, ForKind(scene.KindCube).VertexCount())
	assert.Equal(t, 6, ForKind(scene.KindQuad).VertexCount())
	assert.Equal(t, 36, ForKind(scene.KindLight).VertexCount())
	assert.Equal(t, 6*DefaultSphereSectors*(DefaultSphereStacks-1), ForKind(scene.KindSphere).VertexCount())
	assert.False(t, math.IsNaN(float64(ForKind(scene.KindSphere).Vertices[0])))
}
