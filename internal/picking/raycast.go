// Package picking finds the entity under a ray, for click selection.
package picking

import (
	"iter"
	"math"
	"sync"

	"tent/internal/meshing"
	"tent/internal/profiling"
	"tent/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinPickDistance = 0.1
	MaxPickDistance = 100.0
)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	Index    int
	Point    mgl32.Vec3
	Distance float32
	Hit      bool
}

var (
	boundsOnce sync.Once
	bounds     map[scene.Kind][2]mgl32.Vec3
)

// localBounds returns the object-space box of a kind's mesh
func localBounds(kind scene.Kind) (lo, hi mgl32.Vec3) {
	boundsOnce.Do(func() {
		bounds = make(map[scene.Kind][2]mgl32.Vec3)
		for k := scene.KindCube; k < scene.KindNone; k++ {
			l, h := meshing.ForKind(k).Bounds()
			bounds[k] = [2]mgl32.Vec3{l, h}
		}
	})
	b := bounds[kind]
	return b[0], b[1]
}

// Raycast returns the nearest active entity whose mesh bounds the ray
// crosses between minDist and maxDist. direction need not be normalized.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, objects iter.Seq2[int, scene.Drawable]) RaycastResult {
	defer profiling.Track("picking.Raycast")()

	result := RaycastResult{Index: -1}
	if direction.Len() == 0 {
		return result
	}
	direction = direction.Normalize()

	for i, d := range objects {
		b := d.Common()
		if !b.Active {
			continue
		}
		model := b.Transform.Matrix()
		if model.Det() == 0 {
			continue
		}
		inv := model.Inv()

		// test in object space, then measure the hit in world space
		o := inv.Mul4x1(start.Vec4(1)).Vec3()
		dir := inv.Mul4x1(direction.Vec4(0)).Vec3()
		lo, hi := localBounds(d.Kind())
		t, ok := intersectBox(o, dir, lo, hi)
		if !ok {
			continue
		}
		point := model.Mul4x1(o.Add(dir.Mul(t)).Vec4(1)).Vec3()
		dist := point.Sub(start).Len()
		if dist < minDist || dist > maxDist {
			continue
		}
		if !result.Hit || dist < result.Distance {
			result = RaycastResult{Index: i, Point: point, Distance: dist, Hit: true}
		}
	}
	return result
}

// intersectBox is the slab test. It returns the entry parameter, or the
// exit parameter when the origin is inside the box.
func intersectBox(origin, dir, lo, hi mgl32.Vec3) (float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	for a := 0; a < 3; a++ {
		if dir[a] == 0 {
			if origin[a] < lo[a] || origin[a] > hi[a] {
				return 0, false
			}
			continue
		}
		t1 := (lo[a] - origin[a]) / dir[a]
		t2 := (hi[a] - origin[a]) / dir[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
