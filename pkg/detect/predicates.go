package detect

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/jointscan/pkg/geom"
	"github.com/chazu/jointscan/pkg/model"
)

// shape caches the world-frame geometry of one component for the sweep.
type shape struct {
	world  []r3.Vec
	normal r3.Vec // unit, or zero when the component has no usable normal
	bounds r3.Box
}

func newShape(c *model.Component) shape {
	w := c.WorldVertices()
	return shape{
		world:  w,
		normal: c.WorldNormal(),
		bounds: geom.Bounds(w),
	}
}

func (s shape) plane() geom.Plane {
	return geom.Plane{Normal: s.normal, Point: s.world[0]}
}

func parallel(a, b shape, tol float64) bool {
	if a.normal == (r3.Vec{}) || b.normal == (r3.Vec{}) {
		return false
	}
	return math.Abs(math.Abs(r3.Dot(a.normal, b.normal))-1) < tol
}

func coplanar(a, b shape, tol float64) bool {
	if len(a.world) == 0 || len(b.world) == 0 || !parallel(a, b, tol) {
		return false
	}
	return math.Abs(a.plane().SignedDistance(b.world[0])) <= tol
}

// AreParallel reports whether the world normals of a and b are parallel or
// anti-parallel within tol. A zero normal is parallel to nothing.
func AreParallel(a, b *model.Component, tol float64) bool {
	return parallel(newShape(a), newShape(b), tol)
}

// AreCoplanar reports whether a and b are parallel and b's first world
// vertex lies within tol of a's plane. It is symmetric in a and b, and false
// when either vertex list is empty.
func AreCoplanar(a, b *model.Component, tol float64) bool {
	return coplanar(newShape(a), newShape(b), tol)
}

// BoundsOverlap reports whether the world bounding boxes of a and b touch
// once grown by tol.
func BoundsOverlap(a, b *model.Component, tol float64) bool {
	return geom.BoxesOverlap(newShape(a).bounds, newShape(b).bounds, tol)
}
