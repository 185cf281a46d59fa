package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// PolygonsOverlap reports whether two polygons lying in the same plane
// (unit normal n) share at least one point. Touching boundaries count.
// Both loops must be in the same frame.
func PolygonsOverlap(p, q []r3.Vec, n r3.Vec, tol float64) bool {
	if len(p) < 3 || len(q) < 3 {
		return false
	}
	if !BoxesOverlap(Bounds(p), Bounds(q), tol) {
		return false
	}

	f := newPlaneFrame(p[0], n)
	pp := f.projectAll(p)
	qq := f.projectAll(q)

	for i := range pp {
		a, b := pp[i], pp[(i+1)%len(pp)]
		for j := range qq {
			if segmentsTouch2(a, b, qq[j], qq[(j+1)%len(qq)], tol) {
				return true
			}
		}
	}

	// No edge contact: either disjoint or one contains the other.
	return insideOrOn2(pp[0], qq, tol) || insideOrOn2(qq[0], pp, tol)
}
