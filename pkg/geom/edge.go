package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// EdgeIndex returns the index i of the first polygon edge (poly[i] to
// poly[i+1], wrapping) that s lies along, or -1 when s cuts through the
// interior. s lies along an edge when both endpoints are within tol of the
// edge's supporting line and project inside the edge's span, with the span
// widened by tol at both ends. Zero-length edges never match.
func EdgeIndex(s Segment, poly []r3.Vec, tol float64) int {
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		if pointOnEdge(s.Start, a, b, tol) && pointOnEdge(s.End, a, b, tol) {
			return i
		}
	}
	return -1
}

// OnEdge reports whether s coincides with one of poly's boundary edges.
func OnEdge(s Segment, poly []r3.Vec, tol float64) bool {
	return EdgeIndex(s, poly, tol) >= 0
}

// pointOnEdge reports whether p projects onto the segment ab within tol.
func pointOnEdge(p, a, b r3.Vec, tol float64) bool {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 < tol*tol {
		return false
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	slack := tol / r3.Norm(ab)
	if t < -slack || t > 1+slack {
		return false
	}
	foot := r3.Add(a, r3.Scale(t, ab))
	return r3.Norm(r3.Sub(p, foot)) <= tol
}
