package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// vec2 is a point in a planeFrame.
type vec2 struct{ x, y float64 }

func (a vec2) sub(b vec2) vec2 { return vec2{a.x - b.x, a.y - b.y} }

func cross2(a, b vec2) float64 { return a.x*b.y - a.y*b.x }

func dot2(a, b vec2) float64 { return a.x*b.x + a.y*b.y }

// planeFrame is an orthonormal 2D coordinate system embedded in a plane.
type planeFrame struct {
	origin r3.Vec
	u, v   r3.Vec
}

// newLineFrame returns a frame whose u axis runs along dir. n and dir must
// be unit length and perpendicular.
func newLineFrame(origin, dir, n r3.Vec) planeFrame {
	return planeFrame{origin: origin, u: dir, v: r3.Cross(n, dir)}
}

// newPlaneFrame returns an arbitrary frame for the plane with unit normal n
// through origin.
func newPlaneFrame(origin, n r3.Vec) planeFrame {
	// Seed with the world axis least aligned with n.
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	var seed r3.Vec
	switch {
	case ax <= ay && ax <= az:
		seed = r3.Vec{X: 1}
	case ay <= az:
		seed = r3.Vec{Y: 1}
	default:
		seed = r3.Vec{Z: 1}
	}
	u := Normalise(r3.Cross(n, seed))
	return planeFrame{origin: origin, u: u, v: r3.Cross(n, u)}
}

func (f planeFrame) project(p r3.Vec) vec2 {
	d := r3.Sub(p, f.origin)
	return vec2{r3.Dot(f.u, d), r3.Dot(f.v, d)}
}

func (f planeFrame) projectAll(ps []r3.Vec) []vec2 {
	out := make([]vec2, len(ps))
	for i, p := range ps {
		out[i] = f.project(p)
	}
	return out
}

// distToSegment2 returns the distance from p to the segment ab.
func distToSegment2(p, a, b vec2) float64 {
	ab := b.sub(a)
	l2 := dot2(ab, ab)
	if l2 == 0 {
		d := p.sub(a)
		return math.Sqrt(dot2(d, d))
	}
	t := dot2(p.sub(a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	q := vec2{a.x + t*ab.x, a.y + t*ab.y}
	d := p.sub(q)
	return math.Sqrt(dot2(d, d))
}

// onBoundary2 reports whether p lies within tol of any edge of poly.
func onBoundary2(p vec2, poly []vec2, tol float64) bool {
	n := len(poly)
	for i := 0; i < n; i++ {
		if distToSegment2(p, poly[i], poly[(i+1)%n]) <= tol {
			return true
		}
	}
	return false
}

// insideOrOn2 is the even-odd point-in-polygon test with the boundary
// (widened by tol) counted as inside.
func insideOrOn2(p vec2, poly []vec2, tol float64) bool {
	if onBoundary2(p, poly, tol) {
		return true
	}
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.y > p.y) != (b.y > p.y) {
			x := a.x + (p.y-a.y)*(b.x-a.x)/(b.y-a.y)
			if p.x < x {
				inside = !inside
			}
		}
	}
	return inside
}

// segmentsTouch2 reports whether segments ab and cd share at least one
// point, with endpoints within tol of the other segment counted as touching.
func segmentsTouch2(a, b, c, d vec2, tol float64) bool {
	if distToSegment2(a, c, d) <= tol || distToSegment2(b, c, d) <= tol ||
		distToSegment2(c, a, b) <= tol || distToSegment2(d, a, b) <= tol {
		return true
	}
	o1 := cross2(b.sub(a), c.sub(a))
	o2 := cross2(b.sub(a), d.sub(a))
	o3 := cross2(d.sub(c), a.sub(c))
	o4 := cross2(d.sub(c), b.sub(c))
	return (o1 > 0) != (o2 > 0) && (o3 > 0) != (o4 > 0) &&
		o1 != 0 && o2 != 0 && o3 != 0 && o4 != 0
}
