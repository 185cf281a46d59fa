package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegeneratePlanes is returned when two planes are parallel (or close
// enough that their intersection line is numerically undefined).
var ErrDegeneratePlanes = errors.New("geom: degenerate planes: no unique intersection line")

// Plane is the set of points X with Normal·(X-Point) = 0.
type Plane struct {
	Normal r3.Vec
	Point  r3.Vec
}

// SignedDistance returns Normal·(p-Point). It is a true distance only when
// Normal has unit length.
func (pl Plane) SignedDistance(p r3.Vec) float64 {
	return r3.Dot(pl.Normal, r3.Sub(p, pl.Point))
}

// Line is the infinite line Point + t*Dir.
type Line struct {
	Point r3.Vec
	Dir   r3.Vec
}

// At returns the point at parameter t.
func (l Line) At(t float64) r3.Vec {
	return r3.Add(l.Point, r3.Scale(t, l.Dir))
}

// Param returns the parameter of the orthogonal projection of p onto l.
// Dir is assumed to have unit length.
func (l Line) Param(p r3.Vec) float64 {
	return r3.Dot(l.Dir, r3.Sub(p, l.Point))
}

// IntersectPlanes returns the line shared by a and b. The direction is the
// normalised cross product of the normals; the point is the solution of
//
//	n1·p = n1·p1
//	n2·p = n2·p2
//	 d·p = 0
//
// by Cramer's rule, which is the point on the line closest to the origin.
// Parallel or near-parallel input yields ErrDegeneratePlanes.
func IntersectPlanes(a, b Plane) (Line, error) {
	d := Normalise(r3.Cross(a.Normal, b.Normal))
	if d == (r3.Vec{}) {
		return Line{}, ErrDegeneratePlanes
	}

	h := r3.Vec{X: r3.Dot(a.Normal, a.Point), Y: r3.Dot(b.Normal, b.Point)}
	rows := [3]r3.Vec{a.Normal, b.Normal, d}

	det := det3(rows[0], rows[1], rows[2])
	if math.Abs(det) < Epsilon {
		return Line{}, ErrDegeneratePlanes
	}

	// Cramer: replace column k of the system matrix by h.
	col := func(k int) float64 {
		var m [3]r3.Vec
		rhs := [3]float64{h.X, h.Y, h.Z}
		for i, r := range rows {
			m[i] = r
			switch k {
			case 0:
				m[i].X = rhs[i]
			case 1:
				m[i].Y = rhs[i]
			case 2:
				m[i].Z = rhs[i]
			}
		}
		return det3(m[0], m[1], m[2]) / det
	}

	return Line{
		Point: r3.Vec{X: col(0), Y: col(1), Z: col(2)},
		Dir:   d,
	}, nil
}

// det3 returns the determinant of the 3x3 matrix with rows r0, r1, r2.
func det3(r0, r1, r2 r3.Vec) float64 {
	m := r3.NewMat([]float64{
		r0.X, r0.Y, r0.Z,
		r1.X, r1.Y, r1.Z,
		r2.X, r2.Y, r2.Z,
	})
	return m.Det()
}
