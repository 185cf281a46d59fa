package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the default geometric tolerance.
const Epsilon = 1e-9

// Dot returns the dot product of a and b.
func Dot(a, b r3.Vec) float64 { return r3.Dot(a, b) }

// Cross returns the cross product a x b.
func Cross(a, b r3.Vec) r3.Vec { return r3.Cross(a, b) }

// Add returns a + b.
func Add(a, b r3.Vec) r3.Vec { return r3.Add(a, b) }

// Sub returns a - b.
func Sub(a, b r3.Vec) r3.Vec { return r3.Sub(a, b) }

// Scale returns v scaled by f.
func Scale(f float64, v r3.Vec) r3.Vec { return r3.Scale(f, v) }

// Magnitude returns the Euclidean length of v.
func Magnitude(v r3.Vec) float64 { return r3.Norm(v) }

// Normalise returns v scaled to unit length. A vector shorter than Epsilon
// has no usable direction and yields the zero vector; callers treat a zero
// result as undefined and skip whatever depended on it.
func Normalise(v r3.Vec) r3.Vec {
	m := r3.Norm(v)
	if m < Epsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/m, v)
}

// IsZero reports whether every component of v is within tol of zero.
func IsZero(v r3.Vec, tol float64) bool {
	return math.Abs(v.X) <= tol && math.Abs(v.Y) <= tol && math.Abs(v.Z) <= tol
}

// EqualWithin reports whether a and b agree component-wise within tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// Lerp returns a + t(b-a).
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}
