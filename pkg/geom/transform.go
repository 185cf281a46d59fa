package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// toV3 converts a gonum vector into the sdfx vector type.
func toV3(v r3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// fromV3 converts an sdfx vector into the gonum vector type.
func fromV3(v v3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// TransformPoint applies the affine 3x4 block of m to p, treating p as a
// homogeneous point with w=1. The bottom row of m is ignored; there is no
// perspective divide.
func TransformPoint(m sdf.M44, p r3.Vec) r3.Vec {
	return fromV3(m.MulPosition(toV3(p)))
}

// TransformPoints applies TransformPoint to every element of ps.
func TransformPoints(m sdf.M44, ps []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(ps))
	for i, p := range ps {
		out[i] = TransformPoint(m, p)
	}
	return out
}

// TransformDirection applies only the linear 3x3 block of m to d; the
// translation column is never read.
func TransformDirection(m sdf.M44, d r3.Vec) r3.Vec {
	x := m.Values()
	return r3.Vec{
		X: x[0]*d.X + x[1]*d.Y + x[2]*d.Z,
		Y: x[4]*d.X + x[5]*d.Y + x[6]*d.Z,
		Z: x[8]*d.X + x[9]*d.Y + x[10]*d.Z,
	}
}

// TransformSegment maps both endpoints of s through m.
func TransformSegment(m sdf.M44, s Segment) Segment {
	return Segment{
		Start: TransformPoint(m, s.Start),
		End:   TransformPoint(m, s.End),
	}
}

// Placement builds a local-to-world transform from Euler angles in degrees
// and a translation. Rotation is applied about X, then Y, then Z, and the
// translation last.
func Placement(rotDeg, at r3.Vec) sdf.M44 {
	rad := func(d float64) float64 { return d * math.Pi / 180.0 }
	rot := sdf.RotateZ(rad(rotDeg.Z)).Mul(sdf.RotateY(rad(rotDeg.Y))).Mul(sdf.RotateX(rad(rotDeg.X)))
	return sdf.Translate3d(toV3(at)).Mul(rot)
}

// Identity returns the identity transform.
func Identity() sdf.M44 {
	return sdf.Identity3d()
}
