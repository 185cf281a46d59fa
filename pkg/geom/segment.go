package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is a finite line segment. The frame it is expressed in (world or a
// component's local frame) is implied by where it came from.
type Segment struct {
	Start r3.Vec `json:"start"`
	End   r3.Vec `json:"end"`
}

// Length returns the distance between the endpoints.
func (s Segment) Length() float64 {
	return r3.Norm(r3.Sub(s.End, s.Start))
}

// Midpoint returns the point halfway between the endpoints.
func (s Segment) Midpoint() r3.Vec {
	return Lerp(s.Start, s.End, 0.5)
}

// Reversed returns s with its endpoints swapped.
func (s Segment) Reversed() Segment {
	return Segment{Start: s.End, End: s.Start}
}

// EqualWithin reports whether both endpoints of s and o match within tol,
// in order.
func (s Segment) EqualWithin(o Segment, tol float64) bool {
	return EqualWithin(s.Start, o.Start, tol) && EqualWithin(s.End, o.End, tol)
}

// SameWithin is EqualWithin ignoring endpoint order.
func (s Segment) SameWithin(o Segment, tol float64) bool {
	return s.EqualWithin(o, tol) || s.EqualWithin(o.Reversed(), tol)
}

func (s Segment) String() string {
	return fmt.Sprintf("[(%g,%g,%g) (%g,%g,%g)]",
		s.Start.X, s.Start.Y, s.Start.Z, s.End.X, s.End.Y, s.End.Z)
}
