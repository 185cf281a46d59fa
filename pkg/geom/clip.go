package geom

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ClipLine returns the parts of the infinite line l that lie inside the
// closed polygon poly (a vertex loop with unit normal n, same frame as l).
// Segments are ordered by increasing parameter along l.Dir and each one
// runs in that direction.
//
// The polygon may be non-convex. Crossing parameters are collected from
// every edge, parameters closer than tol are merged into one, and each gap
// between consecutive parameters is kept when its midpoint is inside or on
// the boundary (even-odd rule). Edges lying on the line therefore produce
// boundary segments, and single-point touches are dropped.
//
// A line that is not in the polygon's plane meets it in at most one point,
// so the result is empty. An empty result is never an error.
func ClipLine(l Line, poly []r3.Vec, n r3.Vec, tol float64) []Segment {
	if len(poly) < 3 {
		return nil
	}
	dir := Normalise(l.Dir)
	if dir == (r3.Vec{}) || math.Abs(r3.Dot(n, dir)) > tol {
		return nil
	}
	if math.Abs(r3.Dot(n, r3.Sub(l.Point, poly[0]))) > tol {
		return nil
	}

	f := newLineFrame(l.Point, dir, n)
	pts := f.projectAll(poly)

	ts := lineCrossings(pts, tol)
	if len(ts) < 2 {
		return nil
	}

	var segs []Segment
	open := false
	var start float64
	for k := 0; k+1 < len(ts); k++ {
		mid := vec2{(ts[k] + ts[k+1]) / 2, 0}
		in := insideOrOn2(mid, pts, tol)
		switch {
		case in && !open:
			open, start = true, ts[k]
		case !in && open:
			open = false
			segs = appendSpan(segs, l.Point, dir, start, ts[k], tol)
		}
	}
	if open {
		segs = appendSpan(segs, l.Point, dir, start, ts[len(ts)-1], tol)
	}
	return segs
}

// lineCrossings returns the sorted, de-duplicated parameters along the u
// axis where the polygon boundary meets the axis.
func lineCrossings(pts []vec2, tol float64) []float64 {
	var ts []float64
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		onA := math.Abs(a.y) <= tol
		onB := math.Abs(b.y) <= tol
		if onA {
			ts = append(ts, a.x)
		}
		if onB {
			ts = append(ts, b.x)
		}
		if !onA && !onB && (a.y > 0) != (b.y > 0) {
			ts = append(ts, a.x+(b.x-a.x)*a.y/(a.y-b.y))
		}
	}
	sort.Float64s(ts)
	return snap(ts, tol)
}

// snap collapses runs of sorted values that are within tol of the first
// value of the run.
func snap(ts []float64, tol float64) []float64 {
	if len(ts) == 0 {
		return ts
	}
	out := ts[:1]
	for _, t := range ts[1:] {
		if t-out[len(out)-1] > tol {
			out = append(out, t)
		}
	}
	return out
}

func appendSpan(segs []Segment, origin, dir r3.Vec, t0, t1, tol float64) []Segment {
	if t1-t0 <= tol {
		return segs
	}
	return append(segs, Segment{
		Start: r3.Add(origin, r3.Scale(t0, dir)),
		End:   r3.Add(origin, r3.Scale(t1, dir)),
	})
}

// OverlapSegments intersects two ordered lists of segments that lie on the
// same line, returning the shared spans in order. Both inputs must be
// ordered along dir and run in that direction, as ClipLine produces them.
// The second result counts segments of a and b that shared nothing with
// the other list. For convex polygons each list holds at most one segment,
// so the pairs are the same as pairing the lists by index.
func OverlapSegments(a, b []Segment, dir r3.Vec, tol float64) (shared []Segment, unmatched int) {
	param := func(p r3.Vec) float64 { return r3.Dot(dir, p) }
	hitA := make([]bool, len(a))
	hitB := make([]bool, len(b))

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		a0, a1 := param(a[i].Start), param(a[i].End)
		b0, b1 := param(b[j].Start), param(b[j].End)
		lo, hi := math.Max(a0, b0), math.Min(a1, b1)
		if hi-lo > tol {
			s := a[i].Start
			if b0 > a0 {
				s = b[j].Start
			}
			e := a[i].End
			if b1 < a1 {
				e = b[j].End
			}
			shared = append(shared, Segment{Start: s, End: e})
			hitA[i], hitB[j] = true, true
		}
		if a1 < b1 {
			i++
		} else {
			j++
		}
	}

	for _, h := range hitA {
		if !h {
			unmatched++
		}
	}
	for _, h := range hitB {
		if !h {
			unmatched++
		}
	}
	return shared, unmatched
}
