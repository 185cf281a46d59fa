package detect

import (
	"fmt"

	"github.com/chazu/jointscan/pkg/geom"
	"github.com/chazu/jointscan/pkg/model"
)

// Relation is the outcome of comparing two components.
type Relation int

const (
	RelationNone         Relation = iota // no contact
	RelationCoplanar                     // same plane and overlapping; merged
	RelationIntersecting                 // planes cross and the panels share at least one span
	RelationDegenerate                   // no usable plane for one of the pair
)

func (r Relation) String() string {
	switch r {
	case RelationNone:
		return "none"
	case RelationCoplanar:
		return "coplanar"
	case RelationIntersecting:
		return "intersecting"
	case RelationDegenerate:
		return "degenerate"
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// MarshalText lets Relation key JSON maps.
func (r Relation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Contact is one shared span between a pair, in world coordinates, with the
// edge of each component it lies along (-1 when interior).
type Contact struct {
	World geom.Segment `json:"world"`
	EdgeA int          `json:"edge_a"`
	EdgeB int          `json:"edge_b"`
}

// pairResult is everything learned about one pair. It is computed without
// touching the components and applied later in sweep order.
type pairResult struct {
	relation  Relation
	jointsA   []model.Joint
	jointsB   []model.Joint
	contacts  []Contact
	clippedA  int
	clippedB  int
	unmatched int
	err       error
}

// jointTypes maps (A on edge, B on edge) to the joint each side receives.
func jointTypes(edgeA, edgeB bool) (model.JointType, model.JointType) {
	switch {
	case edgeA && edgeB:
		return model.JointFinger, model.JointFinger
	case edgeA:
		return model.JointFinger, model.JointHole
	case edgeB:
		return model.JointHole, model.JointFinger
	default:
		return model.JointSlot, model.JointSlot
	}
}

// classifyPair compares a and b, whose cached world geometry is sa and sb.
func classifyPair(a, b *model.Component, sa, sb shape, tol float64) pairResult {
	if len(sa.world) == 0 || len(sb.world) == 0 {
		return pairResult{relation: RelationDegenerate, err: fmt.Errorf("detect: pair C%d/C%d: empty vertex list", a.ID, b.ID)}
	}

	if coplanar(sa, sb, tol) {
		if geom.PolygonsOverlap(sa.world, sb.world, sa.normal, tol) {
			return pairResult{relation: RelationCoplanar}
		}
		return pairResult{relation: RelationNone}
	}
	if parallel(sa, sb, tol) || !geom.BoxesOverlap(sa.bounds, sb.bounds, tol) {
		return pairResult{relation: RelationNone}
	}

	line, err := geom.IntersectPlanes(sa.plane(), sb.plane())
	if err != nil {
		return pairResult{relation: RelationDegenerate, err: fmt.Errorf("detect: pair C%d/C%d: %w", a.ID, b.ID, err)}
	}

	segsA := geom.ClipLine(line, sa.world, sa.normal, tol)
	segsB := geom.ClipLine(line, sb.world, sb.normal, tol)
	shared, unmatched := geom.OverlapSegments(segsA, segsB, line.Dir, tol)

	res := pairResult{clippedA: len(segsA), clippedB: len(segsB), unmatched: unmatched}
	if len(shared) == 0 {
		res.relation = RelationNone
		return res
	}
	res.relation = RelationIntersecting

	for _, w := range shared {
		la := geom.TransformSegment(a.Inverse, w)
		lb := geom.TransformSegment(b.Inverse, w)
		ea := geom.EdgeIndex(la, a.Vertices, tol)
		eb := geom.EdgeIndex(lb, b.Vertices, tol)
		ta, tb := jointTypes(ea >= 0, eb >= 0)

		res.jointsA = append(res.jointsA, model.Joint{Type: ta, Segment: la, Partner: b.ID})
		res.jointsB = append(res.jointsB, model.Joint{Type: tb, Segment: lb, Partner: a.ID})
		res.contacts = append(res.contacts, Contact{World: w, EdgeA: ea, EdgeB: eb})
	}
	return res
}

// anomalous reports a clipped-segment count mismatch between two sides that
// both produced segments.
func (r pairResult) anomalous() bool {
	return r.clippedA > 0 && r.clippedB > 0 && r.clippedA != r.clippedB
}
