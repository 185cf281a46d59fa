package detect

import (
	"github.com/chazu/jointscan/pkg/model"
)

// Report summarises one detection run.
type Report struct {
	Components int                     `json:"components"`
	Pairs      int                     `json:"pairs"`
	Relations  map[Relation]int        `json:"relations"`
	Joints     map[model.JointType]int `json:"joints"`

	// CoplanarGroups lists the ids of components merged because they share
	// a plane and overlap. Each group is sorted; groups are ordered by their
	// first member's position in the input.
	CoplanarGroups [][]int `json:"coplanar_groups,omitempty"`

	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

func newReport(components, pairs int) *Report {
	return &Report{
		Components: components,
		Pairs:      pairs,
		Relations: map[Relation]int{
			RelationNone: 0, RelationCoplanar: 0, RelationIntersecting: 0, RelationDegenerate: 0,
		},
		Joints: map[model.JointType]int{
			model.JointFinger: 0, model.JointHole: 0, model.JointSlot: 0,
		},
	}
}

// Anomaly records a pair whose polygons were cut into different numbers of
// spans by their common line. Only the overlapping spans became joints.
type Anomaly struct {
	A         int `json:"a"`
	B         int `json:"b"`
	SegmentsA int `json:"segments_a"`
	SegmentsB int `json:"segments_b"`
	Unmatched int `json:"unmatched"`
}

// PairEvent describes the outcome for one pair. Slices are copies owned by
// the receiver.
type PairEvent struct {
	Step     int // 1-based position in the sweep
	Total    int
	A, B     int // component ids
	Relation Relation
	JointsA  []model.Joint
	JointsB  []model.Joint
	Contacts []Contact
	Err      error // set for degenerate pairs
}
