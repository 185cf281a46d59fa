package detect_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/jointscan/pkg/detect"
	"github.com/chazu/jointscan/pkg/geom"
	"github.com/chazu/jointscan/pkg/model"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func rect(w, h float64) []r3.Vec {
	return []r3.Vec{{}, {X: w}, {X: w, Y: h}, {Y: h}}
}

// panel builds a w x h panel in its local XY plane, rotated by rotDeg (X then
// Y then Z) and translated to at.
func panel(id int, w, h float64, rotDeg, at r3.Vec) *model.Component {
	return model.NewComponent(id, "", rect(w, h), r3.Vec{Z: 1}, geom.Placement(rotDeg, at))
}

func flat(id int, w, h float64, at r3.Vec) *model.Component {
	return panel(id, w, h, r3.Vec{}, at)
}

func near(a, b r3.Vec) bool { return geom.EqualWithin(a, b, 1e-9) }

// openBox is a 2x2 base with four 1-high walls standing on its edges.
func openBox() []*model.Component {
	return openBoxSized(1)
}

// openBoxSized is openBox with every length multiplied by k.
func openBoxSized(k float64) []*model.Component {
	return []*model.Component{
		flat(1, 2*k, 2*k, r3.Vec{}),
		panel(2, 2*k, k, r3.Vec{X: 90}, r3.Vec{}),
		panel(3, 2*k, k, r3.Vec{X: 90}, r3.Vec{Y: 2 * k}),
		panel(4, 2*k, k, r3.Vec{X: 90, Z: 90}, r3.Vec{}),
		panel(5, 2*k, k, r3.Vec{X: 90, Z: 90}, r3.Vec{X: 2 * k}),
	}
}

// uPanel is a 3x3 panel with a 1-wide notch from the top edge down to y=1.
func uPanel(id int) *model.Component {
	verts := []r3.Vec{
		{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 2, Y: 3},
		{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 3}, {X: 0, Y: 3},
	}
	return model.NewComponent(id, "u", verts, r3.Vec{Z: 1}, geom.Identity())
}

func mustDetect(t *testing.T, comps []*model.Component) *detect.Report {
	t.Helper()
	rep, err := detect.Detect(comps)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	return rep
}

func snapshot(comps []*model.Component) [][]model.Joint {
	out := make([][]model.Joint, len(comps))
	for i, c := range comps {
		out[i] = c.AllJoints()
	}
	return out
}

// ---------------------------------------------------------------------------
// Input contract
// ---------------------------------------------------------------------------

func TestDetectEmptyInput(t *testing.T) {
	if _, err := detect.Detect(nil); !errors.Is(err, detect.ErrEmptyInput) {
		t.Errorf("Detect(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, err := detect.Detect([]*model.Component{}); !errors.Is(err, detect.ErrEmptyInput) {
		t.Errorf("Detect(empty) error = %v, want ErrEmptyInput", err)
	}
	d := detect.New(detect.DefaultOptions())
	if _, err := d.Detect(context.Background(), nil); !errors.Is(err, detect.ErrEmptyInput) {
		t.Errorf("Detector.Detect(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, err := d.Detect(context.Background(), model.NewAssembly("empty")); !errors.Is(err, detect.ErrEmptyInput) {
		t.Errorf("Detector.Detect(empty assembly) error = %v, want ErrEmptyInput", err)
	}
}

func TestDetectNilComponent(t *testing.T) {
	comps := []*model.Component{flat(1, 1, 1, r3.Vec{}), nil}
	_, err := detect.Detect(comps)
	if !errors.Is(err, detect.ErrNilComponent) {
		t.Fatalf("error = %v, want ErrNilComponent", err)
	}
	if comps[0].JointCount() != 0 {
		t.Error("components must not be mutated on error")
	}
}

func TestDetectSingleComponent(t *testing.T) {
	rep := mustDetect(t, []*model.Component{flat(1, 1, 1, r3.Vec{})})
	if rep.Pairs != 0 || rep.Components != 1 {
		t.Errorf("report = %+v", rep)
	}
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func TestScenarioCoplanarDisjoint(t *testing.T) {
	comps := []*model.Component{flat(1, 1, 1, r3.Vec{}), flat(2, 1, 1, r3.Vec{X: 2})}
	rep := mustDetect(t, comps)

	if comps[0].JointCount()+comps[1].JointCount() != 0 {
		t.Error("coplanar disjoint squares must not record joints")
	}
	if rep.Relations[detect.RelationNone] != 1 {
		t.Errorf("relations = %v, want one none", rep.Relations)
	}
	if len(rep.CoplanarGroups) != 0 {
		t.Errorf("unexpected coplanar groups %v", rep.CoplanarGroups)
	}
}

func TestScenarioSharedEdgeFinger(t *testing.T) {
	base := flat(1, 1, 1, r3.Vec{})
	wall := panel(2, 1, 1, r3.Vec{X: 90}, r3.Vec{})
	rep := mustDetect(t, []*model.Component{base, wall})

	if rep.Relations[detect.RelationIntersecting] != 1 {
		t.Fatalf("relations = %v", rep.Relations)
	}
	for _, c := range []*model.Component{base, wall} {
		if len(c.Fingers) != 1 || len(c.Holes) != 0 || len(c.Slots) != 0 {
			t.Fatalf("C%d joints = %+v", c.ID, c.AllJoints())
		}
		seg := c.Fingers[0].Segment
		world := geom.TransformSegment(c.Transform, seg)
		if !world.SameWithin(geom.Segment{End: r3.Vec{X: 1}}, 1e-9) {
			t.Errorf("C%d finger in world = %v, want [(0,0,0) (1,0,0)]", c.ID, world)
		}
	}
	if base.Fingers[0].Partner != 2 || wall.Fingers[0].Partner != 1 {
		t.Error("joint partners not recorded")
	}
}

func TestScenarioInteriorSlot(t *testing.T) {
	base := flat(1, 2, 2, r3.Vec{})
	wall := panel(2, 1, 2, r3.Vec{X: 90}, r3.Vec{X: 0.5, Y: 1, Z: -1})
	mustDetect(t, []*model.Component{base, wall})

	if len(base.Slots) != 1 || len(wall.Slots) != 1 || base.JointCount() != 1 || wall.JointCount() != 1 {
		t.Fatalf("base=%+v wall=%+v", base.AllJoints(), wall.AllJoints())
	}
	want := geom.Segment{Start: r3.Vec{X: 0.5, Y: 1}, End: r3.Vec{X: 1.5, Y: 1}}
	if !base.Slots[0].Segment.SameWithin(want, 1e-9) {
		t.Errorf("base slot = %v, want %v", base.Slots[0].Segment, want)
	}
	// Wall local frame: z=0 in world is y=1 locally, across the full width.
	wantLocal := geom.Segment{Start: r3.Vec{Y: 1}, End: r3.Vec{X: 1, Y: 1}}
	if !wall.Slots[0].Segment.SameWithin(wantLocal, 1e-9) {
		t.Errorf("wall slot = %v, want %v", wall.Slots[0].Segment, wantLocal)
	}
}

func TestScenarioHole(t *testing.T) {
	base := flat(1, 2, 2, r3.Vec{})
	wall := panel(2, 1, 1, r3.Vec{X: 90}, r3.Vec{X: 0.5, Y: 1})
	rep := mustDetect(t, []*model.Component{base, wall})

	if len(base.Holes) != 1 || base.JointCount() != 1 {
		t.Errorf("base joints = %+v, want one hole", base.AllJoints())
	}
	if len(wall.Fingers) != 1 || wall.JointCount() != 1 {
		t.Errorf("wall joints = %+v, want one finger", wall.AllJoints())
	}
	if rep.Joints[model.JointHole] != 1 || rep.Joints[model.JointFinger] != 1 {
		t.Errorf("report joints = %v", rep.Joints)
	}
}

func TestScenarioHoleReversedOrder(t *testing.T) {
	wall := panel(1, 1, 1, r3.Vec{X: 90}, r3.Vec{X: 0.5, Y: 1})
	base := flat(2, 2, 2, r3.Vec{})
	mustDetect(t, []*model.Component{wall, base})

	if len(wall.Fingers) != 1 || len(base.Holes) != 1 {
		t.Errorf("wall=%+v base=%+v", wall.AllJoints(), base.AllJoints())
	}
}

func TestCoplanarOverlapMerges(t *testing.T) {
	comps := []*model.Component{
		flat(1, 1, 1, r3.Vec{}),
		flat(2, 1, 1, r3.Vec{X: 0.5}),
		flat(3, 1, 1, r3.Vec{X: 1.5}), // touches 2 along x=1.5
		flat(4, 1, 1, r3.Vec{X: 5}),
	}
	rep := mustDetect(t, comps)

	if rep.Relations[detect.RelationCoplanar] != 2 {
		t.Errorf("coplanar pairs = %d, want 2", rep.Relations[detect.RelationCoplanar])
	}
	want := [][]int{{1, 2, 3}}
	if !reflect.DeepEqual(rep.CoplanarGroups, want) {
		t.Errorf("CoplanarGroups = %v, want %v", rep.CoplanarGroups, want)
	}
	for _, c := range comps {
		if c.JointCount() != 0 {
			t.Errorf("C%d has joints after coplanar merge", c.ID)
		}
	}
}

func TestParallelOffsetPanels(t *testing.T) {
	comps := []*model.Component{flat(1, 1, 1, r3.Vec{}), flat(2, 1, 1, r3.Vec{Z: 1})}
	rep := mustDetect(t, comps)
	if rep.Relations[detect.RelationNone] != 1 || len(rep.CoplanarGroups) != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestSeparatedPerpendicularPanels(t *testing.T) {
	// Bounds do not touch, so the pair is rejected before any clipping.
	comps := []*model.Component{flat(1, 1, 1, r3.Vec{}), panel(2, 1, 1, r3.Vec{X: 90}, r3.Vec{X: 5})}
	rep := mustDetect(t, comps)
	if rep.Relations[detect.RelationNone] != 1 {
		t.Errorf("relations = %v", rep.Relations)
	}
}

func TestDegenerateNormalIsCounted(t *testing.T) {
	bad := model.NewComponent(2, "", rect(1, 1), r3.Vec{}, geom.Identity())
	var events []detect.PairEvent
	d := detect.New(detect.Options{OnPair: func(e detect.PairEvent) { events = append(events, e) }})
	rep, err := d.DetectComponents(context.Background(), []*model.Component{flat(1, 1, 1, r3.Vec{}), bad})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if rep.Relations[detect.RelationDegenerate] != 1 {
		t.Errorf("relations = %v, want one degenerate", rep.Relations)
	}
	if len(events) != 1 || !errors.Is(events[0].Err, geom.ErrDegeneratePlanes) {
		t.Errorf("events = %+v", events)
	}
}

func TestOpenBoxAllFingers(t *testing.T) {
	comps := openBox()
	rep := mustDetect(t, comps)

	if rep.Pairs != 10 {
		t.Errorf("Pairs = %d, want 10", rep.Pairs)
	}
	if rep.Relations[detect.RelationIntersecting] != 8 || rep.Relations[detect.RelationNone] != 2 {
		t.Errorf("relations = %v", rep.Relations)
	}
	if rep.Joints[model.JointFinger] != 16 || rep.Joints[model.JointHole]+rep.Joints[model.JointSlot] != 0 {
		t.Errorf("joints = %v", rep.Joints)
	}
	if got := len(comps[0].Fingers); got != 4 {
		t.Errorf("base fingers = %d, want 4", got)
	}
	for _, wall := range comps[1:] {
		if got := len(wall.Fingers); got != 3 {
			t.Errorf("wall C%d fingers = %d, want 3", wall.ID, got)
		}
	}
}

func TestOpenBoxFarFromOrigin(t *testing.T) {
	placements := []struct {
		name    string
		rot, at r3.Vec
	}{
		{"near", r3.Vec{Z: 33}, r3.Vec{X: 1234, Y: -987}},
		{"far", r3.Vec{Z: 17.3}, r3.Vec{X: 12345.5, Y: 9876.25, Z: 300}},
		{"far tilted", r3.Vec{X: 7.5, Y: -11, Z: 17.3}, r3.Vec{X: -23456.75, Y: 20000.5, Z: 4096}},
	}
	for _, tt := range placements {
		t.Run(tt.name, func(t *testing.T) {
			comps := openBoxSized(1200)
			m := geom.Placement(tt.rot, tt.at)
			for _, c := range comps {
				c.Place(m)
			}
			rep, err := detect.Detect(comps)
			require.NoError(t, err)

			assert.Equal(t, 8, rep.Relations[detect.RelationIntersecting], "relations = %v", rep.Relations)
			assert.Equal(t, 16, rep.Joints[model.JointFinger], "joints = %v", rep.Joints)
			assert.Zero(t, rep.Joints[model.JointHole]+rep.Joints[model.JointSlot], "joints = %v", rep.Joints)
			assert.Len(t, comps[0].Fingers, 4)

			// Each base finger runs the full 2400 along one side.
			for _, j := range comps[0].Fingers {
				assert.InDelta(t, 2400, j.Segment.Length(), 1e-6, "finger %v", j.Segment)
			}
		})
	}
}

func TestNonConvexPanelAnomaly(t *testing.T) {
	u := uPanel(1)
	// A 5x2 wall in the plane y=2, straddling z=0 and spanning the whole U.
	wall := panel(2, 5, 2, r3.Vec{X: 90}, r3.Vec{X: -1, Y: 2, Z: -1})
	rep := mustDetect(t, []*model.Component{u, wall})

	if len(u.Slots) != 2 || len(wall.Slots) != 2 {
		t.Fatalf("u=%+v wall=%+v", u.AllJoints(), wall.AllJoints())
	}
	if !u.Slots[0].Segment.SameWithin(geom.Segment{Start: r3.Vec{Y: 2}, End: r3.Vec{X: 1, Y: 2}}, 1e-9) {
		t.Errorf("first U slot = %v", u.Slots[0].Segment)
	}
	if len(rep.Anomalies) != 1 {
		t.Fatalf("anomalies = %+v, want 1", rep.Anomalies)
	}
	a := rep.Anomalies[0]
	if a.A != 1 || a.B != 2 || a.SegmentsA != 2 || a.SegmentsB != 1 || a.Unmatched != 0 {
		t.Errorf("anomaly = %+v", a)
	}
}

func TestWallThroughNotch(t *testing.T) {
	u := uPanel(1)
	wall := panel(2, 1, 2, r3.Vec{X: 90}, r3.Vec{X: 1, Y: 2, Z: -1})
	rep := mustDetect(t, []*model.Component{u, wall})

	// The wall spans x in [1,2] at y=2, exactly the notch, so it touches the
	// prongs only at single points.
	if u.JointCount() != 0 || wall.JointCount() != 0 {
		t.Errorf("u=%+v wall=%+v", u.AllJoints(), wall.AllJoints())
	}
	if rep.Relations[detect.RelationNone] != 1 {
		t.Errorf("relations = %v", rep.Relations)
	}
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestJointSymmetry(t *testing.T) {
	comps := append(openBox(),
		panel(6, 1, 2, r3.Vec{X: 90}, r3.Vec{X: 0.5, Y: 1, Z: -1}),
		panel(7, 1, 1, r3.Vec{X: 90, Z: 90}, r3.Vec{X: 1, Y: 0.5}),
	)
	mustDetect(t, comps)

	byID := make(map[int]*model.Component)
	for _, c := range comps {
		byID[c.ID] = c
	}
	for _, c := range comps {
		for _, j := range c.AllJoints() {
			other := byID[j.Partner]
			world := geom.TransformSegment(c.Transform, j.Segment)
			found := false
			for _, oj := range other.AllJoints() {
				if oj.Partner == c.ID && geom.TransformSegment(other.Transform, oj.Segment).SameWithin(world, 1e-9) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("C%d %s joint %v has no counterpart on C%d", c.ID, j.Type, world, other.ID)
			}
		}
	}
}

func TestIdempotentWithReset(t *testing.T) {
	comps := openBox()
	mustDetect(t, comps)
	first := snapshot(comps)

	for _, c := range comps {
		c.Reset()
	}
	mustDetect(t, comps)
	if !reflect.DeepEqual(first, snapshot(comps)) {
		t.Error("second run after Reset differs from the first")
	}
}

func TestDetectAppendsWithoutReset(t *testing.T) {
	comps := openBox()
	mustDetect(t, comps)
	mustDetect(t, comps)
	if got := len(comps[0].Fingers); got != 8 {
		t.Errorf("base fingers after two runs = %d, want 8", got)
	}
}

func TestCoplanarSymmetry(t *testing.T) {
	comps := append(openBox(), flat(6, 1, 1, r3.Vec{Z: 1e-12}), flat(7, 1, 1, r3.Vec{Z: 3}))
	for _, a := range comps {
		if !detect.AreParallel(a, a, geom.Epsilon) {
			t.Errorf("C%d not parallel to itself", a.ID)
		}
		for _, b := range comps {
			if detect.AreCoplanar(a, b, geom.Epsilon) != detect.AreCoplanar(b, a, geom.Epsilon) {
				t.Errorf("AreCoplanar(C%d, C%d) is not symmetric", a.ID, b.ID)
			}
		}
	}
	if !detect.AreCoplanar(comps[0], comps[5], geom.Epsilon) {
		t.Error("base and a panel 1e-12 above it should be coplanar")
	}
	if detect.AreCoplanar(comps[0], comps[6], geom.Epsilon) {
		t.Error("offset parallel panels must not be coplanar")
	}
}

func TestCoplanarEmptyVertices(t *testing.T) {
	empty := model.NewComponent(9, "", nil, r3.Vec{Z: 1}, geom.Identity())
	if detect.AreCoplanar(empty, flat(1, 1, 1, r3.Vec{}), geom.Epsilon) {
		t.Error("empty vertex list must not be coplanar")
	}
}

func TestBoundsOverlap(t *testing.T) {
	a := flat(1, 1, 1, r3.Vec{})
	if !detect.BoundsOverlap(a, flat(2, 1, 1, r3.Vec{X: 1}), geom.Epsilon) {
		t.Error("touching boxes should overlap")
	}
	if detect.BoundsOverlap(a, flat(3, 1, 1, r3.Vec{X: 1.5}), geom.Epsilon) {
		t.Error("separated boxes should not overlap")
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	c := panel(1, 3, 2, r3.Vec{X: 30, Y: -45, Z: 110}, r3.Vec{X: 7, Y: -2, Z: 0.5})
	s := geom.Segment{Start: r3.Vec{X: 0.25, Y: 1}, End: r3.Vec{X: 2.5, Y: 0.1}}
	world := geom.TransformSegment(c.Transform, s)
	back := geom.TransformSegment(c.Inverse, world)
	assert.True(t, back.EqualWithin(s, 1e-9), "round trip = %v, want %v", back, s)
	assert.True(t, near(back.Start, s.Start), "start drifted to %v", back.Start)
	require.InDelta(t, s.Length(), world.Length(), 1e-9)
}
