package model

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/jointscan/pkg/geom"
)

// ---------------------------------------------------------------------------
// Joints
// ---------------------------------------------------------------------------

// JointType classifies how two components meet.
type JointType int

const (
	JointFinger JointType = iota // both components meet along an edge
	JointHole                    // this component's interior meets the other's edge
	JointSlot                    // the line of contact is interior to both
)

func (t JointType) String() string {
	switch t {
	case JointFinger:
		return "finger"
	case JointHole:
		return "hole"
	case JointSlot:
		return "slot"
	default:
		return fmt.Sprintf("JointType(%d)", int(t))
	}
}

// MarshalText encodes the type by name so reports read naturally.
func (t JointType) MarshalText() ([]byte, error) {
	switch t {
	case JointFinger, JointHole, JointSlot:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("model: unknown joint type %d", int(t))
}

// UnmarshalText is the inverse of MarshalText.
func (t *JointType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "finger":
		*t = JointFinger
	case "hole":
		*t = JointHole
	case "slot":
		*t = JointSlot
	default:
		return fmt.Errorf("model: unknown joint type %q", b)
	}
	return nil
}

// Joint is one side of a detected intersection. Segment is expressed in the
// owning component's local frame.
type Joint struct {
	Type    JointType    `json:"type"`
	Segment geom.Segment `json:"segment"`
	Partner int          `json:"partner"` // ID of the other component
}

// ---------------------------------------------------------------------------
// Component
// ---------------------------------------------------------------------------

// Component is a flat polygonal panel. Vertices and Normal are in the local
// frame; Transform maps local to world and Inverse maps world to local.
// Detection reads Inverse as given and never recomputes it.
type Component struct {
	ID        int      `json:"id"`
	Name      string   `json:"name,omitempty"`
	Vertices  []r3.Vec `json:"vertices"`
	Normal    r3.Vec   `json:"normal"`
	Transform sdf.M44  `json:"-"`
	Inverse   sdf.M44  `json:"-"`

	Fingers []Joint `json:"fingers,omitempty"`
	Holes   []Joint `json:"holes,omitempty"`
	Slots   []Joint `json:"slots,omitempty"`
}

// NewComponent builds a component from a local vertex loop, its local normal
// and a local-to-world transform. The vertex slice is copied and Inverse is
// computed from transform.
func NewComponent(id int, name string, vertices []r3.Vec, normal r3.Vec, transform sdf.M44) *Component {
	vs := make([]r3.Vec, len(vertices))
	copy(vs, vertices)
	return &Component{
		ID:        id,
		Name:      name,
		Vertices:  vs,
		Normal:    normal,
		Transform: transform,
		Inverse:   transform.Inverse(),
	}
}

// Place composes m after the current transform (world = m · Transform · local)
// and refreshes Inverse.
func (c *Component) Place(m sdf.M44) {
	c.Transform = m.Mul(c.Transform)
	c.Inverse = c.Transform.Inverse()
}

// Label returns the name when set, otherwise "C<id>".
func (c *Component) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("C%d", c.ID)
}

// WorldVertices returns the vertex loop mapped through Transform.
func (c *Component) WorldVertices() []r3.Vec {
	return geom.TransformPoints(c.Transform, c.Vertices)
}

// WorldNormal returns the local normal rotated into the world frame and
// renormalised. A zero normal stays zero.
func (c *Component) WorldNormal() r3.Vec {
	return geom.Normalise(geom.TransformDirection(c.Transform, c.Normal))
}

// AddJoint appends j to the collection matching its type.
func (c *Component) AddJoint(j Joint) {
	switch j.Type {
	case JointFinger:
		c.Fingers = append(c.Fingers, j)
	case JointHole:
		c.Holes = append(c.Holes, j)
	case JointSlot:
		c.Slots = append(c.Slots, j)
	}
}

// Joints returns the collection for t. The slice is owned by c.
func (c *Component) Joints(t JointType) []Joint {
	switch t {
	case JointFinger:
		return c.Fingers
	case JointHole:
		return c.Holes
	case JointSlot:
		return c.Slots
	}
	return nil
}

// AllJoints returns fingers, holes and slots concatenated in that order.
func (c *Component) AllJoints() []Joint {
	out := make([]Joint, 0, c.JointCount())
	out = append(out, c.Fingers...)
	out = append(out, c.Holes...)
	return append(out, c.Slots...)
}

// JointCount returns the total number of joints recorded on c.
func (c *Component) JointCount() int {
	return len(c.Fingers) + len(c.Holes) + len(c.Slots)
}

// Reset clears every joint collection. Geometry is untouched.
func (c *Component) Reset() {
	c.Fingers = nil
	c.Holes = nil
	c.Slots = nil
}
