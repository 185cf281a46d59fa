package model

// Assembly owns an ordered set of components. Order is significant: the
// detection sweep visits pairs in index order.
type Assembly struct {
	Name       string       `json:"name,omitempty"`
	Components []*Component `json:"components"`
}

// NewAssembly returns an empty, named assembly.
func NewAssembly(name string) *Assembly {
	return &Assembly{Name: name}
}

// Add appends c.
func (a *Assembly) Add(c *Component) {
	a.Components = append(a.Components, c)
}

// Get returns the first component with the given id, or nil.
func (a *Assembly) Get(id int) *Component {
	for _, c := range a.Components {
		if c != nil && c.ID == id {
			return c
		}
	}
	return nil
}

// Len returns the number of components.
func (a *Assembly) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Components)
}

// Reset clears the joints on every component.
func (a *Assembly) Reset() {
	for _, c := range a.Components {
		if c != nil {
			c.Reset()
		}
	}
}

// JointTotals counts joints of each type across the assembly.
func (a *Assembly) JointTotals() map[JointType]int {
	totals := map[JointType]int{JointFinger: 0, JointHole: 0, JointSlot: 0}
	for _, c := range a.Components {
		if c == nil {
			continue
		}
		totals[JointFinger] += len(c.Fingers)
		totals[JointHole] += len(c.Holes)
		totals[JointSlot] += len(c.Slots)
	}
	return totals
}
