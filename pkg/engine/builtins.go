package engine

import (
	"fmt"
	"math"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/jointscan/pkg/geom"
	"github.com/chazu/jointscan/pkg/model"
)

// ---------------------------------------------------------------------------
// Values passed between builtins
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	v r3.Vec
}

func (s *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", s.v.X, s.v.Y, s.v.Z)
}
func (s *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpOutline is a local vertex loop, as returned by rect.
type sexpOutline struct {
	pts []r3.Vec
}

func (s *sexpOutline) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(outline %d vertices)", len(s.pts))
}
func (s *sexpOutline) Type() *zygo.RegisteredType { return nil }

// sexpPanel refers to a component already added to the assembly.
type sexpPanel struct {
	c *model.Component
}

func (s *sexpPanel) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(panel %q)", s.c.Label())
}
func (s *sexpPanel) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument handling
// ---------------------------------------------------------------------------

// keyword returns the name of a preprocessed :keyword argument.
func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// args splits a builtin's arguments into positional values and keyword
// values. A trailing keyword with no value maps to SexpNull.
type args struct {
	pos []zygo.Sexp
	kw  map[string]zygo.Sexp
}

func splitArgs(in []zygo.Sexp) args {
	a := args{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(in); i++ {
		name, ok := keyword(in[i])
		if !ok {
			a.pos = append(a.pos, in[i])
			continue
		}
		if i+1 < len(in) {
			a.kw[name] = in[i+1]
			i++
		} else {
			a.kw[name] = zygo.SexpNull
		}
	}
	return a
}

// unknown reports the first keyword not in allowed, in sorted order so the
// message is stable.
func (a args) unknown(allowed ...string) error {
	var bad []string
outer:
	for k := range a.kw {
		for _, ok := range allowed {
			if k == ok {
				continue outer
			}
		}
		bad = append(bad, k)
	}
	if len(bad) == 0 {
		return nil
	}
	slices.Sort(bad)
	return fmt.Errorf("unknown keyword :%s", bad[0])
}

func describe(s zygo.Sexp) string {
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

func toFloat(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(s))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		if _, isKW := keyword(s); !isKW {
			return str.S, nil
		}
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

func toVec(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.v, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %s", describe(s))
}

func toPanel(s zygo.Sexp) (*model.Component, error) {
	if p, ok := s.(*sexpPanel); ok {
		return p.c, nil
	}
	return nil, fmt.Errorf("expected panel, got %s", describe(s))
}

// toOutline accepts a rect result or a list/array of vec3.
func toOutline(s zygo.Sexp) ([]r3.Vec, error) {
	var items []zygo.Sexp
	switch v := s.(type) {
	case *sexpOutline:
		return v.pts, nil
	case *zygo.SexpPair:
		var err error
		if items, err = zygo.ListToArray(v); err != nil {
			return nil, err
		}
	case *zygo.SexpArray:
		items = v.Val
	default:
		return nil, fmt.Errorf("expected outline or list of vec3, got %s", describe(s))
	}
	pts := make([]r3.Vec, len(items))
	for i, item := range items {
		p, err := toVec(item)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		pts[i] = p
	}
	return pts, nil
}

// newellNormal returns the unit normal of a vertex loop by Newell's method,
// or zero for a degenerate loop.
func newellNormal(pts []r3.Vec) r3.Vec {
	var n r3.Vec
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return geom.Normalise(n)
}

// ---------------------------------------------------------------------------
// Assembly builder
// ---------------------------------------------------------------------------

// builder accumulates the assembly while source runs.
type builder struct {
	asm    *model.Assembly
	byName map[string]*model.Component
	usedID map[int]bool
	nextID int
	named  bool
}

func newBuilder() *builder {
	return &builder{
		asm:    model.NewAssembly(""),
		byName: make(map[string]*model.Component),
		usedID: make(map[int]bool),
		nextID: 1,
	}
}

// allocID returns the lowest unused id at or above the sequential counter.
func (b *builder) allocID() int {
	for b.usedID[b.nextID] {
		b.nextID++
	}
	id := b.nextID
	b.nextID++
	return id
}

func (b *builder) addPanel(name string, id int, explicitID bool, outline []r3.Vec, normal r3.Vec) (*model.Component, error) {
	if _, dup := b.byName[name]; dup {
		return nil, fmt.Errorf("panel %q already defined", name)
	}
	if !explicitID {
		id = b.allocID()
	} else if b.usedID[id] {
		return nil, fmt.Errorf("id %d already used", id)
	}
	c := model.NewComponent(id, name, outline, normal, geom.Identity())
	b.usedID[id] = true
	b.byName[name] = c
	b.asm.Add(c)
	return c, nil
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

// registerBuiltins installs the assembly forms into env. Source must have
// gone through preprocessSource first.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, in []zygo.Sexp) (zygo.Sexp, error) {
		if len(in) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: need 3 arguments, got %d", len(in))
		}
		var xyz [3]float64
		for i, s := range in {
			f, err := toFloat(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{v: r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// (rect w h): counter-clockwise w x h loop in the XY plane from the origin.
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, in []zygo.Sexp) (zygo.Sexp, error) {
		if len(in) != 2 {
			return zygo.SexpNull, fmt.Errorf("rect: need width and height, got %d arguments", len(in))
		}
		w, err := toFloat(in[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: width: %w", err)
		}
		h, err := toFloat(in[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: height: %w", err)
		}
		if w <= 0 || h <= 0 {
			return zygo.SexpNull, fmt.Errorf("rect: size %gx%g must be positive", w, h)
		}
		return &sexpOutline{pts: []r3.Vec{{}, {X: w}, {X: w, Y: h}, {Y: h}}}, nil
	})

	// (defpanel "name" :id 3 :outline (rect 2 1) :normal (vec3 0 0 1))
	env.AddFunction("defpanel", func(env *zygo.Zlisp, name string, in []zygo.Sexp) (zygo.Sexp, error) {
		a := splitArgs(in)
		if err := a.unknown("id", "outline", "normal"); err != nil {
			return zygo.SexpNull, fmt.Errorf("defpanel: %w", err)
		}
		if len(a.pos) != 1 {
			return zygo.SexpNull, fmt.Errorf("defpanel: need exactly one name")
		}
		panelName, err := toString(a.pos[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpanel: name: %w", err)
		}

		v, ok := a.kw["outline"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpanel %q: :outline is required", panelName)
		}
		outline, err := toOutline(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpanel %q: outline: %w", panelName, err)
		}
		if len(outline) < 3 {
			return zygo.SexpNull, fmt.Errorf("defpanel %q: outline has %d vertices, need at least 3", panelName, len(outline))
		}

		var normal r3.Vec
		if v, ok := a.kw["normal"]; ok {
			if normal, err = toVec(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defpanel %q: normal: %w", panelName, err)
			}
		} else if normal = newellNormal(outline); normal == (r3.Vec{}) {
			return zygo.SexpNull, fmt.Errorf("defpanel %q: outline is degenerate; pass :normal", panelName)
		}

		var id int
		v, explicit := a.kw["id"]
		if explicit {
			if id, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defpanel %q: id: %w", panelName, err)
			}
		}

		c, err := b.addPanel(panelName, id, explicit, outline, normal)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpanel: %w", err)
		}
		return &sexpPanel{c: c}, nil
	})

	// (panel "name")
	env.AddFunction("panel", func(env *zygo.Zlisp, name string, in []zygo.Sexp) (zygo.Sexp, error) {
		if len(in) != 1 {
			return zygo.SexpNull, fmt.Errorf("panel: need a name")
		}
		panelName, err := toString(in[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("panel: name: %w", err)
		}
		c, ok := b.byName[panelName]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("panel: no panel named %q", panelName)
		}
		return &sexpPanel{c: c}, nil
	})

	// (place ref :rotate (vec3 90 0 0) :at (vec3 0 1 0))
	env.AddFunction("place", func(env *zygo.Zlisp, name string, in []zygo.Sexp) (zygo.Sexp, error) {
		a := splitArgs(in)
		if err := a.unknown("at", "rotate"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if len(a.pos) != 1 {
			return zygo.SexpNull, fmt.Errorf("place: need exactly one panel")
		}
		c, err := toPanel(a.pos[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		var at, rot r3.Vec
		if v, ok := a.kw["at"]; ok {
			if at, err = toVec(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("place %q: at: %w", c.Label(), err)
			}
		}
		if v, ok := a.kw["rotate"]; ok {
			if rot, err = toVec(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("place %q: rotate: %w", c.Label(), err)
			}
		}
		c.Place(geom.Placement(rot, at))
		return &sexpPanel{c: c}, nil
	})

	// (assembly "name" panel...): names the assembly. Panel arguments are
	// checked but not required; every defpanel is already a member.
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, in []zygo.Sexp) (zygo.Sexp, error) {
		if len(in) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly: need a name")
		}
		asmName, err := toString(in[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}
		if b.named {
			return zygo.SexpNull, fmt.Errorf("assembly: already named %q", b.asm.Name)
		}
		for i, s := range in[1:] {
			if _, err := toPanel(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly %q: member %d: %w", asmName, i+1, err)
			}
		}
		b.asm.Name = asmName
		b.named = true
		return &zygo.SexpStr{S: asmName}, nil
	})
}
