package mesh

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/jointscan/pkg/model"
)

// Defaults for Options.
const (
	DefaultThickness = 1.0
	DefaultCells     = 120
)

// palette assigns distinct colours to panels in assembly order.
var palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Options controls extrusion and tessellation.
type Options struct {
	Thickness float64 // panel thickness, centred on the panel plane
	Cells     int     // marching cubes cells along the longest axis
}

func (o Options) normalized() Options {
	if o.Thickness <= 0 {
		o.Thickness = DefaultThickness
	}
	if o.Cells <= 0 {
		o.Cells = DefaultCells
	}
	return o
}

// Panel returns the preview mesh of one component. The outline must lie in
// the component's local XY plane, as outlines built with rect do.
func Panel(c *model.Component, opts Options) (*Mesh, error) {
	opts = opts.normalized()
	if len(c.Vertices) < 3 {
		return nil, fmt.Errorf("mesh: %s: %d vertices, need at least 3", c.Label(), len(c.Vertices))
	}

	outline := make([]v2.Vec, len(c.Vertices))
	for i, v := range c.Vertices {
		outline[i] = v2.Vec{X: v.X, Y: v.Y}
	}
	profile, err := sdf.Polygon2D(outline)
	if err != nil {
		return nil, fmt.Errorf("mesh: %s: outline: %w", c.Label(), err)
	}
	solid := sdf.Transform3D(sdf.Extrude3D(profile, opts.Thickness), c.Transform)

	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(opts.Cells))
	m := &Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
		Panel:    c.Label(),
		ID:       c.ID,
	}
	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}

// Assembly returns one mesh per component, in order, coloured from a fixed
// palette. It stops at the first component that cannot be meshed.
func Assembly(asm *model.Assembly, opts Options) ([]*Mesh, error) {
	if asm == nil {
		return nil, nil
	}
	out := make([]*Mesh, 0, asm.Len())
	for i, c := range asm.Components {
		m, err := Panel(c, opts)
		if err != nil {
			return nil, err
		}
		m.Color = palette[i%len(palette)]
		out = append(out, m)
	}
	return out, nil
}
