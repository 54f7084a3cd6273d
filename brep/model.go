package brep

import (
	"github.com/soypat/techdraw/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// boundsSamples is the number of points sampled per edge to bound a model.
const boundsSamples = 33

// Model is an in-memory Solid.
type Model struct {
	edges  []Edge
	faces  []Face
	bounds d3.Box
}

var _ Solid = (*Model)(nil)

// NewModel returns a Solid made of the given edges and faces. Its bounds are
// computed by sampling every edge.
func NewModel(edges []Edge, faces []Face) *Model {
	b := d3.Empty()
	for _, e := range edges {
		pts, err := e.Discretize(boundsSamples)
		if err != nil {
			continue
		}
		for _, p := range pts {
			b = b.Include(p)
		}
	}
	return &Model{edges: edges, faces: faces, bounds: b}
}

func (m *Model) Edges() []Edge { return m.edges }
func (m *Model) Faces() []Face { return m.faces }

// Bounds returns the axis aligned bounding box of all edges. A model
// without edges has zero bounds.
func (m *Model) Bounds() r3.Box {
	if m.bounds.IsEmpty() {
		return r3.Box{}
	}
	return r3.Box(m.bounds)
}

// Patch is a Face with precomputed area and centroid.
type Patch struct {
	surface  Surface
	edges    []Edge
	area     float64
	centroid r3.Vec
}

var _ Face = (*Patch)(nil)

func NewFace(s Surface, area float64, centroid r3.Vec, edges ...Edge) *Patch {
	return &Patch{surface: s, edges: edges, area: area, centroid: centroid}
}

func (p *Patch) Surface() Surface { return p.surface }
func (p *Patch) Edges() []Edge    { return p.edges }
func (p *Patch) Area() float64    { return p.area }
func (p *Patch) Centroid() r3.Vec { return p.centroid }
