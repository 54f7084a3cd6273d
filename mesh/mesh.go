// Package mesh builds solids from triangle meshes. Sharp edges between
// facets become the solid's edges, closed loops of them that lie on a circle
// become circles bounding cylindrical faces, and coplanar facets are merged
// into planar faces.
package mesh

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/soypat/techdraw/brep"
	"github.com/soypat/techdraw/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options configure how a mesh is turned into a solid.
type Options struct {
	// VertexTolerance is the distance under which vertices are welded. Zero
	// infers it from the shortest triangle side.
	VertexTolerance float64
	// FeatureAngle in degrees. Edges between facets meeting at a larger
	// angle are kept.
	FeatureAngle float64
	// PlanarAngle in degrees under which neighboring facets are coplanar.
	PlanarAngle float64
	// CircleTolerance is the radius deviation, relative to the radius,
	// under which a closed loop of edges is a circle.
	CircleTolerance float64
	// MinCircleSegments is the fewest edges a loop needs to be a circle.
	MinCircleSegments int
	Log               *log.Logger
}

// DefaultOptions returns the default mesh options.
func DefaultOptions() Options {
	return Options{
		FeatureAngle:      30,
		PlanarAngle:       1,
		CircleTolerance:   0.01,
		MinCircleSegments: 8,
	}
}

// Load reads a binary STL stream and builds a solid from it.
func Load(r io.Reader, opts Options) (*brep.Model, error) {
	tris, err := ReadSTL(r)
	if errors.Is(err, ErrNormalMismatch) {
		opts.logger().Warn("mesh normals", "err", err)
	} else if err != nil {
		return nil, err
	}
	return Build(tris, opts)
}

func (o Options) logger() *log.Logger {
	if o.Log == nil {
		return log.Default()
	}
	return o.Log
}

// Build returns the solid bounded by tris.
func Build(tris []r3.Triangle, opts Options) (*brep.Model, error) {
	m, err := Weld(tris, opts.VertexTolerance)
	if err != nil {
		return nil, err
	}
	logger := opts.logger()
	feats := m.FeatureEdges(opts.FeatureAngle)
	loops, open := m.loops(feats)
	adj, _ := m.adjacency()

	var (
		edges   []brep.Edge
		circles []circle
	)
	for _, l := range loops {
		c, ok := m.fitCircle(l, adj, opts)
		if !ok {
			open = append(open, l.edges()...)
			continue
		}
		circles = append(circles, c)
	}
	for _, e := range open {
		edges = append(edges, brep.Line{A: m.Vertices[e[0]], B: m.Vertices[e[1]]})
	}
	cyls := cylinders(circles, opts.CircleTolerance)
	var faces []brep.Face
	for _, c := range cyls {
		edges = append(edges, c.edges...)
		faces = append(faces, c.face())
	}
	for _, p := range m.Patches(opts.PlanarAngle) {
		if p.onCylinder(m, cyls, opts.CircleTolerance) {
			continue
		}
		faces = append(faces, p.face())
	}
	logger.Debug("mesh solid", "triangles", len(m.Triangles), "vertices", len(m.Vertices),
		"edges", len(edges), "circles", len(circles), "faces", len(faces))
	if len(edges) == 0 {
		return nil, errors.New("mesh has no feature edges")
	}
	return brep.NewModel(edges, faces), nil
}

// Mesh is an indexed triangle mesh with shared vertices.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles [][3]int
	// Normals holds the unit normal of each triangle.
	Normals []r3.Vec
}

// Weld merges vertices closer than tol and drops triangles that collapse.
// A zero tol is inferred from the shortest triangle side.
func Weld(tris []r3.Triangle, tol float64) (*Mesh, error) {
	if len(tris) == 0 {
		return nil, errors.New("no triangles")
	}
	bb := d3.Empty()
	minDist2 := math.MaxFloat64
	maxDist2 := 0.0
	for _, t := range tris {
		for j, v := range t {
			if !d3.Finite(v) {
				return nil, fmt.Errorf("non finite vertex %v", v)
			}
			bb = bb.Include(v)
			side2 := r3.Norm2(r3.Sub(t[(j+1)%3], v))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	suggested := math.Sqrt(minDist2) / 256
	if tol > math.Sqrt(maxDist2)/2 {
		return nil, fmt.Errorf("vertex tolerance is too large to weld the mesh, suggested tolerance: %g", suggested)
	}
	if tol == 0 {
		tol = suggested
	}
	size := bb.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim/tol > math.MaxInt64/2 {
		return nil, errors.New("tolerance too small. overflowed int64")
	}
	m := &Mesh{}
	cache := make(map[[3]int64]int)
	ri := 1 / tol
	for _, t := range tris {
		var idx [3]int
		for j, v := range t {
			s := r3.Scale(ri, v)
			key := [3]int64{int64(math.Round(s.X)), int64(math.Round(s.Y)), int64(math.Round(s.Z))}
			i, ok := cache[key]
			if !ok {
				i = len(m.Vertices)
				cache[key] = i
				m.Vertices = append(m.Vertices, v)
			}
			idx[j] = i
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
			continue
		}
		a, b, c := m.Vertices[idx[0]], m.Vertices[idx[1]], m.Vertices[idx[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if r3.Norm(n) == 0 {
			continue
		}
		m.Triangles = append(m.Triangles, idx)
		m.Normals = append(m.Normals, r3.Unit(n))
	}
	if len(m.Triangles) == 0 {
		return nil, errors.New("every triangle collapsed while welding")
	}
	return m, nil
}

func (m *Mesh) area(t int) float64 {
	v := m.Triangles[t]
	a, b, c := m.Vertices[v[0]], m.Vertices[v[1]], m.Vertices[v[2]]
	return r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) / 2
}

func (m *Mesh) centroid(t int) r3.Vec {
	v := m.Triangles[t]
	return r3.Scale(1.0/3, r3.Add(m.Vertices[v[0]], r3.Add(m.Vertices[v[1]], m.Vertices[v[2]])))
}
