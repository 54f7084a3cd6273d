// Package project converts the 3D edges of a solid into 2D drawing primitives
// for orthographic and isometric view directions.
package project

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/brep"
	"github.com/soypat/techdraw/internal/d2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var cos30, sin30 = math.Sqrt(3) / 2, 0.5

// Direction is a parallel projection onto the plane spanned by U (page
// right) and V (page up).
type Direction struct {
	Name string
	Role techdraw.Role
	U, V r3.Vec
	// Dir points from the viewer into the model.
	Dir r3.Vec
}

var (
	Front     = Direction{Name: "front", Role: techdraw.RoleFront, U: r3.Vec{X: 1}, V: r3.Vec{Z: 1}, Dir: r3.Vec{Y: 1}}
	Top       = Direction{Name: "top", Role: techdraw.RoleTop, U: r3.Vec{X: 1}, V: r3.Vec{Y: 1}, Dir: r3.Vec{Z: -1}}
	Right     = Direction{Name: "right", Role: techdraw.RoleSide, U: r3.Vec{Y: 1}, V: r3.Vec{Z: 1}, Dir: r3.Vec{X: -1}}
	Isometric = Direction{
		Name: "isometric",
		Role: techdraw.RoleIso,
		U:    r3.Vec{X: cos30, Y: -cos30},
		V:    r3.Vec{X: sin30, Y: sin30, Z: 1},
		Dir:  r3.Unit(r3.Vec{X: -1, Y: -1, Z: 1}),
	}
)

// Point projects a model point.
func (d Direction) Point(p r3.Vec) r2.Vec {
	return r2.Vec{X: r3.Dot(p, d.U), Y: r3.Dot(p, d.V)}
}

// errEndOn is returned for edges that project to a single point, such as
// lines parallel to the view direction.
var errEndOn = errors.New("edge projects to a point")

// Projector converts edges into primitives.
type Projector struct {
	// Samples is the number of points free-form edges are discretized into.
	Samples int
	// ArcTolerance in radians under which a circular span counts as closed.
	ArcTolerance float64
	// Tolerance is the length under which points coincide.
	Tolerance float64
}

// NewProjector returns a Projector configured from cfg.
func NewProjector(cfg techdraw.Config) Projector {
	return Projector{
		Samples:      cfg.CurveSamples,
		ArcTolerance: cfg.Heuristics.ArcClosureTolerance,
		Tolerance:    cfg.Heuristics.MergeTolerance,
	}
}

// Edge projects e along dir. Curves without a specialized conversion, and
// circles or ellipses whose conversion fails, are discretized into a
// polyline.
func (p Projector) Edge(e brep.Edge, dir Direction) (techdraw.Primitive, error) {
	var (
		prim techdraw.Primitive
		err  error
	)
	c := e.Curve()
	switch c.Kind {
	case brep.CurveLine:
		prim, err = p.line(e, dir)
		if err != nil {
			return prim, err
		}
	case brep.CurveCircle:
		prim, err = p.conic(e, dir, r3.Scale(c.Radius, c.XDir), r3.Scale(c.Radius, c.YDir()))
	case brep.CurveEllipse:
		prim, err = p.conic(e, dir, r3.Scale(c.Radius, c.XDir), r3.Scale(c.MinorRadius, c.YDir()))
	default:
		return p.polyline(e, dir)
	}
	if errors.Is(err, errEndOn) {
		return prim, err
	}
	if err != nil || !prim.Valid() {
		return p.polyline(e, dir)
	}
	return prim, nil
}

func (p Projector) line(e brep.Edge, dir Direction) (techdraw.Primitive, error) {
	a, b := e.Endpoints()
	a2, b2 := dir.Point(a), dir.Point(b)
	if !d2.Finite(a2) || !d2.Finite(b2) {
		return techdraw.Primitive{}, fmt.Errorf("line endpoints: %w", techdraw.ErrDegenerate)
	}
	if d2.Dist(a2, b2) <= p.Tolerance {
		return techdraw.Primitive{}, errEndOn
	}
	return techdraw.NewLine(a2, b2), nil
}

// conic projects the curve center + cos(t)·a + sin(t)·b. The projected semi
// axes are the singular values of the 2×2 map [a' b'].
func (p Projector) conic(e brep.Edge, dir Direction, a, b r3.Vec) (techdraw.Primitive, error) {
	c := e.Curve()
	center := dir.Point(c.Center)
	a2, b2 := dir.Point(a), dir.Point(b)
	m := mat.NewDense(2, 2, []float64{a2.X, b2.X, a2.Y, b2.Y})
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		return techdraw.Primitive{}, errors.New("conic factorization failed")
	}
	sv := svd.Values(nil)
	major, minor := sv[0], sv[1]
	var u mat.Dense
	svd.UTo(&u)
	axis := r2.Vec{X: u.At(0, 0), Y: u.At(1, 0)}
	if major <= p.Tolerance {
		return techdraw.Primitive{}, errEndOn
	}
	span := brep.Span(e)
	closed := span >= 2*math.Pi-p.ArcTolerance
	switch {
	case minor <= p.Tolerance && closed:
		return techdraw.NewLine(r2.Sub(center, r2.Scale(major, axis)), r2.Add(center, r2.Scale(major, axis))), nil
	case minor <= p.Tolerance:
		return p.edgeOn(e, dir, center, axis)
	case major-minor <= 1e-9*major:
		if closed {
			return techdraw.NewCircle(center, major), nil
		}
		return p.arc(e, dir, center, major, span), nil
	case closed:
		return techdraw.NewEllipse(center, major, minor, math.Atan2(axis.Y, axis.X)), nil
	}
	return techdraw.Primitive{}, errors.New("oblique partial conic")
}

// arc derives the sweep and large-arc flags of a projected circular arc.
func (p Projector) arc(e brep.Edge, dir Direction, center r2.Vec, r, span float64) techdraw.Primitive {
	s3, e3 := e.Endpoints()
	start, end := dir.Point(s3), dir.Point(e3)
	large := span > math.Pi
	cross := r2.Cross(r2.Sub(start, center), r2.Sub(end, center))
	var ccw bool
	if math.Abs(cross) <= 1e-9*r*r {
		// Half circle: the endpoints do not tell the direction.
		t0, t1 := e.Range()
		mid := dir.Point(e.Value((t0 + t1) / 2))
		ccw = r2.Cross(r2.Sub(start, center), r2.Sub(mid, center)) > 0
	} else {
		ccw = (cross > 0) != large
	}
	return techdraw.NewArc(center, r, start, end, ccw, large)
}

// edgeOn collapses a partial conic seen edge-on into the line covering its
// samples.
func (p Projector) edgeOn(e brep.Edge, dir Direction, center, axis r2.Vec) (techdraw.Primitive, error) {
	pts, err := e.Discretize(p.samples())
	if err != nil {
		return techdraw.Primitive{}, err
	}
	tmin, tmax := math.Inf(1), math.Inf(-1)
	for _, pt := range pts {
		t := r2.Dot(r2.Sub(dir.Point(pt), center), axis)
		tmin, tmax = math.Min(tmin, t), math.Max(tmax, t)
	}
	if tmax-tmin <= p.Tolerance {
		return techdraw.Primitive{}, errEndOn
	}
	return techdraw.NewLine(r2.Add(center, r2.Scale(tmin, axis)), r2.Add(center, r2.Scale(tmax, axis))), nil
}

func (p Projector) polyline(e brep.Edge, dir Direction) (techdraw.Primitive, error) {
	pts, err := e.Discretize(p.samples())
	if err != nil {
		return techdraw.Primitive{}, fmt.Errorf("discretize %s edge: %w", e.Curve().Kind, err)
	}
	var out []r2.Vec
	for _, pt := range pts {
		q := dir.Point(pt)
		if !d2.Finite(q) {
			continue
		}
		if len(out) > 0 && d2.Dist(out[len(out)-1], q) <= p.Tolerance {
			continue
		}
		out = append(out, q)
	}
	if len(out) < 2 {
		return techdraw.Primitive{}, fmt.Errorf("%s edge has %d usable points: %w", e.Curve().Kind, len(out), techdraw.ErrDegenerate)
	}
	return techdraw.NewPolyline(out), nil
}

func (p Projector) samples() int {
	if p.Samples < 2 {
		return 20
	}
	return p.Samples
}

// Solid projects every edge of s along dir and removes hidden duplicates.
// Edges that cannot be projected are skipped and reported as diagnostics.
func (p Projector) Solid(s brep.Solid, dir Direction) ([]techdraw.Primitive, []techdraw.Diagnostic) {
	var (
		prims []techdraw.Primitive
		diags []techdraw.Diagnostic
	)
	for i, e := range s.Edges() {
		prim, err := p.Edge(e, dir)
		if errors.Is(err, errEndOn) {
			continue
		}
		if err != nil {
			diags = append(diags, techdraw.Diagnostic{Kind: techdraw.GeometryExtraction, View: dir.Name, Source: i, Err: err})
			continue
		}
		prim.Source = i
		prims = append(prims, prim)
	}
	return Dedupe(prims, p.Tolerance), diags
}
