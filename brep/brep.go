// Package brep defines the boundary representation a solid-geometry provider
// hands to the drawing pipeline: edges with typed curves, faces with a tagged
// surface descriptor and the solid that owns them.
package brep

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/techdraw/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// CurveKind is the geometric class of an edge.
type CurveKind uint8

const (
	CurveUnknown CurveKind = iota
	CurveLine
	CurveCircle
	CurveEllipse
	CurveBSpline
	CurveBezier
)

func (k CurveKind) String() string {
	switch k {
	case CurveLine:
		return "line"
	case CurveCircle:
		return "circle"
	case CurveEllipse:
		return "ellipse"
	case CurveBSpline:
		return "bspline"
	case CurveBezier:
		return "bezier"
	}
	return "unknown"
}

// Curve describes the underlying geometry of an edge. Only the fields
// relevant to Kind are set.
type Curve struct {
	Kind CurveKind
	// Center of circles and ellipses.
	Center r3.Vec
	// Axis is the unit normal of the plane of a circle or ellipse.
	Axis r3.Vec
	// XDir is the unit direction of parameter zero. For ellipses it
	// points along the major axis.
	XDir r3.Vec
	// Radius of a circle or major radius of an ellipse.
	Radius float64
	// MinorRadius of an ellipse.
	MinorRadius float64
}

// YDir returns Axis × XDir, the direction of parameter π/2.
func (c Curve) YDir() r3.Vec {
	return r3.Cross(c.Axis, c.XDir)
}

// Edge is a 3D curve segment of a solid.
type Edge interface {
	Curve() Curve
	// Range returns the parameter interval of the edge. Circular and
	// elliptical edges are parametrized by angle in radians.
	Range() (first, last float64)
	Endpoints() (start, end r3.Vec)
	Value(t float64) r3.Vec
	// Discretize returns n points evenly spaced in parameter space.
	Discretize(n int) ([]r3.Vec, error)
}

// SurfaceKind is the tag of a Surface.
type SurfaceKind uint8

const (
	SurfaceFreeform SurfaceKind = iota
	SurfacePlanar
	SurfaceCylindrical
	SurfaceConical
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfacePlanar:
		return "planar"
	case SurfaceCylindrical:
		return "cylindrical"
	case SurfaceConical:
		return "conical"
	}
	return "freeform"
}

// Surface is a tagged surface descriptor.
type Surface struct {
	Kind SurfaceKind
	// Origin is a point on the plane or on the cylinder/cone axis.
	Origin r3.Vec
	// Axis is the outward plane normal or the cylinder/cone axis.
	Axis r3.Vec
	// Radius of a cylinder.
	Radius float64
	// HalfAngle of a cone in radians.
	HalfAngle float64
	// Concave is set on cylindrical faces whose material lies outside
	// the cylinder, as is the case for holes.
	Concave bool
}

// Planar returns a planar surface descriptor.
func Planar(origin, normal r3.Vec) Surface {
	return Surface{Kind: SurfacePlanar, Origin: origin, Axis: r3.Unit(normal)}
}

// Cylindrical returns a cylindrical surface descriptor.
func Cylindrical(center, axis r3.Vec, radius float64, concave bool) Surface {
	return Surface{Kind: SurfaceCylindrical, Origin: center, Axis: r3.Unit(axis), Radius: radius, Concave: concave}
}

// Conical returns a conical surface descriptor.
func Conical(apex, axis r3.Vec, halfAngle float64) Surface {
	return Surface{Kind: SurfaceConical, Origin: apex, Axis: r3.Unit(axis), HalfAngle: halfAngle}
}

// Face is a bounded patch of a surface.
type Face interface {
	Surface() Surface
	Edges() []Edge
	Area() float64
	Centroid() r3.Vec
}

// Solid is the boundary representation of a closed 3D body.
type Solid interface {
	Edges() []Edge
	Faces() []Face
	Bounds() r3.Box
}

var errFewPoints = errors.New("discretize needs at least 2 points")

// Discretize samples n points of e evenly spaced in parameter space.
func Discretize(e Edge, n int) ([]r3.Vec, error) {
	if n < 2 {
		return nil, errFewPoints
	}
	t0, t1 := e.Range()
	pts := make([]r3.Vec, n)
	for i := range pts {
		t := t0 + (t1-t0)*float64(i)/float64(n-1)
		pts[i] = e.Value(t)
		if !d3.Finite(pts[i]) {
			return nil, fmt.Errorf("non finite point at t=%g", t)
		}
	}
	return pts, nil
}

// Span returns the absolute parameter span of e.
func Span(e Edge) float64 {
	t0, t1 := e.Range()
	return math.Abs(t1 - t0)
}
