package brep

import (
	"math"

	"github.com/soypat/techdraw/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Line is a straight edge from A to B.
type Line struct {
	A, B r3.Vec
}

func (l Line) Curve() Curve                       { return Curve{Kind: CurveLine} }
func (l Line) Range() (float64, float64)          { return 0, 1 }
func (l Line) Endpoints() (r3.Vec, r3.Vec)        { return l.A, l.B }
func (l Line) Value(t float64) r3.Vec             { return d3.Lerp(l.A, l.B, t) }
func (l Line) Discretize(n int) ([]r3.Vec, error) { return Discretize(l, n) }

// Circle is a circular edge between angles T0 and T1 measured
// counterclockwise about Axis from XDir.
type Circle struct {
	Center, Axis, XDir r3.Vec
	Radius             float64
	T0, T1             float64
}

// NewCircle returns a full circle.
func NewCircle(center, axis r3.Vec, radius float64) Circle {
	axis = r3.Unit(axis)
	return Circle{Center: center, Axis: axis, XDir: d3.Perpendicular(axis), Radius: radius, T1: 2 * math.Pi}
}

// NewArc returns a circular arc from t0 to t1 with parameter zero along xdir.
func NewArc(center, axis, xdir r3.Vec, radius, t0, t1 float64) Circle {
	return Circle{Center: center, Axis: r3.Unit(axis), XDir: r3.Unit(xdir), Radius: radius, T0: t0, T1: t1}
}

func (c Circle) Curve() Curve {
	return Curve{Kind: CurveCircle, Center: c.Center, Axis: c.Axis, XDir: c.XDir, Radius: c.Radius}
}
func (c Circle) Range() (float64, float64) { return c.T0, c.T1 }
func (c Circle) Endpoints() (r3.Vec, r3.Vec) {
	return c.Value(c.T0), c.Value(c.T1)
}
func (c Circle) Value(t float64) r3.Vec {
	y := r3.Cross(c.Axis, c.XDir)
	return r3.Add(c.Center, r3.Add(r3.Scale(c.Radius*math.Cos(t), c.XDir), r3.Scale(c.Radius*math.Sin(t), y)))
}
func (c Circle) Discretize(n int) ([]r3.Vec, error) { return Discretize(c, n) }

// Ellipse is an elliptical edge with its major radius along XDir.
type Ellipse struct {
	Center, Axis, XDir r3.Vec
	Major, Minor       float64
	T0, T1             float64
}

func (e Ellipse) Curve() Curve {
	return Curve{Kind: CurveEllipse, Center: e.Center, Axis: e.Axis, XDir: e.XDir, Radius: e.Major, MinorRadius: e.Minor}
}
func (e Ellipse) Range() (float64, float64) { return e.T0, e.T1 }
func (e Ellipse) Endpoints() (r3.Vec, r3.Vec) {
	return e.Value(e.T0), e.Value(e.T1)
}
func (e Ellipse) Value(t float64) r3.Vec {
	y := r3.Cross(e.Axis, e.XDir)
	return r3.Add(e.Center, r3.Add(r3.Scale(e.Major*math.Cos(t), e.XDir), r3.Scale(e.Minor*math.Sin(t), y)))
}
func (e Ellipse) Discretize(n int) ([]r3.Vec, error) { return Discretize(e, n) }

// Bezier is a free-form edge defined by its control polygon.
type Bezier struct {
	Control []r3.Vec
}

func (b Bezier) Curve() Curve              { return Curve{Kind: CurveBezier} }
func (b Bezier) Range() (float64, float64) { return 0, 1 }
func (b Bezier) Endpoints() (r3.Vec, r3.Vec) {
	if len(b.Control) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	return b.Control[0], b.Control[len(b.Control)-1]
}

// Value evaluates the curve with de Casteljau's algorithm.
func (b Bezier) Value(t float64) r3.Vec {
	if len(b.Control) == 0 {
		return r3.Vec{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	pts := append([]r3.Vec(nil), b.Control...)
	for n := len(pts) - 1; n > 0; n-- {
		for i := 0; i < n; i++ {
			pts[i] = d3.Lerp(pts[i], pts[i+1], t)
		}
	}
	return pts[0]
}
func (b Bezier) Discretize(n int) ([]r3.Vec, error) { return Discretize(b, n) }
