package techdraw

import (
	"math"

	"github.com/soypat/techdraw/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// PrimitiveKind is the shape class of a 2D drawing primitive.
type PrimitiveKind uint8

const (
	KindLine PrimitiveKind = iota + 1
	KindCircle
	KindArc
	KindEllipse
	KindPolyline
)

func (k PrimitiveKind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindCircle:
		return "circle"
	case KindArc:
		return "arc"
	case KindEllipse:
		return "ellipse"
	case KindPolyline:
		return "polyline"
	}
	return "invalid"
}

// Primitive is a 2D drawing primitive in view coordinates (y up). Only the
// fields relevant to Kind are set.
type Primitive struct {
	Kind PrimitiveKind
	// Source is the index of the originating edge, -1 if none.
	Source int
	// P0 and P1 are the endpoints of lines and the start and end points of arcs.
	P0, P1 r2.Vec
	Center r2.Vec
	Radius float64
	// RX, RY and Rotation (radians) describe ellipses.
	RX, RY, Rotation float64
	// Sweep is set for arcs running counterclockwise from P0 to P1.
	Sweep bool
	// LargeArc is set for arcs spanning more than π.
	LargeArc bool
	Points   []r2.Vec
}

func NewLine(a, b r2.Vec) Primitive {
	return Primitive{Kind: KindLine, Source: -1, P0: a, P1: b}
}

func NewCircle(center r2.Vec, radius float64) Primitive {
	return Primitive{Kind: KindCircle, Source: -1, Center: center, Radius: radius}
}

// NewArc returns an arc from start to end. Sweep selects the counterclockwise
// direction.
func NewArc(center r2.Vec, radius float64, start, end r2.Vec, sweep, large bool) Primitive {
	return Primitive{Kind: KindArc, Source: -1, Center: center, Radius: radius, P0: start, P1: end, Sweep: sweep, LargeArc: large}
}

func NewEllipse(center r2.Vec, rx, ry, rotation float64) Primitive {
	return Primitive{Kind: KindEllipse, Source: -1, Center: center, RX: rx, RY: ry, Rotation: rotation}
}

func NewPolyline(pts []r2.Vec) Primitive {
	return Primitive{Kind: KindPolyline, Source: -1, Points: pts}
}

// ArcAngles returns the counterclockwise start angle and span of an arc in
// radians.
func (p Primitive) ArcAngles() (start, span float64) {
	a0 := math.Atan2(p.P0.Y-p.Center.Y, p.P0.X-p.Center.X)
	a1 := math.Atan2(p.P1.Y-p.Center.Y, p.P1.X-p.Center.X)
	if !p.Sweep {
		a0, a1 = a1, a0
	}
	span = d2.NormAngle(a1 - a0)
	if span == 0 && p.LargeArc {
		span = 2 * math.Pi
	}
	return a0, span
}

// ArcContains reports whether the angle theta lies within the arc's sweep.
func (p Primitive) ArcContains(theta float64) bool {
	start, span := p.ArcAngles()
	return d2.NormAngle(theta-start) <= span+1e-12
}

// Bounds returns the bounding box of the primitive.
func (p Primitive) Bounds() r2.Box {
	var b d2.Box
	switch p.Kind {
	case KindLine:
		b = d2.BoxOf(p.P0, p.P1)
	case KindCircle:
		b = d2.NewBox2(p.Center, d2.Elem(2*p.Radius))
	case KindArc:
		b = d2.BoxOf(p.P0, p.P1)
		for q := 0; q < 4; q++ {
			theta := float64(q) * math.Pi / 2
			if p.ArcContains(theta) {
				b = b.Include(r2.Add(p.Center, d2.Pol{R: p.Radius, Theta: theta}.PolarToCartesian()))
			}
		}
	case KindEllipse:
		s, c := math.Sincos(p.Rotation)
		hx := math.Hypot(p.RX*c, p.RY*s)
		hy := math.Hypot(p.RX*s, p.RY*c)
		b = d2.NewBox2(p.Center, r2.Vec{2 * hx, 2 * hy})
	case KindPolyline:
		b = d2.BoxOf(p.Points...)
	default:
		b = d2.Empty()
	}
	return r2.Box(b)
}

// Samples returns the points used to decide which region of a sheet the
// primitive belongs to.
func (p Primitive) Samples() []r2.Vec {
	switch p.Kind {
	case KindLine:
		return []r2.Vec{p.P0, p.P1}
	case KindCircle:
		r := d2.Elem(p.Radius)
		return []r2.Vec{r2.Sub(p.Center, r), r2.Add(p.Center, r)}
	case KindArc:
		return []r2.Vec{p.Center, p.P0, p.P1}
	case KindEllipse:
		b := p.Bounds()
		return []r2.Vec{b.Min, b.Max}
	}
	return p.Points
}

// Midpoint returns the point halfway along lines and arcs and the center of
// the other kinds.
func (p Primitive) Midpoint() r2.Vec {
	switch p.Kind {
	case KindLine:
		return d2.Lerp(p.P0, p.P1, 0.5)
	case KindArc:
		start, span := p.ArcAngles()
		return r2.Add(p.Center, d2.Pol{R: p.Radius, Theta: start + span/2}.PolarToCartesian())
	case KindPolyline:
		return d2.Set(p.Points).Centroid()
	}
	return p.Center
}

// Length returns the length of the primitive's path.
func (p Primitive) Length() float64 {
	switch p.Kind {
	case KindLine:
		return d2.Dist(p.P0, p.P1)
	case KindCircle:
		return 2 * math.Pi * p.Radius
	case KindArc:
		_, span := p.ArcAngles()
		return p.Radius * span
	case KindEllipse:
		// Ramanujan's approximation.
		a, b := p.RX, p.RY
		return math.Pi * (3*(a+b) - math.Sqrt((3*a+b)*(a+3*b)))
	}
	var l float64
	for i := 1; i < len(p.Points); i++ {
		l += d2.Dist(p.Points[i-1], p.Points[i])
	}
	return l
}

// Angle returns the direction of a line in degrees within [0, 180).
func (p Primitive) Angle() float64 {
	d := r2.Sub(p.P1, p.P0)
	a := math.Atan2(d.Y, d.X) * 180 / math.Pi
	a = math.Mod(a, 180)
	if a < 0 {
		a += 180
	}
	if a >= 180 {
		a = 0
	}
	return a
}

// Valid reports whether the primitive has finite, non-degenerate geometry.
func (p Primitive) Valid() bool {
	switch p.Kind {
	case KindLine:
		return d2.Finite(p.P0) && d2.Finite(p.P1) && p.P0 != p.P1
	case KindCircle:
		return d2.Finite(p.Center) && p.Radius > 0 && !math.IsInf(p.Radius, 0)
	case KindArc:
		return d2.Finite(p.Center) && d2.Finite(p.P0) && d2.Finite(p.P1) && p.Radius > 0 && !math.IsInf(p.Radius, 0)
	case KindEllipse:
		return d2.Finite(p.Center) && p.RX > 0 && p.RY > 0 && !math.IsInf(p.RX, 0) && !math.IsInf(p.RY, 0)
	case KindPolyline:
		if len(p.Points) < 2 {
			return false
		}
		for _, pt := range p.Points {
			if !d2.Finite(pt) {
				return false
			}
		}
		return true
	}
	return false
}

// BoundsOf returns the union of the bounds of prims.
func BoundsOf(prims []Primitive) r2.Box {
	b := d2.Empty()
	for _, p := range prims {
		b = b.Extend(d2.Box(p.Bounds()))
	}
	if b.IsEmpty() {
		return r2.Box{}
	}
	return r2.Box(b)
}
