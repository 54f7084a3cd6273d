package brep

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/techdraw/internal/d2"
	"github.com/soypat/techdraw/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const closeTol = 1e-9

// Segment is a piece of a planar profile. Arc segments run counterclockwise
// from A to B about Center.
type Segment struct {
	A, B   r2.Vec
	Arc    bool
	Center r2.Vec
}

func (s Segment) radius() float64 { return d2.Dist(s.A, s.Center) }

// angles returns the start and end angle of an arc segment with t1 > t0.
func (s Segment) angles() (t0, t1 float64) {
	t0 = math.Atan2(s.A.Y-s.Center.Y, s.A.X-s.Center.X)
	t1 = math.Atan2(s.B.Y-s.Center.Y, s.B.X-s.Center.X)
	for t1 <= t0 {
		t1 += 2 * math.Pi
	}
	return t0, t1
}

func (s Segment) edge(z float64) Edge {
	if !s.Arc {
		return Line{A: d3.FromR2(s.A, z), B: d3.FromR2(s.B, z)}
	}
	t0, t1 := s.angles()
	return NewArc(d3.FromR2(s.Center, z), r3.Vec{Z: 1}, r3.Vec{X: 1}, s.radius(), t0, t1)
}

// points returns the segment sampled for area computations, excluding B.
func (s Segment) points() []r2.Vec {
	if !s.Arc {
		return []r2.Vec{s.A}
	}
	const n = 16
	t0, t1 := s.angles()
	r := s.radius()
	pts := make([]r2.Vec, n)
	for i := range pts {
		t := t0 + (t1-t0)*float64(i)/n
		pts[i] = r2.Add(s.Center, d2.Pol{R: r, Theta: t}.PolarToCartesian())
	}
	return pts
}

// Hole is a circular through hole of a profile.
type Hole struct {
	Center r2.Vec
	Radius float64
}

// Profile is a closed counterclockwise outline in the XY plane with
// optional circular holes.
type Profile struct {
	Outline []Segment
	Holes   []Hole
}

// Rectangle returns a w×h profile with its lower left corner at the origin.
func Rectangle(w, h float64) Profile {
	c := []r2.Vec{{0, 0}, {w, 0}, {w, h}, {0, h}}
	var p Profile
	for i := range c {
		p.Outline = append(p.Outline, Segment{A: c[i], B: c[(i+1)%len(c)]})
	}
	return p
}

// RoundedRectangle returns a w×h profile with all four corners filleted
// with radius r.
func RoundedRectangle(w, h, r float64) Profile {
	line := func(ax, ay, bx, by float64) Segment {
		return Segment{A: r2.Vec{ax, ay}, B: r2.Vec{bx, by}}
	}
	arc := func(ax, ay, bx, by, cx, cy float64) Segment {
		return Segment{A: r2.Vec{ax, ay}, B: r2.Vec{bx, by}, Arc: true, Center: r2.Vec{cx, cy}}
	}
	return Profile{Outline: []Segment{
		line(r, 0, w-r, 0),
		arc(w-r, 0, w, r, w-r, r),
		line(w, r, w, h-r),
		arc(w, h-r, w-r, h, w-r, h-r),
		line(w-r, h, r, h),
		arc(r, h, 0, h-r, r, h-r),
		line(0, h-r, 0, r),
		arc(0, r, r, 0, r, r),
	}}
}

// WithHole returns a copy of p with an added hole.
func (p Profile) WithHole(center r2.Vec, radius float64) Profile {
	p.Holes = append(append([]Hole(nil), p.Holes...), Hole{Center: center, Radius: radius})
	return p
}

// signedArea of the outline polygon, positive when counterclockwise.
func (p Profile) signedArea() float64 {
	var pts []r2.Vec
	for _, s := range p.Outline {
		pts = append(pts, s.points()...)
	}
	var a float64
	for i := range pts {
		a += r2.Cross(pts[i], pts[(i+1)%len(pts)])
	}
	return a / 2
}

// Validate checks the outline is closed and counterclockwise and the holes
// have positive radius.
func (p Profile) Validate() error {
	if len(p.Outline) < 2 {
		return errors.New("profile outline needs at least 2 segments")
	}
	for i, s := range p.Outline {
		next := p.Outline[(i+1)%len(p.Outline)]
		if !d2.EqualWithin(s.B, next.A, closeTol) {
			return fmt.Errorf("profile outline open at segment %d", i)
		}
		if d2.Dist(s.A, s.B) < closeTol {
			return fmt.Errorf("profile segment %d is degenerate", i)
		}
		if s.Arc && math.Abs(d2.Dist(s.B, s.Center)-s.radius()) > 1e-6 {
			return fmt.Errorf("profile arc %d endpoints not equidistant from center", i)
		}
	}
	if p.signedArea() <= 0 {
		return errors.New("profile outline must be counterclockwise")
	}
	for i, h := range p.Holes {
		if h.Radius <= 0 {
			return fmt.Errorf("hole %d radius must be positive", i)
		}
	}
	return nil
}

// Extrude sweeps the profile from z=0 to z=height and returns its boundary
// representation. Holes become concave cylindrical faces bounded by two full
// circles.
func Extrude(p Profile, height float64) (*Model, error) {
	if height <= 0 {
		return nil, errors.New("extrusion height must be positive")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var (
		edges       []Edge
		faces       []Face
		bottom, top []Edge
	)
	zAxis := r3.Vec{Z: 1}
	for _, s := range p.Outline {
		eb, et := s.edge(0), s.edge(height)
		seam := Line{A: d3.FromR2(s.A, 0), B: d3.FromR2(s.A, height)}
		edges = append(edges, eb, et, seam)
		bottom = append(bottom, eb)
		top = append(top, et)
		if s.Arc {
			t0, t1 := s.angles()
			r := s.radius()
			mid := r2.Add(s.Center, d2.Pol{R: r, Theta: (t0 + t1) / 2}.PolarToCartesian())
			faces = append(faces, NewFace(Cylindrical(d3.FromR2(s.Center, 0), zAxis, r, false),
				r*(t1-t0)*height, d3.FromR2(mid, height/2), eb, et))
			continue
		}
		d := r2.Sub(s.B, s.A)
		normal := r3.Vec{X: d.Y, Y: -d.X}
		mid := d2.Lerp(s.A, s.B, 0.5)
		faces = append(faces, NewFace(Planar(d3.FromR2(s.A, 0), normal),
			r2.Norm(d)*height, d3.FromR2(mid, height/2), eb, et))
	}
	capArea := p.signedArea()
	for _, h := range p.Holes {
		capArea -= math.Pi * h.Radius * h.Radius
		cb := NewCircle(d3.FromR2(h.Center, 0), zAxis, h.Radius)
		ct := NewCircle(d3.FromR2(h.Center, height), zAxis, h.Radius)
		edges = append(edges, cb, ct)
		bottom = append(bottom, cb)
		top = append(top, ct)
		faces = append(faces, NewFace(Cylindrical(d3.FromR2(h.Center, 0), zAxis, h.Radius, true),
			2*math.Pi*h.Radius*height, d3.FromR2(h.Center, height/2), cb, ct))
	}
	m := NewModel(edges, nil)
	c := m.bounds.Center()
	faces = append(faces,
		NewFace(Planar(r3.Vec{}, r3.Vec{Z: -1}), capArea, r3.Vec{X: c.X, Y: c.Y}, bottom...),
		NewFace(Planar(r3.Vec{Z: height}, zAxis), capArea, r3.Vec{X: c.X, Y: c.Y, Z: height}, top...),
	)
	m.faces = faces
	return m, nil
}
