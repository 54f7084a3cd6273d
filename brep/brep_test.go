package brep

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestExtrudePlate(t *testing.T) {
	m, err := Extrude(Rectangle(50, 50), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Edges()) != 12 {
		t.Errorf("want 12 edges, got %d", len(m.Edges()))
	}
	if len(m.Faces()) != 6 {
		t.Errorf("want 6 faces, got %d", len(m.Faces()))
	}
	want := r3.Box{Max: r3.Vec{X: 50, Y: 50, Z: 5}}
	if diff := cmp.Diff(want, m.Bounds(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
	for _, f := range m.Faces() {
		if f.Surface().Kind != SurfacePlanar {
			t.Errorf("plate face has %s surface", f.Surface().Kind)
		}
	}
}

func TestExtrudeHole(t *testing.T) {
	m, err := Extrude(Rectangle(50, 50).WithHole(r2.Vec{25, 25}, 6), 5)
	if err != nil {
		t.Fatal(err)
	}
	var concave int
	for _, f := range m.Faces() {
		s := f.Surface()
		if s.Kind == SurfaceCylindrical && s.Concave {
			concave++
			if s.Radius != 6 {
				t.Errorf("hole radius %g", s.Radius)
			}
			if len(f.Edges()) != 2 {
				t.Errorf("hole face should be bounded by 2 circles, got %d edges", len(f.Edges()))
			}
		}
	}
	if concave != 1 {
		t.Fatalf("want 1 concave face, got %d", concave)
	}
	var circles int
	for _, e := range m.Edges() {
		if e.Curve().Kind == CurveCircle && math.Abs(Span(e)-2*math.Pi) < 1e-12 {
			circles++
		}
	}
	if circles != 2 {
		t.Errorf("want 2 full circles, got %d", circles)
	}
}

func TestRoundedRectangleArcs(t *testing.T) {
	p := RoundedRectangle(40, 30, 5)
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	m, err := Extrude(p, 4)
	if err != nil {
		t.Fatal(err)
	}
	var arcs int
	for _, e := range m.Edges() {
		if e.Curve().Kind != CurveCircle {
			continue
		}
		arcs++
		if span := Span(e); math.Abs(span-math.Pi/2) > 1e-12 {
			t.Errorf("fillet span %g, want π/2", span)
		}
	}
	if arcs != 8 {
		t.Errorf("want 8 fillet arcs, got %d", arcs)
	}
	b := m.Bounds()
	if math.Abs(b.Max.X-40) > 1e-9 || math.Abs(b.Max.Y-30) > 1e-9 {
		t.Errorf("bounds %v", b)
	}
}

func TestProfileValidate(t *testing.T) {
	cw := Profile{Outline: []Segment{
		{A: r2.Vec{0, 0}, B: r2.Vec{0, 1}},
		{A: r2.Vec{0, 1}, B: r2.Vec{1, 1}},
		{A: r2.Vec{1, 1}, B: r2.Vec{0, 0}},
	}}
	if err := cw.Validate(); err == nil {
		t.Error("clockwise outline should fail validation")
	}
	open := Rectangle(1, 1)
	open.Outline[2].B = r2.Vec{5, 5}
	if err := open.Validate(); err == nil {
		t.Error("open outline should fail validation")
	}
	if _, err := Extrude(Rectangle(1, 1), 0); err == nil {
		t.Error("zero height should fail")
	}
	if err := Rectangle(1, 1).WithHole(r2.Vec{}, -1).Validate(); err == nil {
		t.Error("negative hole radius should fail")
	}
}

func TestBezierEndpoints(t *testing.T) {
	b := Bezier{Control: []r3.Vec{{}, {X: 1, Y: 2}, {X: 2}}}
	pts, err := b.Discretize(5)
	if err != nil {
		t.Fatal(err)
	}
	if pts[0] != (r3.Vec{}) || pts[4] != (r3.Vec{X: 2}) {
		t.Errorf("bad endpoints %v %v", pts[0], pts[4])
	}
	if math.Abs(pts[2].Y-1) > 1e-12 {
		t.Errorf("quadratic bezier midpoint y=%g, want 1", pts[2].Y)
	}
	if _, err := b.Discretize(1); err == nil {
		t.Error("expected error for n<2")
	}
}
