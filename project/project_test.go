package project

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/brep"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var zAxis = r3.Vec{Z: 1}

func testProjector() Projector {
	return NewProjector(techdraw.DefaultConfig())
}

func plate(t *testing.T, holes ...brep.Hole) *brep.Model {
	t.Helper()
	p := brep.Rectangle(50, 50)
	p.Holes = holes
	m, err := brep.Extrude(p, 5)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCircleClosure(t *testing.T) {
	pr := testProjector()
	for _, test := range []struct {
		span  float64
		kind  techdraw.PrimitiveKind
		large bool
	}{
		{2 * math.Pi, techdraw.KindCircle, false},
		{2*math.Pi - 0.01, techdraw.KindCircle, false},
		{2*math.Pi - 0.05, techdraw.KindArc, true},
		{math.Pi / 2, techdraw.KindArc, false},
		{3 * math.Pi / 2, techdraw.KindArc, true},
	} {
		e := brep.NewArc(r3.Vec{X: 1, Y: 2}, zAxis, r3.Vec{X: 1}, 3, 0, test.span)
		got, err := pr.Edge(e, Top)
		if err != nil {
			t.Fatal(err)
		}
		if got.Kind != test.kind {
			t.Errorf("span %g: got %s, want %s", test.span, got.Kind, test.kind)
			continue
		}
		if math.Abs(got.Radius-3) > 1e-12 || got.Center != (r2.Vec{1, 2}) {
			t.Errorf("span %g: center %v radius %g", test.span, got.Center, got.Radius)
		}
		if got.Kind == techdraw.KindArc {
			if !got.Sweep {
				t.Errorf("span %g: arc about +z seen from above must run counterclockwise", test.span)
			}
			if got.LargeArc != test.large {
				t.Errorf("span %g: large arc flag %v", test.span, got.LargeArc)
			}
			_, span := got.ArcAngles()
			if math.Abs(span-test.span) > 1e-9 {
				t.Errorf("span %g: recovered span %g", test.span, span)
			}
		}
	}
}

func TestArcSweepReversed(t *testing.T) {
	pr := testProjector()
	// Seen from above, an arc about -z runs clockwise.
	e := brep.NewArc(r3.Vec{}, r3.Vec{Z: -1}, r3.Vec{X: 1}, 2, 0, math.Pi/3)
	got, err := pr.Edge(e, Top)
	if err != nil {
		t.Fatal(err)
	}
	if got.Sweep || got.LargeArc {
		t.Errorf("want clockwise small arc, got sweep=%v large=%v", got.Sweep, got.LargeArc)
	}
	// Half circles fall back to the midpoint to decide direction.
	half := brep.NewArc(r3.Vec{}, zAxis, r3.Vec{X: 1}, 2, 0, math.Pi)
	got, err = pr.Edge(half, Top)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Sweep {
		t.Error("half circle about +z should run counterclockwise")
	}
	b := got.Bounds()
	if b.Max.Y < 1.999 || b.Min.Y < -1e-9 {
		t.Errorf("half circle should cover the upper half plane, bounds %v", b)
	}
}

func TestObliqueCircle(t *testing.T) {
	pr := testProjector()
	c := brep.NewCircle(r3.Vec{}, zAxis, 2)
	got, err := pr.Edge(c, Isometric)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != techdraw.KindEllipse {
		t.Fatalf("iso circle projected to %s", got.Kind)
	}
	if math.Abs(got.RX-2*math.Sqrt(1.5)) > 1e-9 || math.Abs(got.RY-2*math.Sqrt(0.5)) > 1e-9 {
		t.Errorf("ellipse radii %g %g", got.RX, got.RY)
	}
	// Edge-on circles collapse to their diameter.
	got, err = pr.Edge(c, Front)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != techdraw.KindLine || math.Abs(got.Length()-4) > 1e-9 {
		t.Errorf("edge-on circle gave %s of length %g", got.Kind, got.Length())
	}
	// Partial oblique arcs use the polyline fallback.
	arc := brep.NewArc(r3.Vec{}, zAxis, r3.Vec{X: 1}, 2, 0, 1)
	got, err = pr.Edge(arc, Isometric)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != techdraw.KindPolyline || len(got.Points) != 20 {
		t.Errorf("oblique arc gave %s with %d points", got.Kind, len(got.Points))
	}
}

func TestFreeformEdges(t *testing.T) {
	pr := testProjector()
	pr.Samples = 8
	b := brep.Bezier{Control: []r3.Vec{{}, {X: 1, Y: 1}, {X: 2}}}
	got, err := pr.Edge(b, Top)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != techdraw.KindPolyline || len(got.Points) != 8 {
		t.Fatalf("bezier gave %s with %d points", got.Kind, len(got.Points))
	}
	point := brep.Bezier{Control: []r3.Vec{{X: 1}, {X: 1}}}
	_, err = pr.Edge(point, Top)
	if !errors.Is(err, techdraw.ErrDegenerate) {
		t.Errorf("want degenerate error, got %v", err)
	}
}

func TestSolidPlate(t *testing.T) {
	pr := testProjector()
	m := plate(t)
	prims, diags := pr.Solid(m, Top)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics %v", diags)
	}
	if len(prims) != 4 {
		t.Fatalf("top view of plate: want 4 lines, got %d", len(prims))
	}
	var h, v int
	for _, p := range prims {
		if p.Kind != techdraw.KindLine || math.Abs(p.Length()-50) > 1e-9 {
			t.Errorf("unexpected primitive %s of length %g", p.Kind, p.Length())
		}
		switch a := p.Angle(); {
		case math.Abs(a) < 1e-9:
			h++
		case math.Abs(a-90) < 1e-9:
			v++
		}
	}
	if h != 2 || v != 2 {
		t.Errorf("want 2 horizontal and 2 vertical lines, got %d and %d", h, v)
	}
	b := techdraw.BoundsOf(prims)
	if b.Max != (r2.Vec{50, 50}) || b.Min != (r2.Vec{}) {
		t.Errorf("outline bounds %v", b)
	}
	front, _ := pr.Solid(m, Front)
	if len(front) != 4 {
		t.Errorf("front view of plate: want 4 lines, got %d", len(front))
	}
}

func TestSolidPlateHole(t *testing.T) {
	pr := testProjector()
	m := plate(t, brep.Hole{Center: r2.Vec{25, 25}, Radius: 6})
	top, _ := pr.Solid(m, Top)
	var circles []techdraw.Primitive
	for _, p := range top {
		if p.Kind == techdraw.KindCircle {
			circles = append(circles, p)
		}
	}
	if len(top) != 5 || len(circles) != 1 {
		t.Fatalf("top view: want 4 lines and 1 circle, got %d primitives, %d circles", len(top), len(circles))
	}
	if circles[0].Center != (r2.Vec{25, 25}) || math.Abs(circles[0].Radius-6) > 1e-12 {
		t.Errorf("hole circle %v r=%g", circles[0].Center, circles[0].Radius)
	}
	front, _ := pr.Solid(m, Front)
	if len(front) != 4 {
		t.Errorf("front view: hidden hole lines should merge into the outline, got %d primitives", len(front))
	}
}

func TestDetectHoles(t *testing.T) {
	cfg := techdraw.DefaultConfig()
	m := plate(t, brep.Hole{Center: r2.Vec{25, 25}, Radius: 6})
	holes := DetectHoles(m, cfg)
	if len(holes) != 1 {
		t.Fatalf("want 1 hole, got %d", len(holes))
	}
	if holes[0].Radius != 6 || holes[0].Center.X != 25 || holes[0].Center.Y != 25 {
		t.Errorf("hole %+v", holes[0])
	}
	small := cfg
	small.MaxHoleRadius = 5
	if got := DetectHoles(m, small); len(got) != 0 {
		t.Errorf("radius filter ignored: %v", got)
	}
	// Rounded corners are convex and never holes.
	rounded, err := brep.Extrude(brep.RoundedRectangle(40, 30, 5), 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := DetectHoles(rounded, cfg); len(got) != 0 {
		t.Errorf("fillets detected as holes: %v", got)
	}

	marks := CenterMarks(holes, Top, 1.5, 0.99)
	if len(marks) != 1 || marks[0].HalfLength != 9 || marks[0].Center != (r2.Vec{25, 25}) {
		t.Errorf("top center marks %+v", marks)
	}
	if marks := CenterMarks(holes, Front, 1.5, 0.99); len(marks) != 0 {
		t.Errorf("front view has no hole axis parallel to view: %+v", marks)
	}
}

func TestHoleNeedsClosedCircle(t *testing.T) {
	cfg := techdraw.DefaultConfig()
	pr := NewProjector(cfg)
	center := r3.Vec{X: 25, Y: 25}
	bore := func(span float64) *brep.Model {
		e := brep.NewArc(center, zAxis, r3.Vec{X: 1}, 6, 0, span)
		f := brep.NewFace(brep.Cylindrical(center, zAxis, 6, true), 2*math.Pi*6*5, center, e)
		return brep.NewModel([]brep.Edge{e}, []brep.Face{f})
	}
	for _, test := range []struct {
		span  float64
		kind  techdraw.PrimitiveKind
		holes int
	}{
		{2 * math.Pi, techdraw.KindCircle, 1},
		{2*math.Pi - 0.01, techdraw.KindCircle, 1},
		{2*math.Pi - 0.05, techdraw.KindArc, 0},
	} {
		m := bore(test.span)
		prim, err := pr.Edge(m.Edges()[0], Top)
		if err != nil {
			t.Fatal(err)
		}
		holes := DetectHoles(m, cfg)
		if prim.Kind != test.kind || len(holes) != test.holes {
			t.Errorf("span %g: projected %v with %d holes, want %v with %d", test.span, prim.Kind, len(holes), test.kind, test.holes)
		}
		if marks := CenterMarks(holes, Top, 1.5, 0.99); len(marks) != test.holes {
			t.Errorf("span %g: %d center marks", test.span, len(marks))
		}
	}
}

func TestDetectThickness(t *testing.T) {
	h := techdraw.DefaultConfig().Heuristics
	got, ok := DetectThickness(plate(t), h)
	if !ok || got != 5 {
		t.Errorf("plate thickness %g %v", got, ok)
	}
	cube, err := brep.Extrude(brep.Rectangle(10, 10), 10)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := DetectThickness(cube, h); !ok || got != 10 {
		t.Errorf("cube wall gap %g %v", got, ok)
	}
	h.WallGapMax = 8
	if got, ok := DetectThickness(cube, h); ok {
		t.Errorf("wall gap %g outside the configured bounds", got)
	}
}

func TestDedupeMergesCollinear(t *testing.T) {
	prims := []techdraw.Primitive{
		techdraw.NewLine(r2.Vec{0, 0}, r2.Vec{5, 0}),
		techdraw.NewLine(r2.Vec{5, 0}, r2.Vec{45, 0}),
		techdraw.NewLine(r2.Vec{50, 0}, r2.Vec{45, 0}),
		techdraw.NewLine(r2.Vec{0, 1}, r2.Vec{50, 1}),
		techdraw.NewCircle(r2.Vec{1, 1}, 1),
		techdraw.NewCircle(r2.Vec{1, 1}, 1),
	}
	got := Dedupe(prims, 1e-6)
	if len(got) != 3 {
		t.Fatalf("want 3 primitives, got %d", len(got))
	}
	if got[0].P0 != (r2.Vec{0, 0}) || got[0].P1 != (r2.Vec{50, 0}) {
		t.Errorf("merged line %v %v", got[0].P0, got[0].P1)
	}
}
