package export

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/internal/d2"
	"github.com/yofu/dxf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot/cmpimg"
)

// testDrawing returns a single 50×30 view at scale 2 with a hole, a fillet
// arc, an ellipse and three dimensions.
func testDrawing(t *testing.T) *techdraw.Drawing {
	t.Helper()
	page, err := techdraw.PaperSize("A4", true)
	if err != nil {
		t.Fatal(err)
	}
	prims := []techdraw.Primitive{
		techdraw.NewLine(r2.Vec{0, 0}, r2.Vec{50, 0}),
		techdraw.NewLine(r2.Vec{50, 0}, r2.Vec{50, 25}),
		techdraw.NewArc(r2.Vec{45, 25}, 5, r2.Vec{50, 25}, r2.Vec{45, 30}, true, false),
		techdraw.NewLine(r2.Vec{45, 30}, r2.Vec{0, 30}),
		techdraw.NewLine(r2.Vec{0, 30}, r2.Vec{0, 0}),
		techdraw.NewCircle(r2.Vec{15, 15}, 6),
		techdraw.NewEllipse(r2.Vec{35, 12}, 4, 2, math.Pi/6),
	}
	v := techdraw.NewView("front", techdraw.RoleFront, prims)
	v.Type = techdraw.TypeFront
	v.Transform = techdraw.Transform{Scale: 2, Translate: r2.Vec{X: 60, Y: 120}}
	v.CenterMarks = []techdraw.CenterMark{{Center: r2.Vec{15, 15}, HalfLength: 9}}
	v.Dimensions = []techdraw.Dimension{
		{Kind: techdraw.Linear, Axis: techdraw.Horizontal, P1: r2.Vec{0, 0}, P2: r2.Vec{50, 0}, Anchor: r2.Vec{25, -5}, Value: 50, Label: "50", Major: true},
		{Kind: techdraw.Linear, Axis: techdraw.Vertical, P1: r2.Vec{50, 0}, P2: r2.Vec{50, 25}, Anchor: r2.Vec{55, 12.5}, Value: 25, Label: "25", Major: true},
		{Kind: techdraw.Diametric, Center: r2.Vec{15, 15}, Radius: 6, Anchor: r2.Vec{15 + 6*math.Sqrt2/2, 15 + 6*math.Sqrt2/2}, Value: 12, Label: "Ø12"},
	}
	return &techdraw.Drawing{Page: page, Scale: 2, Views: []*techdraw.View{v}, Thickness: 5}
}

func TestWriteSVG(t *testing.T) {
	d := testDrawing(t)
	var a, b bytes.Buffer
	if err := WriteSVG(&a, d); err != nil {
		t.Fatal(err)
	}
	if err := WriteSVG(&b, d); err != nil {
		t.Fatal(err)
	}
	ok, err := cmpimg.Equal("svg", a.Bytes(), b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("svg output is not deterministic")
	}
	out := a.String()
	if !strings.Contains(out, "<svg") {
		t.Fatal("missing svg element")
	}
	notes := d.Notes()
	if got, want := strings.Count(out, "<text"), len(d.Views[0].Dimensions)+len(notes); got != want {
		t.Errorf("want %d text elements, got %d", want, got)
	}
	for _, s := range append([]string{"50", "25", "Ø12"}, notes...) {
		if !strings.Contains(out, ">"+s+"</text>") {
			t.Errorf("missing label %q", s)
		}
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("center lines are not dashed")
	}

	if err := WriteSVG(&a, &techdraw.Drawing{}); err == nil {
		t.Error("drawing without a page accepted")
	}
}

func TestDXFRoundTrip(t *testing.T) {
	d := testDrawing(t)
	path := filepath.Join(t.TempDir(), "drawing.dxf")
	if err := WriteDXF(path, d); err != nil {
		t.Fatal(err)
	}
	prims, err := ReadDXF(path)
	if err != nil {
		t.Fatal(err)
	}
	count := map[techdraw.PrimitiveKind]int{}
	var circle, arc techdraw.Primitive
	for _, p := range prims {
		count[p.Kind]++
		switch p.Kind {
		case techdraw.KindCircle:
			circle = p
		case techdraw.KindArc:
			arc = p
		}
	}
	if count[techdraw.KindCircle] != 1 || count[techdraw.KindArc] != 1 {
		t.Fatalf("want one circle and one arc, got %v", count)
	}
	v := d.Views[0]
	sheet := func(p r2.Vec) r2.Vec {
		p = v.Transform.Apply(p)
		return r2.Vec{X: p.X, Y: d.Page.Height - p.Y}
	}
	const tol = 1e-3
	if !d2.EqualWithin(circle.Center, sheet(r2.Vec{15, 15}), tol) || math.Abs(circle.Radius-12) > tol {
		t.Errorf("hole written at %v r=%g", circle.Center, circle.Radius)
	}
	if !d2.EqualWithin(arc.P0, sheet(r2.Vec{50, 25}), tol) || !d2.EqualWithin(arc.P1, sheet(r2.Vec{45, 30}), tol) {
		t.Errorf("fillet written from %v to %v", arc.P0, arc.P1)
	}
	if _, span := arc.ArcAngles(); math.Abs(span-math.Pi/2) > 1e-6 {
		t.Errorf("fillet span %g", span)
	}
	// Outline, frame, title block, center marks, dimension and arrow lines.
	if count[techdraw.KindLine] < 4+4+4+2 {
		t.Errorf("only %d lines written", count[techdraw.KindLine])
	}
}

func TestReadDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.dxf")
	dw := dxf.NewDrawing()
	dw.Line(0, 0, 0, 40, 0, 0)
	dw.Circle(10, 10, 0, 3)
	dw.Arc(20, 20, 0, 5, 0, 90)
	if err := dw.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	prims, err := ReadDXF(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(prims) != 3 {
		t.Fatalf("want 3 primitives, got %d", len(prims))
	}
	const tol = 1e-6
	line, circle, arc := prims[0], prims[1], prims[2]
	if line.Kind != techdraw.KindLine || math.Abs(line.Length()-40) > tol {
		t.Errorf("line %+v", line)
	}
	if circle.Kind != techdraw.KindCircle || circle.Radius != 3 || circle.Center != (r2.Vec{10, 10}) {
		t.Errorf("circle %+v", circle)
	}
	if arc.Kind != techdraw.KindArc || !arc.Sweep || arc.LargeArc {
		t.Fatalf("arc %+v", arc)
	}
	if !d2.EqualWithin(arc.P0, r2.Vec{25, 20}, tol) || !d2.EqualWithin(arc.P1, r2.Vec{20, 25}, tol) {
		t.Errorf("arc from %v to %v", arc.P0, arc.P1)
	}

	if _, err := ReadDXF(filepath.Join(t.TempDir(), "missing.dxf")); err == nil {
		t.Error("missing file accepted")
	}
	empty := filepath.Join(t.TempDir(), "empty.dxf")
	if err := dxf.NewDrawing().SaveAs(empty); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadDXF(empty); !errors.Is(err, techdraw.ErrEmptyGeometry) {
		t.Errorf("empty sheet: %v", err)
	}
}

func TestEllipsePoints(t *testing.T) {
	p := techdraw.NewEllipse(r2.Vec{3, 4}, 5, 2, math.Pi/3)
	pts := ellipse(p, 36)
	if len(pts) != 37 || pts[0] != pts[36] {
		t.Fatalf("ellipse not closed: %d points", len(pts))
	}
	s, c := math.Sincos(-p.Rotation)
	for _, q := range pts {
		d := r2.Sub(q, p.Center)
		x, y := d.X*c-d.Y*s, d.X*s+d.Y*c
		if e := x*x/25 + y*y/4; math.Abs(e-1) > 1e-9 {
			t.Errorf("point %v off the ellipse: %g", q, e)
		}
	}
}

func TestArrowHead(t *testing.T) {
	b0, b1 := arrowHead(r2.Vec{10, 0}, r2.Vec{2, 0}, 3)
	if !d2.EqualWithin(b0, r2.Vec{7, 0.5}, 1e-12) || !d2.EqualWithin(b1, r2.Vec{7, -0.5}, 1e-12) {
		t.Errorf("arrow base %v %v", b0, b1)
	}
}
