package techdraw

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestArcAngles(t *testing.T) {
	c := r2.Vec{}
	// Quarter arc from +x to +y counterclockwise.
	ccw := NewArc(c, 1, r2.Vec{1, 0}, r2.Vec{0, 1}, true, false)
	start, span := ccw.ArcAngles()
	if math.Abs(start) > 1e-12 || math.Abs(span-math.Pi/2) > 1e-12 {
		t.Errorf("ccw arc start=%g span=%g", start, span)
	}
	// Same endpoints clockwise covers three quarters.
	cw := NewArc(c, 1, r2.Vec{1, 0}, r2.Vec{0, 1}, false, true)
	_, span = cw.ArcAngles()
	if math.Abs(span-3*math.Pi/2) > 1e-12 {
		t.Errorf("cw arc span=%g", span)
	}
	if !cw.ArcContains(math.Pi) || cw.ArcContains(math.Pi/4) {
		t.Error("cw arc containment wrong")
	}
}

func TestPrimitiveBounds(t *testing.T) {
	tests := []struct {
		name string
		p    Primitive
		want r2.Box
	}{
		{"line", NewLine(r2.Vec{3, 1}, r2.Vec{0, 2}), r2.Box{Min: r2.Vec{0, 1}, Max: r2.Vec{3, 2}}},
		{"circle", NewCircle(r2.Vec{1, 1}, 2), r2.Box{Min: r2.Vec{-1, -1}, Max: r2.Vec{3, 3}}},
		{"quarter", NewArc(r2.Vec{}, 1, r2.Vec{1, 0}, r2.Vec{0, 1}, true, false), r2.Box{Max: r2.Vec{1, 1}}},
		{"half", NewArc(r2.Vec{}, 1, r2.Vec{1, 0}, r2.Vec{-1, 0}, true, false), r2.Box{Min: r2.Vec{-1, 0}, Max: r2.Vec{1, 1}}},
		{"ellipse", NewEllipse(r2.Vec{}, 2, 1, math.Pi/2), r2.Box{Min: r2.Vec{-1, -2}, Max: r2.Vec{1, 2}}},
	}
	for _, test := range tests {
		got := test.p.Bounds()
		if diff := cmp.Diff(test.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("%s bounds (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestLineAngle(t *testing.T) {
	for _, test := range []struct {
		a, b r2.Vec
		want float64
	}{
		{r2.Vec{0, 0}, r2.Vec{1, 0}, 0},
		{r2.Vec{1, 0}, r2.Vec{0, 0}, 0},
		{r2.Vec{0, 0}, r2.Vec{0, -1}, 90},
		{r2.Vec{0, 0}, r2.Vec{1, 1}, 45},
		{r2.Vec{0, 0}, r2.Vec{-1, 1}, 135},
	} {
		got := NewLine(test.a, test.b).Angle()
		if math.Abs(got-test.want) > 1e-9 {
			t.Errorf("angle %v->%v = %g, want %g", test.a, test.b, got, test.want)
		}
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tf := Transform{Scale: 0.5, Translate: r2.Vec{100, 80}}
	p := r2.Vec{10, 20}
	q := tf.Apply(p)
	if q != (r2.Vec{105, 70}) {
		t.Fatalf("apply got %v", q)
	}
	if back := tf.Invert(q); back != p {
		t.Fatalf("invert got %v", back)
	}
}

func TestLabels(t *testing.T) {
	for _, test := range []struct {
		kind DimensionKind
		v    float64
		want string
	}{
		{Linear, 50, "50"},
		{Linear, 12.345, "12.3"},
		{Diametric, 12, "Ø12"},
		{Radial, 4.96, "R5"},
	} {
		if got := DimensionLabel(test.kind, test.v, 1); got != test.want {
			t.Errorf("label %v %g = %q, want %q", test.kind, test.v, got, test.want)
		}
	}
	if got := FormatScale(0.5); got != "1:2" {
		t.Errorf("scale 0.5 = %q", got)
	}
	if got := FormatScale(2); got != "2:1" {
		t.Errorf("scale 2 = %q", got)
	}
}

func TestLinearLayout(t *testing.T) {
	d := Dimension{Kind: Linear, Axis: Horizontal, P1: r2.Vec{0, 0}, P2: r2.Vec{50, 0}, Anchor: r2.Vec{25, -10}, Label: "50"}
	l := d.Layout(Transform{Scale: 1}, 5)
	want := [2]r2.Vec{{0, 10}, {50, 10}}
	if l.Line != want {
		t.Errorf("dimension line %v, want %v", l.Line, want)
	}
	if len(l.Extensions) != 2 || len(l.Arrows) != 2 {
		t.Fatalf("want 2 extension lines and arrows, got %d and %d", len(l.Extensions), len(l.Arrows))
	}
	if l.TextAt != (r2.Vec{25, 10}) {
		t.Errorf("text at %v", l.TextAt)
	}
}

func TestPaperSize(t *testing.T) {
	p, err := PaperSize("a4", true)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 297 || p.Height != 210 {
		t.Errorf("A4 landscape got %gx%g", p.Width, p.Height)
	}
	u := p.Usable()
	if u.Max.Y != 210-DefaultMargin-DefaultTitleBlock {
		t.Errorf("usable area ignores title block: %v", u)
	}
	if _, err := PaperSize("B5", false); err == nil {
		t.Error("expected unknown paper size error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	cfg, err := ConfigFromEnv(map[string]string{
		"AUTO_SCALE":             "false",
		"SCALE":                  "0.5",
		"DIMENSION_OFFSET_MAJOR": "12",
		"SHOW_CENTER_LINES":      "0",
		"CURVE_SAMPLES":          "32",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.AutoScale = false
	want.Scale = 0.5
	want.DimensionOffsetMajor = 12
	want.ShowCenterLines = false
	want.CurveSamples = 32
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	_, err = ConfigFromEnv(map[string]string{"SCALE": "big"})
	if err == nil || !strings.Contains(err.Error(), "SCALE") {
		t.Errorf("expected SCALE parse error, got %v", err)
	}
	_, err = ConfigFromEnv(map[string]string{"MIN_HOLE_RADIUS": "10", "MAX_HOLE_RADIUS": "5"})
	if err == nil {
		t.Error("expected validation error for inverted hole radius range")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := t.TempDir() + "/test.env"
	if err := os.WriteFile(path, []byte("SCALE=2\nAUTO_SCALE=false\nPAPER_SIZE=A4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	env, err := LoadEnv(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := ConfigFromEnv(env)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AutoScale || cfg.Scale != 2 {
		t.Errorf("env file not applied: auto=%v scale=%g", cfg.AutoScale, cfg.Scale)
	}
	page, err := PageFromEnv(env)
	if err != nil {
		t.Fatal(err)
	}
	if page.Width != 297 {
		t.Errorf("want A4 landscape width 297, got %g", page.Width)
	}
	if _, err := LoadEnv(path + ".missing"); err == nil {
		t.Error("expected error for missing env file")
	}
}

func TestDiagnosticUnwrap(t *testing.T) {
	d := Diagnostic{Kind: GeometryExtraction, View: "front", Source: 3, Err: ErrDegenerate}
	if !errors.Is(d, ErrDegenerate) {
		t.Error("diagnostic should unwrap to its cause")
	}
	if !strings.Contains(d.Error(), "edge 3") {
		t.Errorf("unexpected message %q", d.Error())
	}
}
