package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/brep"
	"github.com/soypat/techdraw/project"
	"gonum.org/v1/gonum/spatial/r2"
)

var heur = techdraw.DefaultConfig().Heuristics

func line(x0, y0, x1, y1 float64) techdraw.Primitive {
	return techdraw.NewLine(r2.Vec{x0, y0}, r2.Vec{x1, y1})
}

func rect(x, y, w, h float64) []techdraw.Primitive {
	return []techdraw.Primitive{
		line(x, y, x+w, y),
		line(x+w, y, x+w, y+h),
		line(x+w, y+h, x, y+h),
		line(x, y+h, x, y),
	}
}

func TestExtract(t *testing.T) {
	prims := []techdraw.Primitive{
		line(0, 0, 10, 0),
		line(0, 0, 10, 1),   // ~5.7°, still horizontal
		line(0, 0, 0.1, 10), // vertical
		line(0, 0, 10, 10),  // 45°
		line(10, 0, 0, 0.5), // ~177°
		line(0, 0, 0.05, 0), // too short for a direction
		techdraw.NewCircle(r2.Vec{}, 1),
		techdraw.NewArc(r2.Vec{}, 1, r2.Vec{1, 0}, r2.Vec{0, 1}, true, false),
	}
	got := Extract(prims, heur)
	want := techdraw.Features{
		Lines:      6,
		Horizontal: 3,
		Vertical:   1,
		Diagonal:   1,
		Circles:    1,
		Arcs:       1,
		Buckets:    []int{3, 0, 0, 1, 0, 0, 1, 0, 0, 0, 0, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("features mismatch (-want +got):\n%s", diff)
	}
}

func TestType(t *testing.T) {
	for _, test := range []struct {
		name string
		f    techdraw.Features
		want techdraw.ViewType
		ok   bool
	}{
		{"empty", techdraw.Features{}, techdraw.TypeDetail, true},
		{"outline", techdraw.Features{Lines: 4, Horizontal: 2, Vertical: 2}, techdraw.TypeFront, true},
		{"holes", techdraw.Features{Lines: 4, Horizontal: 2, Vertical: 1, Diagonal: 1, Circles: 2}, techdraw.TypeFront, true},
		{"wide", techdraw.Features{Lines: 4, Horizontal: 3, Vertical: 1}, techdraw.TypeTop, true},
		{"tall", techdraw.Features{Lines: 4, Horizontal: 1, Vertical: 3}, techdraw.TypeSide, true},
		{"iso", techdraw.Features{Lines: 12, Vertical: 4, Diagonal: 8}, techdraw.TypeIsometric, true},
		{"mixed", techdraw.Features{Lines: 8, Horizontal: 3, Vertical: 3, Diagonal: 2}, techdraw.TypeDetail, false},
	} {
		got, ok := Type(test.f, heur)
		if got != test.want || ok != test.ok {
			t.Errorf("%s: got %s (%v), want %s (%v)", test.name, got, ok, test.want, test.ok)
		}
	}
}

func TestIsometricNeverDimensioned(t *testing.T) {
	m, err := brep.Extrude(brep.Rectangle(50, 50), 5)
	if err != nil {
		t.Fatal(err)
	}
	prims, _ := project.NewProjector(techdraw.DefaultConfig()).Solid(m, project.Isometric)
	typ, f, _ := Classify(prims, heur)
	if typ != techdraw.TypeIsometric {
		t.Fatalf("isometric plate classified as %s with features %+v", typ, f)
	}
	if !typ.Skipped() || typ.Priority() < techdraw.SkipPriority {
		t.Errorf("isometric views must be skipped, priority %d", typ.Priority())
	}
}

func TestRegionsGrid(t *testing.T) {
	var prims []techdraw.Primitive
	prims = append(prims, rect(0, 60, 40, 40)...)
	prims = append(prims, techdraw.NewCircle(r2.Vec{20, 80}, 5))
	prims = append(prims, rect(60, 60, 40, 40)...)
	prims = append(prims, line(70, 60, 70, 100), line(80, 60, 80, 100), line(90, 60, 90, 100))
	prims = append(prims, rect(0, 0, 40, 40)...)
	prims = append(prims, line(0, 10, 40, 10), line(0, 20, 40, 20), line(0, 30, 40, 30))
	prims = append(prims, line(60, 20, 80, 0), line(80, 0, 100, 20), line(100, 20, 80, 40), line(80, 40, 60, 20))

	regions := Regions(prims, heur)
	want := []struct {
		name string
		typ  techdraw.ViewType
		n    int
	}{
		{FrontRegion, techdraw.TypeFront, 5},
		{SideRegion, techdraw.TypeSide, 7},
		{TopRegion, techdraw.TypeTop, 7},
		{IsoRegion, techdraw.TypeIsometric, 4},
	}
	if len(regions) != len(want) {
		t.Fatalf("want %d regions, got %d", len(want), len(regions))
	}
	for i, w := range want {
		r := regions[i]
		if r.Name != w.name || r.Type != w.typ || len(r.Primitives) != w.n {
			t.Errorf("region %d: got %s %s with %d primitives, want %s %s with %d",
				i, r.Name, r.Type, len(r.Primitives), w.name, w.typ, w.n)
		}
	}
}

func TestRegionsStrips(t *testing.T) {
	var prims []techdraw.Primitive
	prims = append(prims, rect(0, 0, 80, 40)...)
	prims = append(prims, rect(110, 0, 80, 40)...)
	prims = append(prims, rect(220, 0, 80, 40)...)
	// Straddles the first two strips, its center lies in the second.
	prims = append(prims, line(90, 20, 150, 20))

	regions := Regions(prims, heur)
	if len(regions) != 3 {
		t.Fatalf("want 3 strips, got %d", len(regions))
	}
	names := []string{FrontRegion, SideRegion, TopRegion}
	counts := []int{4, 5, 4}
	for i, r := range regions {
		if r.Name != names[i] || len(r.Primitives) != counts[i] {
			t.Errorf("strip %d: got %s with %d primitives", i, r.Name, len(r.Primitives))
		}
	}
}

func TestCommonBuckets(t *testing.T) {
	f := techdraw.Features{Buckets: []int{4, 0, 1, 0, 0, 0, 4, 0, 0, 2, 0, 0}}
	got := CommonBuckets(f, 2)
	if diff := cmp.Diff([]int{0, 6}, got); diff != "" {
		t.Errorf("common buckets (-want +got):\n%s", diff)
	}
	if got := CommonBuckets(techdraw.Features{Buckets: make([]int, 12)}, 2); len(got) != 0 {
		t.Errorf("empty histogram gave %v", got)
	}
}
