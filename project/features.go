package project

import (
	"math"
	"sort"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/brep"
	"gonum.org/v1/gonum/spatial/r3"
)

// DetectHoles returns the through holes of s: concave cylindrical faces with
// radius in [cfg.MinHoleRadius, cfg.MaxHoleRadius] bounded by at least one
// circle whose span is within ArcClosureTolerance of a full turn, the same
// closure the projector draws as a circle. Holes with the same center and
// radius are reported once.
func DetectHoles(s brep.Solid, cfg techdraw.Config) []techdraw.HoleFeature {
	h := cfg.Heuristics
	var holes []techdraw.HoleFeature
	for _, f := range s.Faces() {
		surf := f.Surface()
		if surf.Kind != brep.SurfaceCylindrical || !surf.Concave {
			continue
		}
		if surf.Radius < cfg.MinHoleRadius || surf.Radius > cfg.MaxHoleRadius {
			continue
		}
		var (
			center r3.Vec
			found  bool
		)
		for _, e := range f.Edges() {
			c := e.Curve()
			if c.Kind == brep.CurveCircle && brep.Span(e) >= 2*math.Pi-h.ArcClosureTolerance {
				center, found = c.Center, true
				break
			}
		}
		if !found {
			continue
		}
		hole := techdraw.HoleFeature{Center: center, Radius: surf.Radius, Axis: surf.Axis}
		if !containsHole(holes, hole, h) {
			holes = append(holes, hole)
		}
	}
	return holes
}

func containsHole(holes []techdraw.HoleFeature, h techdraw.HoleFeature, tol techdraw.Heuristics) bool {
	for _, o := range holes {
		if r3.Norm(r3.Sub(o.Center, h.Center)) < tol.HoleCenterTolerance && math.Abs(o.Radius-h.Radius) <= tol.DuplicateTolerance {
			return true
		}
	}
	return false
}

// CenterMarks returns crossed center lines for the holes whose axis is
// parallel to the view direction. Each line extends ext radii from the center.
func CenterMarks(holes []techdraw.HoleFeature, dir Direction, ext, parallel float64) []techdraw.CenterMark {
	var marks []techdraw.CenterMark
	for _, h := range holes {
		if math.Abs(r3.Dot(r3.Unit(h.Axis), dir.Dir)) <= parallel {
			continue
		}
		marks = append(marks, techdraw.CenterMark{Center: dir.Point(h.Center), HalfLength: ext * h.Radius})
	}
	return marks
}

// DetectThickness returns the wall thickness of plate-like solids. A solid
// whose smallest bounding dimension is under ThinRatio of the next one is a
// plate of that thickness. Otherwise the thinnest gap in (WallGapMin,
// WallGapMax) between opposite planar faces of similar area is used. The
// result is rounded to 0.1.
func DetectThickness(s brep.Solid, h techdraw.Heuristics) (float64, bool) {
	b := s.Bounds()
	sz := r3.Sub(b.Max, b.Min)
	dims := []float64{sz.X, sz.Y, sz.Z}
	sort.Float64s(dims)
	if dims[0] > 0 && dims[0] < h.ThinRatio*dims[1] {
		return techdraw.Round(dims[0], 1), true
	}
	var planar []brep.Face
	for _, f := range s.Faces() {
		if f.Surface().Kind == brep.SurfacePlanar && f.Area() > 0 {
			planar = append(planar, f)
		}
	}
	best := math.Inf(1)
	for i, f := range planar {
		n1 := f.Surface().Axis
		for _, g := range planar[i+1:] {
			if r3.Dot(n1, g.Surface().Axis) > -0.99 {
				continue
			}
			a1, a2 := f.Area(), g.Area()
			if math.Min(a1, a2)/math.Max(a1, a2) < h.AreaSimilarity {
				continue
			}
			d := math.Abs(r3.Dot(r3.Sub(g.Centroid(), f.Centroid()), n1))
			if d > h.WallGapMin && d < h.WallGapMax && d < best {
				best = d
			}
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return techdraw.Round(best, 1), true
}
