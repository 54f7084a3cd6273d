package project

import (
	"math"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Dedupe removes primitives that coincide with an earlier one and merges
// collinear lines that overlap or touch into a single line. In parallel
// projections hidden back edges land exactly on visible ones, so this leaves
// the visible outline.
func Dedupe(prims []techdraw.Primitive, tol float64) []techdraw.Primitive {
	var out []techdraw.Primitive
	for _, p := range prims {
		if p.Kind == techdraw.KindLine {
			out = append(out, p)
			continue
		}
		dup := false
		for _, q := range out {
			if same(p, q, tol) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return mergeLines(out, tol)
}

func same(a, b techdraw.Primitive, tol float64) bool {
	if a.Kind != b.Kind {
		return false
	}
	eq := func(p, q r2.Vec) bool { return d2.EqualWithin(p, q, tol) }
	near := func(x, y float64) bool { return math.Abs(x-y) <= tol }
	switch a.Kind {
	case techdraw.KindCircle:
		return eq(a.Center, b.Center) && near(a.Radius, b.Radius)
	case techdraw.KindArc:
		if !eq(a.Center, b.Center) || !near(a.Radius, b.Radius) {
			return false
		}
		as, aspan := a.ArcAngles()
		bs, bspan := b.ArcAngles()
		return near(aspan, bspan) && near(d2.NormAngle(as-bs+math.Pi), math.Pi)
	case techdraw.KindEllipse:
		dr := d2.NormAngle(a.Rotation - b.Rotation)
		return eq(a.Center, b.Center) && near(a.RX, b.RX) && near(a.RY, b.RY) &&
			(near(math.Mod(dr, math.Pi), 0) || near(math.Mod(dr, math.Pi), math.Pi))
	case techdraw.KindPolyline:
		if len(a.Points) != len(b.Points) {
			return false
		}
		fwd, rev := true, true
		n := len(a.Points)
		for i := range a.Points {
			fwd = fwd && eq(a.Points[i], b.Points[i])
			rev = rev && eq(a.Points[i], b.Points[n-1-i])
		}
		return fwd || rev
	}
	return false
}

// mergeLines replaces every group of overlapping collinear lines by their
// union, keeping the position and source of the first line of the group.
func mergeLines(prims []techdraw.Primitive, tol float64) []techdraw.Primitive {
	out := append([]techdraw.Primitive(nil), prims...)
	for i := 0; i < len(out); i++ {
		if out[i].Kind != techdraw.KindLine {
			continue
		}
		for j := i + 1; j < len(out); j++ {
			if out[j].Kind != techdraw.KindLine {
				continue
			}
			if merged, ok := union(out[i], out[j], tol); ok {
				out[i] = merged
				out = append(out[:j], out[j+1:]...)
				// The grown line may now reach lines already passed.
				j = i
			}
		}
	}
	return out
}

// union returns the union of two collinear lines that overlap or touch.
func union(a, b techdraw.Primitive, tol float64) (techdraw.Primitive, bool) {
	if d2.DistToLine(b.P0, a.P0, a.P1) > tol || d2.DistToLine(b.P1, a.P0, a.P1) > tol {
		return a, false
	}
	dir := r2.Unit(r2.Sub(a.P1, a.P0))
	t := func(p r2.Vec) float64 { return r2.Dot(r2.Sub(p, a.P0), dir) }
	a0, a1 := 0.0, t(a.P1)
	b0, b1 := t(b.P0), t(b.P1)
	if b0 > b1 {
		b0, b1 = b1, b0
	}
	if b0 > a1+tol || b1 < a0-tol {
		return a, false
	}
	lo, hi := math.Min(a0, b0), math.Max(a1, b1)
	a.P1 = r2.Add(a.P0, r2.Scale(hi, dir))
	a.P0 = r2.Add(a.P0, r2.Scale(lo, dir))
	return a, true
}
