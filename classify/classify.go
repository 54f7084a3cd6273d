// Package classify assigns view types to groups of drawing primitives from
// the directions of their lines and the presence of circles.
package classify

import (
	"math"

	"github.com/soypat/techdraw"
)

// Extract counts the line directions, circles and arcs of prims. Lines
// shorter than h.MinFeatureLength count towards the total only.
func Extract(prims []techdraw.Primitive, h techdraw.Heuristics) techdraw.Features {
	nb := int(math.Ceil(180 / h.AngleBucket))
	f := techdraw.Features{Buckets: make([]int, nb)}
	for _, p := range prims {
		switch p.Kind {
		case techdraw.KindCircle:
			f.Circles++
			continue
		case techdraw.KindArc:
			f.Arcs++
			continue
		case techdraw.KindLine:
		default:
			continue
		}
		f.Lines++
		if p.Length() < h.MinFeatureLength {
			continue
		}
		a := p.Angle()
		switch {
		case a < h.AngleTolerance || a > 180-h.AngleTolerance:
			f.Horizontal++
		case math.Abs(a-90) < h.AngleTolerance:
			f.Vertical++
		default:
			f.Diagonal++
		}
		f.Buckets[Bucket(a, h.AngleBucket, nb)]++
	}
	return f
}

// Bucket returns the histogram bucket of a line angle in degrees. Angles
// rounding up to 180 share the bucket of 0.
func Bucket(angle, width float64, n int) int {
	b := int(math.Round(angle / width))
	if b >= n {
		b = 0
	}
	return b
}

// Type applies the classification rule to f. The second result is false when
// no rule matched and the view fell back to detail.
func Type(f techdraw.Features, h techdraw.Heuristics) (techdraw.ViewType, bool) {
	if f.Lines == 0 {
		return techdraw.TypeDetail, true
	}
	total := float64(f.Lines)
	diag := float64(f.Diagonal) / total
	orth := float64(f.Orthogonal()) / total
	switch {
	case diag > h.DiagonalRatio:
		return techdraw.TypeIsometric, true
	case f.Circles > 0:
		return techdraw.TypeFront, true
	case orth > h.OrthogonalRatio:
		hr := float64(f.Horizontal) / total
		vr := float64(f.Vertical) / total
		if hr > h.DominanceRatio*vr {
			return techdraw.TypeTop, true
		} else if vr > h.DominanceRatio*hr {
			return techdraw.TypeSide, true
		}
		return techdraw.TypeFront, true
	}
	return techdraw.TypeDetail, false
}

// Classify extracts the features of prims and classifies them.
func Classify(prims []techdraw.Primitive, h techdraw.Heuristics) (techdraw.ViewType, techdraw.Features, bool) {
	f := Extract(prims, h)
	t, ok := Type(f, h)
	return t, f, ok
}

// CommonBuckets returns the n most populated angle buckets of f, most
// populated first. Ties go to the lower angle.
func CommonBuckets(f techdraw.Features, n int) []int {
	var out []int
	used := make([]bool, len(f.Buckets))
	for len(out) < n {
		best := -1
		for i, c := range f.Buckets {
			if used[i] || c == 0 {
				continue
			}
			if best < 0 || c > f.Buckets[best] {
				best = i
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		out = append(out, best)
	}
	return out
}
