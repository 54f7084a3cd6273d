package dimension

import (
	"math"

	"github.com/soypat/techdraw"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// Registry records the dimensions placed during one drawing generation: the
// page position of every label anchor and the values already dimensioned.
// A Registry must not be shared between drawings.
type Registry struct {
	anchors *kdtree.Tree
	// Claimed values keyed by the value scaled to an integer at the label
	// precision.
	lengths   [2]map[int64][]float64
	diameters map[int64][]float64
	radii     map[int64][]float64
	decimals  int
	tol       float64
}

// NewRegistry returns an empty registry. Values that round to the same label
// at the given decimals, or differ by at most tol, are the same value.
// Diameters are compared at 2*tol so that radii within tol match.
func NewRegistry(decimals int, tol float64) *Registry {
	return &Registry{
		anchors:   kdtree.New(kdtree.Points{}, false),
		lengths:   [2]map[int64][]float64{make(map[int64][]float64), make(map[int64][]float64)},
		diameters: make(map[int64][]float64),
		radii:     make(map[int64][]float64),
		decimals:  decimals,
		tol:       tol,
	}
}

func (r *Registry) key(v float64) int64 {
	return int64(math.Round(v * math.Pow10(r.decimals)))
}

// Len returns the number of placed anchors.
func (r *Registry) Len() int { return r.anchors.Len() }

// Nearest returns the distance from p to the closest placed anchor, or
// +Inf when nothing was placed.
func (r *Registry) Nearest(p r2.Vec) float64 {
	_, d2 := r.anchors.Nearest(kdtree.Point{p.X, p.Y})
	return math.Sqrt(d2)
}

// Collides reports whether a label anchored at page position p would sit
// closer than spacing to an already placed anchor.
func (r *Registry) Collides(p r2.Vec, spacing float64) bool {
	return r.Nearest(p) < spacing
}

// Place records a label anchored at page position p.
func (r *Registry) Place(p r2.Vec) {
	r.anchors.Insert(kdtree.Point{p.X, p.Y}, false)
}

// Anchors returns every placed page anchor.
func (r *Registry) Anchors() []r2.Vec {
	var out []r2.Vec
	r.anchors.Do(func(c kdtree.Comparable, _ *kdtree.Bounding, _ int) bool {
		p := c.(kdtree.Point)
		out = append(out, r2.Vec{X: p[0], Y: p[1]})
		return false
	})
	return out
}

// Claimed reports whether a dimension of kind and value was already placed.
// Linear dimensions are tracked per axis.
func (r *Registry) Claimed(kind techdraw.DimensionKind, axis techdraw.Axis, v float64) bool {
	s := r.set(kind, axis)
	if len(s[r.key(v)]) > 0 {
		return true
	}
	tol := r.tol
	if kind == techdraw.Diametric {
		tol *= 2
	}
	// Values within tol may round to neighbouring labels.
	for _, vals := range s {
		for _, c := range vals {
			if math.Abs(c-v) <= tol {
				return true
			}
		}
	}
	return false
}

// Claim marks a value as dimensioned. It returns false if it already was.
func (r *Registry) Claim(kind techdraw.DimensionKind, axis techdraw.Axis, v float64) bool {
	if r.Claimed(kind, axis, v) {
		return false
	}
	s := r.set(kind, axis)
	k := r.key(v)
	s[k] = append(s[k], v)
	return true
}

func (r *Registry) set(kind techdraw.DimensionKind, axis techdraw.Axis) map[int64][]float64 {
	switch kind {
	case techdraw.Diametric:
		return r.diameters
	case techdraw.Radial:
		return r.radii
	}
	return r.lengths[axis]
}
