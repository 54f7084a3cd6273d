package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis aligned bounding box.
type Box r3.Box

// Empty returns an inverted box. Including any point makes it valid.
func Empty() Box {
	inf := math.Inf(1)
	return Box{Min: r3.Vec{X: inf, Y: inf, Z: inf}, Max: r3.Vec{X: -inf, Y: -inf, Z: -inf}}
}

// IsEmpty reports whether no point was included.
func (a Box) IsEmpty() bool {
	return a.Min.X > a.Max.X || a.Min.Y > a.Max.Y || a.Min.Z > a.Max.Z
}

// Include returns a grown to hold v.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: r3.Vec{X: math.Min(a.Min.X, v.X), Y: math.Min(a.Min.Y, v.Y), Z: math.Min(a.Min.Z, v.Z)},
		Max: r3.Vec{X: math.Max(a.Max.X, v.X), Y: math.Max(a.Max.Y, v.Y), Z: math.Max(a.Max.Z, v.Z)},
	}
}

// Size is zero for an empty box.
func (a Box) Size() r3.Vec {
	if a.IsEmpty() {
		return r3.Vec{}
	}
	return r3.Sub(a.Max, a.Min)
}

func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}
