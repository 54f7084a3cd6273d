package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Box is a 2d bounding box.
type Box r2.Box

// NewBox2 creates a 2d box with a given center and size.
func NewBox2(center, size r2.Vec) Box {
	half := r2.Scale(0.5, size)
	return Box{r2.Sub(center, half), r2.Add(center, half)}
}

// Empty returns an inverted box. Including any point makes it valid.
func Empty() Box {
	return Box{Min: Elem(math.Inf(1)), Max: Elem(math.Inf(-1))}
}

// BoxOf returns the smallest box containing all points.
func BoxOf(pts ...r2.Vec) Box {
	b := Empty()
	for _, p := range pts {
		b = b.Include(p)
	}
	return b
}

// IsEmpty reports whether the box was never extended.
func (a Box) IsEmpty() bool {
	return a.Min.X > a.Max.X || a.Min.Y > a.Max.Y
}

// Extend returns a box enclosing two 2d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Include enlarges a 2d box to include a point.
func (a Box) Include(v r2.Vec) Box {
	return Box{MinElem(a.Min, v), MaxElem(a.Max, v)}
}

// Size returns the size of a 2d box.
func (a Box) Size() r2.Vec {
	if a.IsEmpty() {
		return r2.Vec{}
	}
	return r2.Sub(a.Max, a.Min)
}

// Center returns the center of a 2d box.
func (a Box) Center() r2.Vec {
	return r2.Add(a.Min, r2.Scale(0.5, a.Size()))
}

// Inflate grows the box by margin on every side.
func (a Box) Inflate(margin float64) Box {
	return Box{r2.Sub(a.Min, Elem(margin)), r2.Add(a.Max, Elem(margin))}
}

// Contains checks if the 2d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r2.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y &&
		v.X <= a.Max.X && v.Y <= a.Max.Y
}

// Overlaps reports whether the interiors of two boxes intersect.
func (a Box) Overlaps(b Box) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y
}

// Vertices returns a slice of 2d box corner vertices.
func (a Box) Vertices() Set {
	v := make([]r2.Vec, 4)
	v[0] = a.Min                    // bl
	v[1] = r2.Vec{a.Max.X, a.Min.Y} // br
	v[2] = r2.Vec{a.Min.X, a.Max.Y} // tl
	v[3] = a.Max                    // tr
	return v
}

// Split divides the box into nx columns and ny rows. Cells are returned row
// by row starting at the top row (largest y), left to right.
func (a Box) Split(nx, ny int) []Box {
	sz := a.Size()
	dx, dy := sz.X/float64(nx), sz.Y/float64(ny)
	cells := make([]Box, 0, nx*ny)
	for j := ny - 1; j >= 0; j-- {
		for i := 0; i < nx; i++ {
			min := r2.Vec{a.Min.X + float64(i)*dx, a.Min.Y + float64(j)*dy}
			cells = append(cells, Box{min, r2.Add(min, r2.Vec{dx, dy})})
		}
	}
	return cells
}
