package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Finite reports whether no component is NaN or infinite.
func Finite(a r3.Vec) bool {
	// Inf-Inf and any NaN give NaN.
	return !math.IsNaN(a.X - a.X + a.Y - a.Y + a.Z - a.Z)
}

// Lerp returns a + t(b-a).
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Perpendicular returns a unit vector orthogonal to the non-zero vector n.
func Perpendicular(n r3.Vec) r3.Vec {
	ref := r3.Vec{X: 1}
	if math.Abs(n.X) > 0.9*r3.Norm(n) {
		ref = r3.Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(n, ref))
}

// FromR2 lifts v to the plane at height z.
func FromR2(v r2.Vec, z float64) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: z}
}
