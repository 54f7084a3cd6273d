package techdraw

import (
	"github.com/soypat/techdraw/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// ViewType is the classification of a view's geometry.
type ViewType uint8

const (
	TypeUnknown ViewType = iota
	TypeFront
	TypeTop
	TypeSide
	TypeDetail
	TypeIsometric
)

// SkipPriority is the priority of view types that are never dimensioned.
const SkipPriority = 999

func (t ViewType) String() string {
	switch t {
	case TypeFront:
		return "front"
	case TypeTop:
		return "top"
	case TypeSide:
		return "side"
	case TypeDetail:
		return "detail"
	case TypeIsometric:
		return "isometric"
	}
	return "unknown"
}

// Priority returns the dimensioning order of the view type. Lower values are
// dimensioned first.
func (t ViewType) Priority() int {
	switch t {
	case TypeFront:
		return 1
	case TypeTop:
		return 2
	case TypeSide:
		return 3
	case TypeDetail:
		return 4
	}
	return SkipPriority
}

// Skipped reports whether views of this type receive no dimensions.
func (t ViewType) Skipped() bool { return t.Priority() >= SkipPriority }

// Role is the slot a view occupies in the page layout.
type Role uint8

const (
	RoleFront Role = iota
	RoleTop
	RoleSide
	RoleIso
)

func (r Role) String() string {
	switch r {
	case RoleFront:
		return "front"
	case RoleTop:
		return "top"
	case RoleSide:
		return "side"
	case RoleIso:
		return "iso"
	}
	return "role?"
}

// Transform maps view coordinates (y up) to page coordinates in millimetres
// (y down, origin at the top left corner of the page).
type Transform struct {
	Scale     float64
	Translate r2.Vec
}

// Apply maps p into page coordinates.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: t.Translate.X + t.Scale*p.X, Y: t.Translate.Y - t.Scale*p.Y}
}

// Invert maps a page coordinate back to view coordinates.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - t.Translate.X) / t.Scale, Y: (t.Translate.Y - p.Y) / t.Scale}
}

// Box maps a view-space box to page space.
func (t Transform) Box(b r2.Box) r2.Box {
	return r2.Box(d2.BoxOf(t.Apply(b.Min), t.Apply(b.Max)))
}

// CenterMark is a pair of crossed center lines over a hole.
type CenterMark struct {
	Center     r2.Vec
	HalfLength float64
}

// Lines returns the horizontal and vertical center line.
func (c CenterMark) Lines() [2][2]r2.Vec {
	h, v := r2.Vec{X: c.HalfLength}, r2.Vec{Y: c.HalfLength}
	return [2][2]r2.Vec{
		{r2.Sub(c.Center, h), r2.Add(c.Center, h)},
		{r2.Sub(c.Center, v), r2.Add(c.Center, v)},
	}
}

// Features summarizes the line directions and curves of a view.
type Features struct {
	// Lines counts every line, including those too short to have a direction.
	Lines                          int
	Horizontal, Vertical, Diagonal int
	Circles, Arcs                  int
	// Buckets counts line directions in steps of the angle bucket over [0, 180).
	Buckets []int
}

// Orthogonal returns the number of horizontal and vertical lines.
func (f Features) Orthogonal() int { return f.Horizontal + f.Vertical }

// View is a named projection of the solid with its annotations.
type View struct {
	Name       string
	Role       Role
	Type       ViewType
	Features   Features
	Primitives []Primitive
	// Bounds of the primitives in view coordinates.
	Bounds      r2.Box
	Transform   Transform
	CenterMarks []CenterMark
	Dimensions  []Dimension
}

// NewView returns a view over prims with computed bounds and a unit transform.
func NewView(name string, role Role, prims []Primitive) *View {
	return &View{
		Name:       name,
		Role:       role,
		Primitives: prims,
		Bounds:     BoundsOf(prims),
		Transform:  Transform{Scale: 1},
	}
}

// PageBox returns the view's bounds on the page.
func (v *View) PageBox() r2.Box {
	return v.Transform.Box(v.Bounds)
}

// Size returns the width and height of the view in view units.
func (v *View) Size() r2.Vec {
	return r2.Sub(v.Bounds.Max, v.Bounds.Min)
}
