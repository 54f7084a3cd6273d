package techdraw

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"
)

// DimensionKind is the class of a dimension annotation.
type DimensionKind uint8

const (
	Linear DimensionKind = iota
	Diametric
	Radial
)

func (k DimensionKind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Diametric:
		return "diametric"
	case Radial:
		return "radial"
	}
	return "invalid"
}

// Axis is the measuring direction of a linear dimension.
type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Dimension is an annotation measuring one or two features of a view. All
// points are in view coordinates.
type Dimension struct {
	Kind DimensionKind
	Axis Axis
	// P1 and P2 are the measured points of a linear dimension.
	P1, P2 r2.Vec
	// Center and Radius of the measured circle or arc.
	Center r2.Vec
	Radius float64
	// Anchor is the point checked for label collisions. For linear dimensions
	// it lies on the dimension line under the text, for circular ones on the
	// circle, with the text drawn at the end of the leader.
	Anchor r2.Vec
	Value  float64
	Label  string
	// Major dimensions span most of the view and are placed outside it.
	Major bool
	// Collides is set when no collision-free position was found.
	Collides bool
}

// FormatValue rounds v to the given number of decimals and drops trailing
// zeros.
func FormatValue(v float64, decimals int) string {
	return strconv.FormatFloat(Round(v, decimals), 'f', -1, 64)
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// DimensionLabel returns the label text of a dimension of the given kind.
func DimensionLabel(kind DimensionKind, v float64, decimals int) string {
	s := FormatValue(v, decimals)
	switch kind {
	case Diametric:
		return "Ø" + s
	case Radial:
		return "R" + s
	}
	return s
}

// Arrow is an arrowhead with its tip at Tip pointing along the unit vector Dir.
type Arrow struct {
	Tip, Dir r2.Vec
}

// DimensionLayout is the page-space geometry of a dimension.
type DimensionLayout struct {
	Extensions [][2]r2.Vec
	Line       [2]r2.Vec
	Arrows     []Arrow
	Text       string
	// TextAt is the baseline center of the label.
	TextAt r2.Vec
}

// Layout returns the page geometry of d drawn with transform t. Leader is the
// page length of the line extending past circular anchors.
func (d Dimension) Layout(t Transform, leader float64) DimensionLayout {
	l := DimensionLayout{Text: d.Label}
	switch d.Kind {
	case Linear:
		e1, e2 := d.P1, d.P2
		if d.Axis == Horizontal {
			e1.Y, e2.Y = d.Anchor.Y, d.Anchor.Y
		} else {
			e1.X, e2.X = d.Anchor.X, d.Anchor.X
		}
		p1, p2 := t.Apply(e1), t.Apply(e2)
		l.Extensions = [][2]r2.Vec{{t.Apply(d.P1), p1}, {t.Apply(d.P2), p2}}
		l.Line = [2]r2.Vec{p1, p2}
		if dir := r2.Sub(p2, p1); r2.Norm(dir) > 0 {
			u := r2.Unit(dir)
			l.Arrows = []Arrow{{Tip: p1, Dir: r2.Scale(-1, u)}, {Tip: p2, Dir: u}}
		}
		l.TextAt = t.Apply(r2.Scale(0.5, r2.Add(e1, e2)))
	case Diametric, Radial:
		c, a := t.Apply(d.Center), t.Apply(d.Anchor)
		u := r2.Unit(r2.Sub(a, c))
		end := r2.Add(a, r2.Scale(leader, u))
		l.Arrows = []Arrow{{Tip: a, Dir: u}}
		start := c
		if d.Kind == Diametric {
			start = r2.Sub(c, r2.Sub(a, c))
			l.Arrows = append(l.Arrows, Arrow{Tip: start, Dir: r2.Scale(-1, u)})
		}
		l.Line = [2]r2.Vec{start, end}
		l.TextAt = end
	}
	return l
}
