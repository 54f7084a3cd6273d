// Package export writes drawings as SVG and DXF documents and reads flat
// DXF sheets back into primitives.
//
// Both writers walk the same page geometry. Coordinates handed to a writer
// are sheet millimetres with the origin at the lower left corner of the page
// and the y axis up.
package export

import (
	"math"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Layer names.
const (
	LayerGeometry   = "GEOMETRY"
	LayerCenter     = "CENTER"
	LayerDimensions = "DIMENSIONS"
	LayerText       = "TEXT"
)

// Style holds the stroke and text sizes of exported drawings in page
// millimetres.
type Style struct {
	LineWidth float64
	ThinWidth float64
	// TextHeight of dimension labels, notes use 1.4 times this.
	TextHeight float64
	ArrowSize  float64
	// Leader is the length of the line extending past circular dimension anchors.
	Leader float64
	// TextGap separates labels from their dimension line.
	TextGap float64
	// EllipseSegments is the number of segments ellipses are drawn with.
	EllipseSegments int
}

// DefaultStyle returns the default style.
func DefaultStyle() Style {
	return StyleFrom(techdraw.DefaultConfig().Heuristics)
}

// StyleFrom returns the default style using the arrow size and leader length
// of h.
func StyleFrom(h techdraw.Heuristics) Style {
	return Style{
		LineWidth:       0.5,
		ThinWidth:       0.25,
		TextHeight:      3.5,
		ArrowSize:       h.ArrowSize,
		Leader:          h.Leader,
		TextGap:         1,
		EllipseSegments: 72,
	}
}

// writer receives sheet geometry.
type writer interface {
	layer(name string)
	line(a, b r2.Vec)
	circle(c r2.Vec, r float64)
	// arc runs counterclockwise from start over span radians.
	arc(c r2.Vec, r, start, span float64)
	polyline(pts []r2.Vec)
	arrow(tip, dir r2.Vec, size float64)
	// text is centered on at, rotated a quarter turn when vertical.
	text(s string, at r2.Vec, height float64, vertical bool)
}

// walk feeds the page frame, title block, views and annotations of d to w.
func (st Style) walk(w writer, d *techdraw.Drawing) {
	sheet := func(p r2.Vec) r2.Vec { return r2.Vec{X: p.X, Y: d.Page.Height - p.Y} }

	w.layer(LayerGeometry)
	frame := r2.Box{
		Min: r2.Vec{X: d.Page.Margin, Y: d.Page.Margin},
		Max: r2.Vec{X: d.Page.Width - d.Page.Margin, Y: d.Page.Height - d.Page.Margin},
	}
	st.box(w, frame, sheet)
	tb := d.Page.TitleBlock()
	if d.Page.TitleBlockHeight > 0 {
		st.box(w, tb, sheet)
	}
	for _, v := range d.Views {
		st.geometry(w, v, sheet)
	}

	w.layer(LayerCenter)
	for _, v := range d.Views {
		for _, m := range v.CenterMarks {
			for _, l := range m.Lines() {
				w.line(sheet(v.Transform.Apply(l[0])), sheet(v.Transform.Apply(l[1])))
			}
		}
	}

	w.layer(LayerDimensions)
	var labels []label
	for _, v := range d.Views {
		for _, dim := range v.Dimensions {
			lay := dim.Layout(v.Transform, st.Leader)
			for _, e := range lay.Extensions {
				w.line(sheet(e[0]), sheet(e[1]))
			}
			w.line(sheet(lay.Line[0]), sheet(lay.Line[1]))
			for _, a := range lay.Arrows {
				w.arrow(sheet(a.Tip), r2.Vec{X: a.Dir.X, Y: -a.Dir.Y}, st.ArrowSize)
			}
			labels = append(labels, st.label(dim, lay, sheet))
		}
	}

	w.layer(LayerText)
	for _, l := range labels {
		w.text(l.text, l.at, st.TextHeight, l.vertical)
	}
	notes := d.Notes()
	size := 1.4 * st.TextHeight
	x := tb.Min.X + 0.25*(tb.Max.X-tb.Min.X)
	for i, n := range notes {
		y := tb.Min.Y + float64(i+1)*(tb.Max.Y-tb.Min.Y)/float64(len(notes)+1)
		w.text(n, sheet(r2.Vec{X: x, Y: y}), size, false)
	}
}

type label struct {
	text     string
	at       r2.Vec
	vertical bool
}

func (st Style) label(dim techdraw.Dimension, lay techdraw.DimensionLayout, sheet func(r2.Vec) r2.Vec) label {
	at := sheet(lay.TextAt)
	l := label{text: lay.Text, at: at}
	switch {
	case dim.Kind != techdraw.Linear:
		l.at.Y += st.TextGap + st.TextHeight/2
	case dim.Axis == techdraw.Vertical:
		l.vertical = true
		l.at.X -= st.TextGap + st.TextHeight/2
	default:
		l.at.Y += st.TextGap + st.TextHeight/2
	}
	return l
}

func (st Style) box(w writer, b r2.Box, sheet func(r2.Vec) r2.Vec) {
	c := d2.Box(b).Vertices()
	// Corners come as bl, br, tl, tr.
	w.polyline([]r2.Vec{sheet(c[0]), sheet(c[1]), sheet(c[3]), sheet(c[2]), sheet(c[0])})
}

func (st Style) geometry(w writer, v *techdraw.View, sheet func(r2.Vec) r2.Vec) {
	t := v.Transform
	at := func(p r2.Vec) r2.Vec { return sheet(t.Apply(p)) }
	for _, p := range v.Primitives {
		if !p.Valid() {
			continue
		}
		switch p.Kind {
		case techdraw.KindLine:
			w.line(at(p.P0), at(p.P1))
		case techdraw.KindCircle:
			w.circle(at(p.Center), t.Scale*p.Radius)
		case techdraw.KindArc:
			start, span := p.ArcAngles()
			w.arc(at(p.Center), t.Scale*p.Radius, start, span)
		case techdraw.KindEllipse:
			pts := ellipse(p, st.EllipseSegments)
			for i := range pts {
				pts[i] = at(pts[i])
			}
			w.polyline(pts)
		case techdraw.KindPolyline:
			pts := make([]r2.Vec, len(p.Points))
			for i, q := range p.Points {
				pts[i] = at(q)
			}
			w.polyline(pts)
		}
	}
}

// ellipse returns n+1 points around p, the last one repeating the first.
func ellipse(p techdraw.Primitive, n int) []r2.Vec {
	if n < 8 {
		n = 8
	}
	s, c := math.Sincos(p.Rotation)
	pts := make([]r2.Vec, n+1)
	for i := 0; i < n; i++ {
		st, ct := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		x, y := p.RX*ct, p.RY*st
		pts[i] = r2.Add(p.Center, r2.Vec{X: x*c - y*s, Y: x*s + y*c})
	}
	pts[n] = pts[0]
	return pts
}

// arrowHead returns the base corners of a filled arrowhead.
func arrowHead(tip, dir r2.Vec, size float64) (r2.Vec, r2.Vec) {
	u := r2.Unit(dir)
	base := r2.Sub(tip, r2.Scale(size, u))
	n := r2.Scale(size/6, r2.Vec{X: -u.Y, Y: u.X})
	return r2.Add(base, n), r2.Sub(base, n)
}
