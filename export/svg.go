package export

import (
	"image/color"
	"io"
	"math"

	"github.com/soypat/techdraw"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgsvg"
)

var (
	fonts    = font.NewCache(liberation.Collection())
	sansFont = font.Font{Typeface: "Liberation", Variant: "Sans"}
)

// WriteSVG writes d as an SVG document the size of its page using the
// default style.
func WriteSVG(w io.Writer, d *techdraw.Drawing) error {
	return DefaultStyle().WriteSVG(w, d)
}

// WriteSVG writes d as an SVG document the size of its page.
func (st Style) WriteSVG(w io.Writer, d *techdraw.Drawing) error {
	if d == nil {
		return techdraw.ErrEmptyGeometry
	}
	if err := d.Page.Validate(); err != nil {
		return err
	}
	c := vgsvg.New(mm(d.Page.Width), mm(d.Page.Height))
	st.walk(&svgWriter{c: c, st: st}, d)
	_, err := c.WriteTo(w)
	return err
}

func mm(v float64) vg.Length { return vg.Length(v) * vg.Millimeter }

func point(p r2.Vec) vg.Point { return vg.Point{X: mm(p.X), Y: mm(p.Y)} }

type svgWriter struct {
	c  *vgsvg.Canvas
	st Style
}

func (s *svgWriter) layer(name string) {
	s.c.SetColor(color.Black)
	s.c.SetLineDash(nil, 0)
	switch name {
	case LayerGeometry:
		s.c.SetLineWidth(mm(s.st.LineWidth))
	case LayerCenter:
		s.c.SetLineWidth(mm(s.st.ThinWidth))
		s.c.SetLineDash([]vg.Length{mm(6), mm(1.5), mm(1), mm(1.5)}, 0)
	default:
		s.c.SetLineWidth(mm(s.st.ThinWidth))
	}
}

func (s *svgWriter) line(a, b r2.Vec) {
	var p vg.Path
	p.Move(point(a))
	p.Line(point(b))
	s.c.Stroke(p)
}

func (s *svgWriter) circle(c r2.Vec, r float64) {
	s.arc(c, r, 0, 2*math.Pi)
}

func (s *svgWriter) arc(c r2.Vec, r, start, span float64) {
	var p vg.Path
	sin, cos := math.Sincos(start)
	p.Move(point(r2.Add(c, r2.Vec{X: r * cos, Y: r * sin})))
	p.Arc(point(c), mm(r), start, span)
	s.c.Stroke(p)
}

func (s *svgWriter) polyline(pts []r2.Vec) {
	if len(pts) < 2 {
		return
	}
	var p vg.Path
	p.Move(point(pts[0]))
	for _, q := range pts[1:] {
		p.Line(point(q))
	}
	s.c.Stroke(p)
}

func (s *svgWriter) arrow(tip, dir r2.Vec, size float64) {
	b0, b1 := arrowHead(tip, dir, size)
	var p vg.Path
	p.Move(point(tip))
	p.Line(point(b0))
	p.Line(point(b1))
	p.Close()
	s.c.Fill(p)
}

func (s *svgWriter) text(str string, at r2.Vec, height float64, vertical bool) {
	face := fonts.Lookup(sansFont, mm(height))
	// Baseline sits a third of the height below the center.
	off := vg.Point{X: -face.Width(str) / 2, Y: -mm(height) / 3}
	if !vertical {
		s.c.FillString(face, point(at).Add(off), str)
		return
	}
	s.c.Push()
	s.c.Translate(point(at))
	s.c.Rotate(math.Pi / 2)
	s.c.FillString(face, off, str)
	s.c.Pop()
}
