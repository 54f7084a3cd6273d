package export

import (
	"fmt"
	"math"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/internal/d2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"
	"gonum.org/v1/gonum/spatial/r2"
)

// WriteDXF saves d as a DXF file at path using the default style.
func WriteDXF(path string, d *techdraw.Drawing) error {
	return DefaultStyle().WriteDXF(path, d)
}

// WriteDXF saves d as a DXF file at path. Geometry, center lines,
// dimensions and text go to separate layers. Coordinates are page
// millimetres with the y axis up.
func (st Style) WriteDXF(path string, d *techdraw.Drawing) error {
	if d == nil {
		return techdraw.ErrEmptyGeometry
	}
	if err := d.Page.Validate(); err != nil {
		return err
	}
	dw := dxf.NewDrawing()
	for _, l := range []struct {
		name string
		c    color.ColorNumber
	}{
		{LayerGeometry, dxf.DefaultColor},
		{LayerCenter, color.Red},
		{LayerDimensions, color.Green},
		{LayerText, color.Cyan},
	} {
		dw.AddLayer(l.name, l.c, dxf.DefaultLineType, true)
	}
	w := &dxfWriter{d: dw}
	st.walk(w, d)
	if w.err != nil {
		return fmt.Errorf("writing dxf entities: %w", w.err)
	}
	return dw.SaveAs(path)
}

// dxfWriter keeps the first error returned by the drawing.
type dxfWriter struct {
	d   *drawing.Drawing
	err error
}

func (w *dxfWriter) keep(_ any, err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *dxfWriter) layer(name string) {
	if err := w.d.ChangeLayer(name); err != nil && w.err == nil {
		w.err = err
	}
}

func (w *dxfWriter) line(a, b r2.Vec) {
	w.keep(w.d.Line(a.X, a.Y, 0, b.X, b.Y, 0))
}

func (w *dxfWriter) circle(c r2.Vec, r float64) {
	w.keep(w.d.Circle(c.X, c.Y, 0, r))
}

func (w *dxfWriter) arc(c r2.Vec, r, start, span float64) {
	a0 := d2.NormAngle(start) * 180 / math.Pi
	a1 := d2.NormAngle(start+span) * 180 / math.Pi
	w.keep(w.d.Arc(c.X, c.Y, 0, r, a0, a1))
}

func (w *dxfWriter) polyline(pts []r2.Vec) {
	for i := 1; i < len(pts); i++ {
		w.line(pts[i-1], pts[i])
	}
}

func (w *dxfWriter) arrow(tip, dir r2.Vec, size float64) {
	b0, b1 := arrowHead(tip, dir, size)
	w.polyline([]r2.Vec{tip, b0, b1, tip})
}

func (w *dxfWriter) text(s string, at r2.Vec, height float64, vertical bool) {
	// Text is inserted at its left baseline corner.
	width := 0.6 * height * float64(len([]rune(s)))
	if vertical {
		w.keep(w.d.Text(s, at.X+height/3, at.Y-width/2, 0, height))
		return
	}
	w.keep(w.d.Text(s, at.X-width/2, at.Y-height/3, 0, height))
}

// ReadDXF returns the LINE, CIRCLE, ARC and LWPOLYLINE entities of the DXF
// file at path as primitives in file coordinates. Other entities are
// ignored. Entities with invalid geometry are skipped.
func ReadDXF(path string) ([]techdraw.Primitive, error) {
	dw, err := dxf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dxf %s: %w", path, err)
	}
	var prims []techdraw.Primitive
	for _, e := range dw.Entities() {
		p, ok := primitive(e)
		if !ok || !p.Valid() {
			continue
		}
		prims = append(prims, p)
	}
	if len(prims) == 0 {
		return nil, fmt.Errorf("%w: no supported entities in %s", techdraw.ErrEmptyGeometry, path)
	}
	return prims, nil
}

func vec(c []float64) r2.Vec {
	if len(c) < 2 {
		return r2.Vec{X: math.NaN(), Y: math.NaN()}
	}
	return r2.Vec{X: c[0], Y: c[1]}
}

func primitive(e entity.Entity) (techdraw.Primitive, bool) {
	switch e := e.(type) {
	case *entity.Line:
		return techdraw.NewLine(vec(e.Start), vec(e.End)), true
	case *entity.Circle:
		return techdraw.NewCircle(vec(e.Center), e.Radius), true
	case *entity.Arc:
		if e.Circle == nil || len(e.Angle) < 2 {
			return techdraw.Primitive{}, false
		}
		c, r := vec(e.Center), e.Radius
		a0, a1 := e.Angle[0]*math.Pi/180, e.Angle[1]*math.Pi/180
		span := math.Mod(a1-a0, 2*math.Pi)
		if span <= 0 {
			span += 2 * math.Pi
		}
		at := func(a float64) r2.Vec { return r2.Add(c, r2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}) }
		return techdraw.NewArc(c, r, at(a0), at(a1), true, span > math.Pi), true
	case *entity.LwPolyline:
		pts := make([]r2.Vec, 0, len(e.Vertices)+1)
		for _, v := range e.Vertices {
			pts = append(pts, vec(v))
		}
		if e.Closed && len(pts) > 0 {
			pts = append(pts, pts[0])
		}
		return techdraw.NewPolyline(pts), true
	}
	return techdraw.Primitive{}, false
}
