package layout

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Result is the outcome of laying out a set of views.
type Result struct {
	Scale float64
	// Required is the analytic scale before snapping, zero for manual scales.
	Required float64
	Overflow bool
}

// Layout picks the drawing scale and places views on page. With AutoScale
// the scale is snapped from the required scale, otherwise cfg.Scale is used.
// Overflow is not fatal: views are placed anyway and a diagnostic returned.
func Layout(views []*techdraw.View, page techdraw.Page, cfg techdraw.Config, logger *log.Logger) (Result, []techdraw.Diagnostic) {
	if logger == nil {
		logger = log.Default()
	}
	h := cfg.Heuristics
	var res Result
	if cfg.AutoScale {
		res.Required = RequiredScale(views, page, h)
		res.Scale, res.Overflow = SnapScale(res.Required, h.StandardScales)
	} else {
		res.Scale = cfg.Scale
	}
	res.Overflow = res.Overflow || !Fits(views, page, h, res.Scale)
	Arrange(views, page, h, res.Scale)
	logger.Debug("layout", "scale", techdraw.FormatScale(res.Scale), "required", res.Required)

	var diags []techdraw.Diagnostic
	if res.Overflow {
		logger.Warn("views overflow the page", "scale", techdraw.FormatScale(res.Scale), "page", fmt.Sprintf("%gx%g", page.Width, page.Height))
		diags = append(diags, techdraw.Diagnostic{
			Kind:   techdraw.LayoutOverflow,
			Source: -1,
			Err:    fmt.Errorf("views at scale %s exceed the usable area of a %gx%g page", techdraw.FormatScale(res.Scale), page.Width, page.Height),
		})
	}
	return res, diags
}

// Arrange sets the transform of every view for scale s. Top sits above
// front sharing its left edge, side sits right of front sharing its top edge,
// iso is centered in the upper right cell and the block is centered in the
// usable area. Views with other roles keep their transform.
func Arrange(views []*techdraw.View, page techdraw.Page, h techdraw.Heuristics, s float64) {
	c := measure(views)
	g := c.gaps(Gap(h))
	col0, col1 := s*c.cols[0], s*c.cols[1]
	row0, row1 := s*c.rows[0], s*c.rows[1]
	block := r2.Vec{X: col0 + g.X + col1, Y: row0 + g.Y + row1}
	o := r2.Sub(d2.Box(page.Usable()).Center(), r2.Scale(0.5, block))

	place := func(v *techdraw.View, topLeft r2.Vec) {
		v.Transform = techdraw.Transform{
			Scale: s,
			Translate: r2.Vec{
				X: topLeft.X - s*v.Bounds.Min.X,
				Y: topLeft.Y + s*v.Bounds.Max.Y,
			},
		}
	}
	lower := o.Y + row0 + g.Y
	right := o.X + col0 + g.X
	if v := find(views, techdraw.RoleFront); v != nil {
		place(v, r2.Vec{X: o.X, Y: lower})
	}
	if v := find(views, techdraw.RoleTop); v != nil {
		place(v, r2.Vec{X: o.X, Y: o.Y + row0 - s*v.Size().Y})
	}
	if v := find(views, techdraw.RoleSide); v != nil {
		place(v, r2.Vec{X: right, Y: lower})
	}
	if v := find(views, techdraw.RoleIso); v != nil {
		sz := r2.Scale(s, v.Size())
		place(v, r2.Vec{X: right + (col1-sz.X)/2, Y: o.Y + (row0-sz.Y)/2})
	}
}

// Overlapping returns the index pairs of views whose page boxes overlap once
// inflated by margin. Boxes that only touch do not overlap.
func Overlapping(views []*techdraw.View, margin float64) [][2]int {
	const touchTol = 1e-9
	margin -= touchTol
	var pairs [][2]int
	for i := range views {
		a := d2.Box(views[i].PageBox()).Inflate(margin)
		for j := i + 1; j < len(views); j++ {
			b := d2.Box(views[j].PageBox()).Inflate(margin)
			if a.Overlaps(b) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}
