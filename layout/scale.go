// Package layout computes the common scale of a set of views and places them
// on the page in third-angle arrangement: top view above front view, side
// view to the right of front view and the isometric view in the remaining
// corner.
package layout

import (
	"math"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// cells holds the model-space sizes of the 2×2 arrangement.
type cells struct {
	cols, rows [2]float64
}

func (c cells) footprint() r2.Vec {
	return r2.Vec{X: c.cols[0] + c.cols[1], Y: c.rows[0] + c.rows[1]}
}

// gaps returns the page space between columns and rows. Empty columns or rows
// need no gap.
func (c cells) gaps(gap float64) r2.Vec {
	var g r2.Vec
	if c.cols[0] > 0 && c.cols[1] > 0 {
		g.X = gap
	}
	if c.rows[0] > 0 && c.rows[1] > 0 {
		g.Y = gap
	}
	return g
}

func measure(views []*techdraw.View) cells {
	size := func(r techdraw.Role) r2.Vec {
		if v := find(views, r); v != nil {
			return d2.Box(v.Bounds).Size()
		}
		return r2.Vec{}
	}
	front, top, side, iso := size(techdraw.RoleFront), size(techdraw.RoleTop), size(techdraw.RoleSide), size(techdraw.RoleIso)
	return cells{
		cols: [2]float64{math.Max(front.X, top.X), math.Max(side.X, iso.X)},
		// Upper row first.
		rows: [2]float64{math.Max(top.Y, iso.Y), math.Max(front.Y, side.Y)},
	}
}

func find(views []*techdraw.View, r techdraw.Role) *techdraw.View {
	for _, v := range views {
		if v.Role == r {
			return v
		}
	}
	return nil
}

// Gap returns the page distance between view cells. It is never smaller
// than twice the dimension reservation so reserved bands do not overlap.
func Gap(h techdraw.Heuristics) float64 {
	return math.Max(h.ViewSpacing, 2*h.DimensionSpace)
}

// Footprint returns the model-space width and height of the arrangement of
// views, without gaps.
func Footprint(views []*techdraw.View) r2.Vec {
	return measure(views).footprint()
}

// Available returns the page area left for view geometry once view gaps and
// the dimension reservation around the block are subtracted.
func Available(views []*techdraw.View, page techdraw.Page, h techdraw.Heuristics) r2.Vec {
	g := measure(views).gaps(Gap(h))
	u := d2.Box(page.Usable()).Size()
	return r2.Vec{
		X: u.X - g.X - 2*h.DimensionSpace,
		Y: u.Y - g.Y - 2*h.DimensionSpace,
	}
}

// RequiredScale returns the largest scale at which the views fit the page,
// reduced by the safety factor. Views without extent require scale 1.
func RequiredScale(views []*techdraw.View, page techdraw.Page, h techdraw.Heuristics) float64 {
	foot := Footprint(views)
	avail := Available(views, page, h)
	s := math.Inf(1)
	if foot.X > 0 {
		s = avail.X / foot.X
	}
	if foot.Y > 0 {
		s = math.Min(s, avail.Y/foot.Y)
	}
	if math.IsInf(s, 1) {
		return 1
	}
	return math.Max(0, s*h.ScaleSafety)
}

// SnapScale returns the largest standard scale not above required. When no
// standard scale qualifies it returns the smallest one and overflow is set.
func SnapScale(required float64, standard []float64) (scale float64, overflow bool) {
	best, smallest := math.Inf(-1), math.Inf(1)
	for _, s := range standard {
		if s <= required && s > best {
			best = s
		}
		smallest = math.Min(smallest, s)
	}
	if math.IsInf(best, -1) {
		return smallest, true
	}
	return best, false
}

// Fits reports whether the views at scale s fit the available page area.
func Fits(views []*techdraw.View, page techdraw.Page, h techdraw.Heuristics, s float64) bool {
	foot := r2.Scale(s, Footprint(views))
	avail := Available(views, page, h)
	return foot.X <= avail.X && foot.Y <= avail.Y
}
