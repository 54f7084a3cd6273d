// Package techdraw is the data model of multi-view engineering drawings:
// projected primitives, classified views, dimensions and the page they are
// laid out on.
package techdraw

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// HoleFeature is a circular through hole detected on the solid.
type HoleFeature struct {
	Center r3.Vec
	Radius float64
	Axis   r3.Vec
}

// Drawing is the assembled output of one pipeline run.
type Drawing struct {
	Page  Page
	Scale float64
	// RequiredScale is the analytic scale before snapping. Zero when the
	// scale was set manually.
	RequiredScale float64
	Overflow      bool
	Views         []*View
	Holes         []HoleFeature
	// Thickness of plate-like parts, zero when none was detected.
	Thickness   float64
	Diagnostics []Diagnostic
}

// View returns the first view with the given role.
func (d *Drawing) View(role Role) *View {
	for _, v := range d.Views {
		if v.Role == role {
			return v
		}
	}
	return nil
}

// Dimensions returns all dimensions of all views in view order.
func (d *Drawing) Dimensions() []Dimension {
	var dims []Dimension
	for _, v := range d.Views {
		dims = append(dims, v.Dimensions...)
	}
	return dims
}

// Notes returns the title block lines.
func (d *Drawing) Notes() []string {
	notes := []string{"SCALE " + FormatScale(d.Scale)}
	if d.Thickness > 0 {
		notes = append(notes, "THICKNESS "+FormatValue(d.Thickness, 1)+" mm")
	}
	if len(d.Holes) > 0 {
		notes = append(notes, strconv.Itoa(len(d.Holes))+" HOLE(S)")
	}
	return notes
}

// FormatScale writes a scale factor as a ratio, 0.5 as "1:2" and 2 as "2:1".
func FormatScale(s float64) string {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return "?"
	}
	if s >= 1 {
		return FormatValue(s, 2) + ":1"
	}
	return "1:" + FormatValue(1/s, 2)
}
