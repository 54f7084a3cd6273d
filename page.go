package techdraw

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Page is the target drawing surface in millimetres. The title block is a
// band of TitleBlockHeight above the bottom margin.
type Page struct {
	Width, Height    float64
	Margin           float64
	TitleBlockHeight float64
}

// Usable returns the drawing area in page coordinates, excluding margins and
// the title block.
func (p Page) Usable() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: p.Margin, Y: p.Margin},
		Max: r2.Vec{X: p.Width - p.Margin, Y: p.Height - p.Margin - p.TitleBlockHeight},
	}
}

// TitleBlock returns the title block rectangle in page coordinates.
func (p Page) TitleBlock() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: p.Margin, Y: p.Height - p.Margin - p.TitleBlockHeight},
		Max: r2.Vec{X: p.Width - p.Margin, Y: p.Height - p.Margin},
	}
}

func (p Page) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return errors.New("page size must be positive")
	}
	if p.Margin < 0 || p.TitleBlockHeight < 0 {
		return errors.New("page margin and title block must not be negative")
	}
	u := p.Usable()
	if u.Max.X <= u.Min.X || u.Max.Y <= u.Min.Y {
		return fmt.Errorf("page %gx%g has no usable area", p.Width, p.Height)
	}
	return nil
}

const (
	DefaultMargin     = 20
	DefaultTitleBlock = 50
)

// ISO 216 portrait sizes in millimetres.
var paperSizes = map[string][2]float64{
	"A0": {841, 1189},
	"A1": {594, 841},
	"A2": {420, 594},
	"A3": {297, 420},
	"A4": {210, 297},
	"A5": {148, 210},
}

// PaperSize returns an ISO A-series page with the default margin and title
// block.
func PaperSize(name string, landscape bool) (Page, error) {
	sz, ok := paperSizes[strings.ToUpper(name)]
	if !ok {
		return Page{}, fmt.Errorf("unknown paper size %q", name)
	}
	w, h := sz[0], sz[1]
	if landscape {
		w, h = h, w
	}
	return Page{Width: w, Height: h, Margin: DefaultMargin, TitleBlockHeight: DefaultTitleBlock}, nil
}
