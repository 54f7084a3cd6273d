package classify

import (
	"math"

	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Region is a rectangular part of a sheet holding one logical view.
type Region struct {
	Name       string
	Box        r2.Box
	Primitives []techdraw.Primitive
	Type       techdraw.ViewType
	Features   techdraw.Features
	// Ambiguous is set when no classification rule matched.
	Ambiguous bool
}

// Region names in the order regions are returned.
const (
	FrontRegion = "front_view"
	SideRegion  = "side_view"
	TopRegion   = "top_view"
	IsoRegion   = "iso_view"
)

// Partition splits the bounding box of prims into named regions. Wide sheets
// split into three columns (front, side, top from left to right), others into
// a 2×2 grid with front and side on the upper row and top and iso below.
func Partition(bounds r2.Box, h techdraw.Heuristics) []Region {
	b := d2.Box(bounds)
	sz := b.Size()
	if sz.Y > 0 && sz.X/sz.Y > h.StripAspect || sz.Y == 0 && sz.X > 0 {
		cells := b.Split(3, 1)
		return []Region{
			{Name: FrontRegion, Box: r2.Box(cells[0])},
			{Name: SideRegion, Box: r2.Box(cells[1])},
			{Name: TopRegion, Box: r2.Box(cells[2])},
		}
	}
	cells := b.Split(2, 2)
	return []Region{
		{Name: FrontRegion, Box: r2.Box(cells[0])},
		{Name: SideRegion, Box: r2.Box(cells[1])},
		{Name: TopRegion, Box: r2.Box(cells[2])},
		{Name: IsoRegion, Box: r2.Box(cells[3])},
	}
}

// Regions partitions prims into regions and classifies each one. A primitive
// belongs to the first region holding the majority of its sample points,
// else to the region holding the center of its bounds, else to the nearest
// region. Empty regions are dropped.
func Regions(prims []techdraw.Primitive, h techdraw.Heuristics) []Region {
	if len(prims) == 0 {
		return nil
	}
	regions := Partition(techdraw.BoundsOf(prims), h)
	for _, p := range prims {
		i := assign(regions, p)
		regions[i].Primitives = append(regions[i].Primitives, p)
	}
	out := regions[:0]
	for _, r := range regions {
		if len(r.Primitives) == 0 {
			continue
		}
		var ok bool
		r.Type, r.Features, ok = Classify(r.Primitives, h)
		r.Ambiguous = !ok
		out = append(out, r)
	}
	return out
}

func assign(regions []Region, p techdraw.Primitive) int {
	samples := p.Samples()
	for i, r := range regions {
		in := 0
		for _, s := range samples {
			if d2.Box(r.Box).Contains(s) {
				in++
			}
		}
		if 2*in > len(samples) {
			return i
		}
	}
	c := d2.Box(p.Bounds()).Center()
	best, bestDist := 0, math.Inf(1)
	for i, r := range regions {
		b := d2.Box(r.Box)
		if b.Contains(c) {
			return i
		}
		if d := d2.Dist(c, b.Center()); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
