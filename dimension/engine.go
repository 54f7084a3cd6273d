// Package dimension places linear, diametric and radial dimensions on
// classified views while avoiding label collisions and repeated values.
package dimension

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/classify"
	"github.com/soypat/techdraw/internal/d2"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r2"
)

// Engine annotates views. Placed anchors and dimensioned values are kept in
// its Registry, so one Engine serves one drawing.
type Engine struct {
	cfg   techdraw.Config
	reg   *Registry
	log   *log.Logger
	diags []techdraw.Diagnostic
}

// NewEngine returns an engine placing dimensions into reg. A nil reg starts
// an empty registry and a nil logger uses the default logger.
func NewEngine(cfg techdraw.Config, reg *Registry, logger *log.Logger) *Engine {
	if reg == nil {
		reg = NewRegistry(cfg.Decimals, cfg.Heuristics.DuplicateTolerance)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{cfg: cfg, reg: reg, log: logger}
}

// Registry returns the registry the engine places into.
func (e *Engine) Registry() *Registry { return e.reg }

// Diagnostics returns the placement failures and collisions recorded so far.
func (e *Engine) Diagnostics() []techdraw.Diagnostic { return e.diags }

// Annotate dimensions views in ascending priority, keeping the given order
// among views of equal priority. Skipped view types get no dimensions.
// Views must already be laid out: collisions are checked between page
// positions.
func (e *Engine) Annotate(views []*techdraw.View) {
	order := append([]*techdraw.View(nil), views...)
	slices.SortStableFunc(order, func(a, b *techdraw.View) int {
		return a.Type.Priority() - b.Type.Priority()
	})
	for _, v := range order {
		if v.Type.Skipped() {
			e.log.Debug("skipping view", "view", v.Name, "type", v.Type)
			continue
		}
		before := len(v.Dimensions)
		e.View(v)
		e.log.Debug("dimensioned view", "view", v.Name, "type", v.Type, "count", len(v.Dimensions)-before)
	}
}

// View runs the strategy of the view's type followed by radial, position and
// hole spacing dimensions.
func (e *Engine) View(v *techdraw.View) {
	if v.Type.Skipped() {
		return
	}
	c := newViewState(v, e.cfg.Heuristics)
	switch v.Type {
	case techdraw.TypeFront:
		e.lines(c, techdraw.Horizontal)
		e.lines(c, techdraw.Vertical)
		e.diameters(c)
		e.details(c)
	case techdraw.TypeTop:
		e.lines(c, techdraw.Horizontal)
		e.diameters(c)
		e.radii(c)
	case techdraw.TypeSide:
		e.lines(c, techdraw.Vertical)
		e.radii(c)
	default:
		e.lines(c, techdraw.Horizontal)
		e.lines(c, techdraw.Vertical)
		e.diameters(c)
		e.radii(c)
	}
	e.radii(c)
	e.positions(c)
	if e.cfg.ShowHoleSpacing {
		e.spacing(c)
	}
}

// viewState holds the primitives of one view sorted by use.
type viewState struct {
	view         *techdraw.View
	bounds       r2.Box
	horiz, vert  []techdraw.Primitive
	lines        []techdraw.Primitive
	circles      []techdraw.Primitive
	arcs         []techdraw.Primitive
	features     techdraw.Features
	radiiDone    bool
	modelPerPage float64
}

func newViewState(v *techdraw.View, h techdraw.Heuristics) *viewState {
	c := &viewState{view: v, bounds: v.Bounds, features: v.Features, modelPerPage: 1}
	if v.Transform.Scale > 0 {
		c.modelPerPage = 1 / v.Transform.Scale
	}
	for _, p := range v.Primitives {
		switch p.Kind {
		case techdraw.KindLine:
			c.lines = append(c.lines, p)
			if p.Length() < h.MinFeatureLength {
				continue
			}
			a := p.Angle()
			if a < h.AngleTolerance || a > 180-h.AngleTolerance {
				c.horiz = append(c.horiz, p)
			} else if math.Abs(a-90) < h.AngleTolerance {
				c.vert = append(c.vert, p)
			}
		case techdraw.KindCircle:
			c.circles = append(c.circles, p)
		case techdraw.KindArc:
			c.arcs = append(c.arcs, p)
		}
	}
	return c
}

// along returns the coordinate of p measured by axis.
func along(p r2.Vec, axis techdraw.Axis) float64 {
	if axis == techdraw.Horizontal {
		return p.X
	}
	return p.Y
}

// across returns the coordinate of p perpendicular to axis.
func across(p r2.Vec, axis techdraw.Axis) float64 {
	if axis == techdraw.Horizontal {
		return p.Y
	}
	return p.X
}

func withAcross(p r2.Vec, axis techdraw.Axis, v float64) r2.Vec {
	if axis == techdraw.Horizontal {
		p.Y = v
	} else {
		p.X = v
	}
	return p
}

type group struct {
	length float64
	lines  []techdraw.Primitive
}

// groupByLength groups lines whose lengths round to the same label or differ
// by at most the duplicate tolerance, in order of first appearance. A group
// keeps the length of its first line.
func (e *Engine) groupByLength(lines []techdraw.Primitive) []group {
	var groups []group
	tol := e.cfg.Heuristics.DuplicateTolerance
next:
	for _, l := range lines {
		n := l.Length()
		for i, g := range groups {
			if e.reg.key(n) == e.reg.key(g.length) || math.Abs(n-g.length) <= tol {
				groups[i].lines = append(groups[i].lines, l)
				continue next
			}
		}
		groups = append(groups, group{length: n, lines: []techdraw.Primitive{l}})
	}
	return groups
}

// representative returns the line of the group nearest to an outer edge of
// the view. Ties go to the bottom line for horizontal groups and to the
// rightmost line for vertical ones.
func representative(c *viewState, lines []techdraw.Primitive, axis techdraw.Axis) techdraw.Primitive {
	lo, hi := across(c.bounds.Min, axis), across(c.bounds.Max, axis)
	score := func(l techdraw.Primitive) float64 {
		m := across(l.Midpoint(), axis)
		return math.Min(math.Abs(m-hi), math.Abs(m-lo))
	}
	best := lines[0]
	for _, l := range lines[1:] {
		s, bs := score(l), score(best)
		m, bm := across(l.Midpoint(), axis), across(best.Midpoint(), axis)
		switch {
		case s < bs-1e-9:
			best = l
		case s <= bs+1e-9 && axis == techdraw.Horizontal && m < bm:
			best = l
		case s <= bs+1e-9 && axis == techdraw.Vertical && m > bm:
			best = l
		}
	}
	return best
}

// lines dimensions every length group of the lines running along axis.
func (e *Engine) lines(c *viewState, axis techdraw.Axis) {
	lines := c.horiz
	if axis == techdraw.Vertical {
		lines = c.vert
	}
	size := r2.Sub(c.bounds.Max, c.bounds.Min)
	extent := along(size, axis)
	for _, g := range e.groupByLength(lines) {
		if g.length < e.cfg.MinDimensionLength || e.reg.Claimed(techdraw.Linear, axis, g.length) {
			continue
		}
		l := representative(c, g.lines, axis)
		major := l.Length() >= e.cfg.Heuristics.MajorFraction*extent
		if e.linear(c, l.P0, l.P1, axis, major) {
			e.reg.Claim(techdraw.Linear, axis, g.length)
		}
	}
}

// details dimensions short segments whose direction is not among the most
// common ones of the view, such as chamfers.
func (e *Engine) details(c *viewState) {
	h := e.cfg.Heuristics
	f := c.features
	if f.Buckets == nil {
		f = classify.Extract(c.lines, h)
	}
	common := make(map[int]bool)
	for _, b := range classify.CommonBuckets(f, h.CommonAngleBuckets) {
		common[b] = true
	}
	for _, l := range c.lines {
		n := l.Length()
		if n < h.DetailMinLength || n > h.DetailMaxLength {
			continue
		}
		if common[classify.Bucket(l.Angle(), h.AngleBucket, len(f.Buckets))] {
			continue
		}
		d := r2.Sub(l.P1, l.P0)
		axis := techdraw.Horizontal
		if math.Abs(d.Y) > math.Abs(d.X) {
			axis = techdraw.Vertical
		}
		v := math.Abs(along(d, axis))
		if v < e.cfg.MinDimensionLength || e.reg.Claimed(techdraw.Linear, axis, v) {
			continue
		}
		if e.linear(c, l.P0, l.P1, axis, false) {
			e.reg.Claim(techdraw.Linear, axis, v)
		}
	}
}

// linear places a linear dimension between p1 and p2 measured along axis.
// Major dimensions go outside the view on the side nearest the measured
// points, minor ones at the minor offset from their midpoint.
func (e *Engine) linear(c *viewState, p1, p2 r2.Vec, axis techdraw.Axis, major bool) bool {
	value := math.Abs(along(p2, axis) - along(p1, axis))
	d := techdraw.Dimension{
		Kind:  techdraw.Linear,
		Axis:  axis,
		P1:    p1,
		P2:    p2,
		Value: value,
		Label: techdraw.DimensionLabel(techdraw.Linear, value, e.cfg.Decimals),
		Major: major,
	}
	if err := validLinear(d); err != nil {
		e.fail(c, d, err)
		return false
	}
	mid := d2.Lerp(p1, p2, 0.5)
	m := across(mid, axis)
	off := e.cfg.DimensionOffsetMinor
	// The measured side of the geometry, then the opposite one.
	sides := [2]float64{m, m}
	dirs := [2]float64{-1, 1}
	if major {
		off = e.cfg.DimensionOffsetMajor
		lo, hi := across(c.bounds.Min, axis), across(c.bounds.Max, axis)
		sides = [2]float64{lo, hi}
		if math.Abs(m-hi) < math.Abs(m-lo) {
			sides = [2]float64{hi, lo}
			dirs = [2]float64{1, -1}
		}
	}
	off *= c.modelPerPage
	at := func(i int, k float64) r2.Vec {
		return withAcross(mid, axis, sides[i]+dirs[i]*k*off)
	}
	candidates := []r2.Vec{at(0, 1)}
	for _, f := range e.cfg.Heuristics.RetryFactors {
		candidates = append(candidates, at(0, f), at(1, f))
	}
	return e.place(c, d, candidates)
}

func validLinear(d techdraw.Dimension) error {
	switch {
	case !d2.Finite(d.P1) || !d2.Finite(d.P2):
		return fmt.Errorf("linear dimension endpoints %v %v: %w", d.P1, d.P2, techdraw.ErrDegenerate)
	case !(d.Value > 0) || math.IsInf(d.Value, 0):
		return fmt.Errorf("linear dimension value %g: %w", d.Value, techdraw.ErrDegenerate)
	}
	return nil
}

// diameters places one diametric dimension per distinct circle diameter.
func (e *Engine) diameters(c *viewState) {
	for _, p := range c.circles {
		dia := 2 * p.Radius
		if e.reg.Claimed(techdraw.Diametric, 0, dia) {
			continue
		}
		d := techdraw.Dimension{
			Kind:   techdraw.Diametric,
			Center: p.Center,
			Radius: p.Radius,
			Value:  dia,
			Label:  techdraw.DimensionLabel(techdraw.Diametric, dia, e.cfg.Decimals),
		}
		if err := validCircular(d); err != nil {
			e.fail(c, d, err)
			continue
		}
		var candidates []r2.Vec
		for _, a := range e.cfg.Heuristics.CandidateAngles {
			candidates = append(candidates, onCircle(p.Center, p.Radius, a*math.Pi/180))
		}
		if e.place(c, d, candidates) {
			e.reg.Claim(techdraw.Diametric, 0, dia)
		}
	}
}

// radii places one radial dimension per distinct arc radius. Of arcs sharing
// a center only the outermost is dimensioned.
func (e *Engine) radii(c *viewState) {
	if c.radiiDone || !e.cfg.ShowRadiusDimensions {
		return
	}
	c.radiiDone = true
	const centerTol = 1e-3
	for _, p := range c.arcs {
		outer := true
		for _, q := range c.arcs {
			if d2.Dist(p.Center, q.Center) < centerTol && q.Radius > p.Radius+centerTol {
				outer = false
				break
			}
		}
		if !outer || e.reg.Claimed(techdraw.Radial, 0, p.Radius) {
			continue
		}
		d := techdraw.Dimension{
			Kind:   techdraw.Radial,
			Center: p.Center,
			Radius: p.Radius,
			Value:  p.Radius,
			Label:  techdraw.DimensionLabel(techdraw.Radial, p.Radius, e.cfg.Decimals),
		}
		if err := validCircular(d); err != nil {
			e.fail(c, d, err)
			continue
		}
		start, span := p.ArcAngles()
		candidates := []r2.Vec{onCircle(p.Center, p.Radius, start+span/2)}
		for _, a := range e.cfg.Heuristics.CandidateAngles {
			if rad := a * math.Pi / 180; p.ArcContains(rad) {
				candidates = append(candidates, onCircle(p.Center, p.Radius, rad))
			}
		}
		if e.place(c, d, candidates) {
			e.reg.Claim(techdraw.Radial, 0, p.Radius)
		}
	}
}

func onCircle(center r2.Vec, r, theta float64) r2.Vec {
	return r2.Add(center, d2.Pol{R: r, Theta: theta}.PolarToCartesian())
}

func validCircular(d techdraw.Dimension) error {
	if !d2.Finite(d.Center) || !(d.Radius > 0) || math.IsInf(d.Radius, 0) {
		return fmt.Errorf("%s dimension center %v radius %g: %w", d.Kind, d.Center, d.Radius, techdraw.ErrDegenerate)
	}
	return nil
}

// positions dimensions the distance from every circle center to the nearest
// horizontal and vertical edge of the view. Distances up to the larger of
// PositionMinGap and MinDimensionLength are left undimensioned.
func (e *Engine) positions(c *viewState) {
	gap := math.Max(e.cfg.Heuristics.PositionMinGap, e.cfg.MinDimensionLength)
	for _, p := range c.circles {
		if l, ok := nearest(p.Center, c.horiz, techdraw.Vertical); ok {
			edge := withAcross(p.Center, techdraw.Horizontal, l.Midpoint().Y)
			if math.Abs(edge.Y-p.Center.Y) > gap {
				e.linear(c, p.Center, edge, techdraw.Vertical, false)
			}
		}
		if l, ok := nearest(p.Center, c.vert, techdraw.Horizontal); ok {
			edge := withAcross(p.Center, techdraw.Vertical, l.Midpoint().X)
			if math.Abs(edge.X-p.Center.X) > gap {
				e.linear(c, p.Center, edge, techdraw.Horizontal, false)
			}
		}
	}
}

// nearest returns the line closest to p measured along axis.
func nearest(p r2.Vec, lines []techdraw.Primitive, axis techdraw.Axis) (techdraw.Primitive, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, l := range lines {
		if d := math.Abs(along(l.Midpoint(), axis) - along(p, axis)); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return techdraw.Primitive{}, false
	}
	return lines[best], true
}

// spacing chains linear dimensions between consecutive circle centers along
// the axis over which the centers spread most.
func (e *Engine) spacing(c *viewState) {
	if len(c.circles) < 2 {
		return
	}
	centers := make([]r2.Vec, len(c.circles))
	for i, p := range c.circles {
		centers[i] = p.Center
	}
	set := d2.Set(centers)
	spread := r2.Sub(set.Max(), set.Min())
	axis := techdraw.Horizontal
	if spread.Y > spread.X {
		axis = techdraw.Vertical
	}
	if along(spread, axis) <= e.cfg.Heuristics.HoleSpacingMinSpread {
		return
	}
	slices.SortStableFunc(centers, func(a, b r2.Vec) int {
		switch da, db := along(a, axis), along(b, axis); {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	for i := 1; i < len(centers); i++ {
		if math.Abs(along(centers[i], axis)-along(centers[i-1], axis)) < e.cfg.MinDimensionLength {
			continue
		}
		e.linear(c, centers[i-1], centers[i], axis, false)
	}
}

// place puts d at the first candidate anchor that does not collide with a
// placed one. When all collide the first candidate is used and the collision
// recorded.
func (e *Engine) place(c *viewState, d techdraw.Dimension, candidates []r2.Vec) bool {
	t := c.view.Transform
	spacing := e.cfg.MinDimensionSpacing
	chosen := -1
	for i, a := range candidates {
		if !d2.Finite(a) {
			continue
		}
		if !e.reg.Collides(t.Apply(a), spacing) {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		if len(candidates) == 0 || !d2.Finite(candidates[0]) {
			e.fail(c, d, errors.New("no finite anchor"))
			return false
		}
		chosen = 0
		d.Collides = true
		e.log.Warn("dimension collides", "view", c.view.Name, "label", d.Label)
		e.diags = append(e.diags, techdraw.Diagnostic{
			Kind:   techdraw.DimensionCollision,
			View:   c.view.Name,
			Source: -1,
			Err:    fmt.Errorf("%s dimension %s placed within %g mm of another label", d.Kind, d.Label, spacing),
		})
	}
	d.Anchor = candidates[chosen]
	e.reg.Place(t.Apply(d.Anchor))
	c.view.Dimensions = append(c.view.Dimensions, d)
	return true
}

func (e *Engine) fail(c *viewState, d techdraw.Dimension, err error) {
	e.log.Warn("skipping dimension", "view", c.view.Name, "kind", d.Kind, "err", err)
	e.diags = append(e.diags, techdraw.Diagnostic{Kind: techdraw.DimensionFailed, View: c.view.Name, Source: -1, Err: err})
}
