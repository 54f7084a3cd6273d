// Package pipeline turns a solid into a laid out and dimensioned multi-view
// drawing. Stages run sequentially: projection, classification, feature
// detection, layout and dimensioning.
package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/brep"
	"github.com/soypat/techdraw/classify"
	"github.com/soypat/techdraw/dimension"
	"github.com/soypat/techdraw/layout"
	"github.com/soypat/techdraw/project"
)

// Options configure a pipeline run.
type Options struct {
	Config techdraw.Config
	Page   techdraw.Page
	// Log receives progress and diagnostics. Nil uses the default logger.
	Log *log.Logger
}

// DefaultOptions returns the default configuration on a landscape A3 page.
func DefaultOptions() Options {
	page, _ := techdraw.PaperSize("A3", true)
	return Options{Config: techdraw.DefaultConfig(), Page: page}
}

func (o Options) logger() *log.Logger {
	if o.Log == nil {
		return log.Default()
	}
	return o.Log
}

// Directions returns the view directions drawn for cfg.
func Directions(cfg techdraw.Config) []project.Direction {
	dirs := []project.Direction{project.Front, project.Top, project.Right}
	if cfg.ShowIsometric {
		dirs = append(dirs, project.Isometric)
	}
	return dirs
}

// Generate draws s. Only a missing solid, invalid options or a solid without
// drawable geometry fail; every other problem is recovered from and recorded
// in the drawing's diagnostics.
func Generate(s brep.Solid, opts Options) (*techdraw.Drawing, error) {
	if s == nil {
		return nil, techdraw.ErrNoSolid
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Page.Validate(); err != nil {
		return nil, err
	}
	cfg, logger := opts.Config, opts.logger()
	h := cfg.Heuristics
	d := &techdraw.Drawing{Page: opts.Page}

	pr := project.NewProjector(cfg)
	dirs := Directions(cfg)
	var used []project.Direction
	for _, dir := range dirs {
		prims, diags := pr.Solid(s, dir)
		report(logger, diags)
		d.Diagnostics = append(d.Diagnostics, diags...)
		if len(prims) == 0 {
			logger.Warn("view has no geometry", "view", dir.Name)
			continue
		}
		v := techdraw.NewView(dir.Name, dir.Role, prims)
		if diag, ok := classifyView(v, h); !ok {
			logger.Warn("ambiguous view", "view", v.Name, "type", v.Type)
			d.Diagnostics = append(d.Diagnostics, diag)
		}
		logger.Debug("projected view", "view", v.Name, "primitives", len(prims), "type", v.Type)
		d.Views = append(d.Views, v)
		used = append(used, dir)
	}
	if len(d.Views) == 0 {
		return nil, fmt.Errorf("%w: no edge of the solid could be projected", techdraw.ErrEmptyGeometry)
	}

	d.Holes = project.DetectHoles(s, cfg)
	if cfg.ShowCenterLines {
		for i, v := range d.Views {
			v.CenterMarks = project.CenterMarks(d.Holes, used[i], h.CenterLineExtension, h.AxisParallel)
		}
	}
	if t, ok := project.DetectThickness(s, cfg.Heuristics); ok {
		d.Thickness = t
	}
	logger.Debug("features", "holes", len(d.Holes), "thickness", d.Thickness)

	res, diags := layout.Layout(d.Views, opts.Page, cfg, logger)
	d.Scale, d.RequiredScale, d.Overflow = res.Scale, res.Required, res.Overflow
	d.Diagnostics = append(d.Diagnostics, diags...)

	eng := dimension.NewEngine(cfg, dimension.NewRegistry(cfg.Decimals, cfg.Heuristics.DuplicateTolerance), logger)
	eng.Annotate(d.Views)
	d.Diagnostics = append(d.Diagnostics, eng.Diagnostics()...)
	logger.Info("drawing generated", "views", len(d.Views), "dimensions", len(d.Dimensions()),
		"scale", techdraw.FormatScale(d.Scale), "diagnostics", len(d.Diagnostics))
	return d, nil
}

// Sheet annotates an existing flat drawing. The primitives are split into
// view regions which are classified and dimensioned in sheet coordinates.
func Sheet(prims []techdraw.Primitive, opts Options) ([]*techdraw.View, []techdraw.Diagnostic, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, nil, err
	}
	var valid []techdraw.Primitive
	for _, p := range prims {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet has no valid primitives", techdraw.ErrEmptyGeometry)
	}
	cfg, logger := opts.Config, opts.logger()

	var (
		views []*techdraw.View
		diags []techdraw.Diagnostic
	)
	for _, r := range classify.Regions(valid, cfg.Heuristics) {
		v := techdraw.NewView(r.Name, regionRole(r.Name), r.Primitives)
		v.Type, v.Features = r.Type, r.Features
		if r.Ambiguous {
			logger.Warn("ambiguous region", "region", r.Name)
			diags = append(diags, ambiguity(v))
		}
		logger.Debug("region", "region", r.Name, "primitives", len(r.Primitives), "type", v.Type)
		views = append(views, v)
	}
	eng := dimension.NewEngine(cfg, nil, logger)
	eng.Annotate(views)
	return views, append(diags, eng.Diagnostics()...), nil
}

func classifyView(v *techdraw.View, h techdraw.Heuristics) (techdraw.Diagnostic, bool) {
	var ok bool
	v.Type, v.Features, ok = classify.Classify(v.Primitives, h)
	if ok {
		return techdraw.Diagnostic{}, true
	}
	return ambiguity(v), false
}

func ambiguity(v *techdraw.View) techdraw.Diagnostic {
	f := v.Features
	return techdraw.Diagnostic{
		Kind:   techdraw.ClassificationAmbiguity,
		View:   v.Name,
		Source: -1,
		Err: fmt.Errorf("no rule matched %d lines (%d horizontal, %d vertical, %d diagonal), treated as %s",
			f.Lines, f.Horizontal, f.Vertical, f.Diagonal, v.Type),
	}
}

func regionRole(name string) techdraw.Role {
	switch name {
	case classify.TopRegion:
		return techdraw.RoleTop
	case classify.SideRegion:
		return techdraw.RoleSide
	case classify.IsoRegion:
		return techdraw.RoleIso
	}
	return techdraw.RoleFront
}

func report(logger *log.Logger, diags []techdraw.Diagnostic) {
	for _, d := range diags {
		logger.Warn("edge skipped", "view", d.View, "edge", d.Source, "err", d.Err)
	}
}
