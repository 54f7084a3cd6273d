// Command techdraw generates a dimensioned multi-view drawing of a part.
//
//	techdraw -in part.stl -svg part.svg -dxf part.dxf
//	techdraw -in demo:plate-hole -paper A4 -svg plate.svg
//	techdraw -sheet views.dxf -svg views.svg
//
// Options are read from .env files given with -env and from the process
// environment. Flags given on the command line take precedence.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/soypat/techdraw"
	"github.com/soypat/techdraw/brep"
	"github.com/soypat/techdraw/export"
	"github.com/soypat/techdraw/mesh"
	"github.com/soypat/techdraw/pipeline"
	"gonum.org/v1/gonum/spatial/r2"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		log.Fatal(err)
	}
}

type flags struct {
	in, sheet string
	env       string
	paper     string
	portrait  bool
	svg, dxf  string
	preview   string
	debug     bool
	setByUser map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("techdraw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.in, "in", "", "binary STL file or demo:plate, demo:plate-hole, demo:rounded")
	fs.StringVar(&f.sheet, "sheet", "", "DXF sheet of already projected views to classify and dimension")
	fs.StringVar(&f.env, "env", "", "comma separated .env files with drawing options")
	fs.StringVar(&f.paper, "paper", "A3", "paper size A0 to A5")
	fs.BoolVar(&f.portrait, "portrait", false, "portrait page orientation")
	fs.StringVar(&f.svg, "svg", "", "SVG output file")
	fs.StringVar(&f.dxf, "dxf", "", "DXF output file")
	fs.StringVar(&f.preview, "preview", "", "shaded PNG preview of an STL input")
	fs.BoolVar(&f.debug, "debug", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	f.setByUser = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.setByUser[fl.Name] = true })
	if (f.in == "") == (f.sheet == "") {
		return f, errors.New("exactly one of -in or -sheet is required")
	}
	if f.svg == "" && f.dxf == "" {
		return f, errors.New("no output: set -svg or -dxf")
	}
	return f, nil
}

func run(args []string, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	level := log.InfoLevel
	if f.debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(stderr, log.Options{ReportTimestamp: true, Level: level})

	opts, err := options(f)
	if err != nil {
		return err
	}
	opts.Log = logger

	var d *techdraw.Drawing
	if f.sheet != "" {
		d, err = sheetDrawing(f.sheet, opts)
	} else {
		d, err = partDrawing(f, opts)
	}
	if err != nil {
		return err
	}
	for _, diag := range d.Diagnostics {
		logger.Debug("diagnostic", "kind", diag.Kind, "view", diag.View, "err", diag.Err)
	}

	style := export.StyleFrom(opts.Config.Heuristics)
	if f.svg != "" {
		if err := writeSVG(f.svg, style, d); err != nil {
			return err
		}
		logger.Info("wrote svg", "path", f.svg)
	}
	if f.dxf != "" {
		if err := style.WriteDXF(f.dxf, d); err != nil {
			return err
		}
		logger.Info("wrote dxf", "path", f.dxf)
	}
	return nil
}

func options(f flags) (pipeline.Options, error) {
	var files []string
	if f.env != "" {
		files = strings.Split(f.env, ",")
	}
	env, err := techdraw.LoadEnv(files...)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("loading env: %w", err)
	}
	cfg, err := techdraw.ConfigFromEnv(env)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("config: %w", err)
	}
	page, err := techdraw.PageFromEnv(env)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("page: %w", err)
	}
	if f.setByUser["paper"] || f.setByUser["portrait"] {
		p, err := techdraw.PaperSize(f.paper, !f.portrait)
		if err != nil {
			return pipeline.Options{}, err
		}
		p.Margin, p.TitleBlockHeight = page.Margin, page.TitleBlockHeight
		page = p
	}
	return pipeline.Options{Config: cfg, Page: page}, nil
}

func partDrawing(f flags, opts pipeline.Options) (*techdraw.Drawing, error) {
	var (
		solid brep.Solid
		err   error
	)
	if name, ok := strings.CutPrefix(f.in, "demo:"); ok {
		solid, err = demo(name)
	} else {
		solid, err = loadSTL(f.in, opts.Log)
	}
	if err != nil {
		return nil, err
	}
	if f.preview != "" {
		if strings.HasPrefix(f.in, "demo:") {
			opts.Log.Warn("preview needs an STL input", "in", f.in)
		} else if err := preview(f.in, f.preview); err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		} else {
			opts.Log.Info("wrote preview", "path", f.preview)
		}
	}
	return pipeline.Generate(solid, opts)
}

func loadSTL(path string, logger *log.Logger) (brep.Solid, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	mopts := mesh.DefaultOptions()
	mopts.Log = logger
	return mesh.Load(fp, mopts)
}

func demo(name string) (brep.Solid, error) {
	var p brep.Profile
	switch name {
	case "plate":
		p = brep.Rectangle(50, 50)
	case "plate-hole":
		p = brep.Rectangle(50, 50).WithHole(r2.Vec{X: 25, Y: 25}, 6)
	case "rounded":
		p = brep.RoundedRectangle(80, 40, 5).WithHole(r2.Vec{X: 20, Y: 20}, 4).WithHole(r2.Vec{X: 60, Y: 20}, 4)
	default:
		return nil, fmt.Errorf("unknown demo part %q", name)
	}
	return brep.Extrude(p, 5)
}

// sheetDrawing classifies and dimensions a DXF sheet. The sheet keeps its
// own coordinates, so views are placed at scale 1 with the sheet's y axis
// flipped onto the page.
func sheetDrawing(path string, opts pipeline.Options) (*techdraw.Drawing, error) {
	prims, err := export.ReadDXF(path)
	if err != nil {
		return nil, err
	}
	views, diags, err := pipeline.Sheet(prims, opts)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		v.Transform = techdraw.Transform{Scale: 1, Translate: r2.Vec{Y: opts.Page.Height}}
	}
	return &techdraw.Drawing{Page: opts.Page, Scale: 1, Views: views, Diagnostics: diags}, nil
}

func writeSVG(path string, st export.Style, d *techdraw.Drawing) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := st.WriteSVG(fp, d); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
