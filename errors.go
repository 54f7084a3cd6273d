package techdraw

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSolid is returned when the pipeline is handed no solid.
	ErrNoSolid = errors.New("techdraw: missing solid")
	// ErrEmptyGeometry is returned when a solid or sheet yields no drawable geometry.
	ErrEmptyGeometry = errors.New("techdraw: empty geometry")

	ErrDegenerate       = errors.New("degenerate geometry")
	ErrUnsupportedCurve = errors.New("unsupported curve")
)

// DiagnosticKind classifies a recovered failure.
type DiagnosticKind uint8

const (
	GeometryExtraction DiagnosticKind = iota
	ClassificationAmbiguity
	LayoutOverflow
	DimensionCollision
	DimensionFailed
)

func (k DiagnosticKind) String() string {
	switch k {
	case GeometryExtraction:
		return "geometry extraction failure"
	case ClassificationAmbiguity:
		return "classification ambiguity"
	case LayoutOverflow:
		return "layout overflow"
	case DimensionCollision:
		return "dimension placement collision"
	case DimensionFailed:
		return "dimension failure"
	}
	return "diagnostic"
}

// Diagnostic records a failure the pipeline recovered from.
type Diagnostic struct {
	Kind DiagnosticKind
	View string
	// Source is the index of the edge involved, -1 if none.
	Source int
	Err    error
}

func (d Diagnostic) Error() string {
	msg := d.Kind.String()
	if d.View != "" {
		msg += " in " + d.View + " view"
	}
	if d.Source >= 0 {
		msg += fmt.Sprintf(" (edge %d)", d.Source)
	}
	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}
	return msg
}

func (d Diagnostic) Unwrap() error { return d.Err }
