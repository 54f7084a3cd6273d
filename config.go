package techdraw

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
)

// Config holds the recognized drawing options. Offsets and spacings are page
// millimetres, lengths and radii are model millimetres.
type Config struct {
	AutoScale bool
	// Scale is used when AutoScale is off.
	Scale                float64 `validate:"gt=0"`
	DimensionOffsetMajor float64 `validate:"gt=0"`
	DimensionOffsetMinor float64 `validate:"gt=0"`
	MinDimensionSpacing  float64 `validate:"gte=0"`
	// MinDimensionLength is the shortest segment that gets dimensioned.
	MinDimensionLength   float64 `validate:"gte=0"`
	MinHoleRadius        float64 `validate:"gte=0"`
	MaxHoleRadius        float64 `validate:"gtfield=MinHoleRadius"`
	ShowCenterLines      bool
	ShowRadiusDimensions bool
	ShowHoleSpacing      bool
	ShowIsometric        bool
	// CurveSamples is the number of points free-form edges are discretized into.
	CurveSamples int `validate:"gte=2"`
	// Decimals is the label precision, also used to deduplicate values.
	Decimals   int `validate:"gte=0,lte=6"`
	Heuristics Heuristics
}

// Heuristics are the tunable thresholds of classification, layout and
// dimension placement. Angles are in degrees unless noted.
type Heuristics struct {
	// ArcClosureTolerance in radians below which an arc span counts as a full circle.
	ArcClosureTolerance float64 `validate:"gt=0"`
	// AngleTolerance for horizontal and vertical lines.
	AngleTolerance float64 `validate:"gt=0,lt=45"`
	AngleBucket    float64 `validate:"gt=0,lte=90"`
	// MinFeatureLength is the shortest line counted as horizontal, vertical or diagonal.
	MinFeatureLength float64 `validate:"gte=0"`
	DiagonalRatio    float64 `validate:"gt=0,lte=1"`
	OrthogonalRatio  float64 `validate:"gt=0,lte=1"`
	DominanceRatio   float64 `validate:"gte=1"`
	// StripAspect is the width/height ratio above which a sheet splits into strips.
	StripAspect float64 `validate:"gt=0"`
	// MajorFraction of the view extent a linear dimension must span to be major.
	MajorFraction      float64   `validate:"gt=0,lte=1"`
	DetailMinLength    float64   `validate:"gte=0"`
	DetailMaxLength    float64   `validate:"gtfield=DetailMinLength"`
	CommonAngleBuckets int       `validate:"gte=0"`
	PositionMinGap     float64   `validate:"gte=0"`
	RetryFactors       []float64 `validate:"dive,gt=0"`
	CandidateAngles    []float64 `validate:"min=1"`
	ScaleSafety        float64   `validate:"gt=0,lte=1"`
	// ViewSpacing and DimensionSpace are page millimetres.
	ViewSpacing    float64   `validate:"gte=0"`
	DimensionSpace float64   `validate:"gte=0"`
	StandardScales []float64 `validate:"min=1,dive,gt=0"`
	// HoleSpacingMinSpread is the spread of hole centers above which spacing dimensions are added.
	HoleSpacingMinSpread float64 `validate:"gte=0"`
	// CenterLineExtension is the center line half length in hole radii.
	CenterLineExtension float64 `validate:"gt=0"`
	// AxisParallel is the minimum |cos| between a hole axis and the view direction.
	AxisParallel float64 `validate:"gt=0,lte=1"`
	// MergeTolerance is the distance under which projected geometry coincides.
	MergeTolerance float64 `validate:"gt=0"`
	// ArrowSize and Leader are page millimetres.
	ArrowSize float64 `validate:"gt=0"`
	Leader    float64 `validate:"gte=0"`
	// DuplicateTolerance is the difference under which two dimension values,
	// or two hole radii, are the same.
	DuplicateTolerance float64 `validate:"gte=0"`
	// HoleCenterTolerance is the distance under which hole centers coincide.
	HoleCenterTolerance float64 `validate:"gte=0"`
	// ThinRatio of the two smallest bounding dimensions below which a solid is a plate.
	ThinRatio float64 `validate:"gt=0,lt=1"`
	// WallGapMin and WallGapMax bound the thickness measured between opposite faces.
	WallGapMin float64 `validate:"gte=0"`
	WallGapMax float64 `validate:"gtfield=WallGapMin"`
	// AreaSimilarity is the minimum area ratio of opposite faces forming a wall.
	AreaSimilarity float64 `validate:"gt=0,lte=1"`
}

// DefaultConfig returns the default drawing options.
func DefaultConfig() Config {
	return Config{
		AutoScale:            true,
		Scale:                1,
		DimensionOffsetMajor: 10,
		DimensionOffsetMinor: 6,
		MinDimensionSpacing:  8,
		MinDimensionLength:   2,
		MinHoleRadius:        0.5,
		MaxHoleRadius:        50,
		ShowCenterLines:      true,
		ShowRadiusDimensions: true,
		ShowHoleSpacing:      true,
		ShowIsometric:        true,
		CurveSamples:         20,
		Decimals:             1,
		Heuristics: Heuristics{
			ArcClosureTolerance:  0.02,
			AngleTolerance:       10,
			AngleBucket:          15,
			MinFeatureLength:     0.1,
			DiagonalRatio:        0.3,
			OrthogonalRatio:      0.8,
			DominanceRatio:       1.5,
			StripAspect:          1.5,
			MajorFraction:        0.7,
			DetailMinLength:      2,
			DetailMaxLength:      20,
			CommonAngleBuckets:   2,
			PositionMinGap:       5,
			RetryFactors:         []float64{1.5, 2, 2.5},
			CandidateAngles:      []float64{45, 135, -45, -135, 90, -90, 0, 180},
			ScaleSafety:          0.85,
			ViewSpacing:          20,
			DimensionSpace:       15,
			StandardScales:       []float64{0.05, 0.1, 0.2, 0.25, 0.5, 1, 2, 5, 10},
			HoleSpacingMinSpread: 20,
			CenterLineExtension:  1.5,
			AxisParallel:         0.99,
			MergeTolerance:       1e-6,
			ArrowSize:            2.5,
			Leader:               6,
			DuplicateTolerance:   0.01,
			HoleCenterTolerance:  0.1,
			ThinRatio:            0.2,
			WallGapMin:           0.5,
			WallGapMax:           20,
			AreaSimilarity:       0.9,
		},
	}
}

// Validate checks the configuration's field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadEnv reads the given .env files and overlays the process environment.
// Missing files are an error.
func LoadEnv(files ...string) (map[string]string, error) {
	env := make(map[string]string)
	if len(files) > 0 {
		m, err := godotenv.Read(files...)
		if err != nil {
			return nil, err
		}
		env = m
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

// ConfigFromEnv returns DefaultConfig with the options present in env
// applied, then validates the result.
func ConfigFromEnv(env map[string]string) (Config, error) {
	c := DefaultConfig()
	p := envParser{env: env}
	p.bool("AUTO_SCALE", &c.AutoScale)
	p.float("SCALE", &c.Scale)
	p.float("DIMENSION_OFFSET_MAJOR", &c.DimensionOffsetMajor)
	p.float("DIMENSION_OFFSET_MINOR", &c.DimensionOffsetMinor)
	p.float("MIN_DIMENSION_SPACING", &c.MinDimensionSpacing)
	p.float("MIN_DIMENSION_LENGTH", &c.MinDimensionLength)
	p.float("MIN_HOLE_RADIUS", &c.MinHoleRadius)
	p.float("MAX_HOLE_RADIUS", &c.MaxHoleRadius)
	p.bool("SHOW_CENTER_LINES", &c.ShowCenterLines)
	p.bool("SHOW_RADIUS_DIMENSIONS", &c.ShowRadiusDimensions)
	p.bool("SHOW_HOLE_SPACING", &c.ShowHoleSpacing)
	p.bool("SHOW_ISOMETRIC", &c.ShowIsometric)
	p.int("CURVE_SAMPLES", &c.CurveSamples)
	p.int("DIMENSION_DECIMALS", &c.Decimals)
	p.float("SCALE_SAFETY_FACTOR", &c.Heuristics.ScaleSafety)
	p.float("VIEW_SPACING", &c.Heuristics.ViewSpacing)
	if p.err != nil {
		return Config{}, p.err
	}
	return c, c.Validate()
}

// PageFromEnv returns the page described by PAPER_SIZE, PAPER_LANDSCAPE,
// PAGE_MARGIN and TITLE_BLOCK_HEIGHT. The default is a landscape A3 sheet.
func PageFromEnv(env map[string]string) (Page, error) {
	size := "A3"
	landscape := true
	p := envParser{env: env}
	p.string("PAPER_SIZE", &size)
	p.bool("PAPER_LANDSCAPE", &landscape)
	if p.err != nil {
		return Page{}, p.err
	}
	page, err := PaperSize(size, landscape)
	if err != nil {
		return Page{}, err
	}
	p.float("PAGE_MARGIN", &page.Margin)
	p.float("TITLE_BLOCK_HEIGHT", &page.TitleBlockHeight)
	if p.err != nil {
		return Page{}, p.err
	}
	return page, page.Validate()
}

// envParser sets values from an environment map, keeping the first error.
type envParser struct {
	env map[string]string
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.env[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *envParser) string(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *envParser) bool(key string, dst *bool) {
	if v, ok := p.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = b
	}
}

func (p *envParser) float(key string, dst *float64) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = f
	}
}

func (p *envParser) int(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = i
	}
}
