package contracts

import (
	"errors"
	"fmt"
	"math"
)

type Paper string

const (
	PaperAuto   Paper = "auto"
	PaperA4     Paper = "A4"
	PaperLetter Paper = "Letter"
	PaperLegal  Paper = "Legal"
)

type Orientation string

const (
	OrientationAuto      Orientation = "auto"
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

type FitMode string

const (
	FitContain FitMode = "contain"
	FitCover   FitMode = "cover"
	FitStretch FitMode = "stretch"
)

const (
	DefaultDPI      = 150
	HDDPI           = 300
	DefaultMarginMm = 10
)

// Validation errors for Options.
var (
	ErrInvalidDPI         = errors.New("dpi must be positive")
	ErrInvalidPaper       = errors.New("invalid paper")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidFit         = errors.New("invalid fit mode")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidAdjustment  = errors.New("invalid adjustment")
)

type MarginKind int

const (
	MarginsDefault MarginKind = iota
	MarginsUniform
	MarginsPerSide
)

// Margins is either the default, a single value for every side, or one value
// per side. Values are millimetres.
type Margins struct {
	Kind                     MarginKind
	Value                    float64
	Top, Right, Bottom, Left float64
}

func UniformMargins(mm float64) Margins {
	return Margins{Kind: MarginsUniform, Value: mm}
}

func PerSideMargins(top, right, bottom, left float64) Margins {
	return Margins{Kind: MarginsPerSide, Top: top, Right: right, Bottom: bottom, Left: left}
}

// Sides returns the four values in millimetres, resolving the default.
func (m Margins) Sides() (top, right, bottom, left float64) {
	switch m.Kind {
	case MarginsUniform:
		return m.Value, m.Value, m.Value, m.Value
	case MarginsPerSide:
		return m.Top, m.Right, m.Bottom, m.Left
	default:
		return DefaultMarginMm, DefaultMarginMm, DefaultMarginMm, DefaultMarginMm
	}
}

func (m Margins) Validate() error {
	if m.Kind < MarginsDefault || m.Kind > MarginsPerSide {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidMargin, m.Kind)
	}
	t, r, b, l := m.Sides()
	for _, v := range []float64{t, r, b, l} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidMargin, v)
		}
	}
	return nil
}

// Options controls page sizing and placement for one export.
type Options struct {
	DPI         float64
	Title       string
	OutputName  string
	Paper       Paper
	Orientation Orientation
	Margins     Margins
	Fit         FitMode
	// UseImageDPI sizes auto pages from the resolution stored in each image,
	// when present, instead of DPI.
	UseImageDPI bool
}

func DefaultOptions() Options {
	return Options{
		DPI:         DefaultDPI,
		Paper:       PaperAuto,
		Orientation: OrientationAuto,
		Fit:         FitContain,
	}
}

// Normalized fills a zero DPI and empty enum fields with their defaults.
func (o Options) Normalized() Options {
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.Paper == "" {
		o.Paper = PaperAuto
	}
	if o.Orientation == "" {
		o.Orientation = OrientationAuto
	}
	if o.Fit == "" {
		o.Fit = FitContain
	}
	return o
}

// Validate checks a normalized Options value.
func (o Options) Validate() error {
	if !(o.DPI > 0) || math.IsInf(o.DPI, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDPI, o.DPI)
	}
	switch o.Paper {
	case PaperAuto, PaperA4, PaperLetter, PaperLegal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPaper, o.Paper)
	}
	switch o.Orientation {
	case OrientationAuto, OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, o.Orientation)
	}
	switch o.Fit {
	case FitContain, FitCover, FitStretch:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFit, o.Fit)
	}
	return o.Margins.Validate()
}

func (a Adjustments) Validate() error {
	for _, v := range []float64{a.Brightness, a.Contrast, a.Saturation} {
		if math.IsNaN(v) || v < -1 || v > 1 {
			return fmt.Errorf("%w: %v not in [-1, 1]", ErrInvalidAdjustment, v)
		}
	}
	return nil
}
