package tempmap

import (
	"errors"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorBlack is the default background for pixels no sample reaches.
var ColorBlack = Color{0, 0, 0, 1}

// RGBA8 returns the color as 8-bit straight-alpha channels.
func (c Color) RGBA8() [4]uint8 {
	return [4]uint8{
		uint8(clamp01(c.R)*255 + 0.5),
		uint8(clamp01(c.G)*255 + 0.5),
		uint8(clamp01(c.B)*255 + 0.5),
		uint8(clamp01(c.A)*255 + 0.5),
	}
}

// colorFromRGBA8 converts 8-bit channels back to a Color.
func colorFromRGBA8(p [4]uint8) Color {
	return Color{
		R: float64(p[0]) / 255,
		G: float64(p[1]) / 255,
		B: float64(p[2]) / 255,
		A: float64(p[3]) / 255,
	}
}

// Point is a raw sample in the pixel space of the target surface.
type Point struct {
	X, Y  float64
	Value float64
}

// NormalizedPoint is a sample with its position expressed as a fraction of
// the surface size and its value mapped into [0, 1].
type NormalizedPoint struct {
	U, V float64
	W    float64
}

// Colorization selects how the compositor turns an interpolated value into a
// color.
type Colorization uint8

const (
	ColorizeRamp Colorization = iota // sample the ColorRamp lookup table
	ColorizeHue                      // closed-form red/green/blue centered at 0.5
)

// String returns the lower-case name used in configuration files.
func (c Colorization) String() string {
	switch c {
	case ColorizeRamp:
		return "ramp"
	case ColorizeHue:
		return "hue"
	default:
		return "unknown"
	}
}

// ParseColorization is the inverse of Colorization.String.
func ParseColorization(s string) (Colorization, error) {
	switch s {
	case "ramp", "":
		return ColorizeRamp, nil
	case "hue":
		return ColorizeHue, nil
	}
	return 0, errors.New("tempmap: unknown colorization " + s)
}

// NormalizePolicy selects how raw sample values are mapped into [0, 1].
// Policies are always chosen explicitly; the normalizer never infers one from
// which calibration values happen to be present.
type NormalizePolicy uint8

const (
	NormalizeSplit  NormalizePolicy = iota // normal maps to 0.5, each side stretched over its own span
	NormalizeAffine                        // (2v - low - normal) / (high - low)
	NormalizeRange                         // (v - low) / (high - low)
)

// String returns the lower-case name used in configuration files.
func (p NormalizePolicy) String() string {
	switch p {
	case NormalizeSplit:
		return "split"
	case NormalizeAffine:
		return "affine"
	case NormalizeRange:
		return "range"
	default:
		return "unknown"
	}
}

// ParseNormalizePolicy is the inverse of NormalizePolicy.String.
func ParseNormalizePolicy(s string) (NormalizePolicy, error) {
	switch s {
	case "split", "":
		return NormalizeSplit, nil
	case "affine":
		return NormalizeAffine, nil
	case "range":
		return NormalizeRange, nil
	}
	return 0, errors.New("tempmap: unknown normalization " + s)
}

// Calibration carries the optional low/high/normal reference values passed
// alongside a point set. A nil field means "not supplied".
type Calibration struct {
	Low    *float64
	High   *float64
	Normal *float64
}

// Opt returns a pointer to v. It is shorthand for filling optional fields of
// Calibration and OptionsUpdate.
func Opt[T any](v T) *T {
	return &v
}

// Errors returned by the renderer and its components.
var (
	ErrCapabilityUnavailable = errors.New("tempmap: required rendering capability unavailable")
	ErrResourceExhausted     = errors.New("tempmap: accumulation field too large")
	ErrInvalidSize           = errors.New("tempmap: surface size must be positive")
	ErrEmptyRamp             = errors.New("tempmap: color ramp needs at least one breakpoint")
	ErrUnsortedRamp          = errors.New("tempmap: color ramp thresholds must be ascending")
	ErrInvalidColor          = errors.New("tempmap: invalid hex color")
)

// clamp01 clamps v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// positive reports whether v is a usable positive, finite knob value.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
