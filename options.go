package tempmap

import (
	"log/slog"
	"os"
)

// Options configures a Renderer. Start from DefaultOptions or HueOptions and
// override fields; zero or invalid numeric knobs are replaced by the
// DefaultOptions values when the renderer is created.
type Options struct {
	// P is the IDW distance exponent. Higher values localize each sample.
	P float64
	// DistFactor divides unit-square distances before weighting.
	DistFactor float64
	// RangeFactor scales both accumulated sums to keep them within the
	// field's storage range.
	RangeFactor float64
	// Gamma is applied to the final color as c^(1/Gamma).
	Gamma float64
	// FramebufferFactor scales the accumulation field relative to the
	// surface. Values below 1 trade detail for speed.
	FramebufferFactor float64

	ShowPoints    bool
	Unit          string
	Colorization  Colorization
	ColorMap      *ColorRamp // nil uses DefaultColorRamp
	Normalization NormalizePolicy
	Background    Color // zero value renders opaque black

	PointText PointTextFunc // nil uses FormatPointText
	Labels    LabelSink     // nil disables point labels

	// Logger receives warnings and debug output. nil logs to stderr.
	Logger *slog.Logger
	// ID identifies the renderer's labels. Empty generates a random ID.
	ID string
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
}

// DefaultOptions returns the ramp-colorized preset.
func DefaultOptions() Options {
	return Options{
		P:                 1,
		DistFactor:        1,
		RangeFactor:       1.0 / 256,
		Gamma:             1,
		FramebufferFactor: 1,
		Unit:              "°C",
		Colorization:      ColorizeRamp,
		Normalization:     NormalizeSplit,
		Background:        ColorBlack,
		ScreenshotDir:     "screenshots",
	}
}

// HueOptions returns the hue-colorized preset: sharper falloff and a
// display gamma.
func HueOptions() Options {
	o := DefaultOptions()
	o.P = 5
	o.Gamma = 2.2
	o.Colorization = ColorizeHue
	return o
}

// withDefaults fills unset fields and replaces invalid knobs, warning about
// each replaced value. When it creates the logger it also returns the level
// controlling it.
func (o Options) withDefaults() (Options, *slog.LevelVar) {
	d := DefaultOptions()
	var level *slog.LevelVar
	if o.Logger == nil {
		level = new(slog.LevelVar)
		o.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	o.Logger = o.Logger.With("component", "tempmap")
	knobs := []struct {
		name string
		v    *float64
		def  float64
	}{
		{"p", &o.P, d.P},
		{"dist_factor", &o.DistFactor, d.DistFactor},
		{"range_factor", &o.RangeFactor, d.RangeFactor},
		{"gamma", &o.Gamma, d.Gamma},
		{"framebuffer_factor", &o.FramebufferFactor, d.FramebufferFactor},
	}
	for _, k := range knobs {
		if positive(*k.v) {
			continue
		}
		if *k.v != 0 {
			o.Logger.Warn("invalid option replaced by default", "option", k.name, "value", *k.v, "default", k.def)
		}
		*k.v = k.def
	}
	if o.ColorMap == nil {
		o.ColorMap = DefaultColorRamp()
	}
	if o.Background == (Color{}) {
		o.Background = ColorBlack
	}
	if o.PointText == nil {
		o.PointText = FormatPointText
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = d.ScreenshotDir
	}
	return o, level
}

// OptionsUpdate is a partial set of options. nil fields are left unchanged.
type OptionsUpdate struct {
	P             *float64
	DistFactor    *float64
	RangeFactor   *float64
	Gamma         *float64
	ShowPoints    *bool
	Unit          *string
	ColorMap      *ColorRamp
	Colorization  *Colorization
	Normalization *NormalizePolicy
	Background    *Color
}

// merge applies u to o. Non-positive or non-finite numeric values are
// ignored with a warning. It reports whether the color ramp changed and
// whether the normalization policy changed.
func (o *Options) merge(u OptionsUpdate) (rampChanged, policyChanged bool) {
	set := func(name string, dst *float64, v *float64) {
		if v == nil {
			return
		}
		if !positive(*v) {
			o.Logger.Warn("ignoring invalid option", "option", name, "value", *v)
			return
		}
		*dst = *v
	}
	set("p", &o.P, u.P)
	set("dist_factor", &o.DistFactor, u.DistFactor)
	set("range_factor", &o.RangeFactor, u.RangeFactor)
	set("gamma", &o.Gamma, u.Gamma)
	if u.ShowPoints != nil {
		o.ShowPoints = *u.ShowPoints
	}
	if u.Unit != nil {
		o.Unit = *u.Unit
	}
	if u.ColorMap != nil && u.ColorMap != o.ColorMap {
		o.ColorMap = u.ColorMap
		rampChanged = true
	}
	if u.Colorization != nil {
		switch *u.Colorization {
		case ColorizeRamp, ColorizeHue:
			o.Colorization = *u.Colorization
		default:
			o.Logger.Warn("ignoring invalid option", "option", "colorization", "value", *u.Colorization)
		}
	}
	if u.Normalization != nil {
		switch *u.Normalization {
		case NormalizeSplit, NormalizeAffine, NormalizeRange:
			policyChanged = *u.Normalization != o.Normalization
			o.Normalization = *u.Normalization
		default:
			o.Logger.Warn("ignoring invalid option", "option", "normalization", "value", *u.Normalization)
		}
	}
	if u.Background != nil {
		o.Background = *u.Background
	}
	return rampChanged, policyChanged
}
