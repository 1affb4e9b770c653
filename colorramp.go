package tempmap

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RampSize is the number of entries in a ColorRamp lookup table.
const RampSize = 128

// RampMode selects how breakpoints are resolved while densifying the table.
type RampMode uint8

const (
	RampStep   RampMode = iota // color of the first breakpoint whose threshold >= t
	RampLinear                 // RGB interpolation between the bracketing breakpoints
)

// String returns the lower-case name used in configuration files.
func (m RampMode) String() string {
	if m == RampLinear {
		return "linear"
	}
	return "step"
}

// ParseRampMode is the inverse of RampMode.String.
func ParseRampMode(s string) (RampMode, error) {
	switch s {
	case "step", "":
		return RampStep, nil
	case "linear":
		return RampLinear, nil
	}
	return 0, fmt.Errorf("tempmap: unknown ramp mode %q", s)
}

// Breakpoint pairs a threshold with the color used at and below it.
type Breakpoint struct {
	Threshold float64
	Color     Color
}

// HexBreakpoint is the textual form of a Breakpoint, e.g. {-50, "#cbecff"}.
type HexBreakpoint struct {
	Threshold float64
	Hex       string
}

// ColorRamp is an immutable RampSize-entry RGBA8 lookup table sampled
// uniformly over [first threshold, last threshold]. Build a new ramp to
// change it; tables are never patched in place.
type ColorRamp struct {
	breakpoints []Breakpoint
	mode        RampMode
	table       [RampSize][4]uint8
}

// ParseHex parses "#rrggbb" or the "#rgb" shorthand (each nibble doubled).
// The leading '#' is optional. Alpha is always opaque.
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return colorFromRGBA8([4]uint8{r, g, b, 255}), nil
}

// ParseBreakpoints converts textual breakpoints into Breakpoints.
func ParseBreakpoints(in []HexBreakpoint) ([]Breakpoint, error) {
	out := make([]Breakpoint, len(in))
	for i, hb := range in {
		c, err := ParseHex(hb.Hex)
		if err != nil {
			return nil, fmt.Errorf("breakpoint %d: %w", i, err)
		}
		out[i] = Breakpoint{Threshold: hb.Threshold, Color: c}
	}
	return out, nil
}

// NewColorRamp validates the breakpoints and densifies them into a table.
func NewColorRamp(breakpoints []Breakpoint, mode RampMode) (*ColorRamp, error) {
	if len(breakpoints) == 0 {
		return nil, ErrEmptyRamp
	}
	for i, bp := range breakpoints {
		if math.IsNaN(bp.Threshold) || math.IsInf(bp.Threshold, 0) {
			return nil, fmt.Errorf("%w: breakpoint %d has threshold %v", ErrUnsortedRamp, i, bp.Threshold)
		}
		if i > 0 && bp.Threshold < breakpoints[i-1].Threshold {
			return nil, fmt.Errorf("%w: %v follows %v", ErrUnsortedRamp, bp.Threshold, breakpoints[i-1].Threshold)
		}
	}
	r := &ColorRamp{
		breakpoints: append([]Breakpoint(nil), breakpoints...),
		mode:        mode,
	}
	lo := r.Min()
	span := r.Max() - lo
	for j := 0; j < RampSize; j++ {
		t := lo + span*float64(j)/RampSize
		r.table[j] = r.resolve(t)
	}
	return r, nil
}

// NewColorRampHex parses textual breakpoints and builds a ramp in one step.
func NewColorRampHex(in []HexBreakpoint, mode RampMode) (*ColorRamp, error) {
	bps, err := ParseBreakpoints(in)
	if err != nil {
		return nil, err
	}
	return NewColorRamp(bps, mode)
}

// resolve computes the color at threshold-space position t directly from
// the breakpoints.
func (r *ColorRamp) resolve(t float64) [4]uint8 {
	bps := r.breakpoints
	if t <= bps[0].Threshold {
		return bps[0].Color.RGBA8()
	}
	for i, bp := range bps {
		if t > bp.Threshold {
			continue
		}
		if r.mode == RampStep || i == 0 {
			return bp.Color.RGBA8()
		}
		prev := bps[i-1]
		f := (t - prev.Threshold) / (bp.Threshold - prev.Threshold)
		c1 := colorful.Color{R: prev.Color.R, G: prev.Color.G, B: prev.Color.B}
		c2 := colorful.Color{R: bp.Color.R, G: bp.Color.G, B: bp.Color.B}
		cr, cg, cb := c1.BlendRgb(c2, f).Clamped().RGB255()
		return [4]uint8{cr, cg, cb, 255}
	}
	return bps[len(bps)-1].Color.RGBA8()
}

// Mode returns the resolution mode the table was built with.
func (r *ColorRamp) Mode() RampMode { return r.mode }

// Min returns the first breakpoint threshold.
func (r *ColorRamp) Min() float64 { return r.breakpoints[0].Threshold }

// Max returns the last breakpoint threshold.
func (r *ColorRamp) Max() float64 { return r.breakpoints[len(r.breakpoints)-1].Threshold }

// Breakpoints returns a copy of the breakpoints the ramp was built from.
func (r *ColorRamp) Breakpoints() []Breakpoint {
	return append([]Breakpoint(nil), r.breakpoints...)
}

// Entry returns table entry i as RGBA8. Out-of-range indices clamp.
func (r *ColorRamp) Entry(i int) [4]uint8 {
	if i < 0 {
		i = 0
	}
	if i >= RampSize {
		i = RampSize - 1
	}
	return r.table[i]
}

// Pixels returns the table as a RampSize x 1 RGBA8 pixel row, suitable for
// uploading as a texture or writing as an image strip.
func (r *ColorRamp) Pixels() []byte {
	pix := make([]byte, RampSize*4)
	for i, e := range r.table {
		copy(pix[i*4:], e[:])
	}
	return pix
}

// At looks up the table at threshold-space position t. Positions at or
// beyond the ends return the end colors exactly.
func (r *ColorRamp) At(t float64) Color {
	lo, hi := r.Min(), r.Max()
	if t <= lo || hi == lo {
		return r.breakpoints[0].Color
	}
	if t >= hi {
		return r.breakpoints[len(r.breakpoints)-1].Color
	}
	return r.Sample((t - lo) / (hi - lo))
}

// Sample looks up the table at normalized position s in [0, 1] the way a
// nearest-filtered, clamp-to-edge texture does.
func (r *ColorRamp) Sample(s float64) Color {
	return colorFromRGBA8(r.table[rampIndex(s)])
}

// rampIndex maps a normalized ramp position to a table index.
func rampIndex(s float64) int {
	if !(s > 0) {
		return 0
	}
	idx := int(s * RampSize)
	if idx >= RampSize {
		idx = RampSize - 1
	}
	return idx
}

// DefaultColorMap is the temperature ramp used when no color map is given,
// spanning -50 to 100 degrees.
var DefaultColorMap = []HexBreakpoint{
	{-50, "#cbecff"},
	{-40, "#8998c7"},
	{-32, "#875aa7"},
	{-25, "#821d7c"},
	{-18, "#002258"},
	{-14, "#193b95"},
	{-10, "#124c9f"},
	{-6, "#0a60a8"},
	{-2, "#0078b5"},
	{2, "#33b6c6"},
	{6, "#5ac8c6"},
	{10, "#96dba6"},
	{14, "#76db8e"},
	{18, "#5ddb7a"},
	{22, "#4cdb6d"},
	{24, "#8bdb4c"},
	{26, "#bedb4c"},
	{28, "#eed371"},
	{30, "#eec42b"},
	{32, "#eea02b"},
	{35, "#ee810f"},
	{38, "#ee590f"},
	{40, "#ff3c1a"},
	{43, "#ff3800"},
	{47, "#ff1700"},
	{50, "#db0000"},
	{55, "#ad0000"},
	{60, "#6c0000"},
	{70, "#380000"},
	{80, "#1c0000"},
	{90, "#8700ff"},
	{100, "#ff00ed"},
}

// DefaultColorRamp builds the stepwise ramp from DefaultColorMap.
func DefaultColorRamp() *ColorRamp {
	r, err := NewColorRampHex(DefaultColorMap, RampStep)
	if err != nil {
		panic("tempmap: default color map is invalid: " + err.Error())
	}
	return r
}
