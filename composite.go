package tempmap

import (
	"image"
	"math"
)

// CompositeParams are the pass 2 parameters.
type CompositeParams struct {
	Gamma        float64
	Colorization Colorization
	Ramp         *ColorRamp // required for ColorizeRamp; nil falls back to the hue formula
	Background   Color      // used where the field holds no weight
}

// HueColor is the closed-form colorization: green peaks at 0.5, red ramps
// up above it and blue below it.
func HueColor(v float64) Color {
	return Color{
		R: clamp01((v - 0.5) * 2),
		G: clamp01(1 - math.Abs(v-0.5)*2),
		B: clamp01((0.5 - v) * 2),
		A: 1,
	}
}

// ApplyGamma raises each color channel to 1/gamma. Alpha is untouched.
func ApplyGamma(c Color, gamma float64) Color {
	if gamma == 1 || !positive(gamma) {
		return c
	}
	inv := 1 / gamma
	return Color{
		R: math.Pow(clamp01(c.R), inv),
		G: math.Pow(clamp01(c.G), inv),
		B: math.Pow(clamp01(c.B), inv),
		A: c.A,
	}
}

// Colorize resolves an interpolated value to its final opaque color.
func (cp *CompositeParams) Colorize(v float64) Color {
	var c Color
	if cp.Colorization == ColorizeRamp && cp.Ramp != nil {
		c = cp.Ramp.Sample(v)
	} else {
		c = HueColor(v)
	}
	c = ApplyGamma(c, cp.Gamma)
	c.A = 1
	return c
}

// ResolvePixel resolves accumulated sums to a color, falling back to the
// background where no weight was accumulated.
func (cp *CompositeParams) ResolvePixel(num, den float32) Color {
	v, ok := resolveValue(num, den)
	if !ok {
		bg := cp.Background
		bg.A = 1
		return bg
	}
	return cp.Colorize(v)
}

// Composite runs pass 2 over the whole of dst. The field may have a
// different resolution than dst; it is sampled with nearest filtering.
// The field stores rows bottom-up while dst is top-down, so each output row
// samples the field at 1 - (glY+0.5)/H.
func Composite(dst *image.RGBA, field *Field, cp *CompositeParams) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	fw, fh := float64(w), float64(h)
	parallelRows(h, func(y int) {
		glY := h - 1 - y
		t := 1 - (float64(glY)+0.5)/fh
		off := dst.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			s := (float64(x) + 0.5) / fw
			px := cp.ResolvePixel(field.Sample(s, t)).RGBA8()
			copy(dst.Pix[off+x*4:off+x*4+4], px[:])
		}
	})
}
