package tempmap

import (
	"image"
	"testing"
)

func TestHueColor(t *testing.T) {
	tests := []struct {
		v    float64
		want Color
	}{
		{0, Color{0, 0, 1, 1}},
		{0.25, Color{0, 0.5, 0.5, 1}},
		{0.5, Color{0, 1, 0, 1}},
		{0.75, Color{0.5, 0.5, 0, 1}},
		{1, Color{1, 0, 0, 1}},
		{-3, Color{0, 0, 1, 1}},
		{7, Color{1, 0, 0, 1}},
	}
	for _, tt := range tests {
		got := HueColor(tt.v)
		assertNear(t, "R", got.R, tt.want.R)
		assertNear(t, "G", got.G, tt.want.G)
		assertNear(t, "B", got.B, tt.want.B)
		assertNear(t, "A", got.A, 1)
	}
}

func TestApplyGamma(t *testing.T) {
	c := Color{0.25, 1, 0, 0.5}
	got := ApplyGamma(c, 2)
	assertNear(t, "R", got.R, 0.5)
	assertNear(t, "G", got.G, 1)
	assertNear(t, "B", got.B, 0)
	assertNear(t, "A", got.A, 0.5)

	if got := ApplyGamma(c, 1); got != c {
		t.Errorf("gamma 1 changed color: %v", got)
	}
	if got := ApplyGamma(c, -2); got != c {
		t.Errorf("invalid gamma changed color: %v", got)
	}
}

func TestResolvePixelBackground(t *testing.T) {
	cp := CompositeParams{Gamma: 1, Background: Color{0.2, 0.4, 0.6, 0}}
	got := cp.ResolvePixel(0, 0)
	if got != (Color{0.2, 0.4, 0.6, 1}) {
		t.Errorf("ResolvePixel(0, 0) = %v, want opaque background", got)
	}
}

func TestResolvePixelRamp(t *testing.T) {
	r := DefaultColorRamp()
	cp := CompositeParams{Gamma: 1, Colorization: ColorizeRamp, Ramp: r}
	if got, want := cp.ResolvePixel(1, 2).RGBA8(), r.Entry(64); got != want {
		t.Errorf("ResolvePixel(1, 2) = %v, want %v", got, want)
	}
}

func TestCompositeGammaOnly(t *testing.T) {
	r := DefaultColorRamp()
	base := CompositeParams{Gamma: 1, Colorization: ColorizeRamp, Ramp: r}
	bright := base
	bright.Gamma = 2.2
	for _, v := range []float64{0, 0.1, 0.37, 0.5, 0.81, 1} {
		want := ApplyGamma(base.Colorize(v), 2.2)
		got := bright.Colorize(v)
		assertNear(t, "R", got.R, want.R)
		assertNear(t, "G", got.G, want.G)
		assertNear(t, "B", got.B, want.B)
	}
}

func TestCompositeNoPoints(t *testing.T) {
	f := mustField(t, 8, 8, FieldFloat32)
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	Composite(dst, f, &CompositeParams{Gamma: 1, Background: ColorBlack})
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] != 0 || dst.Pix[i+1] != 0 || dst.Pix[i+2] != 0 || dst.Pix[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want opaque black", i/4, dst.Pix[i:i+4])
		}
	}
}

func TestCompositeOrientation(t *testing.T) {
	// A high sample near the top of the surface and a low one near the
	// bottom must appear in the same place in the output image.
	f := mustField(t, 4, 4, FieldFloat32)
	pts := []NormalizedPoint{
		{U: 0.5, V: 0.125, W: 1},
		{U: 0.5, V: 0.875, W: 0},
	}
	f.Accumulate(pts, FieldParams{P: 8, DistFactor: 1, RangeFactor: 1.0 / 256})
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	Composite(dst, f, &CompositeParams{Gamma: 1, Colorization: ColorizeHue})

	top := dst.RGBAAt(1, 0)
	bottom := dst.RGBAAt(1, 3)
	if !(top.R > top.B) {
		t.Errorf("top row %v should be red-dominant", top)
	}
	if !(bottom.B > bottom.R) {
		t.Errorf("bottom row %v should be blue-dominant", bottom)
	}
}

func TestCompositeScalesField(t *testing.T) {
	f := mustField(t, 2, 2, FieldFloat32)
	// Field row 0 holds samples with V near 0, the top of the surface.
	f.num[0], f.den[0] = 1, 1
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	Composite(dst, f, &CompositeParams{Gamma: 1, Colorization: ColorizeHue})
	red := [4]uint8{255, 0, 0, 255}
	for _, p := range []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		c := dst.RGBAAt(p.X, p.Y)
		if [4]uint8{c.R, c.G, c.B, c.A} != red {
			t.Errorf("pixel %v = %v, want red", p, c)
		}
	}
	if c := dst.RGBAAt(0, 3); c.R != 0 || c.A != 255 {
		t.Errorf("pixel (0,3) = %v, want opaque background", c)
	}
}
