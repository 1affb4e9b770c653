package ebitengine

import (
	"errors"
	"math"
	"testing"

	"github.com/phanxgames/tempmap"
)

func TestPackRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1e-6, 0.25, 0.5, 0.73219, 0.999, 1} {
		got, ok := decodeFieldValue(encodeFieldValue(v, true))
		if !ok {
			t.Fatalf("decode(%v) lost coverage", v)
		}
		if math.Abs(got-v) > 1.0/packScale {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
}

func TestPackClampsAndCoverage(t *testing.T) {
	if v, _ := decodeFieldValue(encodeFieldValue(-3, true)); v != 0 {
		t.Errorf("negative packed as %v", v)
	}
	if v, _ := decodeFieldValue(encodeFieldValue(7, true)); v != 1 {
		t.Errorf("above one packed as %v", v)
	}
	if v, _ := decodeFieldValue(encodeFieldValue(math.NaN(), true)); v != 0 {
		t.Errorf("NaN packed as %v", v)
	}
	px := encodeFieldValue(0.5, false)
	if px != [4]byte{0, 0, 0, 255} {
		t.Errorf("uncovered pixel = %v", px)
	}
	if _, ok := decodeFieldValue(px); ok {
		t.Error("uncovered pixel decoded as covered")
	}
}

func TestRampUniform(t *testing.T) {
	r := tempmap.DefaultColorRamp()
	u := rampUniform(r, make([]float32, tempmap.RampSize*4))
	first := r.Entry(0)
	for c := 0; c < 4; c++ {
		if got, want := u[c], float32(first[c])/255; got != want {
			t.Errorf("channel %d = %v, want %v", c, got, want)
		}
	}
	last := r.Entry(tempmap.RampSize - 1)
	if got, want := u[len(u)-4], float32(last[0])/255; got != want {
		t.Errorf("last red = %v, want %v", got, want)
	}
}

func TestPackFieldMatchesFieldValues(t *testing.T) {
	f, err := tempmap.NewField(5, 3, tempmap.FieldFloat32)
	if err != nil {
		t.Fatal(err)
	}
	f.Accumulate([]tempmap.NormalizedPoint{
		{U: 0.1, V: 0.1, W: 0.2},
		{U: 0.9, V: 0.9, W: 0.8},
	}, tempmap.FieldParams{P: 2, DistFactor: 1, RangeFactor: 1.0 / 256})
	pix := packField(f, nil)
	if len(pix) != 5*3*4 {
		t.Fatalf("len = %d", len(pix))
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			want, _ := f.Value(x, y)
			off := (y*5 + x) * 4
			got, ok := decodeFieldValue([4]byte{pix[off], pix[off+1], pix[off+2], pix[off+3]})
			if !ok || math.Abs(got-want) > 1.0/packScale {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSupported(t *testing.T) {
	b := New()
	if !b.Supported() {
		t.Fatalf("shaders failed to compile: %v", ensureShaders())
	}
	if !tempmap.IsSupported(b) {
		t.Error("IsSupported = false")
	}
}

func TestResize(t *testing.T) {
	b := New()
	if err := b.Resize(64, 48, 32, 24); err != nil {
		t.Fatal(err)
	}
	if got := b.Image().Bounds(); got.Dx() != 64 || got.Dy() != 48 {
		t.Errorf("surface = %v, want 64x48", got)
	}
	if b.field.w != 32 || b.field.h != 24 || b.color.w != 32 || b.color.h != 24 {
		t.Errorf("field = %dx%d color = %dx%d", b.field.w, b.field.h, b.color.w, b.color.h)
	}
	if err := b.Resize(0, 48, 32, 24); !errors.Is(err, tempmap.ErrInvalidSize) {
		t.Errorf("err = %v, want ErrInvalidSize", err)
	}
	if err := b.Resize(10000, 10000, 10, 10); !errors.Is(err, tempmap.ErrResourceExhausted) {
		t.Errorf("err = %v, want ErrResourceExhausted", err)
	}
	if got := b.Bounds(); got.Dx() != 64 || got.Dy() != 48 {
		t.Errorf("failed resize changed bounds to %v", got)
	}
	b.Dispose()
	if b.Image() != nil {
		t.Error("Image not nil after Dispose")
	}
}

func TestAccumulateFallsBackToCPU(t *testing.T) {
	b := New()
	if err := b.Resize(16, 16, 16, 16); err != nil {
		t.Fatal(err)
	}
	defer b.Dispose()
	pass := &tempmap.Pass{Field: tempmap.FieldParams{P: 1, DistFactor: 1, RangeFactor: 1.0 / 256}}

	few := make([]tempmap.NormalizedPoint, MaxShaderPoints)
	b.Accumulate(few, pass)
	if b.lastOnCPU {
		t.Errorf("%d points accumulated on CPU", len(few))
	}

	many := make([]tempmap.NormalizedPoint, MaxShaderPoints+1)
	for i := range many {
		many[i] = tempmap.NormalizedPoint{U: float64(i%16) / 16, V: float64(i/16) / 16, W: 0.5}
	}
	b.Accumulate(many, pass)
	if !b.lastOnCPU || b.cpuField == nil {
		t.Fatal("large point set did not use the CPU accumulator")
	}
	if v, ok := b.cpuField.Value(3, 3); !ok || math.Abs(v-0.5) > 1e-5 {
		t.Errorf("cpu field value = %v, %v, want 0.5", v, ok)
	}
}

func TestSetRampNil(t *testing.T) {
	b := New()
	b.SetRamp(tempmap.DefaultColorRamp())
	if len(b.ramp) != tempmap.RampSize*4 {
		t.Fatalf("ramp len = %d", len(b.ramp))
	}
	b.SetRamp(nil)
	if b.ramp != nil {
		t.Error("SetRamp(nil) kept the table")
	}
}
