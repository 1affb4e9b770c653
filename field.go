package tempmap

import (
	"fmt"
	"math"
	"runtime"

	"github.com/x448/float16"
	"golang.org/x/sync/errgroup"
)

// FieldFormat is the storage precision of an accumulation field.
type FieldFormat uint8

const (
	FieldFloat32 FieldFormat = iota // 32-bit float channels
	FieldHalf                       // 16-bit half-float channels, emulated
)

// maxHalf is the largest finite binary16 value.
const maxHalf = 65504

// MinDistance is the smallest distance used in the weight computation.
// A pixel sitting exactly on a sample gets the weight of this distance
// instead of an unbounded one.
const MinDistance = 1e-6

// MaxFieldPixels bounds the size of an accumulation field.
const MaxFieldPixels = 8192 * 8192

// Max returns the largest finite value the format can store.
func (f FieldFormat) Max() float64 {
	if f == FieldHalf {
		return maxHalf
	}
	return math.MaxFloat32
}

// String returns the lower-case name used in configuration files.
func (f FieldFormat) String() string {
	if f == FieldHalf {
		return "half"
	}
	return "float32"
}

// ParseFieldFormat is the inverse of FieldFormat.String.
func ParseFieldFormat(s string) (FieldFormat, error) {
	switch s {
	case "float32", "":
		return FieldFloat32, nil
	case "half":
		return FieldHalf, nil
	}
	return 0, fmt.Errorf("tempmap: unknown field format %q", s)
}

// store rounds v to the format's precision, saturating at its maximum.
func (f FieldFormat) store(v float64) float32 {
	if v > f.Max() {
		v = f.Max()
	}
	if f == FieldHalf {
		return float16.Fromfloat32(float32(v)).Float32()
	}
	return float32(v)
}

// FieldParams are the pass 1 parameters.
type FieldParams struct {
	P           float64 // distance exponent
	DistFactor  float64 // divides distances before weighting
	RangeFactor float64 // scales numerator and denominator before storage
}

// Field is the accumulation buffer of pass 1: per-pixel IDW partial sums
// (numerator, denominator). Rows are addressed the way a GPU addresses
// fragment coordinates, row 0 at the bottom, and Sample takes coordinates in
// the same convention. Point positions are measured top-down and matched
// against rows unflipped, so the field holds the surface mirrored
// vertically; Composite undoes the mirror.
type Field struct {
	w, h   int
	format FieldFormat
	num    []float32
	den    []float32
}

// NewField allocates a zeroed w x h field.
func NewField(w, h int, format FieldFormat) (*Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: field %dx%d", ErrInvalidSize, w, h)
	}
	if w*h > MaxFieldPixels || w > 1<<20 || h > 1<<20 {
		return nil, fmt.Errorf("%w: field %dx%d exceeds %d pixels", ErrResourceExhausted, w, h, MaxFieldPixels)
	}
	return &Field{
		w:      w,
		h:      h,
		format: format,
		num:    make([]float32, w*h),
		den:    make([]float32, w*h),
	}, nil
}

// Width returns the field width in pixels.
func (f *Field) Width() int { return f.w }

// Height returns the field height in pixels.
func (f *Field) Height() int { return f.h }

// Format returns the storage format.
func (f *Field) Format() FieldFormat { return f.format }

// Clear zeroes every pixel.
func (f *Field) Clear() {
	clear(f.num)
	clear(f.den)
}

// At returns the raw sums stored at pixel (x, y), row 0 at the bottom.
func (f *Field) At(x, y int) (num, den float32) {
	i := y*f.w + x
	return f.num[i], f.den[i]
}

// Set overwrites the sums at pixel (x, y), rounded to the field's format.
func (f *Field) Set(x, y int, num, den float32) {
	i := y*f.w + x
	f.num[i] = f.format.store(float64(num))
	f.den[i] = f.format.store(float64(den))
}

// Value returns the weighted average at pixel (x, y). ok is false when no
// weight reached the pixel or the ratio is not finite.
func (f *Field) Value(x, y int) (v float64, ok bool) {
	return resolveValue(f.At(x, y))
}

// Sample returns the sums at normalized coordinates (s, t), t measured from
// the bottom, with nearest filtering and clamp-to-edge addressing.
func (f *Field) Sample(s, t float64) (num, den float32) {
	x := clampIndex(s, f.w)
	y := clampIndex(t, f.h)
	return f.At(x, y)
}

func clampIndex(s float64, n int) int {
	if !(s > 0) {
		return 0
	}
	i := int(s * float64(n))
	if i >= n {
		return n - 1
	}
	return i
}

// Accumulate adds the contribution of every point to every pixel. Pixel
// centers are compared against point positions in unit-square space, so the
// result does not depend on the field resolution beyond sampling.
//
// When the denominator would pass the format's maximum, both sums are scaled
// down together, so a saturated pixel still holds a weighted average of the
// sample values.
//
// Rows are processed concurrently; each pixel is owned by exactly one worker
// and sums points in slice order.
func (f *Field) Accumulate(points []NormalizedPoint, params FieldParams) {
	if len(points) == 0 {
		return
	}
	fw, fh := float64(f.w), float64(f.h)
	limit := f.format.Max()
	parallelRows(f.h, func(y int) {
		fy := (float64(y) + 0.5) / fh
		row := y * f.w
		for x := 0; x < f.w; x++ {
			fx := (float64(x) + 0.5) / fw
			num, den := float64(f.num[row+x]), float64(f.den[row+x])
			for _, p := range points {
				w := idwWeight(math.Hypot(fx-p.U, fy-p.V), params, limit)
				num, den = saturatePair(num+p.W*w, den+w, limit)
				num = float64(f.format.store(num))
				den = float64(f.format.store(den))
			}
			f.num[row+x] = float32(num)
			f.den[row+x] = float32(den)
		}
	})
}

// idwWeight returns the range-scaled inverse distance weight for a raw
// unit-square distance, saturated at limit.
func idwWeight(dist float64, params FieldParams, limit float64) float64 {
	d := dist / params.DistFactor
	if d < MinDistance {
		d = MinDistance
	}
	w := params.RangeFactor / math.Pow(d, params.P)
	if w > limit || math.IsInf(w, 1) {
		return limit
	}
	return w
}

// saturatePair scales num and den by the same factor so den does not exceed
// limit. The ratio, and with it the weighted average, is unchanged.
func saturatePair(num, den, limit float64) (float64, float64) {
	if den <= limit {
		return num, den
	}
	return num * (limit / den), limit
}

// resolveValue divides the accumulated sums.
func resolveValue(num, den float32) (float64, bool) {
	if !(den > 0) {
		return 0, false
	}
	v := float64(num) / float64(den)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parallelRows calls fn for every row in [0, h) across GOMAXPROCS workers
// and returns once all rows are done.
func parallelRows(h int, fn func(y int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		for y := 0; y < h; y++ {
			fn(y)
		}
		return
	}
	var g errgroup.Group
	band := (h + workers - 1) / workers
	for start := 0; start < h; start += band {
		end := min(start+band, h)
		g.Go(func() error {
			for y := start; y < end; y++ {
				fn(y)
			}
			return nil
		})
	}
	_ = g.Wait()
}
