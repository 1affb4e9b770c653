package tempmap

import (
	"fmt"
	"image"
)

// SoftwareBackend runs both passes on the CPU into an *image.RGBA surface.
// It is always supported and serves as the reference implementation.
type SoftwareBackend struct {
	format  FieldFormat
	field   *Field
	surface *image.RGBA
	ramp    *ColorRamp
}

var _ Backend = (*SoftwareBackend)(nil)

// NewSoftwareBackend creates a backend whose accumulation field uses the
// given storage format.
func NewSoftwareBackend(format FieldFormat) *SoftwareBackend {
	return &SoftwareBackend{format: format}
}

// Supported always reports true.
func (b *SoftwareBackend) Supported() bool { return true }

// Resize allocates a new field and surface, keeping the old ones on error.
func (b *SoftwareBackend) Resize(surfaceW, surfaceH, fieldW, fieldH int) error {
	if surfaceW <= 0 || surfaceH <= 0 {
		return fmt.Errorf("%w: surface %dx%d", ErrInvalidSize, surfaceW, surfaceH)
	}
	if surfaceW*surfaceH > MaxFieldPixels {
		return fmt.Errorf("%w: surface %dx%d", ErrResourceExhausted, surfaceW, surfaceH)
	}
	field, err := NewField(fieldW, fieldH, b.format)
	if err != nil {
		return err
	}
	b.field = field
	b.surface = image.NewRGBA(image.Rect(0, 0, surfaceW, surfaceH))
	return nil
}

// SetRamp stores the ramp used by ColorizeRamp.
func (b *SoftwareBackend) SetRamp(r *ColorRamp) { b.ramp = r }

// Accumulate clears the field and adds every point's contribution.
func (b *SoftwareBackend) Accumulate(points []NormalizedPoint, pass *Pass) {
	if b.field == nil {
		return
	}
	b.field.Clear()
	b.field.Accumulate(points, pass.Field)
}

// Composite resolves the field into the surface.
func (b *SoftwareBackend) Composite(pass *Pass) {
	if b.field == nil || b.surface == nil {
		return
	}
	cp := pass.Composite
	cp.Ramp = b.ramp
	Composite(b.surface, b.field, &cp)
}

// ReadPixels copies the surface pixels.
func (b *SoftwareBackend) ReadPixels(dst []byte) {
	if b.surface != nil {
		copy(dst, b.surface.Pix)
	}
}

// Dispose drops the field and surface.
func (b *SoftwareBackend) Dispose() {
	b.field = nil
	b.surface = nil
	b.ramp = nil
}

// Image returns the display surface. It is replaced on every Resize.
func (b *SoftwareBackend) Image() *image.RGBA { return b.surface }

// Field returns the accumulation field. It is replaced on every Resize.
func (b *SoftwareBackend) Field() *Field { return b.field }
