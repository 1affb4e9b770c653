// Package ebitengine runs the tempmap passes on the GPU through Ebitengine
// Kage shaders.
//
// Ebitengine offers no floating point render targets, so the accumulation
// pass sums every sample inside the shader and stores the resolved average
// as 16-bit fixed point in an RGBA8 field texture. Point sets larger than
// MaxShaderPoints are accumulated on the CPU and uploaded in the same
// encoding. The composite pass decodes the field, colorizes it and is then
// scaled onto the backend's surface image with nearest filtering.
//
// Create the backend and the renderer from inside the game loop (Update or
// Draw) and draw the surface with DrawTo:
//
//	b := ebitengine.New()
//	r, err := tempmap.New(b, 640, 480, tempmap.DefaultOptions())
//	...
//	r.SetPoints(points, tempmap.Calibration{})
//	r.Draw()
//	b.DrawTo(screen, 0, 0, 0.85)
package ebitengine

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/tempmap"
)

// Backend implements tempmap.Backend with Ebitengine images and shaders.
// It is not safe for concurrent use.
type Backend struct {
	surface texture // display surface, surfaceW x surfaceH
	field   texture // packed accumulation field, fieldW x fieldH
	color   texture // composite output at field resolution

	cpuField *tempmap.Field // fallback accumulator for large point sets
	fieldPix []byte

	ramp       []float32 // RampSize RGBA entries
	pointBuf   []float32
	uniforms1  map[string]any
	uniforms2  map[string]any
	shaderOp1  ebiten.DrawRectShaderOptions
	shaderOp2  ebiten.DrawRectShaderOptions
	imgOp      ebiten.DrawImageOptions
	lastOnCPU  bool
	lastPoints int
}

var _ tempmap.Backend = (*Backend)(nil)

// zeroRamp fills the ramp uniform when the hue formula is used.
var zeroRamp = make([]float32, tempmap.RampSize*4)

// New creates an Ebitengine backend. Images are allocated by Resize.
func New() *Backend {
	return &Backend{
		uniforms1: make(map[string]any, 8),
		uniforms2: make(map[string]any, 4),
		pointBuf:  make([]float32, MaxShaderPoints*4),
	}
}

// Supported reports whether both shaders compile.
func (b *Backend) Supported() bool {
	return ensureShaders() == nil
}

// Resize allocates the surface and the field textures.
func (b *Backend) Resize(surfaceW, surfaceH, fieldW, fieldH int) error {
	if surfaceW <= 0 || surfaceH <= 0 || fieldW <= 0 || fieldH <= 0 {
		return fmt.Errorf("%w: surface %dx%d field %dx%d",
			tempmap.ErrInvalidSize, surfaceW, surfaceH, fieldW, fieldH)
	}
	if surfaceW*surfaceH > tempmap.MaxFieldPixels || fieldW*fieldH > tempmap.MaxFieldPixels {
		return fmt.Errorf("%w: surface %dx%d field %dx%d",
			tempmap.ErrResourceExhausted, surfaceW, surfaceH, fieldW, fieldH)
	}
	b.surface.resize(surfaceW, surfaceH)
	b.field.resize(fieldW, fieldH)
	b.color.resize(fieldW, fieldH)
	b.cpuField = nil
	return nil
}

// SetRamp stores the ramp table as a uniform array. nil clears it, which
// makes ramp colorization fall back to the hue formula.
func (b *Backend) SetRamp(r *tempmap.ColorRamp) {
	if r == nil {
		b.ramp = nil
		return
	}
	if b.ramp == nil {
		b.ramp = make([]float32, tempmap.RampSize*4)
	}
	b.ramp = rampUniform(r, b.ramp)
}

// rampUniform converts the ramp table into normalized RGBA floats.
func rampUniform(r *tempmap.ColorRamp, dst []float32) []float32 {
	for i := 0; i < tempmap.RampSize; i++ {
		e := r.Entry(i)
		for c := 0; c < 4; c++ {
			dst[i*4+c] = float32(e[c]) / 255
		}
	}
	return dst
}

// Accumulate runs pass 1 into the field texture.
func (b *Backend) Accumulate(points []tempmap.NormalizedPoint, pass *tempmap.Pass) {
	if !b.field.ready() {
		return
	}
	b.lastPoints = len(points)
	b.lastOnCPU = len(points) > MaxShaderPoints
	if b.lastOnCPU {
		b.accumulateCPU(points, pass.Field)
		return
	}
	if ensureShaders() != nil {
		return
	}
	for i := range b.pointBuf {
		b.pointBuf[i] = 0
	}
	for i, p := range points {
		b.pointBuf[i*4+0] = float32(p.U)
		b.pointBuf[i*4+1] = float32(p.V)
		b.pointBuf[i*4+2] = float32(p.W)
	}
	// Scalar float32 boxing is unavoidable with Ebitengine's uniform API.
	b.uniforms1["Points"] = b.pointBuf
	b.uniforms1["Count"] = float32(len(points))
	b.uniforms1["P"] = float32(pass.Field.P)
	b.uniforms1["DistFactor"] = float32(pass.Field.DistFactor)
	b.uniforms1["RangeFactor"] = float32(pass.Field.RangeFactor)
	b.uniforms1["MinDistance"] = float32(tempmap.MinDistance)
	b.uniforms1["MaxWeight"] = float32(maxWeight)
	b.uniforms1["FieldSize"] = []float32{float32(b.field.w), float32(b.field.h)}
	b.shaderOp1.Uniforms = b.uniforms1
	b.field.image.Clear()
	b.field.image.DrawRectShader(b.field.w, b.field.h, accumulateShader, &b.shaderOp1)
}

// accumulateCPU accumulates on the CPU and uploads the packed result.
func (b *Backend) accumulateCPU(points []tempmap.NormalizedPoint, params tempmap.FieldParams) {
	w, h := b.field.w, b.field.h
	if b.cpuField == nil {
		f, err := tempmap.NewField(w, h, tempmap.FieldFloat32)
		if err != nil {
			return
		}
		b.cpuField = f
	}
	b.cpuField.Clear()
	b.cpuField.Accumulate(points, params)
	b.fieldPix = packField(b.cpuField, b.fieldPix)
	b.field.image.WritePixels(b.fieldPix)
}

// packField encodes every field pixel. Field rows are addressed with V
// growing the same way as image rows, so no flip is needed.
func packField(f *tempmap.Field, buf []byte) []byte {
	w, h := f.Width(), f.Height()
	needed := w * h * 4
	if cap(buf) < needed {
		buf = make([]byte, needed)
	}
	buf = buf[:needed]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := encodeFieldValue(f.Value(x, y))
			copy(buf[(y*w+x)*4:], px[:])
		}
	}
	return buf
}

// Composite runs pass 2 at field resolution and scales the result onto the
// surface.
func (b *Backend) Composite(pass *tempmap.Pass) {
	if !b.field.ready() || ensureShaders() != nil {
		return
	}
	cp := pass.Composite
	bg := cp.Background
	useRamp := float32(0)
	if cp.Colorization == tempmap.ColorizeRamp && b.ramp != nil {
		useRamp = 1
		b.uniforms2["Ramp"] = b.ramp
	} else {
		b.uniforms2["Ramp"] = zeroRamp
	}
	b.uniforms2["UseRamp"] = useRamp
	gamma := cp.Gamma
	if !(gamma > 0) {
		gamma = 1
	}
	b.uniforms2["Gamma"] = float32(gamma)
	b.uniforms2["Background"] = []float32{float32(bg.R), float32(bg.G), float32(bg.B), 1}
	b.shaderOp2.Images[0] = b.field.image
	b.shaderOp2.Uniforms = b.uniforms2
	b.color.image.DrawRectShader(b.color.w, b.color.h, compositeShader, &b.shaderOp2)

	b.imgOp.GeoM.Reset()
	b.imgOp.GeoM.Scale(float64(b.surface.w)/float64(b.color.w), float64(b.surface.h)/float64(b.color.h))
	b.imgOp.Filter = ebiten.FilterNearest
	b.surface.image.Clear()
	b.surface.image.DrawImage(b.color.image, &b.imgOp)
}

// ReadPixels copies the surface as RGBA8. It must be called while the game
// loop runs.
func (b *Backend) ReadPixels(dst []byte) {
	if b.surface.ready() {
		b.surface.image.ReadPixels(dst)
	}
}

// Dispose deallocates every image.
func (b *Backend) Dispose() {
	b.surface.dispose()
	b.field.dispose()
	b.color.dispose()
	b.cpuField = nil
	b.fieldPix = nil
	b.ramp = nil
}

// Image returns the display surface, or nil before Resize.
func (b *Backend) Image() *ebiten.Image { return b.surface.image }

// Bounds returns the surface bounds.
func (b *Backend) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.surface.w, b.surface.h)
}

// DrawTo draws the surface onto screen at (x, y) with the given opacity.
func (b *Backend) DrawTo(screen *ebiten.Image, x, y, opacity float64) {
	if !b.surface.ready() {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(x, y)
	if opacity < 1 {
		op.ColorScale.ScaleAlpha(float32(max(opacity, 0)))
	}
	screen.DrawImage(b.surface.image, &op)
}
