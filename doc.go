// Package tempmap renders continuous heat-map overlays from sparse scalar
// samples using inverse-distance-weighted (IDW) interpolation evaluated per
// pixel.
//
// # Pipeline
//
// A [Renderer] sequences four stages:
//
//   - [Normalize] maps raw samples (x, y, value) in surface pixel space to
//     unit-square positions and values in [0, 1] under an explicit
//     [NormalizePolicy].
//   - Pass 1 accumulates, for every field pixel, the IDW partial sums
//     Σ wᵢ·vᵢ and Σ wᵢ with wᵢ = RangeFactor / (dᵢ/DistFactor)^P. See
//     [Field.Accumulate].
//   - Pass 2 divides the sums, colorizes the result through a [ColorRamp]
//     or [HueColor], applies gamma and writes opaque pixels. See [Composite].
//   - Point labels are placed through a [LabelSink] when ShowPoints is set.
//
// # Backends
//
// Passes run on a [Backend]. [SoftwareBackend] runs them on the CPU with
// row-parallel workers into an *image.RGBA; the ebitengine sub-package runs
// them as Kage shaders. A renderer whose backend reports itself unsupported
// is inert: it logs one warning and every call does nothing.
//
//	b := tempmap.NewSoftwareBackend(tempmap.FieldFloat32)
//	r, err := tempmap.New(b, 640, 480, tempmap.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer r.Destroy()
//	r.SetPoints([]tempmap.Point{{X: 100, Y: 80, Value: 21.5}, {X: 500, Y: 300, Value: 14}},
//		tempmap.Calibration{Normal: tempmap.Opt(18.0)})
//	r.Draw()
//	img := b.Image()
//
// # Options
//
// [DefaultOptions] colorizes through the stepwise temperature ramp
// [DefaultColorMap] spanning -50 to 100. [HueOptions] uses the closed-form
// hue function with P 5 and gamma 2.2. Options can be changed after
// creation with [Renderer.UpdateOptions]; invalid values are ignored with a
// warning.
//
// # Diagnostics
//
// [Renderer.SetDebugMode] logs per-draw timings at debug level through the
// configured *slog.Logger. [Renderer.Screenshot] queues a PNG capture of the
// next draw and [Renderer.Snapshot] returns the current surface.
package tempmap
