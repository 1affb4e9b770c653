package tempmap

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"
)

// State is the lifecycle state of a Renderer.
type State uint8

const (
	// StateUninitialized means no surface size is known yet.
	StateUninitialized State = iota
	// StateReady means the field is allocated and Draw renders.
	StateReady
	// StateInert means the backend lacks a required capability. Every
	// operation is a no-op.
	StateInert
	// StateDestroyed means Destroy was called. Every operation is a no-op.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateInert:
		return "inert"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Renderer sequences normalization, accumulation and compositing for one
// display surface. It owns its backend and overlay labels exclusively.
//
// A Renderer is not safe for concurrent use; the host serializes calls.
type Renderer struct {
	backend Backend
	opts    Options
	log     *slog.Logger
	level   *slog.LevelVar
	state   State

	width, height   int
	fieldW, fieldH  int
	raw             []Point
	cal             Calibration
	points          []NormalizedPoint
	labels          []LabelHandle
	debug           bool
	stats           DrawStats
	screenshotQueue []string
	pixels          []byte
}

// IsSupported reports whether backend can run both passes.
func IsSupported(backend Backend) bool {
	return backend != nil && backend.Supported()
}

// New creates a renderer drawing through backend onto a width x height
// surface. When the backend is unsupported the renderer is inert: New
// logs a single warning and returns it without error. A zero size leaves
// the renderer uninitialized until Resize.
func New(backend Backend, width, height int, opts Options) (*Renderer, error) {
	opts, level := opts.withDefaults()
	if opts.ID == "" {
		opts.ID = newID()
	}
	r := &Renderer{
		backend: backend,
		opts:    opts,
		log:     opts.Logger.With("id", opts.ID),
		level:   level,
		points:  []NormalizedPoint{},
	}
	if !IsSupported(backend) {
		r.state = StateInert
		r.log.Warn("renderer disabled", "err", ErrCapabilityUnavailable)
		return r, nil
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("new renderer: %w: %dx%d", ErrInvalidSize, width, height)
	}
	backend.SetRamp(opts.ColorMap)
	if width == 0 || height == 0 {
		return r, nil
	}
	if err := r.Resize(width, height); err != nil {
		backend.Dispose()
		return nil, fmt.Errorf("new renderer: %w", err)
	}
	return r, nil
}

func newID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// fieldSize returns the accumulation field size for a surface.
func fieldSize(w, h int, factor float64) (int, int) {
	fw := max(int(math.Ceil(float64(w)*factor)), 1)
	fh := max(int(math.Ceil(float64(h)*factor)), 1)
	return fw, fh
}

// Resize reallocates the field for a new surface size. On error the
// renderer keeps its previous size and field. Stored points keep their
// pixel positions and are renormalized against the new size.
func (r *Renderer) Resize(width, height int) error {
	if r.inactive() {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize: %w: %dx%d", ErrInvalidSize, width, height)
	}
	return r.reallocate(width, height, r.opts.FramebufferFactor)
}

// SetFramebufferFactor changes the field resolution relative to the
// surface. On error the previous factor and field are kept.
func (r *Renderer) SetFramebufferFactor(k float64) error {
	if r.inactive() {
		return nil
	}
	if !positive(k) {
		return fmt.Errorf("framebuffer factor %v: %w", k, ErrInvalidSize)
	}
	if r.state == StateUninitialized {
		r.opts.FramebufferFactor = k
		return nil
	}
	return r.reallocate(r.width, r.height, k)
}

func (r *Renderer) reallocate(width, height int, factor float64) error {
	fw, fh := fieldSize(width, height, factor)
	if float64(fw)*float64(fh) > MaxFieldPixels {
		return fmt.Errorf("resize: %w: field %dx%d", ErrResourceExhausted, fw, fh)
	}
	if err := r.backend.Resize(width, height, fw, fh); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	sizeChanged := width != r.width || height != r.height
	r.width, r.height = width, height
	r.fieldW, r.fieldH = fw, fh
	r.opts.FramebufferFactor = factor
	r.pixels = nil
	r.state = StateReady
	if sizeChanged {
		r.normalize()
	}
	return nil
}

// SetPoints replaces the point set. It normalizes the points against the
// current surface size but does not draw.
func (r *Renderer) SetPoints(points []Point, cal Calibration) {
	if r.inactive() {
		return
	}
	r.raw = append(r.raw[:0], points...)
	r.cal = copyCalibration(cal)
	r.normalize()
}

func copyCalibration(c Calibration) Calibration {
	cp := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		return Opt(*v)
	}
	return Calibration{Low: cp(c.Low), High: cp(c.High), Normal: cp(c.Normal)}
}

func (r *Renderer) normalize() {
	r.points = Normalize(r.raw, r.cal, r.width, r.height, r.opts.Normalization)
}

// UpdateOptions merges the present fields of u into the options and
// redraws. Invalid values are ignored with a warning.
func (r *Renderer) UpdateOptions(u OptionsUpdate) {
	if r.inactive() {
		return
	}
	rampChanged, policyChanged := r.opts.merge(u)
	if rampChanged {
		r.backend.SetRamp(r.opts.ColorMap)
	}
	if policyChanged {
		r.normalize()
	}
	r.Draw()
}

// Draw runs the accumulation pass and then the composite pass, refreshes
// point labels and writes any queued screenshots.
func (r *Renderer) Draw() {
	if r.state != StateReady {
		return
	}
	pass := r.pass()

	start := time.Now()
	r.backend.Accumulate(r.points, &pass)
	accumulated := time.Now()
	r.backend.Composite(&pass)
	composited := time.Now()

	r.refreshLabels()

	r.stats = DrawStats{
		AccumulateTime: accumulated.Sub(start),
		CompositeTime:  composited.Sub(accumulated),
		LabelTime:      time.Since(composited),
		Points:         len(r.points),
		Labels:         len(r.labels),
		FieldWidth:     r.fieldW,
		FieldHeight:    r.fieldH,
	}
	r.debugLog(r.stats)
	r.flushScreenshots()
}

func (r *Renderer) pass() Pass {
	return Pass{
		Field: FieldParams{
			P:           r.opts.P,
			DistFactor:  r.opts.DistFactor,
			RangeFactor: r.opts.RangeFactor,
		},
		Composite: CompositeParams{
			Gamma:        r.opts.Gamma,
			Colorization: r.opts.Colorization,
			Background:   r.opts.Background,
		},
	}
}

func (r *Renderer) refreshLabels() {
	r.clearLabels()
	if !r.opts.ShowPoints || r.opts.Labels == nil {
		return
	}
	for _, p := range r.raw {
		r.labels = append(r.labels, r.opts.Labels.PlaceLabel(Label{
			Owner: r.opts.ID,
			X:     p.X,
			Y:     p.Y,
			Value: r.opts.PointText(p.Value),
			Unit:  r.opts.Unit,
		}))
	}
}

func (r *Renderer) clearLabels() {
	for _, h := range r.labels {
		h.Remove()
	}
	r.labels = r.labels[:0]
}

// Destroy releases the backend's resources and removes every label this
// renderer placed. Later calls on the renderer do nothing.
func (r *Renderer) Destroy() {
	if r.state == StateDestroyed {
		return
	}
	r.clearLabels()
	if r.backend != nil {
		r.backend.Dispose()
	}
	r.raw, r.points = nil, nil
	r.screenshotQueue = nil
	r.pixels = nil
	r.state = StateDestroyed
}

func (r *Renderer) inactive() bool {
	return r.state == StateInert || r.state == StateDestroyed
}

// State returns the lifecycle state.
func (r *Renderer) State() State { return r.state }

// ID returns the identifier attached to this renderer's labels.
func (r *Renderer) ID() string { return r.opts.ID }

// Options returns a copy of the current options.
func (r *Renderer) Options() Options { return r.opts }

// Size returns the surface size.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// FieldSize returns the accumulation field size.
func (r *Renderer) FieldSize() (width, height int) { return r.fieldW, r.fieldH }

// Points returns a copy of the raw point set.
func (r *Renderer) Points() []Point {
	return append([]Point(nil), r.raw...)
}

// NormalizedPoints returns a copy of the normalized point set.
func (r *Renderer) NormalizedPoints() []NormalizedPoint {
	return append([]NormalizedPoint{}, r.points...)
}

// Snapshot returns the current surface contents, or nil when the renderer
// is not ready.
func (r *Renderer) Snapshot() *image.NRGBA {
	if r.state != StateReady {
		return nil
	}
	return toNRGBA(r.readPixels(), r.width, r.height)
}

func (r *Renderer) readPixels() []byte {
	n := 4 * r.width * r.height
	if len(r.pixels) != n {
		r.pixels = make([]byte, n)
	}
	r.backend.ReadPixels(r.pixels)
	return r.pixels
}
