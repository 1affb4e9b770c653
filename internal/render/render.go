// Package render produces heat map images headlessly with the software
// backend and decorates them with fogleman/gg.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"

	"github.com/phanxgames/tempmap"
	"github.com/phanxgames/tempmap/internal/config"
)

// Result is the outcome of rendering one scene.
type Result struct {
	Image  *image.RGBA
	Labels []tempmap.Label
	Field  *tempmap.Field
	Stats  tempmap.DrawStats
}

// Config controls a scene render.
type Config struct {
	Ramp   *tempmap.ColorRamp // nil uses the default color map
	Logger *slog.Logger
	Debug  bool // log per-draw timings at debug level
}

// Scene renders s with the software backend.
func Scene(s *config.Scene, cfg Config) (*Result, error) {
	format, err := s.Format()
	if err != nil {
		return nil, err
	}
	opts, err := s.RendererOptions(cfg.Ramp)
	if err != nil {
		return nil, err
	}
	labels := tempmap.NewLabelSet()
	opts.Labels = labels
	opts.Logger = cfg.Logger

	backend := tempmap.NewSoftwareBackend(format)
	r, err := tempmap.New(backend, s.Width, s.Height, opts)
	if err != nil {
		return nil, fmt.Errorf("render scene: %w", err)
	}
	defer r.Destroy()
	r.SetDebugMode(cfg.Debug)

	r.SetPoints(s.TempmapPoints(), s.TempmapCalibration())
	r.Draw()

	return &Result{
		Image:  backend.Image(),
		Labels: labels.Labels(),
		Field:  backend.Field(),
		Stats:  r.Stats(),
	}, nil
}

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 64*1024))
	},
}

// EncodePNG encodes img and returns a copy of the encoded bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
