// Package server exposes headless heat map rendering over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/phanxgames/tempmap"
	"github.com/phanxgames/tempmap/internal/cache"
	"github.com/phanxgames/tempmap/internal/config"
	"github.com/phanxgames/tempmap/internal/render"
)

// maxBodyBytes bounds a render request body.
const maxBodyBytes = 1 << 20

// RouterConfig contains router configuration.
type RouterConfig struct {
	Cache          *cache.Manager
	Logger         *slog.Logger
	CORSOrigins    []string
	MaxPoints      int
	MaxSurfaceSide int
	MaxEvaluations int // points x field pixels; config.DefaultMaxEvaluations when zero
}

type handlers struct {
	cfg RouterConfig
	log *slog.Logger
}

// NewRouter creates the HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxEvaluations <= 0 {
		cfg.MaxEvaluations = config.DefaultMaxEvaluations
	}
	h := &handlers{cfg: cfg, log: log.With("component", "server")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json", "text/plain"))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Cache"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/stats", h.stats)
	r.Post("/render", h.render)
	r.Get("/ramp.png", h.ramp)
	return r
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cfg.Cache.Stats())
}

// render decodes a JSON scene and answers with the rendered PNG. The
// labels query parameter draws point labels onto the image.
func (h *handlers) render(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	withLabels := queryBool(r, "labels")

	key := cache.RenderKey("render:"+strconv.FormatBool(withLabels), body)
	if data, ok := h.cfg.Cache.GetImage(key); ok {
		writePNG(w, data, true)
		return
	}

	var scene config.Scene
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&scene); err != nil {
		http.Error(w, "invalid scene: "+err.Error(), http.StatusBadRequest)
		return
	}
	config.ApplyDefaults(&scene)
	if err := h.checkLimits(&scene); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mode, err := scene.RampMode()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ramp, err := h.cfg.Cache.Ramp(scene.HexBreakpoints(), mode)
	if err != nil {
		http.Error(w, "invalid ramp: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := render.Scene(&scene, render.Config{Ramp: ramp, Logger: h.log})
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	var img image.Image = res.Image
	if withLabels {
		img = render.DrawLabels(img, res.Labels)
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		h.log.Error("encode failed", "error", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	if err := h.cfg.Cache.SetImage(key, data); err != nil {
		h.log.Warn("image not cached", "error", err, "bytes", len(data))
	}
	h.log.Debug("rendered", "width", scene.Width, "height", scene.Height,
		"points", res.Stats.Points, "took", res.Stats.Total())
	writePNG(w, data, false)
}

// ramp draws the default color map, or breakpoints given as repeated
// bp=threshold:#hex parameters, as a strip.
func (h *handlers) ramp(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width := queryInt(r, "width", 256)
	height := queryInt(r, "height", 24)
	if width <= 0 || height <= 0 || width > h.cfg.MaxSurfaceSide || height > h.cfg.MaxSurfaceSide {
		http.Error(w, "invalid strip size", http.StatusBadRequest)
		return
	}
	mode, err := tempmap.ParseRampMode(q.Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bps := tempmap.DefaultColorMap
	if raw := q["bp"]; len(raw) > 0 {
		bps, err = parseBreakpoints(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	key := cache.RenderKey("ramp", []byte(r.URL.RawQuery))
	if data, ok := h.cfg.Cache.GetImage(key); ok {
		writePNG(w, data, true)
		return
	}
	cr, err := h.cfg.Cache.Ramp(bps, mode)
	if err != nil {
		http.Error(w, "invalid ramp: "+err.Error(), http.StatusBadRequest)
		return
	}
	data, err := render.EncodePNG(render.RampStrip(cr, width, height, queryBool(r, "labeled")).Image())
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	if err := h.cfg.Cache.SetImage(key, data); err != nil {
		h.log.Warn("image not cached", "error", err, "bytes", len(data))
	}
	writePNG(w, data, false)
}

var errLimit = errors.New("scene exceeds server limits")

func (h *handlers) checkLimits(s *config.Scene) error {
	if s.Width > h.cfg.MaxSurfaceSide || s.Height > h.cfg.MaxSurfaceSide {
		return fmt.Errorf("%w: surface %dx%d, max side %d", errLimit, s.Width, s.Height, h.cfg.MaxSurfaceSide)
	}
	if len(s.Points) > h.cfg.MaxPoints {
		return fmt.Errorf("%w: %d points, max %d", errLimit, len(s.Points), h.cfg.MaxPoints)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if n := renderEvaluations(s); n > h.cfg.MaxEvaluations {
		return fmt.Errorf("%w: %d points over a %dx%d surface needs %d evaluations, max %d",
			errLimit, len(s.Points), s.Width, s.Height, n, h.cfg.MaxEvaluations)
	}
	return nil
}

// renderEvaluations returns the number of weight evaluations pass 1 runs
// for s: one per point per field pixel.
func renderEvaluations(s *config.Scene) int {
	k := s.FramebufferFactor
	if !(k > 0) || math.IsInf(k, 0) {
		k = 1
	}
	fw := max(math.Ceil(float64(s.Width)*k), 1)
	fh := max(math.Ceil(float64(s.Height)*k), 1)
	if fw*fh > tempmap.MaxFieldPixels {
		return math.MaxInt
	}
	pixels := int(fw * fh)
	if len(s.Points) > 0 && pixels > math.MaxInt/len(s.Points) {
		return math.MaxInt
	}
	return pixels * len(s.Points)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tempmap.ErrInvalidSize):
		return http.StatusBadRequest
	case errors.Is(err, tempmap.ErrResourceExhausted):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
