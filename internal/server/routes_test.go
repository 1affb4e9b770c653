package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/tempmap/internal/cache"
	"github.com/phanxgames/tempmap/internal/config"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	return setupServerWith(t, nil)
}

func setupServerWith(t *testing.T, configure func(*RouterConfig)) *httptest.Server {
	t.Helper()
	cm, err := cache.NewManager(cache.Config{
		ImageCacheSizeMB: 8,
		ImageTTL:         time.Minute,
		RampCacheSize:    8,
	})
	require.NoError(t, err)
	t.Cleanup(func() { cm.Close() })

	cfg := RouterConfig{
		Cache:          cm,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		CORSOrigins:    []string{"*"},
		MaxPoints:      4,
		MaxSurfaceSide: 256,
	}
	if configure != nil {
		configure(&cfg)
	}
	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func postScene(t *testing.T, srv *httptest.Server, path string, scene map[string]any) *http.Response {
	t.Helper()
	body, err := json.Marshal(scene)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func validScene() map[string]any {
	return map[string]any{
		"width":  64,
		"height": 32,
		"points": []map[string]any{
			{"x": 10, "y": 10, "value": 12.5},
			{"x": 50, "y": 20, "value": 30},
		},
		"options": map[string]any{"show_points": true},
	}
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRenderPNG(t *testing.T) {
	srv := setupServer(t)

	resp := postScene(t, srv, "/render", validScene())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	again := postScene(t, srv, "/render", validScene())
	require.Equal(t, http.StatusOK, again.StatusCode)
	assert.Equal(t, "HIT", again.Header.Get("X-Cache"))

	labeled := postScene(t, srv, "/render?labels=true", validScene())
	require.Equal(t, http.StatusOK, labeled.StatusCode)
	assert.Equal(t, "MISS", labeled.Header.Get("X-Cache"), "labeled renders are cached separately")
}

func TestRenderRejects(t *testing.T) {
	srv := setupServer(t)

	big := validScene()
	big["width"] = 1024
	assert.Equal(t, http.StatusBadRequest, postScene(t, srv, "/render", big).StatusCode)

	many := validScene()
	pts := make([]map[string]any, 5)
	for i := range pts {
		pts[i] = map[string]any{"x": i, "y": i, "value": i}
	}
	many["points"] = pts
	assert.Equal(t, http.StatusBadRequest, postScene(t, srv, "/render", many).StatusCode)

	unknown := validScene()
	unknown["colour"] = "red"
	assert.Equal(t, http.StatusBadRequest, postScene(t, srv, "/render", unknown).StatusCode)

	badMode := validScene()
	badMode["ramp"] = map[string]any{"mode": "cubic"}
	assert.Equal(t, http.StatusBadRequest, postScene(t, srv, "/render", badMode).StatusCode)
}

func TestRenderEvaluationLimit(t *testing.T) {
	// validScene is 64x32 with 2 points: 4096 evaluations.
	srv := setupServerWith(t, func(cfg *RouterConfig) { cfg.MaxEvaluations = 4095 })
	assert.Equal(t, http.StatusBadRequest, postScene(t, srv, "/render", validScene()).StatusCode)

	srv = setupServerWith(t, func(cfg *RouterConfig) { cfg.MaxEvaluations = 4096 })
	assert.Equal(t, http.StatusOK, postScene(t, srv, "/render", validScene()).StatusCode)
}

func TestRenderEvaluations(t *testing.T) {
	s := config.DefaultScene()
	s.Width, s.Height = 100, 50
	s.Points = make([]config.PointConfig, 3)
	assert.Equal(t, 100*50*3, renderEvaluations(s))

	s.FramebufferFactor = 0.25
	assert.Equal(t, 25*13*3, renderEvaluations(s))

	s.FramebufferFactor = 1e300
	assert.Equal(t, math.MaxInt, renderEvaluations(s))

	s.FramebufferFactor = 1
	s.Points = nil
	assert.Equal(t, 0, renderEvaluations(s))
}

func TestRampPNG(t *testing.T) {
	srv := setupServer(t)

	q := url.Values{}
	q.Set("width", "100")
	q.Set("height", "10")
	q.Set("mode", "linear")
	q.Add("bp", "0:#0000ff")
	q.Add("bp", "10:#ff0000")
	resp, err := http.Get(srv.URL + "/ramp.png?" + q.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())

	bad, err := http.Get(srv.URL + "/ramp.png?bp=oops")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestStats(t *testing.T) {
	srv := setupServer(t)
	postScene(t, srv, "/render", validScene())

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var stats map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.EqualValues(t, 1, stats["image_cache_len"])
}

func TestParseBreakpoints(t *testing.T) {
	bps, err := parseBreakpoints([]string{"-5:#112233", "7.5:#445566"})
	require.NoError(t, err)
	require.Len(t, bps, 2)
	assert.Equal(t, -5.0, bps[0].Threshold)
	assert.Equal(t, "#445566", bps[1].Hex)

	_, err = parseBreakpoints([]string{"x:#000000"})
	assert.Error(t, err)
}
