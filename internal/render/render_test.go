package render

import (
	"bytes"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/tempmap"
	"github.com/phanxgames/tempmap/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testScene() *config.Scene {
	s := config.DefaultScene()
	s.Width, s.Height = 100, 100
	s.Calibration = config.CalibrationConf{Low: tempmap.Opt(0.0), High: tempmap.Opt(40.0), Normal: tempmap.Opt(20.0)}
	s.Points = []config.PointConfig{{X: 50, Y: 50, Value: 20}}
	return s
}

func TestSceneSinglePoint(t *testing.T) {
	res, err := Scene(testScene(), Config{Logger: discard})
	require.NoError(t, err)
	require.NotNil(t, res.Image)
	require.NotNil(t, res.Field)

	want := tempmap.DefaultColorRamp().Entry(64)
	c := res.Image.RGBAAt(10, 90)
	assert.Equal(t, want, [4]uint8{c.R, c.G, c.B, c.A})
	assert.Equal(t, 1, res.Stats.Points)
	assert.Equal(t, 100, res.Field.Width())
	assert.Empty(t, res.Labels, "labels are off by default")
}

func TestSceneLabels(t *testing.T) {
	s := testScene()
	s.Options.ShowPoints = true
	res, err := Scene(s, Config{Logger: discard})
	require.NoError(t, err)
	require.Len(t, res.Labels, 1)
	assert.Equal(t, "20°C", res.Labels[0].Text())

	decorated := DrawLabels(res.Image, res.Labels)
	assert.Equal(t, res.Image.Bounds(), decorated.Bounds())
}

func TestSceneInvalid(t *testing.T) {
	s := testScene()
	s.FieldFormat = "float64"
	_, err := Scene(s, Config{Logger: discard})
	assert.Error(t, err)

	s = testScene()
	s.Width = 100000
	s.Height = 100000
	_, err = Scene(s, Config{Logger: discard})
	assert.ErrorIs(t, err, tempmap.ErrResourceExhausted)
}

func TestSceneHalfFormat(t *testing.T) {
	s := testScene()
	s.FieldFormat = "half"
	s.Points = append(s.Points, config.PointConfig{X: 10, Y: 10, Value: 35})
	res, err := Scene(s, Config{Logger: discard})
	require.NoError(t, err)
	assert.Equal(t, tempmap.FieldHalf, res.Field.Format())
}

func TestSceneDebugLogsDraw(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Scene(testScene(), Config{Logger: log})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "msg=draw")

	_, err = Scene(testScene(), Config{Logger: log, Debug: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=draw")
	assert.Contains(t, buf.String(), "points=1")
}

func TestEncodePNG(t *testing.T) {
	res, err := Scene(testScene(), Config{Logger: discard})
	require.NoError(t, err)

	data, err := EncodePNG(res.Image)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())

	again, err := EncodePNG(res.Image)
	require.NoError(t, err)
	assert.Equal(t, data, again, "pooled buffers must not leak between calls")
}

func TestRampStrip(t *testing.T) {
	r := tempmap.DefaultColorRamp()
	dc := RampStrip(r, 256, 20, false)
	img := dc.Image()
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	first := r.Entry(0)
	cr, cg, cb, _ := img.At(0, 10).RGBA()
	assert.Equal(t, [3]uint32{uint32(first[0]), uint32(first[1]), uint32(first[2])}, [3]uint32{cr >> 8, cg >> 8, cb >> 8})

	labeled := RampStrip(r, 256, 20, true).Image()
	assert.Equal(t, 20+rampLabelHeight, labeled.Bounds().Dy())
}
