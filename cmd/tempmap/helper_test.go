package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"scene.yaml", "scene.png"},
		{"dir/room.yml", "dir/room.png"},
		{"noext", "noext.png"},
		{"", "out.png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultOutput(tt.in, ".png"))
		})
	}
}

func TestWritePNGFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	require.NoError(t, writePNGFile(path, image.NewRGBA(image.Rect(0, 0, 3, 2))))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(scenePath, []byte(`
width: 40
height: 20
options:
  show_points: true
points:
  - {x: 5, y: 5, value: 10}
  - {x: 30, y: 15, value: 25}
`), 0o644))

	fieldPath := filepath.Join(dir, "scene.field.zst")
	cmd := newRenderCmd()
	cmd.SetArgs([]string{"-c", scenePath, "--labels", "--field", fieldPath, "-q"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(dir, "scene.png"))
	assert.NoError(t, err)
	_, err = os.Stat(fieldPath)
	assert.NoError(t, err)
}

func TestRampCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ramp.png")
	cmd := newRampCmd()
	cmd.SetArgs([]string{"-o", out, "--width", "64", "--height", "8", "--mode", "linear"})
	require.NoError(t, cmd.Execute())

	cmd = newRampCmd()
	cmd.SetArgs([]string{"-o", out, "--mode", "cubic"})
	assert.Error(t, cmd.Execute())
}
