package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/tempmap/internal/render"
)

// defaultOutput replaces the extension of path with ext.
func defaultOutput(path, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if base == "" {
		base = "out"
	}
	return base + ext
}

func writePNGFile(path string, img image.Image) error {
	data, err := render.EncodePNG(img)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
