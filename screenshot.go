package tempmap

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Screenshot queues a labeled capture of the surface, written at the end of
// the next Draw as a PNG in Options.ScreenshotDir with a timestamped name.
func (r *Renderer) Screenshot(label string) {
	if r.inactive() {
		return
	}
	r.screenshotQueue = append(r.screenshotQueue, label)
}

// flushScreenshots encodes the surface once and writes it for every queued
// label. Files are named <stamp>_<renderer id>_<label>.png.
func (r *Renderer) flushScreenshots() {
	if len(r.screenshotQueue) == 0 {
		return
	}
	defer func() { r.screenshotQueue = r.screenshotQueue[:0] }()

	dir := r.opts.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.log.Error("screenshot", "err", fmt.Errorf("mkdir %s: %w", dir, err))
		return
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, toNRGBA(r.readPixels(), r.width, r.height)); err != nil {
		r.log.Error("screenshot", "err", fmt.Errorf("encode: %w", err))
		return
	}
	stamp := time.Now().Format("20060102_150405")
	for _, label := range r.screenshotQueue {
		path := filepath.Join(dir, screenshotName(stamp, r.opts.ID, label))
		if err := writeFileAtomic(path, buf.Bytes()); err != nil {
			r.log.Error("screenshot", "err", err)
			continue
		}
		r.log.Debug("screenshot", "path", path)
	}
}

// toNRGBA converts premultiplied RGBA8 pixels to a straight-alpha image.
func toNRGBA(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// screenshotName builds a file name from its parts, replacing every rune
// outside [A-Za-z0-9.-] with an underscore.
func screenshotName(stamp, id, label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "unlabeled"
	}
	parts := []string{stamp, fileSafe(id), fileSafe(label)}
	if parts[1] == "" {
		parts = []string{stamp, parts[2]}
	}
	return strings.Join(parts, "_") + ".png"
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, s)
}

// writeFileAtomic writes data next to path and renames it into place, so a
// failed write never leaves a truncated image behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".screenshot-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), path)
	}
	if werr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, werr)
	}
	return nil
}
