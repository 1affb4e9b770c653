package ebitengine

import "github.com/hajimehoshi/ebiten/v2"

// texture is an owned offscreen image that is reallocated on resize and
// released explicitly. Pooled images are never used for it; its contents
// must persist between passes.
type texture struct {
	image *ebiten.Image
	w, h  int
}

// resize deallocates the old image and creates a new one unless the size is
// unchanged.
func (t *texture) resize(w, h int) {
	if t.image != nil && t.w == w && t.h == h {
		return
	}
	t.dispose()
	t.image = ebiten.NewImage(w, h)
	t.w, t.h = w, h
}

// dispose releases the image. The texture may be resized again afterwards.
func (t *texture) dispose() {
	if t.image != nil {
		t.image.Deallocate()
	}
	t.image = nil
	t.w, t.h = 0, 0
}

// ready reports whether an image is allocated.
func (t *texture) ready() bool { return t.image != nil }
