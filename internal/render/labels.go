package render

import (
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/phanxgames/tempmap"
)

// DrawLabels draws each label centered on its sample position, white text
// with a dark outline, and returns the decorated copy of img.
func DrawLabels(img image.Image, labels []tempmap.Label) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(basicfont.Face7x13)
	for _, l := range labels {
		text := l.Text()
		dc.SetRGB(0, 0, 0)
		for _, d := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			dc.DrawStringAnchored(text, l.X+d[0], l.Y+d[1], 0.5, 0.5)
		}
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(text, l.X, l.Y, 0.5, 0.5)
	}
	return dc.Image()
}
