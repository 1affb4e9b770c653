package render

import (
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/phanxgames/tempmap"
)

// rampLabelHeight is the space reserved below the strip for threshold text.
const rampLabelHeight = 16

// RampStrip draws the ramp table as a horizontal strip of width x height
// pixels. When labeled, the first and last thresholds are printed below it.
func RampStrip(r *tempmap.ColorRamp, width, height int, labeled bool) *gg.Context {
	h := height
	if labeled {
		h += rampLabelHeight
	}
	dc := gg.NewContext(width, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	for x := 0; x < width; x++ {
		e := r.Entry(x * tempmap.RampSize / width)
		dc.SetRGBA255(int(e[0]), int(e[1]), int(e[2]), int(e[3]))
		dc.DrawRectangle(float64(x), 0, 1, float64(height))
		dc.Fill()
	}
	if labeled {
		dc.SetFontFace(basicfont.Face7x13)
		dc.SetRGB(1, 1, 1)
		y := float64(height) + rampLabelHeight/2
		dc.DrawStringAnchored(strconv.FormatFloat(r.Min(), 'g', -1, 64), 2, y, 0, 0.5)
		dc.DrawStringAnchored(strconv.FormatFloat(r.Max(), 'g', -1, 64), float64(width)-2, y, 1, 0.5)
	}
	return dc
}
