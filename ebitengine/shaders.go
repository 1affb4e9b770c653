package ebitengine

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// MaxShaderPoints is the number of samples the accumulation shader can hold
// in its uniform array. Larger point sets are accumulated on the CPU and
// uploaded.
const MaxShaderPoints = 128

// maxWeight bounds a single IDW weight so 32-bit shader sums stay finite.
const maxWeight = 1e30

// --- Kage shader sources ---
// Both shaders use //kage:unit pixels. Every texture they write is opaque, so
// premultiplication never changes a channel.

// accumulateShaderSrc sums the IDW contributions of up to MaxShaderPoints
// samples for each field pixel and writes the resolved average packed as
// 16-bit fixed point: R high byte, G low byte, B coverage flag.
const accumulateShaderSrc = `//kage:unit pixels
package main

var Points [128]vec4
var Count float
var P float
var DistFactor float
var RangeFactor float
var MinDistance float
var MaxWeight float
var FieldSize vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	frac := (dst.xy - imageDstOrigin()) / FieldSize
	num := 0.0
	den := 0.0
	for i := 0; i < 128; i++ {
		if float(i) >= Count {
			break
		}
		pt := Points[i]
		d := max(distance(frac, pt.xy)/DistFactor, MinDistance)
		w := min(RangeFactor/pow(d, P), MaxWeight)
		num += pt.z * w
		den += w
	}
	if den <= 0 {
		return vec4(0, 0, 0, 1)
	}
	v := clamp(num/den, 0, 1)
	q := floor(v*65535 + 0.5)
	hi := floor(q / 256)
	lo := q - hi*256
	return vec4(hi/255, lo/255, 1, 1)
}
`

// compositeShaderSrc decodes the packed field and colorizes it through the
// ramp uniform or the hue formula, then applies gamma.
const compositeShaderSrc = `//kage:unit pixels
package main

var Ramp [128]vec4
var UseRamp float
var Gamma float
var Background vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.b < 0.5 {
		return vec4(Background.rgb, 1)
	}
	hi := floor(c.r*255 + 0.5)
	lo := floor(c.g*255 + 0.5)
	v := (hi*256 + lo) / 65535
	rgb := vec3(0)
	if UseRamp > 0.5 {
		idx := clamp(floor(v*128), 0, 127)
		for i := 0; i < 128; i++ {
			if float(i) == idx {
				rgb = Ramp[i].rgb
			}
		}
	} else {
		rgb = clamp(vec3((v-0.5)*2, 1-abs(v-0.5)*2, (0.5-v)*2), 0, 1)
	}
	if Gamma != 1 {
		rgb = pow(rgb, vec3(1/Gamma))
	}
	return vec4(rgb, 1)
}
`

// --- Lazy shader compilation (single goroutine, no sync.Once) ---

var (
	accumulateShader *ebiten.Shader
	compositeShader  *ebiten.Shader
	shaderErr        error
)

// ensureShaders compiles both shaders on first use. A compile failure is
// remembered and reported on every later call.
func ensureShaders() error {
	if shaderErr != nil || (accumulateShader != nil && compositeShader != nil) {
		return shaderErr
	}
	s, err := ebiten.NewShader([]byte(accumulateShaderSrc))
	if err != nil {
		shaderErr = fmt.Errorf("compile accumulate shader: %w", err)
		return shaderErr
	}
	accumulateShader = s
	s, err = ebiten.NewShader([]byte(compositeShaderSrc))
	if err != nil {
		shaderErr = fmt.Errorf("compile composite shader: %w", err)
		return shaderErr
	}
	compositeShader = s
	return nil
}
