package ebitengine

import "math"

// packScale is the number of steps in the 16-bit fixed point encoding.
const packScale = 65535

// encodeFieldValue packs a resolved field value the way the accumulation
// shader does. A pixel without coverage is opaque black.
func encodeFieldValue(v float64, ok bool) [4]byte {
	if !ok {
		return [4]byte{0, 0, 0, 255}
	}
	if !(v > 0) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	q := uint16(math.Floor(v*packScale + 0.5))
	return [4]byte{byte(q >> 8), byte(q), 255, 255}
}

// decodeFieldValue is the inverse of encodeFieldValue.
func decodeFieldValue(px [4]byte) (float64, bool) {
	if px[2] < 128 {
		return 0, false
	}
	q := uint16(px[0])<<8 | uint16(px[1])
	return float64(q) / packScale, true
}
