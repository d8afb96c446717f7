// Package color blends palette stops in linear light.
//
// Palettes are authored in sRGB, where a straight average of two colours
// comes out darker than the eye expects. Blending through linear light
// keeps the brightness of gradients even. The conversions use lookup
// tables built once at start-up:
//
//   - sRGB byte to linear: 256 entries, exact
//   - linear to sRGB byte: 4096 entries (12 bit), at most one step off
//
// References:
//   - sRGB specification: https://www.w3.org/Graphics/Color/sRGB
package color

import "math"

const linearSteps = 4096

var (
	toLinear [256]float32
	toSRGB   [linearSteps]uint8
)

func init() {
	for i := range toLinear {
		toLinear[i] = float32(decode(float64(i) / 255))
	}
	for i := range toSRGB {
		toSRGB[i] = quantize(encode(float64(i) / (linearSteps - 1)))
	}
}

// decode applies the sRGB transfer function inverse.
func decode(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// encode applies the sRGB transfer function.
func encode(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1/2.4) - 0.055
}

func quantize(s float64) uint8 {
	v := int(s*255 + 0.5)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// SRGBToLinear converts an sRGB channel byte to linear light in [0, 1].
func SRGBToLinear(s uint8) float32 {
	return toLinear[s]
}

// LinearToSRGB converts linear light to an sRGB channel byte.
// Input outside [0, 1] is clamped.
func LinearToSRGB(l float32) uint8 {
	if !(l > 0) {
		return toSRGB[0]
	}
	if l >= 1 {
		return toSRGB[linearSteps-1]
	}
	return toSRGB[int(l*(linearSteps-1)+0.5)]
}

// SRGBToLinearExact is the math.Pow reference for SRGBToLinear.
func SRGBToLinearExact(s uint8) float32 {
	return float32(decode(float64(s) / 255))
}

// LinearToSRGBExact is the math.Pow reference for LinearToSRGB.
func LinearToSRGBExact(l float32) uint8 {
	lf := math.Min(math.Max(float64(l), 0), 1)
	return quantize(encode(lf))
}

// MixLinear blends two sRGB channel bytes in linear light.
// t = 0 returns a, t = 1 returns b.
func MixLinear(a, b uint8, t float32) uint8 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	la, lb := toLinear[a], toLinear[b]
	return LinearToSRGB(la + (lb-la)*t)
}
