package fractile

import (
	"image/color"
	"math"
)

// PaletteOversample is the number of palette steps per iteration band.
// The smoothed count is scaled by it before indexing, and the palette is
// addressed over maxIterations*PaletteOversample steps.
const PaletteOversample = 20

// interiorColor is used for points that never escaped.
var interiorColor = color.RGBA{A: 0xff}

// Smooth returns the continuous iteration count of an escaped point:
//
//	iterations - ln(ln|z| / ln R) / ln exponent
//
// The result is only meaningful for escaped points with Magnitude >= R.
func Smooth(r EscapeResult, escapeRadius float64, exponent uint32) float64 {
	return float64(r.Iterations) - math.Log(math.Log(r.Magnitude)/math.Log(escapeRadius))/math.Log(float64(exponent))
}

// shader converts mask cells to colours for one render.
type shader struct {
	palette       *Palette
	maxIterations uint32
	lnRadius      float64
	lnExponent    float64
	steps         uint64
}

func newShader(p *Palette, maxIterations uint32, escapeRadius float64, exponent uint32) shader {
	return shader{
		palette:       p,
		maxIterations: maxIterations,
		lnRadius:      math.Log(escapeRadius),
		lnExponent:    math.Log(float64(exponent)),
		steps:         uint64(maxIterations) * PaletteOversample,
	}
}

func (s *shader) shade(r EscapeResult) color.RGBA {
	if r.Iterations >= s.maxIterations {
		return interiorColor
	}
	smoothed := float64(r.Iterations) - math.Log(math.Log(r.Magnitude)/s.lnRadius)/s.lnExponent
	return s.palette.EvalRational(paletteIndex(smoothed*PaletteOversample), s.steps)
}

// paletteIndex truncates v toward zero with saturation: negative values and
// NaN give 0, values beyond the uint64 range give the maximum.
func paletteIndex(v float64) uint64 {
	if !(v > 0) {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}
