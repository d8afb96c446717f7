package fractile

import "math"

// Framing constants shared with existing map clients. A tile of side
// referenceTileScale pixels at zoom 2 spans exactly one unit of the plane,
// and tile (0, 0) starts at -planeOffset on both axes. They are a fixed
// contract and must not be re-derived.
const (
	referenceTileScale = 128.5
	planeOffset        = 4.0
)

// MapCoordinates maps tile-grid coordinates at zoom z onto the complex plane.
// The result is the plane position of pixel (0, 0) of the tile at (x, y).
// tileSize is the tile side in pixels and scales the framing.
func MapCoordinates(x, y, z float64, tileSize int) (re, im float64) {
	scale := float64(tileSize) / referenceTileScale
	d := math.Pow(2, z-2)
	re = x/d*scale - planeOffset
	im = y/d*scale - planeOffset
	return re, im
}

// Bounds is an axis-aligned box in the complex plane.
// Min is the top-left pixel, Max the bottom-right one.
type Bounds struct {
	ReMin, ImMin float64
	ReMax, ImMax float64
}

// TileBounds returns the plane box covered by the tile at (x, y, z).
func TileBounds(x, y, z float64, tileSize int) Bounds {
	reMin, imMin := MapCoordinates(x, y, z, tileSize)
	reMax, imMax := MapCoordinates(x+1, y+1, z, tileSize)
	return Bounds{ReMin: reMin, ImMin: imMin, ReMax: reMax, ImMax: imMax}
}

// Width returns the real extent of the box.
func (b Bounds) Width() float64 { return b.ReMax - b.ReMin }

// Height returns the imaginary extent of the box.
func (b Bounds) Height() float64 { return b.ImMax - b.ImMin }

// axes returns the sample positions for an n x n grid over b:
// column c samples re[c], row r samples im[r].
func (b Bounds) axes(n int) (re, im []float64) {
	return linspace(b.ReMin, b.ReMax, n), linspace(b.ImMin, b.ImMax, n)
}

// linspace returns n evenly spaced values from lo to hi inclusive.
// n must be at least 2.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}
