package fractile

import (
	"fmt"
	"math"
)

// TileRequest identifies one tile of the escape-time fractal.
//
// X and Y are tile-grid coordinates at zoom level Zoom. They are real
// numbers so that callers can render fractional offsets. The tile is
// sampled on a SideLength x SideLength grid whose first and last samples
// fall exactly on the tile edges.
type TileRequest struct {
	X, Y          float64
	Zoom          float64
	MaxIterations uint32
	Exponent      uint32
	SideLength    int
}

// Validate reports whether the request can be rendered.
func (r TileRequest) Validate() error {
	if !finite(r.X) || !finite(r.Y) || !finite(r.Zoom) {
		return fmt.Errorf("%w: x=%v y=%v zoom=%v", ErrNonFinite, r.X, r.Y, r.Zoom)
	}
	if r.SideLength < 2 {
		return fmt.Errorf("%w: got %d", ErrSideLength, r.SideLength)
	}
	if r.Exponent < 2 {
		return fmt.Errorf("%w: got %d", ErrExponent, r.Exponent)
	}
	if b := r.Bounds(); !b.finite() {
		return fmt.Errorf("%w: tile maps to %+v", ErrNonFinite, b)
	}
	return nil
}

// Bounds returns the plane box covered by the tile.
func (r TileRequest) Bounds() Bounds {
	return TileBounds(r.X, r.Y, r.Zoom, r.SideLength)
}

// String returns a compact form usable as a cache key.
func (r TileRequest) String() string {
	return fmt.Sprintf("%g/%g/%g?i=%d&e=%d&s=%d", r.Zoom, r.X, r.Y, r.MaxIterations, r.Exponent, r.SideLength)
}

func (b Bounds) finite() bool {
	return finite(b.ReMin) && finite(b.ImMin) && finite(b.ReMax) && finite(b.ImMax)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
