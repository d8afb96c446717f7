// Package fractile renders square map tiles of generalized Mandelbrot sets.
//
// # Overview
//
// A tile is addressed the way slippy-map viewers address them: tile-grid
// coordinates x and y plus a zoom level. fractile maps that address onto the
// complex plane, runs the escape-time iteration z = z^p + c for every pixel
// and colours the result with a smooth (band-free) palette lookup. The output
// is a flat RGBA buffer, ready for a canvas or an image encoder.
//
// # Quick Start
//
//	pix, err := fractile.RenderTile(0, 0, 2, 1000, 2, 256)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// len(pix) == 256*256*4
//
// For repeated rendering build a Renderer once and reuse it; it owns the
// worker pool:
//
//	r, err := fractile.NewRenderer(fractile.WithPalette(fractile.Classic))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	tile, err := r.Render(fractile.TileRequest{X: 3, Y: 2, Zoom: 3, MaxIterations: 500, Exponent: 2, SideLength: 256})
//
// # Pipeline
//
// Rendering a tile runs these stages in order:
//
//   - Coordinate mapping: the tile address becomes a bounding box in the
//     complex plane (MapCoordinates, TileBounds).
//   - Border sampling: the four edges of the pixel grid are evaluated. When
//     every edge pixel has the iteration count of the top-left corner the
//     interior is assumed to share it.
//   - Interior resolution: a uniform interior is filled (inside the set) or
//     its magnitudes are interpolated row by row (outside the set). Otherwise
//     the region is subdivided into quadrants and the border check repeats,
//     down to a minimum size where every pixel is evaluated (see Strategy).
//   - Colouring: each cell's iteration count and final magnitude become a
//     continuous index into the Palette; cells that never escaped are black.
//
// Every stage that touches many pixels is spread over the renderer's worker
// pool with disjoint writes and a join before the next stage.
//
// # Precision
//
// All arithmetic is float64. Tiles beyond roughly zoom 45 run out of mantissa
// and render as flat blocks; arbitrary precision is out of scope.
package fractile

// Version is the current version of the library.
const Version = "0.1.0"
