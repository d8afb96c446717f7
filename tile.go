package fractile

import (
	"image"
	"image/color"
	"io"
	"os"
	"time"
)

// RenderStats describes how a tile was produced.
type RenderStats struct {
	// Path is how the interior was resolved.
	Path ResolvePath

	// Evaluations is the number of Escape calls, including the border.
	Evaluations int64

	// Filled and Interpolated count cells that were not evaluated.
	Filled       int
	Interpolated int

	// Grid is the side of the evaluated grid; larger than the tile side
	// when supersampling.
	Grid int

	Duration time.Duration
}

// Tile is a rendered square of opaque RGBA pixels in row-major order.
type Tile struct {
	req   TileRequest
	side  int
	data  []byte
	stats RenderStats
}

// Request returns the request the tile was rendered for.
func (t *Tile) Request() TileRequest { return t.req }

// Side returns the number of pixels per side.
func (t *Tile) Side() int { return t.side }

// Data returns the pixel buffer: side*side*4 bytes, R G B A per pixel,
// rows top to bottom. The slice aliases the tile.
func (t *Tile) Data() []byte { return t.data }

// Stats returns render statistics.
func (t *Tile) Stats() RenderStats { return t.stats }

// RGBAAt returns the pixel at column x, row y.
func (t *Tile) RGBAAt(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= t.side || y >= t.side {
		return color.RGBA{}
	}
	i := (y*t.side + x) * 4
	return color.RGBA{R: t.data[i], G: t.data[i+1], B: t.data[i+2], A: t.data[i+3]}
}

// ToImage returns an *image.RGBA sharing the tile's pixels.
func (t *Tile) ToImage() *image.RGBA {
	return &image.RGBA{
		Pix:    t.data,
		Stride: t.side * 4,
		Rect:   image.Rect(0, 0, t.side, t.side),
	}
}

// At implements the image.Image interface.
func (t *Tile) At(x, y int) color.Color { return t.RGBAAt(x, y) }

// Bounds implements the image.Image interface.
func (t *Tile) Bounds() image.Rectangle { return image.Rect(0, 0, t.side, t.side) }

// ColorModel implements the image.Image interface.
func (t *Tile) ColorModel() color.Model { return color.RGBAModel }

// Encode writes the tile to w in format f.
func (t *Tile) Encode(w io.Writer, f Format) error {
	return Encode(w, t.ToImage(), f)
}

// Save writes the tile to path, choosing the format from the extension.
func (t *Tile) Save(path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := t.Encode(out, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// SavePNG writes the tile to path as PNG.
func (t *Tile) SavePNG(path string) error {
	out, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := t.Encode(out, FormatPNG); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
