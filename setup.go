package fractile

import (
	"log/slog"
	"sync"
)

var (
	defaultRenderer = sync.OnceValues(func() (*Renderer, error) {
		return NewRenderer()
	})
	initOnce sync.Once
)

// Init prepares process-wide state: when no logger was installed with
// SetLogger it routes fractile's logs to slog.Default, and it builds the
// shared renderer used by RenderTile. Calling it is optional and repeat
// calls do nothing.
func Init() {
	initOnce.Do(func() {
		if !loggerConfigured() {
			SetLogger(slog.Default())
		}
		_, _ = defaultRenderer()
	})
}

// RenderTile renders the tile (x, y) at zoom level zoom with the shared
// default renderer (Turbo palette, escape radius 3) and returns
// sideLength*sideLength*4 bytes of RGBA, rows top to bottom.
//
// Example:
//
//	data, err := fractile.RenderTile(0, 0, 1, 2000, 2, 256)
func RenderTile(x, y, zoom float64, maxIterations, exponent uint32, sideLength int) ([]byte, error) {
	r, err := defaultRenderer()
	if err != nil {
		return nil, err
	}
	return r.RenderTile(x, y, zoom, maxIterations, exponent, sideLength)
}
