package fractile

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gogpu/fractile/internal/parallel"
)

// ErrClosed is returned by a Renderer after Close.
var ErrClosed = errors.New("fractile: renderer is closed")

// Renderer turns tile requests into RGBA tiles. It owns a worker pool that
// is shared by all concurrent Render calls.
//
// Thread safety: a Renderer is safe for concurrent use. Close waits for
// in-flight renders to finish.
type Renderer struct {
	opts options
	pool *parallel.WorkerPool

	mu     sync.RWMutex
	closed bool
}

// NewRenderer creates a renderer. It fails with ErrEscapeRadius or
// ErrSupersample for out-of-range options.
func NewRenderer(opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.escapeRadius >= MinEscapeRadius) || math.IsInf(o.escapeRadius, 1) {
		return nil, fmt.Errorf("%w: got %v", ErrEscapeRadius, o.escapeRadius)
	}
	if o.supersample < 1 || o.supersample > MaxSupersample {
		return nil, fmt.Errorf("%w: got %d, want 1..%d", ErrSupersample, o.supersample, MaxSupersample)
	}

	r := &Renderer{opts: o, pool: parallel.NewWorkerPool(o.workers)}
	Logger().Info("fractile: renderer ready",
		"workers", r.pool.Workers(),
		"palette", o.palette.Name(),
		"strategy", o.strategy,
		"escape_radius", o.escapeRadius,
		"supersample", o.supersample,
	)
	return r, nil
}

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int { return r.pool.Workers() }

// Palette returns the palette tiles are coloured with.
func (r *Renderer) Palette() *Palette { return r.opts.palette }

// Render produces the tile for req.
//
// The border of the grid is always evaluated. When every border cell
// reached the same iteration count, the interior is filled (never
// escaped) or interpolated (escaped) without further evaluation;
// otherwise it is resolved by the configured Strategy.
func (r *Renderer) Render(req TileRequest) (*Tile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrClosed
	}
	if err := req.Validate(); err != nil {
		Logger().Warn("fractile: request rejected", "tile", req, "err", err)
		return nil, err
	}

	start := time.Now()
	n := req.SideLength * r.opts.supersample
	g := newGrid(req.Bounds(), n, req, &r.opts, r.pool)

	ref := g.eval(0, 0)
	g.evaluations.Add(1)
	uniform := g.sampleBorder(ref.Iterations)
	path := g.resolve(uniform, r.opts.strategy)

	pix := r.colorize(g.mask, newShader(r.opts.palette, req.MaxIterations, r.opts.escapeRadius, req.Exponent))
	if n != req.SideLength {
		pix = downsample(pix, n, req.SideLength)
	}

	stats := RenderStats{
		Path:         path,
		Evaluations:  g.evaluations.Load(),
		Filled:       g.mask.Count(CellFilled),
		Interpolated: g.mask.Count(CellInterpolated),
		Grid:         n,
		Duration:     time.Since(start),
	}
	Logger().Debug("fractile: tile rendered",
		"tile", req,
		"path", stats.Path,
		"evaluations", stats.Evaluations,
		"duration", stats.Duration,
	)
	return &Tile{req: req, side: req.SideLength, data: pix, stats: stats}, nil
}

// RenderTile renders one tile and returns its RGBA bytes.
func (r *Renderer) RenderTile(x, y, zoom float64, maxIterations, exponent uint32, sideLength int) ([]byte, error) {
	t, err := r.Render(TileRequest{
		X: x, Y: y, Zoom: zoom,
		MaxIterations: maxIterations,
		Exponent:      exponent,
		SideLength:    sideLength,
	})
	if err != nil {
		return nil, err
	}
	return t.Data(), nil
}

// colorize maps a fully resolved mask to RGBA bytes, one band of rows per
// pool task.
func (r *Renderer) colorize(m *Mask, sh shader) []byte {
	n := m.Side()
	pix := make([]byte, n*n*4)
	r.pool.Range(n, func(lo, hi int) {
		for row := lo; row < hi; row++ {
			i := row * n * 4
			for _, c := range m.Row(row) {
				col := sh.shade(c.EscapeResult)
				pix[i] = col.R
				pix[i+1] = col.G
				pix[i+2] = col.B
				pix[i+3] = col.A
				i += 4
			}
		}
	})
	return pix
}

// Close stops the worker pool after in-flight renders complete.
// Close is idempotent.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.pool.Close()
	Logger().Info("fractile: renderer closed")
}
