package fractile

import (
	"sync/atomic"

	"github.com/gogpu/fractile/internal/parallel"
)

// inlineCells is the cell count below which a batch of evaluations runs on
// the calling goroutine instead of the pool.
const inlineCells = 64

// grid is the evaluation state of one render: the sample axes, the iteration
// parameters and the mask being filled. It lives for a single request.
type grid struct {
	re, im        []float64
	maxIterations uint32
	radius        float64
	exponent      uint32
	minSubdivide  int

	mask *Mask
	pool *parallel.WorkerPool

	evaluations atomic.Int64
}

func newGrid(b Bounds, n int, req TileRequest, o *options, pool *parallel.WorkerPool) *grid {
	re, im := b.axes(n)
	return &grid{
		re:            re,
		im:            im,
		maxIterations: req.MaxIterations,
		radius:        o.escapeRadius,
		exponent:      req.Exponent,
		minSubdivide:  o.minSubdivide,
		mask:          NewMask(n),
		pool:          pool,
	}
}

// eval runs Escape for cell (row, col) and records the result in the mask.
// It does not count evaluations; batch callers do that once per batch.
func (g *grid) eval(row, col int) EscapeResult {
	r := Escape(complex(g.re[col], g.im[row]), g.maxIterations, g.radius, g.exponent)
	g.mask.Set(row, col, Cell{EscapeResult: r, Kind: CellExact})
	return r
}

// evalCells evaluates count cells addressed by at. The cells must be
// distinct. Large batches are spread over the pool.
func (g *grid) evalCells(count int, at func(i int) (row, col int)) {
	if count <= 0 {
		return
	}
	band := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			g.eval(at(i))
		}
		g.evaluations.Add(int64(hi - lo))
	}
	if count < inlineCells {
		band(0, count)
		return
	}
	g.pool.Range(count, band)
}

// region is an inclusive rectangle of mask cells. The resolver only works on
// regions whose border cells are already resolved.
type region struct {
	top, left, bottom, right int
}

func (r region) width() int  { return r.right - r.left + 1 }
func (r region) height() int { return r.bottom - r.top + 1 }

// hasInterior reports whether any cell lies strictly inside the border.
func (r region) hasInterior() bool {
	return r.width() > 2 && r.height() > 2
}
