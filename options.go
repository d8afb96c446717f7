package fractile

// DefaultMinSubdivideSize is the region side at or below which the
// subdivision strategy evaluates cells directly.
const DefaultMinSubdivideSize = 32

// MaxSupersample is the largest accepted supersampling factor.
const MaxSupersample = 8

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := fractile.NewRenderer(
//	    fractile.WithPalette(fractile.Classic),
//	    fractile.WithWorkers(4),
//	)
type Option func(*options)

type options struct {
	workers      int
	palette      *Palette
	escapeRadius float64
	strategy     Strategy
	minSubdivide int
	supersample  int
}

func defaultOptions() options {
	return options{
		workers:      0, // GOMAXPROCS
		palette:      Turbo,
		escapeRadius: MinEscapeRadius,
		strategy:     StrategySubdivide,
		minSubdivide: DefaultMinSubdivideSize,
		supersample:  1,
	}
}

// WithWorkers sets the size of the renderer's worker pool.
// Zero or a negative value uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPalette sets the colour palette. nil keeps Turbo.
func WithPalette(p *Palette) Option {
	return func(o *options) {
		if p != nil {
			o.palette = p
		}
	}
}

// WithEscapeRadius sets the escape radius. It must be at least
// MinEscapeRadius; NewRenderer rejects smaller values with ErrEscapeRadius.
func WithEscapeRadius(r float64) Option {
	return func(o *options) {
		o.escapeRadius = r
	}
}

// WithStrategy selects how tiles with a non-uniform border are resolved.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithMinSubdivideSize sets the region side at or below which subdivision
// stops and cells are evaluated directly. Values below 3 are raised to 3.
func WithMinSubdivideSize(n int) Option {
	return func(o *options) {
		o.minSubdivide = max(n, 3)
	}
}

// WithSupersample renders each tile on a k times finer grid and
// downscales the result. k must be in [1, MaxSupersample].
func WithSupersample(k int) Option {
	return func(o *options) {
		o.supersample = k
	}
}
