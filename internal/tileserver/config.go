package tileserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gogpu/fractile"
)

// Duration is a time.Duration that reads and writes JSON as a Go duration
// string such as "5s".
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler. Bare numbers are seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var secs float64
		if err := json.Unmarshal(b, &secs); err != nil {
			return fmt.Errorf("duration must be a string or seconds: %s", b)
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds tile server settings. Zero fields take defaults in Verify.
type Config struct {
	Addr string `json:"addr"`

	// Renderer.
	Workers      int     `json:"workers"`
	Palette      string  `json:"palette"`
	Stops        string  `json:"stops"` // custom palette, overrides Palette
	LinearBlend  bool    `json:"linear_blend"`
	Strategy     string  `json:"strategy"`
	EscapeRadius float64 `json:"escape_radius"`
	Supersample  int     `json:"supersample"`

	// Request defaults and limits.
	TileSize      int    `json:"tile_size"`
	Iterations    uint32 `json:"iterations"`
	Exponent      uint32 `json:"exponent"`
	MaxIterations uint32 `json:"max_iterations"`
	MaxSide       int    `json:"max_side"`

	CacheBytes      int64    `json:"cache_bytes"`
	AllowedOrigins  []string `json:"allowed_origins"`
	ShutdownTimeout Duration `json:"shutdown_timeout"`
}

// Defaults applied by Verify.
const (
	DefaultAddr          = ":8080"
	DefaultTileSize      = 256
	DefaultIterations    = 2000
	DefaultExponent      = 2
	DefaultMaxIterations = 100_000
	DefaultMaxSide       = 1024
	DefaultCacheBytes    = 256 << 20
)

// ErrConfig is returned for invalid settings.
var ErrConfig = errors.New("tileserver: invalid config")

// DefaultConfig returns a verified configuration with every default set.
func DefaultConfig() Config {
	var c Config
	_ = c.Verify() // the zero config always verifies
	return c
}

// LoadConfig reads a JSON config file and verifies it.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return Config{}, fmt.Errorf("tileserver: read config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}
	if err := c.Verify(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Verify fills unset fields with defaults and rejects invalid values.
func (c *Config) Verify() error {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Palette == "" {
		c.Palette = fractile.Turbo.Name()
	}
	if c.Strategy == "" {
		c.Strategy = fractile.StrategySubdivide.String()
	}
	if c.EscapeRadius == 0 {
		c.EscapeRadius = fractile.MinEscapeRadius
	}
	if c.Supersample == 0 {
		c.Supersample = 1
	}
	if c.TileSize == 0 {
		c.TileSize = DefaultTileSize
	}
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.Exponent == 0 {
		c.Exponent = DefaultExponent
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.MaxSide == 0 {
		c.MaxSide = DefaultMaxSide
	}
	if c.CacheBytes <= 0 {
		c.CacheBytes = DefaultCacheBytes
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = Duration(10 * time.Second)
	}

	var errs []error
	if c.Stops == "" {
		if _, ok := fractile.PaletteByName(c.Palette); !ok {
			errs = append(errs, fmt.Errorf("unknown palette %q (have %s)", c.Palette, strings.Join(fractile.PaletteNames(), ", ")))
		}
	} else if _, err := fractile.ParseStops(c.Stops); err != nil {
		errs = append(errs, err)
	}
	if _, err := fractile.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.EscapeRadius < fractile.MinEscapeRadius {
		errs = append(errs, fmt.Errorf("escape_radius %v below %v", c.EscapeRadius, fractile.MinEscapeRadius))
	}
	if c.Supersample < 1 || c.Supersample > fractile.MaxSupersample {
		errs = append(errs, fmt.Errorf("supersample %d outside 1..%d", c.Supersample, fractile.MaxSupersample))
	}
	if c.MaxSide < 2 {
		errs = append(errs, fmt.Errorf("max_side %d below 2", c.MaxSide))
	}
	if c.TileSize < 2 || c.TileSize > c.MaxSide {
		errs = append(errs, fmt.Errorf("tile_size %d outside 2..%d", c.TileSize, c.MaxSide))
	}
	if c.Iterations > c.MaxIterations {
		errs = append(errs, fmt.Errorf("iterations %d above max_iterations %d", c.Iterations, c.MaxIterations))
	}
	if c.Exponent < 2 {
		errs = append(errs, fmt.Errorf("exponent %d below 2", c.Exponent))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// RendererOptions translates the renderer settings of a verified config.
func (c *Config) RendererOptions() ([]fractile.Option, error) {
	var palette *fractile.Palette
	if c.Stops != "" {
		stops, err := fractile.ParseStops(c.Stops)
		if err != nil {
			return nil, err
		}
		if palette, err = fractile.NewPalette("custom", stops...); err != nil {
			return nil, err
		}
	} else {
		var ok bool
		if palette, ok = fractile.PaletteByName(c.Palette); !ok {
			return nil, fmt.Errorf("%w: unknown palette %q", ErrConfig, c.Palette)
		}
	}
	if c.LinearBlend {
		palette = palette.WithLinearBlend()
	}
	strategy, err := fractile.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}
	return []fractile.Option{
		fractile.WithWorkers(c.Workers),
		fractile.WithPalette(palette),
		fractile.WithStrategy(strategy),
		fractile.WithEscapeRadius(c.EscapeRadius),
		fractile.WithSupersample(c.Supersample),
	}, nil
}
