package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/fractile"
)

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		rf         rendererFlags
		x          = fs.Float64("x", 0, "tile x")
		y          = fs.Float64("y", 0, "tile y")
		z          = fs.Float64("z", 1, "zoom level")
		iterations = uint32Flag(fs, "iterations", 2000, "iteration cap")
		exponent   = uint32Flag(fs, "exponent", 2, "exponent of z^p + c")
		size       = fs.Int("size", 256, "tile side in pixels")
		grid       = fs.Int("grid", 1, "render a grid x grid block of tiles starting at (x, y)")
		format     = fs.String("format", "png", "output format: png, bmp or tiff")
		out        = fs.String("out", ".", "output directory")
	)
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := setupLogging(stderr, rf.logLevel); err != nil {
		return err
	}
	if *grid < 1 {
		return fmt.Errorf("grid must be at least 1, got %d", *grid)
	}
	f, err := fractile.ParseFormat(*format)
	if err != nil {
		return err
	}
	opts, err := rf.options()
	if err != nil {
		return err
	}
	r, err := fractile.NewRenderer(opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	var (
		start       = time.Now()
		evaluations int64
		tiles       int
	)
	for row := range *grid {
		for col := range *grid {
			req := fractile.TileRequest{
				X:             *x + float64(col),
				Y:             *y + float64(row),
				Zoom:          *z,
				MaxIterations: *iterations,
				Exponent:      *exponent,
				SideLength:    *size,
			}
			tile, err := r.Render(req)
			if err != nil {
				return err
			}
			path := filepath.Join(*out, tileFileName(req, f))
			if err := tile.Save(path); err != nil {
				return err
			}
			evaluations += tile.Stats().Evaluations
			tiles++
		}
	}

	p := message.NewPrinter(language.English)
	pixels := tiles * *size * *size
	_, err = p.Fprintf(stdout, "rendered %d tiles to %s: %d pixels, %d evaluations (%.1f%%) in %v\n",
		tiles, *out, pixels, evaluations, 100*float64(evaluations)/float64(pixels*rf.supersample*rf.supersample),
		time.Since(start).Round(time.Millisecond))
	return err
}

// tileFileName returns z_x_y.ext.
func tileFileName(req fractile.TileRequest, f fractile.Format) string {
	g := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return g(req.Zoom) + "_" + g(req.X) + "_" + g(req.Y) + f.Extension()
}

func (f *rendererFlags) options() ([]fractile.Option, error) {
	palette, ok := fractile.PaletteByName(f.palette)
	if f.stops != "" {
		stops, err := fractile.ParseStops(f.stops)
		if err != nil {
			return nil, err
		}
		if palette, err = fractile.NewPalette("custom", stops...); err != nil {
			return nil, err
		}
	} else if !ok {
		return nil, fmt.Errorf("unknown palette %q", f.palette)
	}
	if f.linear {
		palette = palette.WithLinearBlend()
	}
	strategy, err := fractile.ParseStrategy(f.strategy)
	if err != nil {
		return nil, err
	}
	return []fractile.Option{
		fractile.WithWorkers(f.workers),
		fractile.WithPalette(palette),
		fractile.WithStrategy(strategy),
		fractile.WithSupersample(f.supersample),
	}, nil
}
