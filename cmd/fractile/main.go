// Command fractile renders escape-time fractal tiles.
//
// Usage:
//
//	fractile serve  [-config file] [-addr :8080] [flags]
//	fractile render -x 0 -y 0 -z 1 [-size 256] [-grid 2] [-format png] [-out dir]
//
// Run "fractile <command> -h" for the flags of each command.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/gogpu/fractile"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("fractile: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return flag.ErrHelp
	}
	switch args[0] {
	case "serve":
		return runServe(args[1:], stderr)
	case "render":
		return runRender(args[1:], stdout, stderr)
	case "version":
		_, err := fmt.Fprintln(stdout, "fractile", fractile.Version)
		return err
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return nil
	}
	usage(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: fractile <command> [flags]

commands:
  serve    run the tile server
  render   render tiles to image files
  version  print the version
`)
}

// rendererFlags are shared by both commands.
type rendererFlags struct {
	workers     int
	palette     string
	stops       string
	linear      bool
	strategy    string
	supersample int
	logLevel    string
}

func (f *rendererFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.workers, "workers", 0, "render workers (0 = GOMAXPROCS)")
	fs.StringVar(&f.palette, "palette", "turbo", "palette name: turbo, classic or grayscale")
	fs.StringVar(&f.stops, "stops", "", `custom palette stops, e.g. "0:#000764,0.5:#ffffff,1:#ffaa00"`)
	fs.BoolVar(&f.linear, "linear", false, "blend palette stops in linear light")
	fs.StringVar(&f.strategy, "strategy", "subdivide", "interior strategy: subdivide or direct")
	fs.IntVar(&f.supersample, "supersample", 1, "supersampling factor (1-8)")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

// uint32Value is a flag.Value for counts that must fit in a uint32.
type uint32Value uint32

func uint32Flag(fs *flag.FlagSet, name string, value uint32, usage string) *uint32 {
	p := new(uint32)
	*p = value
	fs.Var((*uint32Value)(p), name, usage)
	return p
}

func (v *uint32Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("want an integer in [0, %d]", math.MaxUint32)
	}
	*v = uint32Value(n)
	return nil
}

func (v *uint32Value) String() string { return strconv.FormatUint(uint64(*v), 10) }

// setupLogging installs a text handler on w at the requested level.
func setupLogging(w io.Writer, level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	fractile.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})))
	return nil
}
