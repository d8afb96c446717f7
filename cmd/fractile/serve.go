package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/fractile/internal/tileserver"
)

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		rf         rendererFlags
		configPath = fs.String("config", "", "JSON config file; flags set explicitly override it")
		addr       = fs.String("addr", tileserver.DefaultAddr, "listen address")
		tileSize   = fs.Int("tile-size", tileserver.DefaultTileSize, "default tile side in pixels")
		iterations = uint32Flag(fs, "iterations", tileserver.DefaultIterations, "default iteration cap")
		cacheMB    = fs.Int64("cache-mb", tileserver.DefaultCacheBytes>>20, "tile cache budget in MiB")
	)
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := setupLogging(stderr, rf.logLevel); err != nil {
		return err
	}

	cfg := tileserver.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = tileserver.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override := func(name string, apply func()) {
		if *configPath == "" || set[name] {
			apply()
		}
	}
	override("addr", func() { cfg.Addr = *addr })
	override("tile-size", func() { cfg.TileSize = *tileSize })
	override("iterations", func() { cfg.Iterations = *iterations })
	override("cache-mb", func() { cfg.CacheBytes = *cacheMB << 20 })
	override("workers", func() { cfg.Workers = rf.workers })
	override("palette", func() { cfg.Palette = rf.palette })
	override("stops", func() { cfg.Stops = rf.stops })
	override("linear", func() { cfg.LinearBlend = rf.linear })
	override("strategy", func() { cfg.Strategy = rf.strategy })
	override("supersample", func() { cfg.Supersample = rf.supersample })

	s, err := tileserver.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ListenAndServe(ctx)
}
