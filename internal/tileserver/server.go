// Package tileserver serves fractal tiles over HTTP and websocket.
//
// Routes:
//
//	GET /tiles/{z}/{x}/{y}[.png|.bmp|.tiff]  encoded tile
//	GET /raw/{z}/{x}/{y}                     raw RGBA bytes
//	GET /ws                                  websocket tile stream
//	GET /stats                               cache statistics (JSON)
//	GET /healthz                             liveness
//	GET /                                    map viewer
//
// Tile endpoints accept the query parameters iterations, exponent and size.
// Rendered tiles are kept in a byte-budgeted LRU shared by all routes.
package tileserver

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/gogpu/fractile"
	"github.com/gogpu/fractile/cache"
)

//go:embed index.html
var indexHTML []byte

// ErrBadRequest marks malformed tile coordinates or query parameters.
var ErrBadRequest = errors.New("tileserver: bad request")

// Server renders and caches tiles.
type Server struct {
	cfg      Config
	renderer *fractile.Renderer
	tiles    *cache.Cache[string, []byte]
	mux      *http.ServeMux
}

// New builds a server from a config. The config is verified first.
func New(cfg Config) (*Server, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	opts, err := cfg.RendererOptions()
	if err != nil {
		return nil, err
	}
	r, err := fractile.NewRenderer(opts...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		renderer: r,
		tiles: cache.New(cfg.CacheBytes, cache.StringHasher, func(b []byte) int64 {
			return int64(len(b))
		}),
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /tiles/{z}/{x}/{y}", s.handleTile)
	s.mux.HandleFunc("GET /raw/{z}/{x}/{y}", s.handleRaw)
	s.mux.HandleFunc("GET /ws", s.handleWebsocket)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	return s, nil
}

// Config returns the verified configuration.
func (s *Server) Config() Config { return s.cfg }

// Handler returns the HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Close releases the renderer. In-flight renders complete first.
func (s *Server) Close() {
	s.renderer.Close()
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("tileserver: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. Open websocket streams see
// ctx cancellation and end; plain requests get ShutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	fractile.Logger().Info("tileserver: listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeout))
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	<-errc
	fractile.Logger().Info("tileserver: stopped")
	return err
}

// tileRequest parses path coordinates and applies query overrides.
func (s *Server) tileRequest(z, x, y string, q queryGetter) (fractile.TileRequest, error) {
	zoom, err := parseCoord("z", z)
	if err != nil {
		return fractile.TileRequest{}, err
	}
	tx, err := parseCoord("x", x)
	if err != nil {
		return fractile.TileRequest{}, err
	}
	ty, err := parseCoord("y", y)
	if err != nil {
		return fractile.TileRequest{}, err
	}
	return s.buildRequest(zoom, tx, ty, q)
}

// buildRequest starts from the configured defaults, applies the optional
// iterations, exponent and size overrides and validates the result.
func (s *Server) buildRequest(zoom, x, y float64, q queryGetter) (fractile.TileRequest, error) {
	req := fractile.TileRequest{
		X:             x,
		Y:             y,
		Zoom:          zoom,
		MaxIterations: s.cfg.Iterations,
		Exponent:      s.cfg.Exponent,
		SideLength:    s.cfg.TileSize,
	}
	if v := q.Get("iterations"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || uint32(n) > s.cfg.MaxIterations {
			return req, fmt.Errorf("%w: iterations %q must be at most %d", ErrBadRequest, v, s.cfg.MaxIterations)
		}
		req.MaxIterations = uint32(n)
	}
	if v := q.Get("exponent"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return req, fmt.Errorf("%w: exponent %q", ErrBadRequest, v)
		}
		req.Exponent = uint32(n)
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n > s.cfg.MaxSide {
			return req, fmt.Errorf("%w: size %q must be at most %d", ErrBadRequest, v, s.cfg.MaxSide)
		}
		req.SideLength = n
	}
	return req, req.Validate()
}

type queryGetter interface {
	Get(key string) string
}

func parseCoord(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrBadRequest, name, v)
	}
	return f, nil
}

// splitFormat separates an image extension from the y coordinate.
// "3.png" gives ("3", PNG); "3.5" is a fractional coordinate.
func splitFormat(y string) (string, fractile.Format) {
	ext := path.Ext(y)
	if ext == "" {
		return y, fractile.FormatPNG
	}
	if f, err := fractile.ParseFormat(ext); err == nil {
		return y[:len(y)-len(ext)], f
	}
	return y, fractile.FormatPNG
}

// raw returns the RGBA bytes for req, rendering on a cache miss.
func (s *Server) raw(req fractile.TileRequest) ([]byte, error) {
	return s.tiles.GetOrCreate(req.String()+"|raw", func() ([]byte, error) {
		t, err := s.renderer.Render(req)
		if err != nil {
			return nil, err
		}
		return t.Data(), nil
	})
}

// encoded returns req encoded as f, rendering on a cache miss.
func (s *Server) encoded(req fractile.TileRequest, f fractile.Format) ([]byte, error) {
	return s.tiles.GetOrCreate(req.String()+"|"+f.String(), func() ([]byte, error) {
		t, err := s.renderer.Render(req)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := t.Encode(&buf, f); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	y, format := splitFormat(r.PathValue("y"))
	req, err := s.tileRequest(r.PathValue("z"), r.PathValue("x"), y, r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.encoded(req, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	_, _ = w.Write(b)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	req, err := s.tileRequest(r.PathValue("z"), r.PathValue("x"), r.PathValue("y"), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.raw(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Tile-Size", strconv.Itoa(req.SideLength))
	_, _ = w.Write(b)
}

// Stats is the body of GET /stats.
type Stats struct {
	Workers  int         `json:"workers"`
	Palette  string      `json:"palette"`
	TileSize int         `json:"tile_size"`
	Cache    cache.Stats `json:"cache"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Stats{
		Workers:  s.renderer.Workers(),
		Palette:  s.renderer.Palette().Name(),
		TileSize: s.cfg.TileSize,
		Cache:    s.tiles.Stats(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// statusFor maps render errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, fractile.ErrSideLength),
		errors.Is(err, fractile.ErrExponent),
		errors.Is(err, fractile.ErrNonFinite):
		return http.StatusBadRequest
	case errors.Is(err, fractile.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		fractile.Logger().Error("tileserver: request failed", "path", r.URL.Path, "err", err)
	} else {
		fractile.Logger().Warn("tileserver: request rejected", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the response code for logging.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrade reach the
// underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := fractile.Logger()
		if !log.Enabled(r.Context(), slog.LevelDebug) {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("tileserver: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", time.Since(start),
		)
	})
}
