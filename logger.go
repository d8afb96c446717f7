package fractile

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip attribute construction entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while tiles are rendering on other goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for fractile and its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by fractile:
//   - [slog.LevelDebug]: per-tile statistics (resolve path, evaluations, duration)
//   - [slog.LevelInfo]: lifecycle events (renderer built, server listening)
//   - [slog.LevelWarn]: rejected requests, dropped websocket clients
//
// Example:
//
//	fractile.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by fractile.
// The tile server calls this so that one SetLogger call configures everything.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerConfigured reports whether SetLogger installed a real logger.
func loggerConfigured() bool {
	_, silent := loggerPtr.Load().Handler().(nopHandler)
	return !silent
}
