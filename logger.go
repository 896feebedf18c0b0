package gtex

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards all records. Enabled returns
// false so callers skip attribute formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gtex and its sub-packages.
// By default gtex produces no log output. Pass nil to restore that.
//
// Log levels used by gtex:
//   - [slog.LevelDebug]: texture and view creation, upload path selection, barriers
//   - [slog.LevelWarn]: staging memory that fails to unmap on release
//
// Logging never replaces error returns: every failure is also returned
// to the caller of the operation that caused it.
//
// Example:
//
//	gtex.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages such as backend/native
// call this to share the same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
