package subcanvas

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while the worker goroutine is logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the default logger for subcanvas and all its
// sub-packages. By default, nothing is logged.
//
// Components constructed with an explicit logger option use that logger
// instead. Pass nil to restore the silent default.
//
// Log levels used by subcanvas:
//   - [slog.LevelDebug]: per-message routing, ignored late resolutions
//   - [slog.LevelInfo]: canvas lifecycle, back-buffer resizes
//   - [slog.LevelWarn]: dropped messages (unknown or duplicate ids),
//     decode failures, per-canvas render faults
//
// Example:
//
//	subcanvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current default logger.
// Sub-packages call this when no logger was injected.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// LoggerOr returns l when it is non-nil and the default logger otherwise.
func LoggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Logger()
}
