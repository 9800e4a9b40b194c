package texcache

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	ctx         context.Context
	loader      Loader
	exec        Executor
	broadcaster Broadcaster
	log         *slog.Logger
	reg         prometheus.Registerer
}

// Option configures a Cache.
type Option func(*options)

// WithLoader makes the cache decode requested URLs itself. Without a
// loader, URLs stay pending until Ingest or Fail.
func WithLoader(l Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithExecutor marshals completions onto the owning goroutine. The
// default runs them inline.
func WithExecutor(e Executor) Option {
	return func(o *options) { o.exec = e }
}

// WithBroadcaster sets where TextureEvents go.
func WithBroadcaster(b Broadcaster) Option {
	return func(o *options) { o.broadcaster = b }
}

// WithContext sets the context passed to the loader.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithLogger sets the logger. The default is subcanvas.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRegisterer registers the cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}
