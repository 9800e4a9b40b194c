// Package worker runs the render side of subcanvas on one goroutine.
//
// A Worker owns the registry, the event proxies, the texture cache and
// the compositor. Run selects over inbound messages, work marshalled back
// from texture loads, and a frame ticker; nothing it owns is touched
// from any other goroutine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/compositor"
	"github.com/gogpu/subcanvas/dispatch"
	"github.com/gogpu/subcanvas/eventproxy"
	"github.com/gogpu/subcanvas/protocol"
	"github.com/gogpu/subcanvas/registry"
	"github.com/gogpu/subcanvas/render"
	"github.com/gogpu/subcanvas/shirt"
	"github.com/gogpu/subcanvas/texcache"
)

// ErrStopped is returned by Post and Do once Run has returned.
var ErrStopped = errors.New("worker: stopped")

// Worker is the single render goroutine.
type Worker struct {
	cfg   subcanvas.Config
	inbox chan protocol.Message

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once

	registry   *registry.Registry
	proxies    *eventproxy.Manager
	textures   *texcache.Cache
	scheduler  *compositor.Scheduler
	dispatcher *dispatch.Dispatcher

	log      *slog.Logger
	messages *prometheus.CounterVec
}

type options struct {
	outbox  protocol.Outbox
	loader  texcache.Loader
	device  render.DeviceHandle
	reg     prometheus.Registerer
	log     *slog.Logger
	onFault func(*subcanvas.RenderFault)
}

// Option configures a Worker.
type Option func(*options)

// WithOutbox sets where outbound messages go. Send is called on the
// worker goroutine.
func WithOutbox(o protocol.Outbox) Option {
	return func(opts *options) { opts.outbox = o }
}

// WithLoader lets the texture cache fetch motif URLs itself instead of
// waiting for updateTexture messages.
func WithLoader(l texcache.Loader) Option {
	return func(opts *options) { opts.loader = l }
}

// WithDevice sets the device handle of the shared context.
func WithDevice(d render.DeviceHandle) Option {
	return func(opts *options) { opts.device = d }
}

// WithRegisterer registers the metrics of every component with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(opts *options) { opts.reg = reg }
}

// WithLogger sets the logger. The default is subcanvas.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) { opts.log = l }
}

// WithFaultHandler is called on the worker goroutine for every
// per-canvas fault, whether raised while compositing or while applying an
// inbound message.
func WithFaultHandler(fn func(*subcanvas.RenderFault)) Option {
	return func(opts *options) { opts.onFault = fn }
}

// New wires a worker from cfg.
func New(cfg subcanvas.Config, opts ...Option) (*Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	o := options{outbox: protocol.Discard}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Worker{
		cfg:     cfg,
		inbox:   make(chan protocol.Message, cfg.InboxSize),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		log:     o.log,
	}
	w.messages = promauto.With(o.reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "subcanvas",
		Subsystem: "worker",
		Name:      "messages_total",
		Help:      "Inbound messages handled, by type.",
	}, []string{"type"})

	cacheOpts := []texcache.Option{
		texcache.WithExecutor(w.enqueue),
		texcache.WithLogger(o.log),
		texcache.WithRegisterer(o.reg),
	}
	if o.loader != nil {
		cacheOpts = append(cacheOpts, texcache.WithLoader(o.loader))
	}
	w.textures = texcache.New(cacheOpts...)
	w.registry = registry.New(shirt.NewFactory(w.textures, o.outbox, o.log),
		registry.WithLogger(o.log),
		registry.WithRegisterer(o.reg),
	)
	w.textures.SetBroadcaster(w.registry)
	w.proxies = eventproxy.NewManager(o.log)

	renderer, backend, err := newRenderer(cfg.Renderer, o.device)
	if err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	w.logger().Debug("worker: renderer selected", "backend", backend)

	schedOpts := []compositor.Option{
		compositor.WithRenderer(renderer),
		compositor.WithInterval(cfg.FrameInterval),
		compositor.WithWindowSize(cfg.WindowWidth, cfg.WindowHeight),
		compositor.WithLogger(o.log),
		compositor.WithRegisterer(o.reg),
		compositor.WithFaultHandler(o.onFault),
	}
	if o.device != nil {
		schedOpts = append(schedOpts, compositor.WithDevice(o.device))
	}
	w.scheduler = compositor.NewScheduler(w.registry, schedOpts...)

	w.dispatcher = &dispatch.Dispatcher{
		Registry:  w.registry,
		Proxies:   w.proxies,
		Textures:  w.textures,
		Scheduler: w.scheduler,
		Outbox:    o.outbox,
		OnFault:   o.onFault,
		Log:       o.log,
	}
	return w, nil
}

func (w *Worker) logger() *slog.Logger { return subcanvas.LoggerOr(w.log) }

func newRenderer(name string, device render.DeviceHandle) (render.Renderer, string, error) {
	if device == nil {
		device = render.NullDeviceHandle{}
	}
	if name == "" {
		return render.NewRenderer(device)
	}
	r, err := render.NewRendererByName(name, device)
	return r, name, err
}

// Registry returns the canvas registry. Use it only from the worker
// goroutine (inside Do) while Run is active.
func (w *Worker) Registry() *registry.Registry { return w.registry }

// Scheduler returns the compositor. The same restriction as Registry
// applies.
func (w *Worker) Scheduler() *compositor.Scheduler { return w.scheduler }

// Textures returns the texture cache.
func (w *Worker) Textures() *texcache.Cache { return w.textures }

// Post queues m for the worker. It blocks while the inbox is full.
func (w *Worker) Post(ctx context.Context, m protocol.Message) error {
	select {
	case w.inbox <- m:
		return nil
	case <-w.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send queues m, dropping it if the worker has stopped. It lets a Worker
// serve as the control side's protocol.Outbox.
func (w *Worker) Send(m protocol.Message) {
	if err := w.Post(context.Background(), m); err != nil {
		w.logger().Debug("worker: message dropped", "type", m.MessageType(), "err", err)
	}
}

// Do runs fn on the worker goroutine and waits for it to finish.
func (w *Worker) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	w.enqueue(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-w.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue schedules fn to run on the worker goroutine. It never blocks,
// so it is safe to call from the worker itself.
func (w *Worker) enqueue(fn func()) {
	w.mu.Lock()
	w.pending = append(w.pending, fn)
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) drain() {
	w.mu.Lock()
	fns := w.pending
	w.pending = nil
	w.mu.Unlock()
	for _, fn := range fns {
		w.run(fn)
	}
}

// run calls fn, recovering a panic so that one failed completion cannot
// stop the loop.
func (w *Worker) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger().Warn("worker: queued task fault", "err", fmt.Errorf("panic: %v", r))
		}
	}()
	fn()
}

func (w *Worker) handle(m protocol.Message) {
	if m == nil {
		return
	}
	w.messages.WithLabelValues(string(m.MessageType())).Inc()
	w.dispatcher.Dispatch(m)
}

// Run is the worker loop. It returns ctx.Err() when ctx is done, after
// which the worker cannot be restarted.
func (w *Worker) Run(ctx context.Context) error {
	defer w.once.Do(func() { close(w.stopped) })

	ticker := time.NewTicker(w.cfg.FramePeriod)
	defer ticker.Stop()

	w.logger().Info("worker: running", "interval", w.cfg.FrameInterval, "period", w.cfg.FramePeriod)
	for {
		select {
		case <-ctx.Done():
			w.logger().Info("worker: stopped", "canvases", w.registry.Len())
			return ctx.Err()
		case m := <-w.inbox:
			w.handle(m)
		case <-w.wake:
			w.drain()
		case now := <-ticker.C:
			w.scheduler.Frame(now)
		}
	}
}
