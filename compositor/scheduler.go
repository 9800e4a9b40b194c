package compositor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/registry"
	"github.com/gogpu/subcanvas/render"
	"github.com/gogpu/subcanvas/scene"
)

// Canvases lists the canvases to composite, in a stable order.
type Canvases interface {
	List() []registry.Entry
}

// Scheduler throttles frame callbacks to a fixed interval and, on each
// tick, renders every canvas into its region of the shared back-buffer
// and copies that region out to the canvas's surface.
//
// A failure while ticking, rendering or blitting one canvas (including a
// panic) is logged, counted and reported as a *subcanvas.RenderFault; the
// other canvases are unaffected.
type Scheduler struct {
	buffer   *BackBuffer
	renderer render.Renderer
	canvases Canvases
	interval time.Duration

	started bool
	last    time.Time
	acc     time.Duration
	total   time.Duration

	onFault func(*subcanvas.RenderFault)
	log     *slog.Logger
	m       *metrics
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the minimum time between composited frames.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithRenderer replaces the software renderer.
func WithRenderer(r render.Renderer) Option {
	return func(s *Scheduler) { s.renderer = r }
}

// WithDevice sets the device handle the back-buffer draws through.
func WithDevice(d render.DeviceHandle) Option {
	return func(s *Scheduler) { s.buffer.device = d }
}

// WithWindowSize sets the back-buffer size used until the first Resize.
// The buffer itself is still created on first use.
func WithWindowSize(width, height int) Option {
	return func(s *Scheduler) {
		if width > 0 && height > 0 {
			s.buffer.width, s.buffer.height = width, height
		}
	}
}

// WithFaultHandler is called for every per-canvas fault.
func WithFaultHandler(fn func(*subcanvas.RenderFault)) Option {
	return func(s *Scheduler) { s.onFault = fn }
}

// WithLogger sets the logger. The default is subcanvas.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithRegisterer registers the scheduler metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Scheduler) { s.m = newMetrics(reg) }
}

// NewScheduler returns a scheduler compositing the canvases c.
func NewScheduler(c Canvases, opts ...Option) *Scheduler {
	s := &Scheduler{
		buffer:   NewBackBuffer(render.NullDeviceHandle{}),
		renderer: render.NewSoftwareRenderer(),
		canvases: c,
		interval: subcanvas.DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.m == nil {
		s.m = newMetrics(nil)
	}
	return s
}

func (s *Scheduler) logger() *slog.Logger { return subcanvas.LoggerOr(s.log) }

// BackBuffer returns the shared back-buffer.
func (s *Scheduler) BackBuffer() *BackBuffer { return s.buffer }

// Total returns the animation time accumulated over composited frames.
func (s *Scheduler) Total() time.Duration { return s.total }

// Resize applies a window size. The back-buffer is created if needed and
// reallocated only when the size changes; Resize reports whether it was.
func (s *Scheduler) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		s.logger().Warn("compositor: ignoring invalid window size", "width", width, "height", height)
		return false
	}
	resized := s.buffer.Resize(width, height)
	if resized {
		s.m.resizes.Inc()
		s.logger().Debug("compositor: back-buffer resized", "width", width, "height", height)
	}
	return resized
}

// Frame is the frame callback. It adds the time since the previous call
// to an accumulator and composites once the accumulator reaches the
// interval, passing the whole accumulated time as the tick delta. It
// reports whether a frame was composited.
func (s *Scheduler) Frame(now time.Time) bool {
	if !s.started {
		s.started = true
		s.last = now
	}
	if d := now.Sub(s.last); d > 0 {
		s.acc += d
	}
	s.last = now

	if s.acc < s.interval {
		s.m.skipped.Inc()
		return false
	}
	delta := s.acc
	s.total += delta
	s.acc = 0

	start := time.Now()
	s.Composite(delta, s.total)
	s.m.duration.Observe(time.Since(start).Seconds())
	s.m.ticks.Inc()
	return true
}

// Composite runs one frame unconditionally: tick every scene, render each
// canvas into its viewport, then blit each region to its surface.
func (s *Scheduler) Composite(delta, total time.Duration) {
	ctx := s.buffer.Context()
	entries := s.canvases.List()

	tick := scene.TickEvent{Delta: float32(delta.Seconds()), Total: float32(total.Seconds())}
	for _, e := range entries {
		s.guard(e.ID, "tick", func() error {
			e.Scene.Dispatch(tick)
			return nil
		})
	}

	ctx.SetScissorTest(true)
	for _, e := range entries {
		if e.Rect.Empty() {
			continue
		}
		s.guard(e.ID, "render", func() error {
			x, y, w, h := render.BottomUp(e.Rect.Image(), ctx.Height())
			ctx.SetScissor(x, y, w, h)
			ctx.SetViewport(x, y, w, h)
			e.Camera.SetAspect(e.Rect.Aspect())
			return s.renderer.Render(ctx, e.Scene, e.Camera)
		})
	}

	for _, e := range entries {
		if e.Surface == nil || e.Rect.Empty() {
			continue
		}
		s.guard(e.ID, "blit", func() error {
			_, err := render.Blit(e.Surface, ctx.Image(), e.Rect.Image())
			return err
		})
	}
}

// guard runs fn and turns an error or panic into a RenderFault.
func (s *Scheduler) guard(id, stage string, fn func() error) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()
	if err == nil {
		return
	}
	fault := &subcanvas.RenderFault{ID: id, Stage: stage, Err: err}
	s.m.faults.WithLabelValues(stage).Inc()
	s.logger().Warn("compositor: canvas fault", "id", id, "stage", stage, "err", err)
	if s.onFault != nil {
		s.onFault(fault)
	}
}
