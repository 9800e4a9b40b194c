package control

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/eventproxy"
	"github.com/gogpu/subcanvas/internal/jsonx"
	"github.com/gogpu/subcanvas/protocol"
	"github.com/gogpu/subcanvas/render"
	"github.com/gogpu/subcanvas/texcache"
)

// MountOptions describe a canvas to mount.
type MountOptions struct {
	Surface render.Surface
	X, Y    int
	Width   int
	Height  int
	Props   subcanvas.Props
	Cover   Cover

	// RenderDelay postpones the init message.
	RenderDelay time.Duration

	// Attached reports whether the canvas's host element still exists.
	// The sweep unmounts canvases for which it returns false. Nil means
	// always attached.
	Attached func() bool

	// OnReady is called whenever Ready flips. It runs on the goroutine
	// that delivered the change, without locks held.
	OnReady func(ready bool)
}

type canvas struct {
	id     string
	opts   MountOptions
	state  Readiness
	ready  bool
	inited bool
	timer  *time.Timer

	// send orders the messages of one canvas: init first, destroy last.
	// It is taken while h.mu is held, never the other way round.
	send   sync.Mutex
	closed bool // destroy sent, guarded by send
}

// Host mounts canvases on one worker.
type Host struct {
	to     protocol.Outbox
	loader texcache.Loader
	ctx    context.Context

	mu       sync.Mutex
	canvases map[string]*canvas
	uploaded map[string]bool
	group    singleflight.Group
	uploads  sync.WaitGroup

	sweeper  *cron.Cron
	schedule string

	log     *slog.Logger
	metrics *prometheus.CounterVec
}

// Option configures a Host.
type Option func(*Host)

// WithLoader sets how motif URLs are decoded before upload. The default
// is texcache.DecodeLoader reading local files.
func WithLoader(l texcache.Loader) Option {
	return func(h *Host) { h.loader = l }
}

// WithContext sets the context decodes run under.
func WithContext(ctx context.Context) Option {
	return func(h *Host) { h.ctx = ctx }
}

// WithSweepSchedule sets the cron spec of the detached-canvas sweep. An
// empty spec disables it.
func WithSweepSchedule(spec string) Option {
	return func(h *Host) { h.schedule = spec }
}

// WithLogger sets the logger. The default is subcanvas.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.log = l }
}

// WithRegisterer registers the upload counter with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(h *Host) {
		h.metrics = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "subcanvas",
			Subsystem: "control",
			Name:      "uploads_total",
			Help:      "Motif uploads sent to the worker, by outcome.",
		}, []string{"status"})
	}
}

// NewHost returns a host sending to the worker through to.
func NewHost(to protocol.Outbox, opts ...Option) (*Host, error) {
	h := &Host{
		to:       to,
		loader:   texcache.DecodeLoader{},
		ctx:      context.Background(),
		canvases: make(map[string]*canvas),
		uploaded: make(map[string]bool),
		schedule: subcanvas.DefaultSweepSchedule,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.to == nil {
		h.to = protocol.Discard
	}
	if h.metrics == nil {
		WithRegisterer(nil)(h)
	}
	if h.schedule != "" {
		h.sweeper = cron.New()
		if _, err := h.sweeper.AddFunc(h.schedule, func() { h.Sweep() }); err != nil {
			return nil, fmt.Errorf("control: sweep schedule %q: %w", h.schedule, err)
		}
	}
	return h, nil
}

func (h *Host) logger() *slog.Logger { return subcanvas.LoggerOr(h.log) }

// Start starts the sweep.
func (h *Host) Start() {
	if h.sweeper != nil {
		h.sweeper.Start()
	}
}

// Close stops the sweep, cancels pending delayed mounts and waits for
// in-flight uploads.
func (h *Host) Close() {
	if h.sweeper != nil {
		<-h.sweeper.Stop().Done()
	}
	h.mu.Lock()
	for _, c := range h.canvases {
		if c.timer != nil {
			c.timer.Stop()
		}
	}
	h.mu.Unlock()
	h.uploads.Wait()
}

// Mount registers a canvas and returns its new id. The init message is
// sent right away, or after opts.RenderDelay.
func (h *Host) Mount(opts MountOptions) (string, error) {
	if opts.Surface == nil {
		return "", fmt.Errorf("control: mount: %w", subcanvas.ErrNotTransferred)
	}
	id := uuid.NewString()
	c := &canvas{id: id, opts: opts}

	h.mu.Lock()
	h.canvases[id] = c
	if opts.RenderDelay > 0 {
		c.timer = time.AfterFunc(opts.RenderDelay, func() { h.start(id) })
	}
	h.mu.Unlock()

	h.logger().Debug("control: mounted", "id", id, "delay", opts.RenderDelay)
	if opts.RenderDelay <= 0 {
		h.start(id)
	}
	return id, nil
}

// start sends init and uploads the motif.
func (h *Host) start(id string) {
	h.mu.Lock()
	c, ok := h.canvases[id]
	if !ok || c.inited {
		h.mu.Unlock()
		return
	}
	c.inited = true
	c.timer = nil
	m := protocol.Init{
		ID:      id,
		Surface: protocol.Own(c.opts.Surface),
		X:       c.opts.X,
		Y:       c.opts.Y,
		Width:   c.opts.Width,
		Height:  c.opts.Height,
		Props:   c.opts.Props,
	}
	motif := c.opts.Props.Motif
	c.send.Lock()
	h.mu.Unlock()

	h.to.Send(m)
	c.send.Unlock()
	h.update(id, func(r *Readiness) { r.Delay = true })
	if motif != "" {
		h.upload(motif)
	}
}

func (h *Host) lookup(id string) (*canvas, error) {
	c, ok := h.canvases[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", subcanvas.ErrUnknownCanvas, id)
	}
	return c, nil
}

// Move repositions canvas id. Before init only the stored options change.
func (h *Host) Move(id string, x, y, width, height int) error {
	h.mu.Lock()
	c, err := h.lookup(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	c.opts.X, c.opts.Y, c.opts.Width, c.opts.Height = x, y, width, height
	inited := c.inited
	h.mu.Unlock()

	if inited {
		h.sendTo(c, protocol.Move{ID: id, X: x, Y: y, Width: width, Height: height})
	}
	return nil
}

// SetProps sends new props and uploads the motif if it is new.
func (h *Host) SetProps(id string, props subcanvas.Props) error {
	h.mu.Lock()
	c, err := h.lookup(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	c.opts.Props = props
	inited := c.inited
	h.mu.Unlock()

	if !inited {
		return nil
	}
	h.sendTo(c, protocol.UpdateProps{ID: id, Props: props})
	if props.Motif != "" {
		h.upload(props.Motif)
	}
	return nil
}

// Relay forwards an input event for canvas id. Only allow-listed fields
// of raw reach the worker.
func (h *Host) Relay(id string, raw map[string]any) error {
	h.mu.Lock()
	c, err := h.lookup(id)
	inited := err == nil && c.inited
	h.mu.Unlock()
	if err != nil {
		return err
	}
	if !inited {
		return nil
	}
	ev, err := Filter(raw)
	if err != nil {
		return err
	}
	h.sendTo(c, protocol.Interaction{ID: id, Event: ev})
	return nil
}

// Filter keeps the allow-listed fields of a raw input event.
func Filter(raw map[string]any) (eventproxy.Event, error) {
	var ev eventproxy.Event
	b, err := jsonx.Marshal(raw)
	if err != nil {
		return ev, fmt.Errorf("control: encode event: %w", err)
	}
	if err := jsonx.Unmarshal(b, &ev); err != nil {
		return ev, fmt.Errorf("control: filter event: %w", err)
	}
	// Size events are produced by Move, never by the page.
	if ev.Type == eventproxy.SizeEvent {
		return eventproxy.Event{}, errors.New("control: size events cannot be relayed")
	}
	ev.Left, ev.Top, ev.Width, ev.Height = 0, 0, 0, 0
	return ev, nil
}

// sendTo sends a message for c after its init and before its destroy.
func (h *Host) sendTo(c *canvas, m protocol.Message) {
	c.send.Lock()
	defer c.send.Unlock()
	if c.closed {
		return
	}
	h.to.Send(m)
}

// Unmount destroys canvas id. A destroy never overtakes the init of the
// same canvas.
func (h *Host) Unmount(id string) error {
	h.mu.Lock()
	c, err := h.lookup(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	delete(h.canvases, id)
	if c.timer != nil {
		c.timer.Stop()
	}
	inited := c.inited
	h.mu.Unlock()

	if inited {
		c.send.Lock()
		c.closed = true
		h.to.Send(protocol.Destroy{ID: id})
		c.send.Unlock()
	}
	h.logger().Debug("control: unmounted", "id", id)
	return nil
}

// Sweep unmounts every canvas whose Attached probe reports false and
// returns their ids.
func (h *Host) Sweep() []string {
	h.mu.Lock()
	var gone []string
	for id, c := range h.canvases {
		if c.opts.Attached != nil && !c.opts.Attached() {
			gone = append(gone, id)
		}
	}
	h.mu.Unlock()
	sort.Strings(gone)

	for _, id := range gone {
		if err := h.Unmount(id); err != nil {
			h.logger().Debug("control: sweep unmount", "id", id, "err", err)
		}
	}
	if len(gone) > 0 {
		h.logger().Info("control: swept detached canvases", "count", len(gone))
	}
	return gone
}

// IDs returns the mounted canvas ids, sorted.
func (h *Host) IDs() []string {
	h.mu.Lock()
	ids := make([]string, 0, len(h.canvases))
	for id := range h.canvases {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Readiness returns the latest state of canvas id.
func (h *Host) Readiness(id string) (Readiness, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.canvases[id]
	if !ok {
		return Readiness{}, false
	}
	return c.state, true
}

// Ready reports whether canvas id may be revealed under its cover policy.
func (h *Host) Ready(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.canvases[id]
	return ok && c.state.Ready(c.opts.Cover)
}

// Receive takes a message coming back from the worker. Use
// protocol.OutboxFunc(h.Receive) as the worker's outbox.
func (h *Host) Receive(m protocol.Message) {
	if m == nil {
		return
	}
	id := protocol.CanvasID(m)
	switch m := m.(type) {
	case protocol.CanvasReady:
		h.update(id, func(r *Readiness) { r.Canvas = m.Value })
	case protocol.ShirtReady:
		h.update(id, func(r *Readiness) { r.Shirt = m.Value })
	case protocol.DecalReady:
		h.update(id, func(r *Readiness) {
			r.Decal = m.Value
			r.PreviousDecal = m.HasPrevious
			r.DecalError = m.Error
		})
	default:
		h.logger().Debug("control: ignoring message", "type", m.MessageType())
	}
}

func (h *Host) update(id string, fn func(*Readiness)) {
	h.mu.Lock()
	c, ok := h.canvases[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	fn(&c.state)
	ready := c.state.Ready(c.opts.Cover)
	changed := ready != c.ready
	c.ready = ready
	notify := c.opts.OnReady
	h.mu.Unlock()

	if changed && notify != nil {
		notify(ready)
	}
}

// upload decodes url and sends it to the worker, at most once per URL
// for the life of the host. Concurrent requests share one decode.
func (h *Host) upload(url string) {
	h.mu.Lock()
	done := h.uploaded[url]
	h.mu.Unlock()
	if done {
		return
	}

	h.uploads.Add(1)
	go func() {
		defer h.uploads.Done()
		v, err, _ := h.group.Do(url, func() (any, error) {
			return h.loader.Load(h.ctx, url)
		})

		h.mu.Lock()
		if h.uploaded[url] {
			h.mu.Unlock()
			return
		}
		h.uploaded[url] = true
		h.mu.Unlock()

		if err != nil {
			h.logger().Warn("control: motif decode failed", "url", url, "err", err)
			h.metrics.WithLabelValues("failed").Inc()
			h.to.Send(protocol.UpdateTexture{URL: url, Failed: true})
			return
		}
		h.metrics.WithLabelValues("ok").Inc()
		h.to.Send(protocol.UpdateTexture{URL: url, Bitmap: protocol.Own(v.(image.Image))})
	}()
}
