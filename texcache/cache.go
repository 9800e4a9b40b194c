package texcache

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/scene"
)

// State is the resolution state of a URL.
type State int

const (
	// StateAbsent means the URL was never requested or ingested.
	StateAbsent State = iota
	// StatePending means the URL was requested and is not resolved yet.
	StatePending
	// StateReady means a bitmap is available.
	StateReady
	// StateFailed means decoding failed. Failures are permanent.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Resolved reports whether s is final.
func (s State) Resolved() bool { return s == StateReady || s == StateFailed }

// Bitmap is a decoded texture. Aspect is width/height.
type Bitmap struct {
	Image  *image.RGBA
	Aspect float32
}

// Loader decodes the image behind a URL. Load is called from its own
// goroutine and may block.
type Loader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, url string) (image.Image, error)

// Load calls f(ctx, url).
func (f LoaderFunc) Load(ctx context.Context, url string) (image.Image, error) { return f(ctx, url) }

// Broadcaster fans an event out to every live scene.
type Broadcaster interface {
	Broadcast(ev scene.Event)
}

// Executor runs fn on the goroutine that owns the scenes.
type Executor func(fn func())

// Stats is a snapshot of cache activity.
type Stats struct {
	Entries int
	Decodes int
	Ready   int
	Failed  int
	Pending int
	Ignored int
}

type entry struct {
	state  State
	bitmap *Bitmap
	err    error
	subs   []func()
}

// Cache maps texture URLs to decoded bitmaps, running at most one decode
// per URL and fanning the result out to every waiter.
//
// Resolution (a finished decode, Ingest or Fail) broadcasts a
// scene.TextureEvent to all live scenes, then calls each subscriber
// registered for the URL exactly once. The first resolution of a URL wins;
// resolved entries never change and failed URLs are never retried.
//
// Get, Request and Stats are safe for concurrent use. Subscribers and the
// broadcast run through the executor.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	stats   Stats

	ctx         context.Context
	loader      Loader
	exec        Executor
	broadcaster Broadcaster
	log         *slog.Logger

	decodes  prometheus.Counter
	resolved *prometheus.CounterVec
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		ctx:     context.Background(),
		exec:    func(fn func()) { fn() },
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ctx != nil {
		c.ctx = o.ctx
	}
	if o.exec != nil {
		c.exec = o.exec
	}
	c.loader = o.loader
	c.broadcaster = o.broadcaster
	c.log = o.log

	f := promauto.With(o.reg)
	c.decodes = f.NewCounter(prometheus.CounterOpts{
		Namespace: "subcanvas",
		Subsystem: "texture",
		Name:      "decodes_total",
		Help:      "Texture decodes started.",
	})
	c.resolved = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: "subcanvas",
		Subsystem: "texture",
		Name:      "resolved_total",
		Help:      "Texture URLs resolved, by outcome.",
	}, []string{"status"})
	return c
}

func (c *Cache) logger() *slog.Logger { return subcanvas.LoggerOr(c.log) }

// SetBroadcaster sets the broadcaster after construction. It exists
// because the registry that broadcasts usually needs the cache first.
func (c *Cache) SetBroadcaster(b Broadcaster) {
	c.mu.Lock()
	c.broadcaster = b
	c.mu.Unlock()
}

// Get returns the state of url and, when ready, its bitmap.
func (c *Cache) Get(url string) (State, *Bitmap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return StateAbsent, nil
	}
	return e.state, e.bitmap
}

// Err returns the decode error of a failed URL.
func (c *Cache) Err(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[url]; ok && e.state == StateFailed {
		return e.err
	}
	return nil
}

// Request registers cb to run once url resolves and starts a decode if
// none has been started and a Loader is configured. If url is already
// resolved cb is scheduled right away. cb may be nil. Request returns the
// state of url after the call.
func (c *Cache) Request(url string, cb func()) State {
	c.mu.Lock()
	e, ok := c.entries[url]
	if !ok {
		e = &entry{state: StatePending}
		c.entries[url] = e
	}
	if e.state.Resolved() {
		state := e.state
		c.mu.Unlock()
		if cb != nil {
			c.exec(cb)
		}
		return state
	}
	if cb != nil {
		e.subs = append(e.subs, cb)
	}
	start := !ok && c.loader != nil
	if start {
		c.stats.Decodes++
	}
	c.mu.Unlock()

	if start {
		c.decodes.Inc()
		c.logger().Debug("texcache: decode started", "url", url)
		go c.load(url)
	}
	return StatePending
}

func (c *Cache) load(url string) {
	img, err := c.loader.Load(c.ctx, url)
	c.exec(func() {
		if err != nil {
			c.Fail(url, err)
			return
		}
		c.Ingest(url, img)
	})
}

// Ingest resolves url with img. It must run on the goroutine that owns
// the scenes.
func (c *Cache) Ingest(url string, img image.Image) {
	if img == nil || img.Bounds().Empty() {
		c.Fail(url, fmt.Errorf("%w: empty image for %q", subcanvas.ErrDecodeFailure, url))
		return
	}
	rgba := ToRGBA(img)
	b := rgba.Bounds()
	c.resolve(url, StateReady, &Bitmap{Image: rgba, Aspect: float32(b.Dx()) / float32(b.Dy())}, nil)
}

// Fail marks url as permanently failed. It must run on the goroutine that
// owns the scenes.
func (c *Cache) Fail(url string, err error) {
	if err == nil {
		err = subcanvas.ErrDecodeFailure
	}
	c.resolve(url, StateFailed, nil, err)
}

func (c *Cache) resolve(url string, state State, bm *Bitmap, err error) {
	c.mu.Lock()
	e, ok := c.entries[url]
	if !ok {
		e = &entry{}
		c.entries[url] = e
	}
	if e.state.Resolved() {
		c.stats.Ignored++
		c.mu.Unlock()
		c.logger().Debug("texcache: ignoring late resolution", "url", url, "state", e.state)
		return
	}
	e.state, e.bitmap, e.err = state, bm, err
	subs := e.subs
	e.subs = nil
	if state == StateReady {
		c.stats.Ready++
	} else {
		c.stats.Failed++
	}
	b := c.broadcaster
	c.mu.Unlock()

	status := scene.TextureSuccess
	if state == StateFailed {
		status = scene.TextureError
		c.logger().Warn("texcache: texture failed", "url", url, "err", err)
	}
	c.resolved.WithLabelValues(string(status)).Inc()

	if b != nil {
		b.Broadcast(scene.TextureEvent{URL: url, Status: status})
	}
	for _, cb := range subs {
		cb()
	}
}

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	for _, e := range c.entries {
		if e.state == StatePending {
			s.Pending++
		}
	}
	return s
}
