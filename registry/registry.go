// Package registry keeps the set of live virtual canvases.
//
// Each entry binds a canvas id to its output surface, its rectangle inside
// the shared back-buffer, and the scene and camera built for it. The
// registry is owned by the worker goroutine; its mutex only makes List and
// Len safe to call from elsewhere (metrics, tests).
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/eventproxy"
	"github.com/gogpu/subcanvas/render"
	"github.com/gogpu/subcanvas/scene"
)

// Builder creates the scene and camera of a new canvas.
type Builder interface {
	Build(id string, props subcanvas.Props, target eventproxy.InputTarget) (*scene.Scene, *scene.Camera)
}

// Entry is one virtual canvas.
type Entry struct {
	ID      string
	Surface render.Surface
	Rect    subcanvas.Rect
	Props   subcanvas.Props
	Scene   *scene.Scene
	Camera  *scene.Camera
}

// Registry maps canvas ids to entries.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	builder Builder
	log     *slog.Logger
	live    prometheus.Gauge
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default is subcanvas.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithRegisterer registers the live-canvas gauge with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		r.live = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "subcanvas",
			Name:      "canvases",
			Help:      "Live virtual canvases.",
		})
	}
}

// New returns an empty registry building scenes with b.
func New(b Builder, opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*Entry),
		builder: b,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.live == nil {
		WithRegisterer(nil)(r)
	}
	return r
}

func (r *Registry) logger() *slog.Logger { return subcanvas.LoggerOr(r.log) }

// Add builds and registers canvas id. If id already exists nothing
// changes and the error wraps subcanvas.ErrDuplicateInit.
func (r *Registry) Add(id string, surface render.Surface, rect subcanvas.Rect, props subcanvas.Props, target eventproxy.InputTarget) error {
	r.mu.RLock()
	_, exists := r.entries[id]
	r.mu.RUnlock()
	if exists {
		r.logger().Warn("registry: canvas already initialized", "id", id)
		return fmt.Errorf("%w: %q", subcanvas.ErrDuplicateInit, id)
	}

	props = props.Normalized()
	scn, cam := r.builder.Build(id, props, target)
	e := &Entry{ID: id, Surface: surface, Rect: rect, Props: props, Scene: scn, Camera: cam}
	if surface != nil && (surface.Width() != rect.Width || surface.Height() != rect.Height) {
		surface.Resize(rect.Width, rect.Height)
	}

	r.mu.Lock()
	r.entries[id] = e
	n := len(r.entries)
	r.mu.Unlock()

	r.live.Set(float64(n))
	r.logger().Debug("registry: canvas added", "id", id, "rect", rect)
	return nil
}

// Move updates the rectangle of id and resizes its output surface to
// match. The shared back-buffer is not touched.
func (r *Registry) Move(id string, rect subcanvas.Rect) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		e.Rect = rect
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: move %q", subcanvas.ErrUnknownCanvas, id)
	}
	if e.Surface != nil {
		e.Surface.Resize(rect.Width, rect.Height)
	}
	return nil
}

// UpdateProps stores props for id and dispatches a scene.PropsEvent
// through its scene.
func (r *Registry) UpdateProps(id string, props subcanvas.Props) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	var prev subcanvas.Props
	if ok {
		prev = e.Props
		e.Props = props.Normalized()
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: updateProps %q", subcanvas.ErrUnknownCanvas, id)
	}
	e.Scene.Dispatch(scene.PropsEvent{Props: e.Props, Previous: &prev})
	return nil
}

// Remove dispatches a scene.DestroyEvent to id's scene and forgets it.
// It reports whether id existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	n := len(r.entries)
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.Scene.Dispatch(scene.DestroyEvent{})
	r.live.Set(float64(n))
	r.logger().Debug("registry: canvas removed", "id", id)
	return true
}

// Get returns a copy of the entry for id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// List returns copies of all entries sorted by id.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live canvases.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Broadcast dispatches ev through every live scene.
func (r *Registry) Broadcast(ev scene.Event) {
	for _, e := range r.List() {
		e.Scene.Dispatch(ev)
	}
}
