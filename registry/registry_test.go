package registry

import (
	"errors"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/eventproxy"
	"github.com/gogpu/subcanvas/render"
	"github.com/gogpu/subcanvas/scene"
	"github.com/gogpu/subcanvas/shirt"
	"github.com/gogpu/subcanvas/texcache"
)

type countingBuilder struct {
	builds int
}

func (b *countingBuilder) Build(id string, _ subcanvas.Props, _ eventproxy.InputTarget) (*scene.Scene, *scene.Camera) {
	b.builds++
	scn := scene.New()
	scn.Add(scene.NewNode(id))
	return scn, scene.NewCamera(75, 2, 0.1, 100, math32.Vec3(0, 0, 4))
}

func rect(x, y, w, h int) subcanvas.Rect {
	return subcanvas.Rect{X: x, Y: y, Width: w, Height: h}
}

func TestAddDuplicate(t *testing.T) {
	b := &countingBuilder{}
	r := New(b)

	if err := r.Add("a", render.NewPixmapTarget(1, 1), rect(0, 0, 10, 10), subcanvas.DefaultProps(), nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	first, _ := r.Get("a")

	err := r.Add("a", render.NewPixmapTarget(5, 5), rect(5, 5, 20, 20), subcanvas.DefaultProps(), nil)
	if !errors.Is(err, subcanvas.ErrDuplicateInit) {
		t.Errorf("duplicate Add() error = %v, want ErrDuplicateInit", err)
	}
	if b.builds != 1 {
		t.Errorf("builds = %d, want 1", b.builds)
	}
	got, _ := r.Get("a")
	if got.Rect != first.Rect || got.Scene != first.Scene || got.Surface != first.Surface {
		t.Error("duplicate Add() changed the entry")
	}
}

func TestAddResizesSurface(t *testing.T) {
	r := New(&countingBuilder{})
	s := render.NewPixmapTarget(1, 1)
	if err := r.Add("a", s, rect(0, 0, 30, 20), subcanvas.DefaultProps(), nil); err != nil {
		t.Fatal(err)
	}
	if s.Width() != 30 || s.Height() != 20 {
		t.Errorf("surface = %dx%d, want 30x20", s.Width(), s.Height())
	}
}

func TestMove(t *testing.T) {
	r := New(&countingBuilder{})
	s := render.NewPixmapTarget(10, 10)
	_ = r.Add("a", s, rect(0, 0, 10, 10), subcanvas.DefaultProps(), nil)

	if err := r.Move("a", rect(50, 60, 40, 30)); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	e, _ := r.Get("a")
	if e.Rect != rect(50, 60, 40, 30) {
		t.Errorf("Rect = %+v, want (50,60,40,30)", e.Rect)
	}
	if s.Width() != 40 || s.Height() != 30 {
		t.Errorf("surface = %dx%d, want 40x30", s.Width(), s.Height())
	}

	if err := r.Move("missing", rect(0, 0, 1, 1)); !errors.Is(err, subcanvas.ErrUnknownCanvas) {
		t.Errorf("Move(missing) error = %v, want ErrUnknownCanvas", err)
	}
}

func TestUpdatePropsDispatches(t *testing.T) {
	r := New(&countingBuilder{})
	_ = r.Add("a", nil, rect(0, 0, 1, 1), subcanvas.DefaultProps(), nil)
	e, _ := r.Get("a")

	var got scene.PropsEvent
	e.Scene.Find("a").On(scene.EventUpdateProps, func(ev scene.Event) { got = ev.(scene.PropsEvent) })

	p := subcanvas.DefaultProps()
	p.Motif = "m.png"
	if err := r.UpdateProps("a", p); err != nil {
		t.Fatalf("UpdateProps() error = %v", err)
	}
	if got.Props.Motif != "m.png" {
		t.Errorf("dispatched props = %+v", got.Props)
	}
	if got.Previous == nil || got.Previous.Motif != "" {
		t.Errorf("Previous = %+v, want the old props", got.Previous)
	}
	if err := r.UpdateProps("missing", p); !errors.Is(err, subcanvas.ErrUnknownCanvas) {
		t.Errorf("UpdateProps(missing) error = %v, want ErrUnknownCanvas", err)
	}
}

func TestRemove(t *testing.T) {
	r := New(&countingBuilder{})
	_ = r.Add("a", nil, rect(0, 0, 1, 1), subcanvas.DefaultProps(), nil)
	e, _ := r.Get("a")
	destroyed := 0
	e.Scene.Root.On(scene.EventDestroy, func(scene.Event) { destroyed++ })

	if !r.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if r.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if destroyed != 1 {
		t.Errorf("destroy dispatched %d times, want 1", destroyed)
	}
	if _, ok := r.Get("a"); ok || r.Len() != 0 {
		t.Error("entry still present after Remove")
	}
}

func TestListSorted(t *testing.T) {
	r := New(&countingBuilder{})
	for _, id := range []string{"c", "a", "b"} {
		_ = r.Add(id, nil, rect(0, 0, 1, 1), subcanvas.DefaultProps(), nil)
	}
	list := r.List()
	if len(list) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(list))
	}
	for i, want := range []string{"a", "b", "c"} {
		if list[i].ID != want {
			t.Errorf("List()[%d].ID = %q, want %q", i, list[i].ID, want)
		}
	}
}

func TestBroadcastReachesLiveScenesOnly(t *testing.T) {
	r := New(&countingBuilder{})
	hits := map[string]int{}
	for _, id := range []string{"a", "b"} {
		_ = r.Add(id, nil, rect(0, 0, 1, 1), subcanvas.DefaultProps(), nil)
		e, _ := r.Get(id)
		id := id
		e.Scene.Root.On(scene.EventLoadedTexture, func(scene.Event) { hits[id]++ })
	}
	r.Remove("b")
	r.Broadcast(scene.TextureEvent{URL: "x", Status: scene.TextureSuccess})
	if hits["a"] != 1 || hits["b"] != 0 {
		t.Errorf("hits = %v, want a=1 b=0", hits)
	}
}

func TestLiveGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(&countingBuilder{}, WithRegisterer(reg))
	_ = r.Add("a", nil, rect(0, 0, 1, 1), subcanvas.DefaultProps(), nil)
	_ = r.Add("b", nil, rect(0, 0, 1, 1), subcanvas.DefaultProps(), nil)
	if got := testutil.ToFloat64(r.live); got != 2 {
		t.Errorf("canvases = %v, want 2", got)
	}
	r.Remove("a")
	if got := testutil.ToFloat64(r.live); got != 1 {
		t.Errorf("canvases = %v, want 1", got)
	}
}

func TestDuplicateInitKeepsSceneNodeCount(t *testing.T) {
	cache := texcache.New()
	r := New(shirt.NewFactory(cache, nil, nil))
	cache.SetBroadcaster(r)

	if err := r.Add("a", render.NewPixmapTarget(1, 1), rect(0, 0, 100, 100), subcanvas.DefaultProps(), eventproxy.NewProxy()); err != nil {
		t.Fatal(err)
	}
	e, _ := r.Get("a")
	nodes := e.Scene.NodeCount()

	_ = r.Add("a", render.NewPixmapTarget(1, 1), rect(0, 0, 100, 100), subcanvas.DefaultProps(), eventproxy.NewProxy())
	if got := e.Scene.NodeCount(); got != nodes {
		t.Errorf("NodeCount() = %d after duplicate init, want %d", got, nodes)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}
