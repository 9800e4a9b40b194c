package scene

import (
	"image"
	"image/color"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/gogpu/subcanvas"
)

func approx(a, b float32) bool { return math32.Abs(a-b) < 1e-4 }

func TestListenersOnOffCall(t *testing.T) {
	var ls Listeners
	var got []int
	id1 := ls.On(EventTick, func(Event) { got = append(got, 1) })
	ls.On(EventTick, func(Event) { got = append(got, 2) })
	ls.On(EventDestroy, func(Event) { got = append(got, 99) })

	ls.Call(TickEvent{Delta: 0.1})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Call(tick) order = %v, want [1 2]", got)
	}

	ls.Off(EventTick, id1)
	ls.Off(EventTick, 12345)
	got = nil
	ls.Call(TickEvent{})
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("after Off, Call(tick) = %v, want [2]", got)
	}
	if ls.Len(EventTick) != 1 {
		t.Errorf("Len(tick) = %d, want 1", ls.Len(EventTick))
	}
}

func TestListenersAddDuringCall(t *testing.T) {
	var ls Listeners
	calls := 0
	ls.On(EventTick, func(Event) {
		calls++
		ls.On(EventTick, func(Event) { calls += 10 })
	})
	ls.Call(TickEvent{})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEventTypes(t *testing.T) {
	tests := []struct {
		ev   Event
		want EventType
	}{
		{TickEvent{}, EventTick},
		{PropsEvent{Props: subcanvas.DefaultProps()}, EventUpdateProps},
		{DestroyEvent{}, EventDestroy},
		{TextureEvent{URL: "a.png", Status: TextureSuccess}, EventLoadedTexture},
	}
	for _, tt := range tests {
		if got := tt.ev.Type(); got != tt.want {
			t.Errorf("%T.Type() = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestSceneDispatchReachesNodesAndMaterials(t *testing.T) {
	s := New()
	parent := NewNode("group")
	mat := NewStandardMaterial(color.RGBA{A: 255})
	child := NewMesh("mesh", NewPlane(1, 1), mat)
	parent.Add(child)
	s.Add(parent)

	var order []string
	parent.On(EventDestroy, func(Event) { order = append(order, "group") })
	child.On(EventDestroy, func(Event) { order = append(order, "mesh") })
	mat.Listeners().On(EventDestroy, func(Event) { order = append(order, "material") })

	s.Dispatch(DestroyEvent{})
	want := []string{"group", "mesh", "material"}
	if len(order) != len(want) {
		t.Fatalf("Dispatch order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Dispatch order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestSceneFindAndCount(t *testing.T) {
	s := New()
	a := NewNode("a")
	b := NewNode("b")
	a.Add(b)
	s.Add(a)
	s.Add(NewNode("c"))

	if got := s.NodeCount(); got != 3 {
		t.Errorf("NodeCount() = %d, want 3", got)
	}
	if got := s.Find("b"); got != b {
		t.Errorf("Find(b) = %v, want %v", got, b)
	}
	if got := s.Find("missing"); got != nil {
		t.Errorf("Find(missing) = %v, want nil", got)
	}

	// Re-parenting detaches from the old parent.
	s.Root.Add(b)
	if len(a.Children()) != 0 {
		t.Errorf("a has %d children after re-parent, want 0", len(a.Children()))
	}
	if b.Parent() != s.Root {
		t.Error("b.Parent() is not root after re-parent")
	}
}

func TestNodeWorldTransform(t *testing.T) {
	parent := NewNode("p")
	parent.Position = math32.Vec3(1, 0, 0)
	child := NewNode("c")
	child.Position = math32.Vec3(0, 2, 0)
	parent.Add(child)

	w := child.World()
	p := math32.Vector3{}.MulMatrix4AsVector4(&w, 1)
	if !approx(p.X, 1) || !approx(p.Y, 2) || !approx(p.Z, 0) {
		t.Errorf("World origin = (%v,%v,%v), want (1,2,0)", p.X, p.Y, p.Z)
	}
}

func TestLights(t *testing.T) {
	s := New()
	n := NewNode("light")
	n.Light = NewDirectionalLight(color.RGBA{255, 255, 255, 255}, 1)
	n.Position = math32.Vec3(-1, 2, 4)
	s.Add(n)

	lights := s.Lights()
	if len(lights) != 1 {
		t.Fatalf("Lights() len = %d, want 1", len(lights))
	}
	d := lights[0].Direction()
	if !approx(d.Length(), 1) {
		t.Errorf("Direction length = %v, want 1", d.Length())
	}
	if d.X >= 0 || d.Y <= 0 || d.Z <= 0 {
		t.Errorf("Direction = %+v, want signs (-,+,+)", d)
	}
}

func TestCameraProjectsTargetToCenter(t *testing.T) {
	c := NewCamera(75, 2, 0.1, 100, math32.Vec3(0, 0, 4))
	vp := c.ViewProjection()
	p := math32.Vector4FromVector3(math32.Vector3{}, 1).MulMatrix4(&vp)
	if p.W <= 0 {
		t.Fatalf("w = %v, want > 0 for a point in front of the camera", p.W)
	}
	if !approx(p.X/p.W, 0) || !approx(p.Y/p.W, 0) {
		t.Errorf("origin NDC = (%v,%v), want (0,0)", p.X/p.W, p.Y/p.W)
	}
	z := p.Z / p.W
	if z <= -1 || z >= 1 {
		t.Errorf("origin NDC z = %v, want in (-1,1)", z)
	}
}

func TestCameraSetAspect(t *testing.T) {
	c := NewCamera(75, 1, 0.1, 100, math32.Vec3(0, 0, 4))
	before := c.Projection()
	c.SetAspect(1)
	if c.Projection() != before {
		t.Error("SetAspect(same) changed the projection")
	}
	c.SetAspect(2)
	if c.Projection()[0] == before[0] {
		t.Error("SetAspect(2) did not change the x scale")
	}
	if !approx(c.Projection()[0]*2, before[0]) {
		t.Errorf("x scale = %v, want %v", c.Projection()[0], before[0]/2)
	}
}

func TestNodeRotationQuarterTurn(t *testing.T) {
	n := NewNode("n")
	n.Rotation.Y = math32.Pi / 2
	w := n.World()
	p := math32.Vec3(1, 0, 0).MulMatrix4AsVector4(&w, 1)
	if !approx(p.X, 0) || !approx(p.Z, -1) {
		t.Errorf("rotate y by pi/2 of (1,0,0) = (%v,%v,%v), want (0,0,-1)", p.X, p.Y, p.Z)
	}
}

func TestNodeScaleAndParentTranslation(t *testing.T) {
	parent := NewNode("p")
	parent.Position = math32.Vec3(0, 0, -1)
	child := NewNode("c")
	child.Scale = math32.Vec3(2, 3, 1)
	parent.Add(child)

	w := child.World()
	p := math32.Vec3(1, 1, 0).MulMatrix4AsVector4(&w, 1)
	if !approx(p.X, 2) || !approx(p.Y, 3) || !approx(p.Z, -1) {
		t.Errorf("World(1,1,0) = (%v,%v,%v), want (2,3,-1)", p.X, p.Y, p.Z)
	}
}

func TestCameraViewMovesEyeToOrigin(t *testing.T) {
	c := NewCamera(75, 1, 0.1, 100, math32.Vec3(1, 2, 3))
	view := c.View()
	eye := c.Position.MulMatrix4AsVector4(&view, 1)
	if eye.Length() > 1e-4 {
		t.Errorf("eye in view space = %v, want origin", eye)
	}
	target := c.Target.MulMatrix4AsVector4(&view, 1)
	if target.Z >= 0 || !approx(target.X, 0) || !approx(target.Y, 0) {
		t.Errorf("target in view space = %v, want on the -z axis", target)
	}
}

func TestTextureMaterialSample(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(1, 1, color.RGBA{B: 255, A: 255})
	m := NewTextureMaterial(img)

	tests := []struct {
		uv   math32.Vector2
		want color.RGBA
	}{
		{math32.Vec2(0, 0), color.RGBA{R: 255, A: 255}},
		{math32.Vec2(0.99, 0.99), color.RGBA{B: 255, A: 255}},
		{math32.Vec2(1, 1), color.RGBA{B: 255, A: 255}},
		{math32.Vec2(-1, -1), color.RGBA{R: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := m.Sample(tt.uv); got != tt.want {
			t.Errorf("Sample(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
	if (&TextureMaterial{}).Sample(math32.Vector2{}) != (color.RGBA{}) {
		t.Error("Sample on nil image should be transparent")
	}
}

func TestPlaceholderRotatesOnTick(t *testing.T) {
	m := NewPlaceholderMaterial(color.RGBA{R: 200, G: 160, A: 255})
	s := New()
	s.Add(NewMesh("decal", NewPlane(1, 1), m))

	s.Dispatch(TickEvent{Delta: 0.25, Total: 0.25})
	s.Dispatch(TickEvent{Delta: 0.25, Total: 0.5})
	if !approx(m.Angle, 0.5) {
		t.Errorf("Angle = %v, want 0.5", m.Angle)
	}
}

func TestGeometryQuad(t *testing.T) {
	g := NewPlane(2, 1)
	if g.Triangles() != 2 {
		t.Errorf("Triangles() = %d, want 2", g.Triangles())
	}
	if got := g.Vertices[0].Position; got != math32.Vec3(-1, 0.5, 0) {
		t.Errorf("top-left = %v, want (-1,0.5,0)", got)
	}
	if got := g.Vertices[0].UV; got != math32.Vec2(0, 0) {
		t.Errorf("top-left uv = %v, want (0,0)", got)
	}
}
