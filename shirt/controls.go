package shirt

import (
	"cogentcore.org/core/math32"

	"github.com/gogpu/subcanvas/eventproxy"
	"github.com/gogpu/subcanvas/scene"
)

const (
	minPolar = 0.1
	maxPolar = math32.Pi - 0.1
)

// Controls orbits a camera around the origin. Dragging on the input
// target rotates it; WobbleRange and WobbleSpeed sway it from side to
// side over time.
type Controls struct {
	Camera *scene.Camera

	Disabled    bool
	WobbleRange float32
	WobbleSpeed float32

	radius   float32
	azimuth  float32
	polar    float32
	dragging bool
	lastX    float64
	lastY    float64

	target eventproxy.InputTarget
	ids    map[string]eventproxy.ListenerID
}

// NewControls returns controls for cam, keeping its current distance to
// the origin.
func NewControls(cam *scene.Camera) *Controls {
	r := cam.Position.Length()
	if r == 0 {
		r = 1
	}
	return &Controls{
		Camera:  cam,
		radius:  r,
		azimuth: math32.Atan2(cam.Position.X, cam.Position.Z),
		polar:   math32.Acos(cam.Position.Y / r),
	}
}

// Attach starts listening for pointer events on target.
func (c *Controls) Attach(target eventproxy.InputTarget) {
	if target == nil {
		return
	}
	c.Detach()
	c.target = target
	c.ids = map[string]eventproxy.ListenerID{
		"pointerdown":   target.AddEventListener("pointerdown", c.onDown),
		"pointermove":   target.AddEventListener("pointermove", c.onMove),
		"pointerup":     target.AddEventListener("pointerup", c.onUp),
		"pointercancel": target.AddEventListener("pointercancel", c.onUp),
	}
}

// Detach removes the listeners added by Attach.
func (c *Controls) Detach() {
	if c.target == nil {
		return
	}
	for typ, id := range c.ids {
		c.target.RemoveEventListener(typ, id)
	}
	c.target, c.ids = nil, nil
	c.dragging = false
}

func (c *Controls) onDown(ev *eventproxy.Event) {
	if c.Disabled {
		return
	}
	c.dragging = true
	c.lastX, c.lastY = ev.ClientX, ev.ClientY
	c.target.Focus()
}

func (c *Controls) onMove(ev *eventproxy.Event) {
	if !c.dragging || c.Disabled {
		return
	}
	h := float32(c.target.ClientHeight())
	if h <= 0 {
		h = 1
	}
	dx := float32(ev.ClientX - c.lastX)
	dy := float32(ev.ClientY - c.lastY)
	c.lastX, c.lastY = ev.ClientX, ev.ClientY

	c.azimuth -= 2 * math32.Pi * dx / h
	c.polar -= 2 * math32.Pi * dy / h
	c.polar = min(max(c.polar, minPolar), maxPolar)
}

func (c *Controls) onUp(ev *eventproxy.Event) {
	if c.dragging {
		c.target.ReleasePointerCapture(ev.PointerID)
	}
	c.dragging = false
}

// Update places the camera for elapsed time total, in seconds.
func (c *Controls) Update(total float32) {
	az := c.azimuth
	if c.WobbleRange != 0 && c.WobbleSpeed != 0 {
		az += c.WobbleRange * math32.Sin(total*c.WobbleSpeed)
	}
	sp := math32.Sin(c.polar)
	c.Camera.Position = math32.Vec3(
		c.radius*sp*math32.Sin(az),
		c.radius*math32.Cos(c.polar),
		c.radius*sp*math32.Cos(az),
	)
	c.Camera.Target = math32.Vector3{}
}

// Azimuth returns the drag rotation around the vertical axis.
func (c *Controls) Azimuth() float32 { return c.azimuth }
