package scene

import (
	"image"
	"image/color"

	"cogentcore.org/core/math32"
)

// Material decides the color of a mesh surface.
type Material interface {
	// Sample returns the unlit surface color at texture coordinate uv.
	Sample(uv math32.Vector2) color.RGBA
	// Lit reports whether lights modulate the sampled color.
	Lit() bool
	// Transparent reports whether the material blends and skips depth writes.
	Transparent() bool
	// Listeners returns the material's event listeners.
	Listeners() *Listeners
}

// MaterialBase carries the listeners every material has.
type MaterialBase struct {
	listeners Listeners
}

// Listeners returns the material's event listeners.
func (m *MaterialBase) Listeners() *Listeners { return &m.listeners }

// StandardMaterial is a lit, uniformly colored material.
type StandardMaterial struct {
	MaterialBase
	Color color.RGBA
}

// NewStandardMaterial returns a lit material of color c.
func NewStandardMaterial(c color.RGBA) *StandardMaterial {
	return &StandardMaterial{Color: c}
}

// Sample returns the material color.
func (m *StandardMaterial) Sample(math32.Vector2) color.RGBA { return m.Color }

// Lit reports true.
func (m *StandardMaterial) Lit() bool { return true }

// Transparent reports false.
func (m *StandardMaterial) Transparent() bool { return false }

// BasicMaterial is an unlit, uniformly colored material.
type BasicMaterial struct {
	MaterialBase
	Color color.RGBA
}

// Sample returns the material color.
func (m *BasicMaterial) Sample(math32.Vector2) color.RGBA { return m.Color }

// Lit reports false.
func (m *BasicMaterial) Lit() bool { return false }

// Transparent reports whether the color is not opaque.
func (m *BasicMaterial) Transparent() bool { return m.Color.A < 0xff }

// TextureMaterial samples a decoded bitmap. It is transparent so that the
// bitmap's alpha shows the surface underneath.
type TextureMaterial struct {
	MaterialBase
	Image *image.RGBA
}

// NewTextureMaterial returns a material sampling img.
func NewTextureMaterial(img *image.RGBA) *TextureMaterial {
	return &TextureMaterial{Image: img}
}

// Sample does nearest-neighbour lookup; v = 0 is the top row.
func (m *TextureMaterial) Sample(uv math32.Vector2) color.RGBA {
	if m.Image == nil {
		return color.RGBA{}
	}
	b := m.Image.Bounds()
	x := b.Min.X + clampi(int(uv.X*float32(b.Dx())), 0, b.Dx()-1)
	y := b.Min.Y + clampi(int(uv.Y*float32(b.Dy())), 0, b.Dy()-1)
	return m.Image.RGBAAt(x, y)
}

// Lit reports true.
func (m *TextureMaterial) Lit() bool { return true }

// Transparent reports true.
func (m *TextureMaterial) Transparent() bool { return true }

// PlaceholderMaterial shows rotating stripes while a texture is loading
// or after it failed. The stripes advance on every tick.
type PlaceholderMaterial struct {
	MaterialBase
	Color color.RGBA
	Angle float32
}

// NewPlaceholderMaterial returns a placeholder of color c whose stripes
// rotate with elapsed time.
func NewPlaceholderMaterial(c color.RGBA) *PlaceholderMaterial {
	m := &PlaceholderMaterial{Color: c}
	m.listeners.On(EventTick, func(ev Event) {
		m.Angle += ev.(TickEvent).Delta
	})
	return m
}

// Sample draws diagonal stripes turned by Angle, alternating Color and
// Color at half brightness.
func (m *PlaceholderMaterial) Sample(uv math32.Vector2) color.RGBA {
	u, v := uv.X-0.5, uv.Y-0.5
	c, s := math32.Cos(m.Angle), math32.Sin(m.Angle)
	if math32.Sin((u*c+v*s)*6*math32.Pi) >= 0 {
		return m.Color
	}
	return color.RGBA{R: m.Color.R / 2, G: m.Color.G / 2, B: m.Color.B / 2, A: m.Color.A}
}

// Lit reports true.
func (m *PlaceholderMaterial) Lit() bool { return true }

// Transparent reports whether the color is not opaque.
func (m *PlaceholderMaterial) Transparent() bool { return m.Color.A < 0xff }

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	_ Material = (*StandardMaterial)(nil)
	_ Material = (*BasicMaterial)(nil)
	_ Material = (*TextureMaterial)(nil)
	_ Material = (*PlaceholderMaterial)(nil)
)
