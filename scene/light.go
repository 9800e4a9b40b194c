package scene

import (
	"image/color"

	"cogentcore.org/core/math32"
)

// DirectionalLight shines from its node's position toward the origin.
type DirectionalLight struct {
	Color     color.RGBA
	Intensity float32
}

// NewDirectionalLight returns a light of color c.
func NewDirectionalLight(c color.RGBA, intensity float32) *DirectionalLight {
	return &DirectionalLight{Color: c, Intensity: intensity}
}

// PlacedLight is a light resolved to world space.
type PlacedLight struct {
	Light    *DirectionalLight
	Position math32.Vector3
}

// Direction returns the unit vector pointing from the surface to the light.
func (p PlacedLight) Direction() math32.Vector3 {
	return p.Position.Normal()
}
