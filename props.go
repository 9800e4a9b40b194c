package subcanvas

import "image"

// Props are the per-canvas rendering properties sent by the control side
// with init and updateProps.
type Props struct {
	// Motif is the URL of an image printed onto the subject.
	Motif string `json:"motif,omitempty" yaml:"motif,omitempty"`
	// Color is the subject color, either a hex string or a CSS color name.
	Color string `json:"color" yaml:"color"`
	// WobbleRange is how far the camera sways, in radians.
	WobbleRange float32 `json:"wobbleRange,omitempty" yaml:"wobbleRange,omitempty"`
	// WobbleSpeed is how fast the camera sways, in radians per second.
	WobbleSpeed float32 `json:"wobbleSpeed,omitempty" yaml:"wobbleSpeed,omitempty"`
	// Disabled turns off pointer interaction.
	Disabled bool `json:"disabled" yaml:"disabled"`
	// DecalScale scales the decal size.
	DecalScale float32 `json:"decalScale" yaml:"decalScale"`
	// DecalBaseline shifts the decal vertically.
	DecalBaseline float32 `json:"decalBaseline" yaml:"decalBaseline"`
}

// DefaultProps returns the props used when the control side leaves
// fields unset.
func DefaultProps() Props {
	return Props{
		Color:      "#202020",
		DecalScale: 1,
	}
}

// Normalized fills zero-valued fields that have non-zero defaults.
func (p Props) Normalized() Props {
	if p.Color == "" {
		p.Color = "#202020"
	}
	if p.DecalScale == 0 {
		p.DecalScale = 1
	}
	return p
}

// Rect is a rectangle in physical pixels of the shared back-buffer,
// measured from its top-left corner.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Aspect returns width/height, or 1 for an empty rectangle.
func (r Rect) Aspect() float32 {
	if r.Height <= 0 || r.Width <= 0 {
		return 1
	}
	return float32(r.Width) / float32(r.Height)
}
