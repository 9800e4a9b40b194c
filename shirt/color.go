package shirt

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Placeholder colors for the decal.
var (
	LoadingColor = colornames.Goldenrod
	ErrorColor   = colornames.Firebrick
)

// ParseColor parses "#rrggbb", "#rgb" or a CSS color name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("shirt: parse color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("shirt: unknown color %q", s)
}
