package texcache

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/subcanvas"
)

// Opener returns the encoded bytes behind a URL.
type Opener func(ctx context.Context, rawURL string) (io.ReadCloser, error)

// FileOpener opens plain paths and file:// URLs from the local file
// system.
func FileOpener(_ context.Context, rawURL string) (io.ReadCloser, error) {
	path := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("texcache: parse %q: %w", rawURL, err)
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texcache: open %q: %w", rawURL, err)
	}
	return f, nil
}

// DecodeLoader is a Loader that opens a URL and decodes PNG, JPEG, GIF,
// BMP, TIFF or WebP data.
type DecodeLoader struct {
	// Open defaults to FileOpener.
	Open Opener
}

// Load implements Loader. Decode errors wrap subcanvas.ErrDecodeFailure.
func (l DecodeLoader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	open := l.Open
	if open == nil {
		open = FileOpener
	}
	rc, err := open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, format, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", subcanvas.ErrDecodeFailure, rawURL, err)
	}
	subcanvas.Logger().Debug("texcache: decoded", "url", rawURL, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return ToRGBA(img), nil
}

// ToRGBA returns img as an *image.RGBA with its origin at (0, 0),
// converting when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
