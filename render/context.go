// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Context is the single drawing context shared by every virtual canvas.
//
// It owns one color buffer (the back-buffer) and a matching depth buffer.
// Like WebGL, SetScissor and SetViewport use bottom-up coordinates with
// the origin at the lower-left corner of the buffer.
type Context struct {
	handle DeviceHandle
	format gputypes.TextureFormat

	color *PixmapTarget
	depth []float32

	scissorTest bool
	scissor     image.Rectangle // top-down, unclipped
	viewport    image.Rectangle // top-down, unclipped
}

// NewContext creates a context with a width x height back-buffer.
// A nil handle is treated as NullDeviceHandle.
func NewContext(handle DeviceHandle, width, height int) *Context {
	if handle == nil {
		handle = NullDeviceHandle{}
	}
	c := &Context{
		handle: handle,
		format: preferredFormat(handle),
		color:  NewPixmapTarget(width, height),
	}
	c.reset()
	return c
}

func (c *Context) reset() {
	w, h := c.color.Width(), c.color.Height()
	c.depth = make([]float32, w*h)
	for i := range c.depth {
		c.depth[i] = 1
	}
	c.scissor = image.Rect(0, 0, w, h)
	c.viewport = image.Rect(0, 0, w, h)
}

// Device returns the handle the context was created with.
func (c *Context) Device() DeviceHandle { return c.handle }

// Format returns the surface format requested by the device handle.
func (c *Context) Format() gputypes.TextureFormat { return c.format }

// Width returns the back-buffer width.
func (c *Context) Width() int { return c.color.Width() }

// Height returns the back-buffer height.
func (c *Context) Height() int { return c.color.Height() }

// Image returns the back-buffer pixels.
func (c *Context) Image() *image.RGBA { return c.color.Image() }

// Target returns the back-buffer as a render target.
func (c *Context) Target() *PixmapTarget { return c.color }

// Resize reallocates the back-buffer. Contents are lost and the scissor
// and viewport reset to the full buffer.
func (c *Context) Resize(width, height int) {
	c.color.Resize(width, height)
	c.reset()
}

// SetScissorTest enables or disables scissor clipping.
func (c *Context) SetScissorTest(enabled bool) { c.scissorTest = enabled }

// SetScissor sets the scissor rectangle in bottom-up coordinates.
func (c *Context) SetScissor(x, y, width, height int) {
	c.scissor = TopDown(x, y, width, height, c.Height())
}

// SetViewport sets the viewport rectangle in bottom-up coordinates.
func (c *Context) SetViewport(x, y, width, height int) {
	c.viewport = TopDown(x, y, width, height, c.Height())
}

// Viewport returns the viewport in top-down image coordinates.
func (c *Context) Viewport() image.Rectangle { return c.viewport }

// Scissor returns the scissor rectangle in top-down image coordinates.
func (c *Context) Scissor() image.Rectangle { return c.scissor }

// clip returns the region writes are allowed to touch.
func (c *Context) clip() image.Rectangle {
	r := c.color.Image().Bounds()
	if c.scissorTest {
		r = r.Intersect(c.scissor)
	}
	return r
}

// Clear fills the writable region with col and resets its depth.
func (c *Context) Clear(col color.RGBA) {
	r := c.clip()
	if r.Empty() {
		return
	}
	draw.Draw(c.color.Image(), r, image.NewUniform(col), image.Point{}, draw.Src)
	w := c.Width()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.depth[y*w+r.Min.X : y*w+r.Max.X]
		for i := range row {
			row[i] = 1
		}
	}
}

// BottomUp converts a top-down rectangle to the bottom-up x, y, width,
// height expected by SetScissor and SetViewport: y' = H - (y + h).
func BottomUp(r image.Rectangle, bufferHeight int) (x, y, width, height int) {
	return r.Min.X, bufferHeight - r.Max.Y, r.Dx(), r.Dy()
}

// TopDown is the inverse of BottomUp.
func TopDown(x, y, width, height, bufferHeight int) image.Rectangle {
	return image.Rect(x, bufferHeight-(y+height), x+width, bufferHeight-y)
}

// depthAt returns a pointer to the depth sample at (x, y).
func (c *Context) depthAt(x, y int) *float32 {
	return &c.depth[y*c.Width()+x]
}
