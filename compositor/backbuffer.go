package compositor

import (
	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/render"
)

// BackBuffer is the single physical drawing surface every canvas is
// rendered into. The context behind it is created on first use.
type BackBuffer struct {
	device        render.DeviceHandle
	width, height int
	ctx           *render.Context
}

// NewBackBuffer returns a back-buffer of the default canvas size that
// will draw through device.
func NewBackBuffer(device render.DeviceHandle) *BackBuffer {
	return &BackBuffer{
		device: device,
		width:  subcanvas.DefaultWindowWidth,
		height: subcanvas.DefaultWindowHeight,
	}
}

// Context returns the drawing context, creating it if needed.
func (b *BackBuffer) Context() *render.Context {
	if b.ctx == nil {
		b.ctx = render.NewContext(b.device, b.width, b.height)
	}
	return b.ctx
}

// Created reports whether the context exists yet.
func (b *BackBuffer) Created() bool { return b.ctx != nil }

// Size returns the current (or pending) size.
func (b *BackBuffer) Size() (width, height int) { return b.width, b.height }

// Resize sets the size, creating the context if it does not exist. The
// buffer is only reallocated when the size actually changes; Resize
// reports whether that happened.
func (b *BackBuffer) Resize(width, height int) bool {
	if b.ctx == nil {
		b.width, b.height = width, height
		b.Context()
		return false
	}
	if b.width == width && b.height == height {
		return false
	}
	b.width, b.height = width, height
	b.ctx.Resize(width, height)
	return true
}
