// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/subcanvas/scene"

// Renderer draws a scene into the current viewport of a Context.
//
// Render first clears the writable region (the scissor rectangle when the
// scissor test is on) to the scene background, then draws every visible
// mesh. Pixels outside that region are never written, which is what lets
// many canvases share one back-buffer.
//
// Thread Safety: Renderers are NOT thread-safe. Each renderer should be used
// from a single goroutine, or external synchronization must be used.
type Renderer interface {
	// Render draws scn as seen through cam.
	Render(ctx *Context, scn *scene.Scene, cam *scene.Camera) error

	// Flush ensures all pending rendering operations are complete.
	Flush() error
}

// RendererCapabilities describes the features supported by a renderer.
type RendererCapabilities struct {
	// IsGPU indicates if this is a GPU-accelerated renderer.
	IsGPU bool

	// SupportsTextures indicates if texture sampling is supported.
	SupportsTextures bool

	// SupportsDepth indicates if a depth buffer is used.
	SupportsDepth bool
}

// CapableRenderer is an optional interface for renderers that can
// report their capabilities.
type CapableRenderer interface {
	Renderer

	// Capabilities returns the renderer's capabilities.
	Capabilities() RendererCapabilities
}
