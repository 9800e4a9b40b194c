// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the shared drawing context used by the
// compositor and the output surfaces it copies into.
//
// # Core Types
//
//   - DeviceHandle: device access handed in by the host (NullDeviceHandle for CPU)
//   - RenderTarget: where pixels live (PixmapTarget is the CPU-backed one)
//   - Surface: a resizable RenderTarget used as a per-canvas output
//   - Context: a GL-style context with a scissor rectangle, a viewport and a
//     depth buffer, addressed bottom-up like WebGL
//   - Renderer: draws a scene through a camera into the current viewport
//   - Backends: named renderer implementations picked by priority and
//     device availability (the software renderer is always registered)
//
// # Coordinates
//
// Canvas rectangles are top-down (y grows downward). SetScissor and
// SetViewport take bottom-up coordinates; convert with BottomUp:
//
//	x, y, w, h := render.BottomUp(rect, ctx.Height())
//	ctx.SetScissor(x, y, w, h)
//	ctx.SetViewport(x, y, w, h)
//	renderer.Render(ctx, scn, cam)
//	render.Blit(surface, ctx.Image(), rect)
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. The compositor owns
// the context from a single goroutine.
package render
