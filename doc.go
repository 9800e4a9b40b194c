// Package subcanvas composites many independent virtual canvases through one
// shared rendering context.
//
// # Overview
//
// A single worker goroutine owns one rendering context and one physical
// back-buffer sized to the visible window. Virtual canvases are created,
// moved, updated and destroyed through messages from a control side. Each
// canvas has its own scene, camera and input proxy; on every throttled tick
// the worker renders each scene into its rectangle of the back-buffer and
// copies that rectangle out to the canvas's own output surface.
//
// # Packages
//
// The module is organized into:
//   - subcanvas: shared vocabulary (Props, Rect), errors, logging, Config
//   - protocol: inbound/outbound messages, ownership transfer, JSON codec
//   - texcache: per-URL texture decode cache with subscriber fan-out
//   - eventproxy: synthetic input targets fed by relayed events
//   - scene: node tree with a per-scene event bus, camera and materials
//   - shirt: the scene factory for the rendered subject
//   - registry: the table of live virtual canvases
//   - render: render targets, device handle and the software context
//   - compositor: back-buffer ownership and the throttled scheduler
//   - dispatch: routes inbound messages to the components above
//   - worker: the worker event loop
//   - control: the control-side host that drives the worker
//
// # Coordinate System
//
// Canvas rectangles use window coordinates:
//   - Origin (0,0) at top-left of the back-buffer
//   - X increases right
//   - Y increases down
//
// The render context follows GL conventions for scissor and viewport
// rectangles, whose Y axis points up from the bottom edge.
package subcanvas

// Version information
const (
	// Version is the current version of the module
	Version = "0.1.0"
)
