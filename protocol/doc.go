// Package protocol defines the messages exchanged between the control
// side and the worker, and a JSON encoding for them.
//
// Inbound messages (Init, Move, UpdateProps, Interaction, UpdateTexture,
// Destroy, WindowInfo) drive the worker; outbound messages (CanvasReady,
// ShirtReady, DecalReady) report readiness back. Resources that change
// hands, the output surface of an Init and the bitmap of an
// UpdateTexture, travel as Owned values: the receiver takes them once and
// the sender can no longer use them.
package protocol
