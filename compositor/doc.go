// Package compositor draws every virtual canvas through one shared
// context.
//
// The Scheduler is driven by a frame callback (Frame). It accumulates
// elapsed time and, once a full interval has passed, ticks every scene,
// renders each canvas with the scissor and viewport set to its rectangle
// (converted to the bottom-up convention of the context) and finally
// copies each rectangle, clipped to the back-buffer, to the canvas's own
// surface.
package compositor
