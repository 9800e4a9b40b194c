package subcanvas

import (
	"errors"
	"fmt"
)

// Error taxonomy. None of these are fatal: the dispatcher logs them and
// drops the offending operation.
var (
	// ErrUnknownCanvas is returned when an operation names an id that is
	// not present in the registry.
	ErrUnknownCanvas = errors.New("subcanvas: unknown canvas")

	// ErrDuplicateInit is returned when init names an id that is already
	// registered. The existing canvas is left untouched.
	ErrDuplicateInit = errors.New("subcanvas: canvas already initialized")

	// ErrDecodeFailure marks a texture whose decode was rejected. The
	// failure is cached for the lifetime of the process.
	ErrDecodeFailure = errors.New("subcanvas: texture decode failed")

	// ErrNotTransferred is returned when a message arrives without the
	// surface or bitmap it should carry, or with one already taken.
	ErrNotTransferred = errors.New("subcanvas: transferable missing")
)

// RenderFault reports a failure confined to a single canvas: one stage of
// a compositor tick, or one inbound message the worker applied.
type RenderFault struct {
	ID    string
	Stage string // "tick", "render", "blit" or an inbound message type
	Err   error
}

func (f *RenderFault) Error() string {
	return fmt.Sprintf("subcanvas: %s %q: %v", f.Stage, f.ID, f.Err)
}

func (f *RenderFault) Unwrap() error { return f.Err }
