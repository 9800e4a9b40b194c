package control

// Readiness is the latest state reported by the worker for one canvas.
// It is level-triggered: each field holds the most recent value.
type Readiness struct {
	Canvas        bool
	Shirt         bool
	Decal         bool
	PreviousDecal bool
	DecalError    bool

	// Delay is true once the canvas's render delay has elapsed.
	Delay bool
}

// Cover decides when a canvas may be revealed.
type Cover struct {
	// Loading keeps the cover up until a motif (or a previous one) is
	// shown.
	Loading bool
	// MotifChange keeps the cover up while a new motif is loading, even
	// if an older one is still on screen.
	MotifChange bool
}

// Ready reports whether the cover can be removed.
func (r Readiness) Ready(c Cover) bool {
	return r.Shirt &&
		r.Canvas &&
		(r.Decal || r.PreviousDecal || !c.Loading) &&
		(r.Decal || !c.MotifChange) &&
		r.Delay
}
