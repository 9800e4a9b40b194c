package protocol

import "sync/atomic"

// Owned is a value whose ownership moves with a message. Copies of an
// Owned share one slot: the first Take wins and every later Take, on any
// copy, gets the zero value.
type Owned[T any] struct {
	slot *slot[T]
}

type slot[T any] struct {
	taken atomic.Bool
	v     T
}

// Own wraps v for transfer.
func Own[T any](v T) Owned[T] {
	return Owned[T]{slot: &slot[T]{v: v}}
}

// Take returns the value and invalidates the handle. It reports false if
// the value was already taken or the handle is empty.
func (o Owned[T]) Take() (T, bool) {
	var zero T
	if o.slot == nil || !o.slot.taken.CompareAndSwap(false, true) {
		return zero, false
	}
	v := o.slot.v
	o.slot.v = zero
	return v, true
}

// Valid reports whether the value is still available.
func (o Owned[T]) Valid() bool {
	return o.slot != nil && !o.slot.taken.Load()
}
