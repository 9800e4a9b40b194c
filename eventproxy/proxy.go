package eventproxy

import "sync"

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

// Listener receives dispatched events.
type Listener func(*Event)

// InputTarget is what interaction code (camera controls and the like)
// attaches to. A Proxy satisfies it for a canvas whose real element
// lives on the control side.
type InputTarget interface {
	BoundingClientRect() Rect
	ClientWidth() float64
	ClientHeight() float64
	AddEventListener(typ string, fn Listener) ListenerID
	RemoveEventListener(typ string, id ListenerID)
	DispatchEvent(ev *Event)
	Focus()
	ReleasePointerCapture(pointerID int)
}

type entry struct {
	id ListenerID
	fn Listener
}

// Proxy stands in for a control-side element. It stores the last known
// geometry and dispatches relayed events to its listeners.
type Proxy struct {
	mu        sync.Mutex
	rect      Rect
	next      ListenerID
	listeners map[string][]entry
}

// NewProxy returns a proxy with zero geometry.
func NewProxy() *Proxy {
	return &Proxy{listeners: make(map[string][]entry)}
}

// HandleEvent applies a relayed event. A SizeEvent updates the stored
// geometry and is not dispatched; any other event is.
func (p *Proxy) HandleEvent(ev Event) {
	if ev.Type == SizeEvent {
		p.SetRect(Rect{Left: ev.Left, Top: ev.Top, Width: ev.Width, Height: ev.Height})
		return
	}
	p.DispatchEvent(&ev)
}

// SetRect replaces the stored geometry.
func (p *Proxy) SetRect(r Rect) {
	p.mu.Lock()
	p.rect = r
	p.mu.Unlock()
}

// SetSize updates width and height, keeping the position.
func (p *Proxy) SetSize(width, height float64) {
	p.mu.Lock()
	p.rect.Width, p.rect.Height = width, height
	p.mu.Unlock()
}

// BoundingClientRect returns the last rect set by SetRect or SetSize.
func (p *Proxy) BoundingClientRect() Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rect
}

// ClientWidth returns the rect width.
func (p *Proxy) ClientWidth() float64 { return p.BoundingClientRect().Width }

// ClientHeight returns the rect height.
func (p *Proxy) ClientHeight() float64 { return p.BoundingClientRect().Height }

// AddEventListener registers fn for typ. Use AnyEvent to receive every
// dispatched event after the type-specific listeners ran.
func (p *Proxy) AddEventListener(typ string, fn Listener) ListenerID {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	p.listeners[typ] = append(p.listeners[typ], entry{id: p.next, fn: fn})
	return p.next
}

// RemoveEventListener removes a listener. Unknown ids are ignored.
func (p *Proxy) RemoveEventListener(typ string, id ListenerID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := p.listeners[typ]
	for i, e := range list {
		if e.id == id {
			p.listeners[typ] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// DispatchEvent calls the listeners for ev.Type in registration order,
// then the AnyEvent listeners. Listeners run without the lock held, so
// they may add or remove listeners.
func (p *Proxy) DispatchEvent(ev *Event) {
	p.mu.Lock()
	calls := make([]entry, 0, len(p.listeners[ev.Type])+len(p.listeners[AnyEvent]))
	calls = append(calls, p.listeners[ev.Type]...)
	if ev.Type != AnyEvent {
		calls = append(calls, p.listeners[AnyEvent]...)
	}
	p.mu.Unlock()

	for _, e := range calls {
		e.fn(ev)
	}
}

// Len returns the number of listeners registered for typ.
func (p *Proxy) Len(typ string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners[typ])
}

// Focus is a no-op; the proxy has no focus state.
func (p *Proxy) Focus() {}

// ReleasePointerCapture is a no-op; pointer capture stays with the host
// element.
func (p *Proxy) ReleasePointerCapture(int) {}

var _ InputTarget = (*Proxy)(nil)
