package scene

import "github.com/gogpu/subcanvas"

// EventType names a structured scene event.
type EventType string

// Events broadcast through a scene.
const (
	EventTick          EventType = "tick"
	EventUpdateProps   EventType = "updateProps"
	EventDestroy       EventType = "destroy"
	EventLoadedTexture EventType = "loadedTexture"
)

// Event is a structured event pushed through every node of a scene.
type Event interface {
	Type() EventType
}

// TickEvent drives per-frame animation. Delta and Total are in seconds.
type TickEvent struct {
	Delta float32
	Total float32
}

func (TickEvent) Type() EventType { return EventTick }

// PropsEvent carries new props for the canvas. Previous is nil on the
// first application.
type PropsEvent struct {
	Props    subcanvas.Props
	Previous *subcanvas.Props
}

func (PropsEvent) Type() EventType { return EventUpdateProps }

// DestroyEvent tells nodes to release long-lived resources.
type DestroyEvent struct{}

func (DestroyEvent) Type() EventType { return EventDestroy }

// TextureStatus is the outcome of a texture resolution.
type TextureStatus string

const (
	TextureSuccess TextureStatus = "success"
	TextureError   TextureStatus = "error"
)

// TextureEvent announces that the texture for URL became available or
// failed.
type TextureEvent struct {
	URL    string
	Status TextureStatus
}

func (TextureEvent) Type() EventType { return EventLoadedTexture }

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

type listener struct {
	id ListenerID
	fn func(Event)
}

// Listeners registers lists of listener functions by event type.
// The zero value is ready to use.
type Listeners struct {
	next ListenerID
	m    map[EventType][]listener
}

// On adds fn for events of type typ.
func (ls *Listeners) On(typ EventType, fn func(Event)) ListenerID {
	if ls.m == nil {
		ls.m = make(map[EventType][]listener)
	}
	ls.next++
	ls.m[typ] = append(ls.m[typ], listener{id: ls.next, fn: fn})
	return ls.next
}

// Off removes the listener with the given id. Unknown ids are ignored.
func (ls *Listeners) Off(typ EventType, id ListenerID) {
	list := ls.m[typ]
	for i, l := range list {
		if l.id == id {
			ls.m[typ] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Call invokes every listener registered for ev's type, in registration
// order. Listeners added during the call are not invoked for ev.
func (ls *Listeners) Call(ev Event) {
	list := ls.m[ev.Type()]
	if len(list) == 0 {
		return
	}
	for _, l := range append([]listener(nil), list...) {
		l.fn(ev)
	}
}

// Len returns the number of listeners for typ.
func (ls *Listeners) Len(typ EventType) int { return len(ls.m[typ]) }
