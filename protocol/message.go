package protocol

import (
	"image"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/eventproxy"
	"github.com/gogpu/subcanvas/render"
)

// Type is the wire discriminator of a message.
type Type string

// Inbound message types (control to worker).
const (
	TypeInit          Type = "init"
	TypeMove          Type = "move"
	TypeUpdateProps   Type = "updateProps"
	TypeInteraction   Type = "interaction"
	TypeUpdateTexture Type = "updateTexture"
	TypeDestroy       Type = "destroy"
	TypeWindowInfo    Type = "windowInfo"
)

// Outbound message types (worker to control).
const (
	TypeCanvasReady Type = "setCanvasReady"
	TypeShirtReady  Type = "setShirtReady"
	TypeDecalReady  Type = "setDecalReady"
)

// Message is any message crossing the worker boundary.
type Message interface {
	MessageType() Type
}

// Init creates a virtual canvas. Surface moves to the worker.
type Init struct {
	ID      string                `json:"canvasId"`
	Surface Owned[render.Surface] `json:"-"`
	X       int                   `json:"x"`
	Y       int                   `json:"y"`
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
	Props   subcanvas.Props       `json:"props"`
}

// Move repositions or resizes a canvas within the back-buffer.
type Move struct {
	ID     string `json:"canvasId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// UpdateProps replaces a canvas's props.
type UpdateProps struct {
	ID    string          `json:"canvasId"`
	Props subcanvas.Props `json:"props"`
}

// Interaction relays an input event for a canvas.
type Interaction struct {
	ID    string           `json:"canvasId"`
	Event eventproxy.Event `json:"event"`
}

// UpdateTexture hands a decoded bitmap for URL to the worker. Failed
// reports that the control side could not decode it.
type UpdateTexture struct {
	URL    string             `json:"url"`
	Bitmap Owned[image.Image] `json:"-"`
	Failed bool               `json:"failed,omitempty"`
}

// Destroy tears a canvas down.
type Destroy struct {
	ID string `json:"canvasId"`
}

// WindowInfo sizes the shared back-buffer.
type WindowInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CanvasReady is sent once a canvas has been initialised.
type CanvasReady struct {
	ID    string `json:"canvasId"`
	Value bool   `json:"value"`
}

// ShirtReady is sent once the subject mesh is in the scene.
type ShirtReady struct {
	ID    string `json:"canvasId"`
	Value bool   `json:"value"`
}

// DecalReady reports the motif state of a canvas. HasPrevious is true
// when a resolved texture was shown before the current motif.
type DecalReady struct {
	ID          string `json:"canvasId"`
	Value       bool   `json:"value"`
	Error       bool   `json:"error"`
	HasPrevious bool   `json:"hasPrevious"`
}

func (Init) MessageType() Type          { return TypeInit }
func (Move) MessageType() Type          { return TypeMove }
func (UpdateProps) MessageType() Type   { return TypeUpdateProps }
func (Interaction) MessageType() Type   { return TypeInteraction }
func (UpdateTexture) MessageType() Type { return TypeUpdateTexture }
func (Destroy) MessageType() Type       { return TypeDestroy }
func (WindowInfo) MessageType() Type    { return TypeWindowInfo }
func (CanvasReady) MessageType() Type   { return TypeCanvasReady }
func (ShirtReady) MessageType() Type    { return TypeShirtReady }
func (DecalReady) MessageType() Type    { return TypeDecalReady }

// Rect returns the canvas rectangle of an Init.
func (m Init) Rect() subcanvas.Rect {
	return subcanvas.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// Rect returns the canvas rectangle of a Move.
func (m Move) Rect() subcanvas.Rect {
	return subcanvas.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// CanvasID returns the canvas a message addresses, or "" for messages
// that are not about one canvas.
func CanvasID(m Message) string {
	switch m := m.(type) {
	case Init:
		return m.ID
	case Move:
		return m.ID
	case UpdateProps:
		return m.ID
	case Interaction:
		return m.ID
	case Destroy:
		return m.ID
	case CanvasReady:
		return m.ID
	case ShirtReady:
		return m.ID
	case DecalReady:
		return m.ID
	}
	return ""
}

// Outbox receives messages sent back to the control side.
type Outbox interface {
	Send(Message)
}

// OutboxFunc adapts a function to Outbox.
type OutboxFunc func(Message)

// Send calls f(m).
func (f OutboxFunc) Send(m Message) { f(m) }

// Discard is an Outbox that drops everything.
var Discard Outbox = OutboxFunc(func(Message) {})
