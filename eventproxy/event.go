package eventproxy

// SizeEvent is the event type that updates a proxy's geometry instead of
// being dispatched.
const SizeEvent = "size"

// AnyEvent registers a listener for every dispatched event type.
const AnyEvent = "*"

// Event is an input event relayed from the control side. Only the
// allow-listed fields below cross the boundary; everything else the
// originating event carried is dropped.
type Event struct {
	Type      string  `json:"type"`
	TimeStamp float64 `json:"timeStamp,omitempty"`

	Button      int    `json:"button,omitempty"`
	PointerID   int    `json:"pointerId,omitempty"`
	PointerType string `json:"pointerType,omitempty"`
	IsPrimary   bool   `json:"isPrimary,omitempty"`

	ClientX float64 `json:"clientX,omitempty"`
	ClientY float64 `json:"clientY,omitempty"`
	PageX   float64 `json:"pageX,omitempty"`
	PageY   float64 `json:"pageY,omitempty"`
	ScreenX float64 `json:"screenX,omitempty"`
	ScreenY float64 `json:"screenY,omitempty"`
	OffsetX float64 `json:"offsetX,omitempty"`
	OffsetY float64 `json:"offsetY,omitempty"`
	LayerX  float64 `json:"layerX,omitempty"`
	LayerY  float64 `json:"layerY,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`

	CtrlKey  bool `json:"ctrlKey,omitempty"`
	MetaKey  bool `json:"metaKey,omitempty"`
	ShiftKey bool `json:"shiftKey,omitempty"`

	// Geometry, only meaningful for SizeEvent.
	Left   float64 `json:"left,omitempty"`
	Top    float64 `json:"top,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// PreventDefault does nothing. Relayed events have no default action left
// to prevent, but listeners written for live events call it.
func (e *Event) PreventDefault() {}

// StopPropagation does nothing; see PreventDefault.
func (e *Event) StopPropagation() {}

// Rect is a bounding client rectangle.
type Rect struct {
	Left, Top, Width, Height float64
}

// Right returns Left + Width.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns Top + Height.
func (r Rect) Bottom() float64 { return r.Top + r.Height }
