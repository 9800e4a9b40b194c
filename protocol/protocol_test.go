package protocol

import (
	"bytes"
	"errors"
	"image"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/subcanvas/render"
)

func TestOwnedTakeOnce(t *testing.T) {
	o := Own(42)
	if !o.Valid() {
		t.Fatal("Valid() = false before Take")
	}
	copyOf := o

	v, ok := o.Take()
	if !ok || v != 42 {
		t.Errorf("Take() = %v, %v, want 42, true", v, ok)
	}
	if v, ok := copyOf.Take(); ok || v != 0 {
		t.Errorf("second Take() through a copy = %v, %v, want 0, false", v, ok)
	}
	if o.Valid() || copyOf.Valid() {
		t.Error("Valid() = true after Take")
	}
}

func TestOwnedZeroValue(t *testing.T) {
	var o Owned[render.Surface]
	if o.Valid() {
		t.Error("zero Owned should not be valid")
	}
	if s, ok := o.Take(); ok || s != nil {
		t.Errorf("zero Take() = %v, %v, want nil, false", s, ok)
	}
}

func TestOwnedConcurrentTake(t *testing.T) {
	o := Own("bitmap")
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := o.Take(); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("%d goroutines took the value, want 1", wins)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{Destroy{ID: "a"}, `{"type":"destroy","canvasId":"a"}`},
		{WindowInfo{Width: 800, Height: 600}, `{"type":"windowInfo","width":800,"height":600}`},
		{DecalReady{ID: "a", Value: true, HasPrevious: true}, `{"type":"setDecalReady","canvasId":"a","value":true,"error":false,"hasPrevious":true}`},
		{UpdateTexture{URL: "m.png", Bitmap: Own[image.Image](image.NewRGBA(image.Rect(0, 0, 1, 1)))}, `{"type":"updateTexture","url":"m.png"}`},
	}
	for _, tt := range tests {
		got, err := Encode(tt.msg)
		if err != nil {
			t.Fatalf("Encode(%T) error = %v", tt.msg, err)
		}
		if string(got) != tt.want {
			t.Errorf("Encode(%T) = %s, want %s", tt.msg, got, tt.want)
		}
	}
}

func TestDecodeInit(t *testing.T) {
	raw := `{"type":"init","canvasId":"c1","x":10,"y":20,"width":100,"height":50,
		"props":{"motif":"m.png","color":"#ff0000","decalScale":2}}`
	m, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	init, ok := m.(Init)
	if !ok {
		t.Fatalf("Decode() = %T, want Init", m)
	}
	if init.ID != "c1" || init.Props.Motif != "m.png" || init.Props.DecalScale != 2 {
		t.Errorf("Decode() = %+v", init)
	}
	if r := init.Rect(); r.X != 10 || r.Y != 20 || r.Width != 100 || r.Height != 50 {
		t.Errorf("Rect() = %+v", r)
	}
	if init.Surface.Valid() {
		t.Error("decoded Init should carry no surface")
	}
	if CanvasID(init) != "c1" {
		t.Errorf("CanvasID() = %q, want c1", CanvasID(init))
	}
}

func TestDecodeInteraction(t *testing.T) {
	raw := `{"type":"interaction","canvasId":"c1","event":{"type":"pointerdown","clientX":3,"pointerId":1}}`
	m, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	in := m.(Interaction)
	if in.Event.Type != "pointerdown" || in.Event.ClientX != 3 || in.Event.PointerID != 1 {
		t.Errorf("event = %+v", in.Event)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte(`{"type":"bogus"}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Decode(bogus) error = %v, want ErrUnknownType", err)
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("Decode(garbage) should fail")
	}
}

func TestReaderWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	in := []Message{
		WindowInfo{Width: 200, Height: 100},
		Move{ID: "a", X: 1, Y: 2, Width: 3, Height: 4},
		Destroy{ID: "a"},
	}
	for _, m := range in {
		if err := w.Write(m); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if n := strings.Count(buf.String(), "\n"); n != len(in) {
		t.Errorf("wrote %d lines, want %d", n, len(in))
	}

	r := NewReader(&buf)
	for i, want := range in {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next() #%d error = %v", i, err)
		}
		if got != want {
			t.Errorf("Next() #%d = %+v, want %+v", i, got, want)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestReaderSkipsUnknown(t *testing.T) {
	r := NewReader(strings.NewReader(`{"type":"nope"}
{"type":"destroy","canvasId":"x"}`))
	if _, err := r.Next(); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Next() error = %v, want ErrUnknownType", err)
	}
	m, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if m != (Destroy{ID: "x"}) {
		t.Errorf("Next() = %+v, want destroy x", m)
	}
}

func TestOutboxFunc(t *testing.T) {
	var got []Message
	var out Outbox = OutboxFunc(func(m Message) { got = append(got, m) })
	out.Send(CanvasReady{ID: "a", Value: true})
	Discard.Send(CanvasReady{ID: "b"})
	if len(got) != 1 || CanvasID(got[0]) != "a" {
		t.Errorf("got %v", got)
	}
}
