package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/subcanvas/internal/jsonx"
)

// ErrUnknownType is returned when decoding a message whose type field is
// not one of the known types.
var ErrUnknownType = errors.New("protocol: unknown message type")

// Encode serialises m as a JSON object with a "type" discriminator.
// Owned fields (surfaces and bitmaps) are not serialised.
func Encode(m Message) ([]byte, error) {
	body, err := jsonx.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.MessageType(), err)
	}
	typ, err := jsonx.Marshal(m.MessageType())
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.MessageType(), err)
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(typ) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if rest := bytes.TrimSpace(body[1:]); !bytes.Equal(rest, []byte("}")) {
		buf.WriteByte(',')
		buf.Write(rest)
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

type envelope struct {
	Type Type `json:"type"`
}

// Decode parses one message produced by Encode (or written by hand).
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := jsonx.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	switch env.Type {
	case TypeInit:
		return decodeAs[Init](data)
	case TypeMove:
		return decodeAs[Move](data)
	case TypeUpdateProps:
		return decodeAs[UpdateProps](data)
	case TypeInteraction:
		return decodeAs[Interaction](data)
	case TypeUpdateTexture:
		return decodeAs[UpdateTexture](data)
	case TypeDestroy:
		return decodeAs[Destroy](data)
	case TypeWindowInfo:
		return decodeAs[WindowInfo](data)
	case TypeCanvasReady:
		return decodeAs[CanvasReady](data)
	case TypeShirtReady:
		return decodeAs[ShirtReady](data)
	case TypeDecalReady:
		return decodeAs[DecalReady](data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

func decodeAs[T Message](data []byte) (Message, error) {
	var m T
	if err := jsonx.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", m.MessageType(), err)
	}
	return m, nil
}

// Reader decodes a stream of JSON messages, one value after another
// (typically one per line).
type Reader struct {
	dec interface {
		Decode(any) error
		More() bool
	}
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: jsonx.NewDecoder(r)}
}

// Next returns the next message, or io.EOF at the end of the stream.
// A message of unknown type yields an error wrapping ErrUnknownType; the
// stream stays usable.
func (r *Reader) Next() (Message, error) {
	if !r.dec.More() {
		return nil, io.EOF
	}
	var raw jsonx.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("protocol: read: %w", err)
	}
	return Decode(raw)
}

// Writer encodes messages one per line.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Write encodes m followed by a newline.
func (w *Writer) Write(m Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("protocol: write: %w", err)
	}
	return nil
}
