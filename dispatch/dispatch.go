// Package dispatch applies inbound control messages to the worker state.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/compositor"
	"github.com/gogpu/subcanvas/eventproxy"
	"github.com/gogpu/subcanvas/protocol"
	"github.com/gogpu/subcanvas/registry"
	"github.com/gogpu/subcanvas/texcache"
)

// Dispatcher routes each inbound message to the registry, the event
// proxies, the texture cache or the compositor. It is not safe for
// concurrent use; the worker calls it from its own goroutine.
type Dispatcher struct {
	Registry  *registry.Registry
	Proxies   *eventproxy.Manager
	Textures  *texcache.Cache
	Scheduler *compositor.Scheduler
	Outbox    protocol.Outbox

	// OnFault, when set, is called for every message whose handling
	// panicked.
	OnFault func(*subcanvas.RenderFault)

	Log *slog.Logger
}

func (d *Dispatcher) logger() *slog.Logger { return subcanvas.LoggerOr(d.Log) }

func (d *Dispatcher) outbox() protocol.Outbox {
	if d.Outbox == nil {
		return protocol.Discard
	}
	return d.Outbox
}

// Dispatch handles m and logs any error. Errors never stop the worker,
// and neither does a panic raised while handling m: it is recovered and
// reported as a *subcanvas.RenderFault.
func (d *Dispatcher) Dispatch(m protocol.Message) {
	if m == nil {
		d.logger().Warn("dispatch: nil message")
		return
	}
	if fault := d.guard(m); fault != nil {
		d.logger().Warn("dispatch: message fault", "id", fault.ID, "type", fault.Stage, "err", fault.Err)
		if d.OnFault != nil {
			d.OnFault(fault)
		}
	}
}

// guard runs Handle and turns a panic into a RenderFault. Errors returned
// by Handle are logged here.
func (d *Dispatcher) guard(m protocol.Message) (fault *subcanvas.RenderFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &subcanvas.RenderFault{
				ID:    protocol.CanvasID(m),
				Stage: string(m.MessageType()),
				Err:   fmt.Errorf("panic: %v", r),
			}
		}
	}()
	if err := d.Handle(m); err != nil {
		lvl := slog.LevelWarn
		if errors.Is(err, subcanvas.ErrUnknownCanvas) {
			lvl = slog.LevelDebug
		}
		d.logger().Log(context.Background(), lvl, "dispatch: message dropped", "type", m.MessageType(), "err", err)
	}
	return nil
}

// Handle applies m and returns what went wrong, if anything.
func (d *Dispatcher) Handle(m protocol.Message) error {
	switch m := m.(type) {
	case protocol.Init:
		return d.init(m)
	case protocol.Move:
		return d.move(m)
	case protocol.UpdateProps:
		return d.Registry.UpdateProps(m.ID, m.Props)
	case protocol.Interaction:
		if !d.Proxies.Route(m.ID, m.Event) {
			return fmt.Errorf("%w: interaction %q", subcanvas.ErrUnknownCanvas, m.ID)
		}
		return nil
	case protocol.UpdateTexture:
		return d.updateTexture(m)
	case protocol.Destroy:
		return d.destroy(m)
	case protocol.WindowInfo:
		d.Scheduler.Resize(m.Width, m.Height)
		return nil
	case nil:
		return errors.New("dispatch: nil message")
	}
	return fmt.Errorf("%w: %q", protocol.ErrUnknownType, m.MessageType())
}

func (d *Dispatcher) init(m protocol.Init) error {
	if _, ok := d.Registry.Get(m.ID); ok {
		// Let the registry report the duplicate; the live proxy stays.
		return d.Registry.Add(m.ID, nil, m.Rect(), m.Props, nil)
	}
	surface, ok := m.Surface.Take()
	if !ok || surface == nil {
		return fmt.Errorf("%w: init %q has no surface", subcanvas.ErrNotTransferred, m.ID)
	}

	proxy := d.Proxies.Create(m.ID)
	proxy.SetSize(float64(m.Width), float64(m.Height))
	if err := d.Registry.Add(m.ID, surface, m.Rect(), m.Props, proxy); err != nil {
		d.Proxies.Remove(m.ID)
		return err
	}
	d.outbox().Send(protocol.CanvasReady{ID: m.ID, Value: true})
	return nil
}

func (d *Dispatcher) move(m protocol.Move) error {
	if err := d.Registry.Move(m.ID, m.Rect()); err != nil {
		return err
	}
	if p, ok := d.Proxies.Get(m.ID); ok {
		p.SetSize(float64(m.Width), float64(m.Height))
	}
	return nil
}

func (d *Dispatcher) updateTexture(m protocol.UpdateTexture) error {
	img, ok := m.Bitmap.Take()
	switch {
	case m.Failed:
		d.Textures.Fail(m.URL, fmt.Errorf("%w: %q rejected by sender", subcanvas.ErrDecodeFailure, m.URL))
	case !ok || img == nil:
		d.Textures.Fail(m.URL, fmt.Errorf("%w: %q arrived without a bitmap", subcanvas.ErrNotTransferred, m.URL))
	default:
		d.Textures.Ingest(m.URL, img)
	}
	return nil
}

func (d *Dispatcher) destroy(m protocol.Destroy) error {
	d.Proxies.Remove(m.ID)
	if !d.Registry.Remove(m.ID) {
		return fmt.Errorf("%w: destroy %q", subcanvas.ErrUnknownCanvas, m.ID)
	}
	return nil
}
