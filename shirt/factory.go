package shirt

import (
	"image/color"
	"log/slog"

	"cogentcore.org/core/math32"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/eventproxy"
	"github.com/gogpu/subcanvas/protocol"
	"github.com/gogpu/subcanvas/scene"
	"github.com/gogpu/subcanvas/texcache"
)

// Node names inside a built scene.
const (
	SubjectNode = "shirt"
	DecalNode   = "decal"
	LightNode   = "light"
)

// Camera and light placement.
const (
	CameraFOV      = 75
	CameraNear     = 0.1
	CameraFar      = 100
	CameraDistance = 4
	// DefaultAspect is the canvas default until the compositor sets the
	// real one.
	DefaultAspect = 2
)

// LightPosition is where the directional light sits.
var LightPosition = math32.Vec3(-1, 2, 4)

// Textures is the part of the texture cache the factory needs.
type Textures interface {
	Request(url string, cb func()) texcache.State
	Get(url string) (texcache.State, *texcache.Bitmap)
}

// Factory builds the scene of a virtual canvas and keeps it in sync with
// its props.
type Factory struct {
	textures Textures
	outbox   protocol.Outbox
	log      *slog.Logger
}

// NewFactory returns a factory reading textures from t and reporting
// readiness to out. A nil outbox discards readiness messages.
func NewFactory(t Textures, out protocol.Outbox, log *slog.Logger) *Factory {
	if out == nil {
		out = protocol.Discard
	}
	return &Factory{textures: t, outbox: out, log: log}
}

func (f *Factory) logger() *slog.Logger { return subcanvas.LoggerOr(f.log) }

type decalKind int

const (
	decalNone decalKind = iota
	decalLoading
	decalFailed
	decalTexture
)

type decalSignal struct {
	motif       string
	value       bool
	err         bool
	hasPrevious bool
}

// subject is the per-canvas state behind a built scene.
type subject struct {
	f        *Factory
	id       string
	scene    *scene.Scene
	shirt    *scene.Node
	decal    *scene.Node
	controls *Controls

	props  subcanvas.Props
	kind   decalKind
	aspect float32
	sent   *decalSignal
}

// Build creates the scene and camera for canvas id and attaches orbit
// controls to target. The scene reacts to scene.PropsEvent,
// scene.TextureEvent, scene.TickEvent and scene.DestroyEvent.
func (f *Factory) Build(id string, props subcanvas.Props, target eventproxy.InputTarget) (*scene.Scene, *scene.Camera) {
	cam := scene.NewCamera(CameraFOV, DefaultAspect, CameraNear, CameraFar, math32.Vec3(0, 0, CameraDistance))
	scn := scene.New()

	light := scene.NewNode(LightNode)
	light.Light = scene.NewDirectionalLight(color.RGBA{0xff, 0xff, 0xff, 0xff}, 1)
	light.Position = LightPosition
	scn.Add(light)

	s := &subject{f: f, id: id, scene: scn, aspect: 1}

	s.shirt = scene.NewMesh(SubjectNode, subjectGeometry(), scene.NewStandardMaterial(color.RGBA{0xff, 0xff, 0xff, 0xff}))
	scn.Add(s.shirt)
	f.outbox.Send(protocol.ShirtReady{ID: id, Value: true})

	s.decal = scene.NewNode(DecalNode)
	scn.Add(s.decal)

	s.controls = NewControls(cam)
	s.controls.Attach(target)

	s.shirt.On(scene.EventUpdateProps, func(ev scene.Event) {
		s.apply(ev.(scene.PropsEvent).Props)
	})
	s.decal.On(scene.EventLoadedTexture, func(ev scene.Event) {
		if ev.(scene.TextureEvent).URL == s.props.Motif {
			s.refreshDecal()
		}
	})
	scn.Root.On(scene.EventTick, func(ev scene.Event) {
		s.controls.Update(ev.(scene.TickEvent).Total)
	})
	scn.Root.On(scene.EventDestroy, func(scene.Event) {
		s.controls.Detach()
	})

	s.apply(props)
	return scn, cam
}

// ApplyProps pushes props through every node of scn. Applying the same
// props twice leaves the scene unchanged.
func ApplyProps(scn *scene.Scene, props subcanvas.Props) {
	scn.Dispatch(scene.PropsEvent{Props: props})
}

func (s *subject) apply(props subcanvas.Props) {
	p := props.Normalized()

	c, err := ParseColor(p.Color)
	if err != nil {
		s.f.logger().Warn("shirt: bad color, keeping default", "id", s.id, "err", err)
		c, _ = ParseColor(subcanvas.DefaultProps().Color)
	}
	if m, ok := s.shirt.Material.(*scene.StandardMaterial); ok {
		m.Color = c
	}

	s.controls.Disabled = p.Disabled
	s.controls.WobbleRange = p.WobbleRange
	s.controls.WobbleSpeed = p.WobbleSpeed

	motifChanged := p.Motif != s.props.Motif || s.sent == nil
	s.props = p
	if motifChanged && p.Motif != "" {
		s.f.textures.Request(p.Motif, nil)
	}
	s.refreshDecal()
}

// refreshDecal picks the decal material for the current motif state and
// reports it when it changed. While a new motif is pending, the texture
// of the previous one stays bound; hasPrevious reports exactly that.
func (s *subject) refreshDecal() {
	state, bm := texcache.StateAbsent, (*texcache.Bitmap)(nil)
	if s.props.Motif != "" {
		state, bm = s.f.textures.Get(s.props.Motif)
	}

	switch {
	case s.props.Motif == "":
		s.setPlaceholder(decalLoading, LoadingColor)
		s.aspect = 1
	case state == texcache.StateReady && bm != nil:
		if tm, ok := s.decal.Material.(*scene.TextureMaterial); !ok || tm.Image != bm.Image {
			s.decal.Material = scene.NewTextureMaterial(bm.Image)
		}
		s.kind = decalTexture
		s.aspect = bm.Aspect
	case state == texcache.StateFailed:
		s.setPlaceholder(decalFailed, ErrorColor)
		s.aspect = 1
	case s.kind == decalTexture:
		// Pending, previous texture still shown.
	default:
		s.setPlaceholder(decalLoading, LoadingColor)
		s.aspect = 1
	}
	s.decal.Geometry = decalGeometry(s.props.DecalScale, s.props.DecalBaseline, s.aspect)

	sig := decalSignal{
		motif:       s.props.Motif,
		value:       s.props.Motif == "" || state.Resolved(),
		err:         state == texcache.StateFailed,
		hasPrevious: s.kind == decalTexture,
	}
	if s.sent != nil && *s.sent == sig {
		return
	}
	s.sent = &sig
	s.f.outbox.Send(protocol.DecalReady{ID: s.id, Value: sig.value, Error: sig.err, HasPrevious: sig.hasPrevious})
}

// setPlaceholder switches to a placeholder of the given kind, keeping the
// current one (and its rotation) when the kind is unchanged.
func (s *subject) setPlaceholder(kind decalKind, c color.RGBA) {
	if s.kind == kind && s.decal.Material != nil {
		return
	}
	s.kind = kind
	s.decal.Material = scene.NewPlaceholderMaterial(c)
}
