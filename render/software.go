// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"image/color"

	"cogentcore.org/core/math32"

	"github.com/gogpu/subcanvas/scene"
)

// Ambient is the share of a lit material's color that does not depend
// on light direction.
const Ambient = 0.3

// SoftwareRenderer is a CPU triangle rasterizer with a depth buffer,
// perspective-correct texture coordinates and flat directional lighting.
//
// Transparent materials are blended source-over and do not write depth.
//
// Example:
//
//	ctx := render.NewContext(nil, 300, 150)
//	r := render.NewSoftwareRenderer()
//	r.Render(ctx, scn, cam)
type SoftwareRenderer struct {
	// lights is reused between frames.
	lights []scene.PlacedLight
}

// NewSoftwareRenderer creates a new CPU-based software renderer.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{}
}

// Render draws scn through cam into ctx.
func (r *SoftwareRenderer) Render(ctx *Context, scn *scene.Scene, cam *scene.Camera) error {
	if ctx == nil {
		return errors.New("render: nil context")
	}
	if scn == nil {
		return nil
	}
	if cam == nil {
		return errors.New("render: nil camera")
	}

	ctx.Clear(scn.Background)

	clip := ctx.clip().Intersect(ctx.viewport)
	if clip.Empty() {
		return nil
	}

	r.lights = append(r.lights[:0], scn.Lights()...)
	vp := cam.ViewProjection()

	scn.Walk(func(n *scene.Node) bool {
		if !n.Visible {
			return false
		}
		if n.Geometry != nil && n.Material != nil {
			r.drawMesh(ctx, clip, vp, n)
		}
		return true
	})
	return nil
}

// Flush is a no-op; drawing is synchronous.
func (r *SoftwareRenderer) Flush() error {
	return nil
}

// Capabilities returns the renderer's capabilities.
func (r *SoftwareRenderer) Capabilities() RendererCapabilities {
	return RendererCapabilities{
		IsGPU:            false,
		SupportsTextures: true,
		SupportsDepth:    true,
	}
}

type screenVertex struct {
	x, y, z float32
	invW    float32
	uv      math32.Vector2
}

func (r *SoftwareRenderer) drawMesh(ctx *Context, clip image.Rectangle, vp math32.Matrix4, n *scene.Node) {
	world := n.World()
	var mvp math32.Matrix4
	mvp.MulMatrices(&vp, &world)
	g := n.Geometry
	vpRect := ctx.viewport

	for i := 0; i+2 < len(g.Indices); i += 3 {
		var sv [3]screenVertex
		var normal math32.Vector3
		ok := true
		for k := 0; k < 3; k++ {
			v := g.Vertices[g.Indices[i+k]]
			p := math32.Vector4FromVector3(v.Position, 1).MulMatrix4(&mvp)
			if p.W <= 1e-6 {
				ok = false
				break
			}
			inv := 1 / p.W
			sv[k] = screenVertex{
				x:    float32(vpRect.Min.X) + (p.X*inv+1)/2*float32(vpRect.Dx()),
				y:    float32(vpRect.Min.Y) + (1-p.Y*inv)/2*float32(vpRect.Dy()),
				z:    (p.Z*inv + 1) / 2,
				invW: inv,
				uv:   v.UV,
			}
			normal = normal.Add(v.Normal.MulMatrix4AsVector4(&world, 0))
		}
		if !ok {
			continue
		}
		shade := r.shade(n.Material, normal.Normal())
		rasterize(ctx, clip, sv, n.Material, shade)
	}
}

// shade returns the per-channel light factor for a face with normal nrm.
func (r *SoftwareRenderer) shade(m scene.Material, nrm math32.Vector3) math32.Vector3 {
	if !m.Lit() || len(r.lights) == 0 {
		return math32.Vec3(1, 1, 1)
	}
	f := math32.Vec3(Ambient, Ambient, Ambient)
	for _, l := range r.lights {
		d := math32.Abs(nrm.Dot(l.Direction())) * (1 - Ambient) * l.Light.Intensity
		c := l.Light.Color
		f = f.Add(math32.Vec3(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255).MulScalar(d))
	}
	return math32.Vec3(min(f.X, 1), min(f.Y, 1), min(f.Z, 1))
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func rasterize(ctx *Context, clip image.Rectangle, v [3]screenVertex, m scene.Material, shade math32.Vector3) {
	area := edge(v[0].x, v[0].y, v[1].x, v[1].y, v[2].x, v[2].y)
	if math32.Abs(area) < 1e-8 {
		return
	}

	minX := int(math32.Floor(min(v[0].x, v[1].x, v[2].x)))
	maxX := int(math32.Ceil(max(v[0].x, v[1].x, v[2].x)))
	minY := int(math32.Floor(min(v[0].y, v[1].y, v[2].y)))
	maxY := int(math32.Ceil(max(v[0].y, v[1].y, v[2].y)))
	box := image.Rect(minX, minY, maxX, maxY).Intersect(clip)
	if box.Empty() {
		return
	}

	img := ctx.Image()
	transparent := m.Transparent()

	for y := box.Min.Y; y < box.Max.Y; y++ {
		py := float32(y) + 0.5
		for x := box.Min.X; x < box.Max.X; x++ {
			px := float32(x) + 0.5
			b0 := edge(v[1].x, v[1].y, v[2].x, v[2].y, px, py) / area
			b1 := edge(v[2].x, v[2].y, v[0].x, v[0].y, px, py) / area
			b2 := 1 - b0 - b1
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			z := b0*v[0].z + b1*v[1].z + b2*v[2].z
			if z < 0 || z > 1 {
				continue
			}
			d := ctx.depthAt(x, y)
			if z >= *d {
				continue
			}

			iw := b0*v[0].invW + b1*v[1].invW + b2*v[2].invW
			uv := math32.Vector2{
				X: (b0*v[0].uv.X*v[0].invW + b1*v[1].uv.X*v[1].invW + b2*v[2].uv.X*v[2].invW) / iw,
				Y: (b0*v[0].uv.Y*v[0].invW + b1*v[1].uv.Y*v[1].invW + b2*v[2].uv.Y*v[2].invW) / iw,
			}

			src := m.Sample(uv)
			if src.A == 0 {
				continue
			}
			src = light(src, shade)

			if transparent || src.A < 0xff {
				img.SetRGBA(x, y, over(src, img.RGBAAt(x, y)))
			} else {
				img.SetRGBA(x, y, src)
			}
			if !transparent {
				*d = z
			}
		}
	}
}

// light scales the color channels of a premultiplied color.
func light(c color.RGBA, f math32.Vector3) color.RGBA {
	return color.RGBA{
		R: uint8(float32(c.R) * f.X),
		G: uint8(float32(c.G) * f.Y),
		B: uint8(float32(c.B) * f.Z),
		A: c.A,
	}
}

// over composites premultiplied src over dst.
func over(src, dst color.RGBA) color.RGBA {
	k := 255 - uint32(src.A)
	return color.RGBA{
		R: uint8(uint32(src.R) + uint32(dst.R)*k/255),
		G: uint8(uint32(src.G) + uint32(dst.G)*k/255),
		B: uint8(uint32(src.B) + uint32(dst.B)*k/255),
		A: uint8(uint32(src.A) + uint32(dst.A)*k/255),
	}
}

var _ CapableRenderer = (*SoftwareRenderer)(nil)
