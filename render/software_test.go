// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"
	"testing"

	"cogentcore.org/core/math32"

	"github.com/gogpu/subcanvas/scene"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func flatScene(c color.RGBA) *scene.Scene {
	s := scene.New()
	s.Add(scene.NewMesh("plane", scene.NewPlane(20, 20), &scene.BasicMaterial{Color: c}))
	return s
}

func testCamera(aspect float32) *scene.Camera {
	return scene.NewCamera(75, aspect, 0.1, 100, math32.Vec3(0, 0, 4))
}

func TestSoftwareRendererCapabilities(t *testing.T) {
	caps := NewSoftwareRenderer().Capabilities()
	if caps.IsGPU {
		t.Error("SoftwareRenderer should not be GPU")
	}
	if !caps.SupportsTextures || !caps.SupportsDepth {
		t.Errorf("Capabilities() = %+v, want textures and depth", caps)
	}
}

func TestSoftwareRendererFlush(t *testing.T) {
	if err := NewSoftwareRenderer().Flush(); err != nil {
		t.Errorf("Flush() error = %v, want nil", err)
	}
}

func TestSoftwareRendererNilArgs(t *testing.T) {
	r := NewSoftwareRenderer()
	ctx := NewContext(nil, 10, 10)

	if err := r.Render(nil, scene.New(), testCamera(1)); err == nil {
		t.Error("Render(nil ctx) should return error")
	}
	if err := r.Render(ctx, scene.New(), nil); err == nil {
		t.Error("Render(nil camera) should return error")
	}
	if err := r.Render(ctx, nil, testCamera(1)); err != nil {
		t.Errorf("Render(nil scene) error = %v, want nil", err)
	}
}

func TestSoftwareRendererFillsViewport(t *testing.T) {
	ctx := NewContext(nil, 40, 20)
	r := NewSoftwareRenderer()
	if err := r.Render(ctx, flatScene(green), testCamera(2)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {20, 10}, {39, 19}} {
		if got := ctx.Target().GetPixel(p.X, p.Y); got != green {
			t.Errorf("pixel %v = %v, want %v", p, got, green)
		}
	}
}

func TestSoftwareRendererScissorIsolation(t *testing.T) {
	ctx := NewContext(nil, 200, 100)
	ctx.SetScissorTest(true)
	r := NewSoftwareRenderer()

	left := image.Rect(0, 0, 100, 100)
	right := image.Rect(100, 0, 200, 100)

	for _, tc := range []struct {
		rect image.Rectangle
		col  color.RGBA
	}{{left, red}, {right, blue}} {
		x, y, w, h := BottomUp(tc.rect, ctx.Height())
		ctx.SetScissor(x, y, w, h)
		ctx.SetViewport(x, y, w, h)
		if err := r.Render(ctx, flatScene(tc.col), testCamera(1)); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
	}

	for y := 0; y < 100; y += 7 {
		for x := 0; x < 200; x += 7 {
			want := red
			if x >= 100 {
				want = blue
			}
			if got := ctx.Target().GetPixel(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSoftwareRendererClearsOnlyScissor(t *testing.T) {
	ctx := NewContext(nil, 20, 10)
	ctx.Target().Clear(red)
	ctx.SetScissorTest(true)
	x, y, w, h := BottomUp(image.Rect(0, 0, 10, 10), ctx.Height())
	ctx.SetScissor(x, y, w, h)
	ctx.SetViewport(x, y, w, h)

	// Empty scene with a transparent background.
	if err := NewSoftwareRenderer().Render(ctx, scene.New(), testCamera(1)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := ctx.Target().GetPixel(5, 5); got != (color.RGBA{}) {
		t.Errorf("inside scissor = %v, want transparent", got)
	}
	if got := ctx.Target().GetPixel(15, 5); got != red {
		t.Errorf("outside scissor = %v, want %v", got, red)
	}
}

func TestSoftwareRendererDepth(t *testing.T) {
	build := func(nearFirst bool) *scene.Scene {
		s := scene.New()
		near := scene.NewMesh("near", scene.NewPlane(1, 1), &scene.BasicMaterial{Color: red})
		near.Position = math32.Vec3(0, 0, 1)
		far := scene.NewMesh("far", scene.NewPlane(20, 20), &scene.BasicMaterial{Color: blue})
		if nearFirst {
			s.Add(near)
			s.Add(far)
		} else {
			s.Add(far)
			s.Add(near)
		}
		return s
	}
	for _, nearFirst := range []bool{true, false} {
		ctx := NewContext(nil, 30, 30)
		if err := NewSoftwareRenderer().Render(ctx, build(nearFirst), testCamera(1)); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if got := ctx.Target().GetPixel(15, 15); got != red {
			t.Errorf("nearFirst=%v: center = %v, want %v", nearFirst, got, red)
		}
		if got := ctx.Target().GetPixel(1, 1); got != blue {
			t.Errorf("nearFirst=%v: corner = %v, want %v", nearFirst, got, blue)
		}
	}
}

func TestSoftwareRendererLighting(t *testing.T) {
	s := flatScene(color.RGBA{200, 200, 200, 255})
	s.Find("plane").Material = scene.NewStandardMaterial(color.RGBA{200, 200, 200, 255})

	ctx := NewContext(nil, 10, 10)
	if err := NewSoftwareRenderer().Render(ctx, s, testCamera(1)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	// No lights: lit materials render at full intensity.
	if got := ctx.Target().GetPixel(5, 5); got.R != 200 {
		t.Errorf("unlit scene R = %d, want 200", got.R)
	}

	light := scene.NewNode("light")
	light.Light = scene.NewDirectionalLight(color.RGBA{255, 255, 255, 255}, 1)
	light.Position = math32.Vec3(1, 0, 0) // grazing: only ambient remains
	s.Add(light)
	if err := NewSoftwareRenderer().Render(ctx, s, testCamera(1)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := ctx.Target().GetPixel(5, 5); got.R != 60 {
		t.Errorf("grazing light R = %d, want 60", got.R)
	}
}

func TestSoftwareRendererTextureBlend(t *testing.T) {
	tex := image.NewRGBA(image.Rect(0, 0, 2, 2)) // fully transparent
	s := flatScene(green)
	decal := scene.NewMesh("decal", scene.NewPlane(20, 20), scene.NewTextureMaterial(tex))
	decal.Position = math32.Vec3(0, 0, 0.5)
	s.Add(decal)

	ctx := NewContext(nil, 10, 10)
	if err := NewSoftwareRenderer().Render(ctx, s, testCamera(1)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := ctx.Target().GetPixel(5, 5); got != green {
		t.Errorf("transparent decal covers subject: got %v, want %v", got, green)
	}
}

func TestOver(t *testing.T) {
	half := color.RGBA{128, 0, 0, 128}
	got := over(half, blue)
	if got.A != 255 || got.R != 128 || got.B != 127 {
		t.Errorf("over() = %v, want {128 0 127 255}", got)
	}
}
