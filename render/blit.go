// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// Blit copies the region r of src into dst, with r.Min landing on dst's
// origin. The region is clipped to src's bounds; destination pixels the
// clipped region does not cover are cleared to transparent.
//
// It reports the source rectangle actually copied.
func Blit(dst Surface, src *image.RGBA, r image.Rectangle) (image.Rectangle, error) {
	if dst == nil || src == nil {
		return image.Rectangle{}, errors.New("render: blit with nil image")
	}
	out := dst.Image()
	sr := r.Intersect(src.Bounds())
	if sr.Empty() {
		draw.Draw(out, out.Bounds(), image.Transparent, image.Point{}, draw.Src)
		return image.Rectangle{}, nil
	}
	if sr != r {
		draw.Draw(out, out.Bounds(), image.Transparent, image.Point{}, draw.Src)
	}
	dp := out.Bounds().Min.Add(sr.Min.Sub(r.Min))
	draw.Copy(out, dp, src, sr, draw.Src, nil)
	return sr, nil
}
