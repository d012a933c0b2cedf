// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/texture"
)

// SoftwareRenderer performs all draw operations on CPU pixel buffers.
// It is the reference backend: always available, deterministic, and the
// one the test suite runs against.
type SoftwareRenderer struct{}

// NewSoftwareRenderer creates a CPU renderer.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{}
}

// DrawTransformed draws src into dst through an affine transform about
// the frame centers, sampling bilinearly. Destination pixels that map
// outside src stay transparent.
func (r *SoftwareRenderer) DrawTransformed(src, dst *texture.Texture, m effect.Matrix) error {
	if src == nil || dst == nil {
		return errors.New("render: nil texture")
	}

	// Fast path: identity transform between equal sizes is a copy.
	if m.IsIdentity() && src.Width() == dst.Width() && src.Height() == dst.Height() {
		dst.CopyFrom(src)
		return nil
	}

	inv := m.Invert()
	srcData := src.Data()
	dstData := dst.Data()
	sw, sh := src.Width(), src.Height()
	dw, dh := dst.Width(), dst.Height()

	// Center-origin coordinates with y up: destination pixel centers map
	// through the inverse transform back into source space.
	for dy := 0; dy < dh; dy++ {
		cy := float64(dh)/2 - float64(dy) - 0.5
		for dx := 0; dx < dw; dx++ {
			cx := float64(dx) + 0.5 - float64(dw)/2

			sx, sy := inv.Apply(cx, cy)

			// Back to top-left pixel coordinates.
			fx := sx + float64(sw)/2 - 0.5
			fy := float64(sh)/2 - sy - 0.5

			r0, g0, b0, a0, ok := sampleBilinear(srcData, sw, sh, fx, fy)
			if !ok {
				continue
			}
			i := (dy*dw + dx) * 4
			dstData[i+0] = r0
			dstData[i+1] = g0
			dstData[i+2] = b0
			dstData[i+3] = a0
		}
	}
	return nil
}

// Crop copies the rectangle at (x, y) sized to dst from src into dst.
func (r *SoftwareRenderer) Crop(src, dst *texture.Texture, x, y int) error {
	if src == nil || dst == nil {
		return errors.New("render: nil texture")
	}
	srcData := src.Data()
	dstData := dst.Data()
	sw, sh := src.Width(), src.Height()
	dw, dh := dst.Width(), dst.Height()

	for row := 0; row < dh; row++ {
		sy := y + row
		if sy < 0 || sy >= sh {
			continue
		}
		for col := 0; col < dw; col++ {
			sx := x + col
			if sx < 0 || sx >= sw {
				continue
			}
			si := (sy*sw + sx) * 4
			di := (row*dw + col) * 4
			copy(dstData[di:di+4], srcData[si:si+4])
		}
	}
	return nil
}

// Blit copies src into a CPU-accessible render target of identical size.
func (r *SoftwareRenderer) Blit(src *texture.Texture, target RenderTarget) error {
	if src == nil || target == nil {
		return errors.New("render: nil blit argument")
	}
	pixels := target.Pixels()
	if pixels == nil {
		return errors.New("render: software blit to GPU-only target")
	}
	if target.Width() != src.Width() || target.Height() != src.Height() {
		return fmt.Errorf("render: blit size mismatch: %dx%d -> %dx%d",
			src.Width(), src.Height(), target.Width(), target.Height())
	}

	srcData := src.Data()
	if target.Stride() == src.Stride() {
		copy(pixels, srcData)
		return nil
	}
	for y := 0; y < src.Height(); y++ {
		copy(pixels[y*target.Stride():y*target.Stride()+src.Stride()],
			srcData[y*src.Stride():(y+1)*src.Stride()])
	}
	return nil
}

// Flush implements Renderer. CPU draws are synchronous, so this is a
// no-op.
func (r *SoftwareRenderer) Flush() error { return nil }

// Release implements Renderer.
func (r *SoftwareRenderer) Release() error { return nil }

// Capabilities implements CapableRenderer.
func (r *SoftwareRenderer) Capabilities() Capabilities {
	return Capabilities{IsGPU: false}
}

// sampleBilinear samples src at a fractional position with bilinear
// filtering. ok is false when the position lies fully outside the image.
func sampleBilinear(src []byte, w, h int, fx, fy float64) (uint8, uint8, uint8, uint8, bool) {
	if fx < -1 || fy < -1 || fx > float64(w) || fy > float64(h) {
		return 0, 0, 0, 0, false
	}

	x0 := int(floor(fx))
	y0 := int(floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	var acc [4]float64
	var weight float64
	for dy := 0; dy <= 1; dy++ {
		for dx := 0; dx <= 1; dx++ {
			x := x0 + dx
			y := y0 + dy
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			wx := tx
			if dx == 0 {
				wx = 1 - tx
			}
			wy := ty
			if dy == 0 {
				wy = 1 - ty
			}
			wgt := wx * wy
			i := (y*w + x) * 4
			acc[0] += float64(src[i+0]) * wgt
			acc[1] += float64(src[i+1]) * wgt
			acc[2] += float64(src[i+2]) * wgt
			acc[3] += float64(src[i+3]) * wgt
			weight += wgt
		}
	}
	if weight == 0 {
		return 0, 0, 0, 0, false
	}
	return roundByte(acc[0]), roundByte(acc[1]), roundByte(acc[2]), roundByte(acc[3]), true
}

func floor(v float64) float64 {
	f := float64(int(v))
	if v < 0 && f != v {
		f--
	}
	return f
}

func roundByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

var _ CapableRenderer = (*SoftwareRenderer)(nil)
