// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framepipe/texture"
)

// RenderTarget defines where released output frames go.
//
// A RenderTarget is an abstraction over output destinations:
//   - ImageTarget: CPU-backed *image.RGBA, the software output path
//   - TextureTarget: a pipeline texture, for texture-output consumers
//
// Targets may support CPU access (Pixels), GPU access, or both; the
// renderer picks the access method it can serve.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to pixel data, or nil for GPU-only
	// targets. For RGBA format, each pixel is 4 bytes: R, G, B, A.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// ImageTarget is a CPU-backed render target using *image.RGBA.
type ImageTarget struct {
	img *image.RGBA
}

// NewImageTarget creates a new CPU-backed render target.
func NewImageTarget(width, height int) *ImageTarget {
	return &ImageTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewImageTargetFromImage wraps an existing *image.RGBA as a render
// target. The image is used directly without copying.
func NewImageTargetFromImage(img *image.RGBA) *ImageTarget {
	return &ImageTarget{img: img}
}

// Width returns the target width in pixels.
func (t *ImageTarget) Width() int { return t.img.Bounds().Dx() }

// Height returns the target height in pixels.
func (t *ImageTarget) Height() int { return t.img.Bounds().Dy() }

// Format returns the pixel format (RGBA8).
func (t *ImageTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns the backing pixel data.
func (t *ImageTarget) Pixels() []byte { return t.img.Pix }

// Stride returns the number of bytes per row.
func (t *ImageTarget) Stride() int { return t.img.Stride }

// Image returns the backing image.
func (t *ImageTarget) Image() *image.RGBA { return t.img }

// TextureTarget wraps a pipeline texture as a render target.
type TextureTarget struct {
	tex *texture.Texture
}

// NewTextureTarget wraps tex as a render target. The caller retains
// ownership of the texture.
func NewTextureTarget(tex *texture.Texture) *TextureTarget {
	return &TextureTarget{tex: tex}
}

// Width returns the target width in pixels.
func (t *TextureTarget) Width() int { return t.tex.Width() }

// Height returns the target height in pixels.
func (t *TextureTarget) Height() int { return t.tex.Height() }

// Format returns the texture's pixel format.
func (t *TextureTarget) Format() gputypes.TextureFormat { return t.tex.Format() }

// Pixels returns the texture's pixel data.
func (t *TextureTarget) Pixels() []byte { return t.tex.Data() }

// Stride returns the number of bytes per row.
func (t *TextureTarget) Stride() int { return t.tex.Stride() }

// Texture returns the wrapped texture.
func (t *TextureTarget) Texture() *texture.Texture { return t.tex }

var (
	_ RenderTarget = (*ImageTarget)(nil)
	_ RenderTarget = (*TextureTarget)(nil)
)
