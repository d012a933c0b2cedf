// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/texture"
)

// Renderer executes the pipeline's per-frame draw operations.
//
// Renderers are NOT thread-safe: the pipeline invokes them only from its
// single execution goroutine, which mirrors the one-GPU-context-at-a-time
// constraint of the underlying graphics API.
type Renderer interface {
	// DrawTransformed draws src into dst through an affine transform.
	// The transform is applied about the frame centers (y up), so an
	// identity matrix centers src in dst unchanged.
	DrawTransformed(src, dst *texture.Texture, m effect.Matrix) error

	// Crop copies the rectangle (x, y, dst.Width, dst.Height) of src
	// into dst. The rectangle is clamped to src bounds; out-of-range
	// areas stay transparent.
	Crop(src, dst *texture.Texture, x, y int) error

	// Blit copies src into a render target of identical dimensions.
	Blit(src *texture.Texture, target RenderTarget) error

	// Flush completes all pending draw work. A no-op for CPU backends.
	Flush() error

	// Release frees backend resources. The renderer is unusable
	// afterwards.
	Release() error
}

// Capabilities describes the features of a renderer backend.
type Capabilities struct {
	// IsGPU indicates a GPU-accelerated backend.
	IsGPU bool

	// MaxTextureSize is the maximum texture dimension (0 = unlimited).
	MaxTextureSize int
}

// CapableRenderer is an optional interface for renderers that report
// their capabilities.
type CapableRenderer interface {
	Renderer

	// Capabilities returns the renderer's capabilities.
	Capabilities() Capabilities
}
