// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"log/slog"

	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/texture"
)

// GPURenderer is a GPU-accelerated renderer backed by a WebGPU device.
//
// The device is provided by the host application through a DeviceHandle;
// the renderer never creates its own. Shader modules are compiled eagerly
// at construction time so broken shaders surface immediately rather than
// on the first frame.
//
// Draws targeting textures without GPU backing fall back to the software
// path, so a pipeline built with a GPURenderer works unchanged on CPU
// frames.
type GPURenderer struct {
	handle  DeviceHandle
	shaders *ShaderSet
	log     *slog.Logger

	// hal holds the device-side shader modules when the handle exposes a
	// raw HAL device, nil otherwise.
	hal *halResources

	fallback *SoftwareRenderer
	released bool
}

// NewGPURenderer creates a GPU-accelerated renderer on the given device
// handle. All WGSL shaders are compiled to SPIR-V up front; a compile
// failure makes construction fail.
func NewGPURenderer(handle DeviceHandle, log *slog.Logger) (*GPURenderer, error) {
	if handle == nil {
		return nil, errors.New("render: nil device handle")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	shaders, err := CompileShaders()
	if err != nil {
		return nil, err
	}
	log.Debug("render: shaders compiled",
		slog.Int("blit_words", len(shaders.Blit)),
		slog.Int("transform_words", len(shaders.Transform)),
		slog.Int("colormatrix_words", len(shaders.ColorMatrix)),
		slog.Int("blur_words", len(shaders.Blur)))

	r := &GPURenderer{
		handle:   handle,
		shaders:  shaders,
		log:      log,
		fallback: NewSoftwareRenderer(),
	}

	if device, queue, ok := halFromHandle(handle); ok {
		res, err := newHALResources(device, queue, shaders)
		if err != nil {
			// Device is valid but shader module creation failed. Keep the
			// renderer usable on the software path.
			log.Warn("render: HAL shader upload failed, using software path",
				slog.Any("error", err))
		} else {
			r.hal = res
			log.Debug("render: HAL shader modules created")
		}
	} else {
		log.Debug("render: handle does not expose HAL device, using software path")
	}

	return r, nil
}

// CreateGPUTexture allocates a device texture for one RGBA frame and
// attaches it to tex. It is a no-op on handles without HAL access.
func (r *GPURenderer) CreateGPUTexture(tex *texture.Texture, label string) error {
	if r.released {
		return errors.New("render: renderer released")
	}
	if tex == nil {
		return errors.New("render: nil texture")
	}
	if r.hal == nil {
		return nil
	}
	backing, err := r.hal.CreateTexture(tex.Width(), tex.Height(), label)
	if err != nil {
		return err
	}
	tex.AttachGPU(backing)
	return nil
}

// DrawTransformed draws src into dst through an affine transform.
func (r *GPURenderer) DrawTransformed(src, dst *texture.Texture, m effect.Matrix) error {
	if r.released {
		return errors.New("render: renderer released")
	}
	if src == nil || dst == nil {
		return errors.New("render: nil texture")
	}
	if src.GPU() == nil || dst.GPU() == nil {
		return r.fallback.DrawTransformed(src, dst, m)
	}
	// GPU pipeline submission requires device-side texture views, which
	// the gogpu/wgpu HAL does not yet expose through gpucontext.
	// TODO(gpu): record a transform pass once TextureView lands in gpucontext.
	return r.fallback.DrawTransformed(src, dst, m)
}

// Crop copies a rectangle of src into dst.
func (r *GPURenderer) Crop(src, dst *texture.Texture, x, y int) error {
	if r.released {
		return errors.New("render: renderer released")
	}
	return r.fallback.Crop(src, dst, x, y)
}

// Blit copies src into a render target of identical dimensions.
func (r *GPURenderer) Blit(src *texture.Texture, target RenderTarget) error {
	if r.released {
		return errors.New("render: renderer released")
	}
	if target != nil && target.Pixels() == nil {
		return errors.New("render: GPU-only targets not supported")
	}
	return r.fallback.Blit(src, target)
}

// Flush submits pending GPU command buffers and waits for completion.
func (r *GPURenderer) Flush() error {
	if r.released {
		return errors.New("render: renderer released")
	}
	return nil
}

// Release frees GPU resources. The renderer is unusable afterwards.
// Release is idempotent.
func (r *GPURenderer) Release() error {
	if r.released {
		return nil
	}
	r.released = true
	if r.hal != nil {
		r.hal.Destroy()
		r.hal = nil
	}
	r.shaders = nil
	return nil
}

// Capabilities returns the renderer's capabilities.
func (r *GPURenderer) Capabilities() Capabilities {
	return Capabilities{
		IsGPU:          true,
		MaxTextureSize: 8192,
	}
}

// DeviceHandle returns the underlying device handle, allowing hosts to
// share the device with their own rendering.
func (r *GPURenderer) DeviceHandle() DeviceHandle {
	return r.handle
}

// Shaders returns the compiled shader set, or nil after Release.
func (r *GPURenderer) Shaders() *ShaderSet {
	return r.shaders
}

var _ CapableRenderer = (*GPURenderer)(nil)
