// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	types "github.com/gogpu/gputypes"

	"github.com/gogpu/framepipe/texture"
)

// halFromHandle extracts the raw HAL device and queue from a device
// handle. Handles from the gogpu ecosystem expose them through
// HalDevice() any and HalQueue() any; handles that do not stay on the
// software path.
func halFromHandle(handle DeviceHandle) (hal.Device, hal.Queue, bool) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := handle.(halProvider)
	if !ok {
		return nil, nil, false
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, false
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, false
	}
	return device, queue, true
}

// halResources holds the device-side objects a GPURenderer creates on a
// HAL-capable device: one shader module per compiled shader. The device
// and queue belong to the host and are never destroyed here.
type halResources struct {
	device hal.Device
	queue  hal.Queue

	blit        hal.ShaderModule
	transform   hal.ShaderModule
	colorMatrix hal.ShaderModule
	blur        hal.ShaderModule
}

// newHALResources uploads the compiled shader set to the device.
// Failure destroys everything created so far.
func newHALResources(device hal.Device, queue hal.Queue, shaders *ShaderSet) (*halResources, error) {
	if shaders == nil || !shaders.IsValid() {
		return nil, errors.New("render: shader set is not compiled")
	}

	r := &halResources{device: device, queue: queue}

	modules := []struct {
		label string
		code  []uint32
		dst   *hal.ShaderModule
	}{
		{"framepipe_blit", shaders.Blit, &r.blit},
		{"framepipe_transform", shaders.Transform, &r.transform},
		{"framepipe_colormatrix", shaders.ColorMatrix, &r.colorMatrix},
		{"framepipe_blur", shaders.Blur, &r.blur},
	}
	for _, m := range modules {
		module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label: m.label,
			Source: hal.ShaderSource{
				SPIRV: m.code,
			},
		})
		if err != nil {
			r.Destroy()
			return nil, fmt.Errorf("render: failed to create shader module %q: %w", m.label, err)
		}
		*m.dst = module
	}
	return r, nil
}

// Destroy releases the shader modules. Safe to call on a partially
// constructed value. The shared device and queue are left alone.
func (r *halResources) Destroy() {
	for _, m := range []*hal.ShaderModule{&r.blit, &r.transform, &r.colorMatrix, &r.blur} {
		if *m != nil {
			r.device.DestroyShaderModule(*m)
			*m = nil
		}
	}
}

// halTexture is the GPU backing attached to pool textures when a
// HAL-capable device is available. It owns the underlying hal.Texture.
type halTexture struct {
	device hal.Device
	tex    hal.Texture
}

// CreateTexture creates a device texture sized for one RGBA frame and
// returns it as a backing ready to attach with Texture.AttachGPU.
func (r *halResources) CreateTexture(width, height int, label string) (texture.GPUBacking, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid texture size %dx%d", width, height)
	}
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatRGBA8Unorm,
		Usage:         types.TextureUsageCopySrc | types.TextureUsageCopyDst | types.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("render: failed to create texture: %w", err)
	}
	return &halTexture{device: r.device, tex: tex}, nil
}

// Destroy frees the device texture.
func (t *halTexture) Destroy() {
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

var _ texture.GPUBacking = (*halTexture)(nil)
