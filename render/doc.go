// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the drawing backends for the frame pipeline.
//
// Two backends exist behind one Renderer interface:
//
//   - SoftwareRenderer performs all draws on CPU pixel buffers. It is
//     always available and is the reference implementation the pipeline
//     tests run against.
//   - GPURenderer uses a WebGPU device supplied by the host application
//     through a DeviceHandle. The renderer RECEIVES the device, it never
//     creates one; when a draw targets a texture without GPU backing it
//     falls back to the software path.
//
// The package also defines RenderTarget, the abstraction over final
// output destinations (CPU image or GPU texture).
package render
