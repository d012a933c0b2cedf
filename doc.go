// Package framepipe provides a video frame processing pipeline for Go.
//
// # Overview
//
// framepipe ingests decoded video or bitmap frames, applies an ordered
// chain of visual effects (color transforms, overlays, blur, crop, scale,
// rotate, frame-rate conversion, timestamp remapping) and emits frames
// for rendering or encoding. Presentation-timestamp ordering is strict,
// and the pipeline supports mid-stream reconfiguration, flushing and
// client-controlled frame release.
//
// # Quick Start
//
//	import "github.com/gogpu/framepipe"
//
//	p, err := framepipe.New(framepipe.WithListener(listener))
//	if err != nil { ... }
//	defer p.Release()
//
//	// Declare the stream and its effects.
//	err = p.RegisterInputStream(framepipe.InputTypeSurface,
//	    []effect.Effect{
//	        effect.MatrixTransform{Matrix: effect.RotateDegrees(90)},
//	        effect.Contrast{Value: 0.2},
//	    },
//	    framepipe.FrameInfo{Width: 1920, Height: 1080})
//
//	// Feed frames; finished frames arrive through the listener.
//	p.QueueInputTexture(tex, presentationTimeUs)
//	p.SignalEndOfInput()
//
// # Architecture
//
// Effects are declarative descriptors (package effect) compiled into a
// chain of shader stages. A single execution goroutine serializes all
// draw work, matching the one-GPU-context-at-a-time constraint of the
// underlying graphics API; entry points are thread-safe and enqueue work
// onto that goroutine. Textures flow through a capacity-bounded pool
// (package texture) with exclusive ownership transfer between stages.
//
// # Renderers
//
// Drawing runs on the software renderer by default. Pass a host GPU
// device with WithDeviceHandle to enable the WebGPU backend (package
// render); frames without GPU backing fall back to software
// transparently.
//
// # Logging
//
// framepipe is silent by default. Call SetLogger to route structured
// logs from all pipeline components to a slog.Logger of your choice.
package framepipe
