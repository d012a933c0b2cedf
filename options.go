package framepipe

import (
	"log/slog"

	"github.com/gogpu/framepipe/render"
	"github.com/gogpu/framepipe/texture"
)

// Option configures a Processor during creation.
// Use functional options to customize pipeline behavior.
//
// Example:
//
//	// Default software pipeline with automatic frame release
//	p, err := framepipe.New(framepipe.WithListener(l))
//
//	// GPU pipeline with client-controlled frame release
//	p, err := framepipe.New(
//	    framepipe.WithListener(l),
//	    framepipe.WithDeviceHandle(app.GPUContextProvider()),
//	    framepipe.WithControlledRelease(),
//	)
type Option func(*options)

// options holds optional configuration for Processor creation.
type options struct {
	listener         Listener
	listenerExecutor func(func())
	renderer         render.Renderer
	device           render.DeviceHandle
	target           render.RenderTarget
	poolCapacity     int
	textureOutput    int
	controlled       bool
	noMerge          bool
	log              *slog.Logger
	now              func() int64
}

// WithListener sets the event listener. Without a listener the pipeline
// still runs, but all events are discarded.
func WithListener(l Listener) Option {
	return func(o *options) { o.listener = l }
}

// WithListenerExecutor sets the executor listener callbacks are delivered
// on. The executor must preserve submission order; events are submitted
// in the order they were generated. The default executor invokes
// callbacks inline on the pipeline's execution goroutine.
func WithListenerExecutor(execute func(func())) Option {
	return func(o *options) { o.listenerExecutor = execute }
}

// WithRenderer injects a custom renderer. Use this for dependency
// injection of GPU or test renderers; the default is the software
// renderer.
func WithRenderer(r render.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithDeviceHandle enables GPU-accelerated rendering on a device provided
// by the host application. Ignored when WithRenderer is also given.
func WithDeviceHandle(h render.DeviceHandle) Option {
	return func(o *options) { o.device = h }
}

// WithRenderTarget sets the sink released frames are drawn into. Without
// a target, released frames are recycled after the render callback,
// which suits consumers driven purely by callbacks.
func WithRenderTarget(t render.RenderTarget) Option {
	return func(o *options) { o.target = t }
}

// WithPoolCapacity bounds the number of textures per frame size. When the
// bound is reached the execution goroutine blocks until a texture is
// released (backpressure). Zero selects texture.DefaultCapacity.
func WithPoolCapacity(n int) Option {
	return func(o *options) { o.poolCapacity = n }
}

// WithTextureOutput configures the pipeline for a bounded texture-output
// consumer: the pool holds at most capacity textures per size and fails
// fast instead of blocking when the consumer does not release frames.
func WithTextureOutput(capacity int) Option {
	return func(o *options) { o.textureOutput = capacity }
}

// WithControlledRelease switches the output controller to controlled
// mode: finished frames accumulate in a FIFO queue and the client
// releases each one explicitly with Processor.RenderOutputFrame.
func WithControlledRelease() Option {
	return func(o *options) { o.controlled = true }
}

// WithoutStageMerging disables the chain planner's merging of adjacent
// compatible effects into single stages. Merging is semantically
// transparent; disabling it is a diagnostic aid, never a correctness
// requirement.
func WithoutStageMerging() Option {
	return func(o *options) { o.noMerge = true }
}

// WithLogger sets a processor-local logger, overriding the package-level
// logger configured with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// withClock overrides the wall clock, in tests only.
func withClock(now func() int64) Option {
	return func(o *options) { o.now = now }
}

func (o *options) pool() *texture.Pool {
	if o.textureOutput > 0 {
		return texture.NewFailFastPool(o.textureOutput)
	}
	return texture.NewPool(o.poolCapacity)
}
