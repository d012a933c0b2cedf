package framepipe

import (
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/internal/shader"
	"github.com/gogpu/framepipe/internal/task"
	"github.com/gogpu/framepipe/render"
	"github.com/gogpu/framepipe/texture"
)

// State is the pipeline coordinator's lifecycle state.
type State uint8

const (
	// StateUnconfigured is the initial state, before any registration.
	StateUnconfigured State = iota

	// StateConfiguring means a RegisterInputStream call is in flight.
	StateConfiguring

	// StateReady means a stream is registered and frames are accepted.
	StateReady

	// StateProcessing means frames are flowing through the chain.
	StateProcessing

	// StateFlushing means a Flush is discarding in-flight frames.
	StateFlushing

	// StateEnded means end-of-input has fully propagated.
	StateEnded
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "Unconfigured"
	case StateConfiguring:
		return "Configuring"
	case StateReady:
		return "Ready"
	case StateProcessing:
		return "Processing"
	case StateFlushing:
		return "Flushing"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Processor is the frame pipeline coordinator. It owns the stage chain,
// the texture pool and the single execution goroutine that serializes
// all draw work.
//
// All entry points are safe for concurrent use. Frame and control work
// is enqueued onto the execution goroutine; controlled frame release and
// flushing return textures to the pool from the caller's goroutine, so
// they can make progress while the execution goroutine is blocked on
// texture-pool backpressure. That backpressure only ever blocks the
// execution goroutine, never a caller.
type Processor struct {
	exec     *task.Executor
	pool     *texture.Pool
	renderer render.Renderer
	output   *outputController
	opts     options
	log      *slog.Logger

	state      atomic.Uint32
	registered atomic.Bool
	released   atomic.Bool
	pending    atomic.Int64

	// Owned by the execution goroutine.
	chain         *shader.Chain
	active        registration
	outputWidth   int
	outputHeight  int
	endedSignaled bool
}

// registration captures one RegisterInputStream call.
type registration struct {
	inputType InputType
	effects   []effect.Effect
	info      FrameInfo
}

// New creates a Processor and starts its execution goroutine.
//
// The default pipeline renders in software with automatic frame release;
// see the Option functions for GPU rendering, controlled release and
// bounded texture output.
func New(opts ...Option) (*Processor, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = Logger()
	}
	if o.listenerExecutor == nil {
		o.listenerExecutor = func(fn func()) { fn() }
	}
	if o.now == nil {
		o.now = func() int64 { return time.Now().UnixNano() }
	}

	p := &Processor{
		pool: o.pool(),
		opts: o,
		log:  o.log,
	}

	switch {
	case o.renderer != nil:
		p.renderer = o.renderer
	case o.device != nil:
		gr, err := render.NewGPURenderer(o.device, o.log)
		if err != nil {
			p.pool.Close()
			return nil, err
		}
		p.renderer = gr
	default:
		p.renderer = render.NewSoftwareRenderer()
	}

	p.output = &outputController{
		pool:       p.pool,
		renderer:   p.renderer,
		target:     o.target,
		notify:     p.notify,
		now:        o.now,
		controlled: o.controlled,
		onEnded:    p.handleStreamEnded,
	}

	p.exec = task.NewExecutor(p.reportError, o.log)
	return p, nil
}

// CurrentState returns the coordinator's lifecycle state.
func (p *Processor) CurrentState() State {
	return State(p.state.Load())
}

// PendingInputFrameCount reports how many queued input frames have not
// yet been processed. Registrations do not count as pending frames.
func (p *Processor) PendingInputFrameCount() int64 {
	return p.pending.Load()
}

// RegisterInputStream declares a new segment of input frames with its
// ordered effect list and geometry. The stage chain is rebuilt when the
// effects or geometry differ from the active chain.
//
// Validation errors are returned synchronously; chain build errors are
// delivered through Listener.OnError. Listener.OnInputStreamRegistered
// fires once per call, strictly in submission order, even when
// registrations arrive faster than frames are processed.
func (p *Processor) RegisterInputStream(inputType InputType, effects []effect.Effect, info FrameInfo) error {
	if p.released.Load() {
		return ErrReleased
	}
	if !inputType.valid() {
		return fmt.Errorf("%w: input type %d", ErrUnsupported, inputType)
	}
	if err := info.Validate(); err != nil {
		return err
	}
	if err := effect.Validate(effects); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	p.registered.Store(true)
	p.state.Store(uint32(StateConfiguring))

	reg := registration{
		inputType: inputType,
		effects:   append([]effect.Effect(nil), effects...),
		info:      info,
	}
	p.exec.Submit(func() error {
		if err := p.configure(reg); err != nil {
			return wrapProcessing("registerInputStream", UnknownTimestamp, err)
		}
		p.notify(func(l Listener) { l.OnInputStreamRegistered() })
		p.state.Store(uint32(StateReady))
		return nil
	})
	return nil
}

// configure rebuilds the stage chain for a registration. Runs on the
// execution goroutine. The chain is rebuilt unconditionally: stage state
// (frame caches, drop candidates) must not leak across stream segments,
// and descriptors may hold functions or tables that defeat structural
// comparison.
func (p *Processor) configure(reg registration) error {
	if p.chain != nil {
		p.chain.Flush()
		if err := p.chain.Release(); err != nil {
			p.log.Warn("framepipe: releasing previous chain", "error", err)
		}
		p.chain = nil
	}

	chain, err := shader.NewChain(reg.effects, shader.Config{
		Pool:     p.pool,
		Renderer: p.renderer,
		Log:      p.log,
		NoMerge:  p.opts.noMerge,
	})
	if err != nil {
		return err
	}
	chain.SetOutputListener(p.output)

	w, h, err := chain.Configure(reg.info.Width, reg.info.Height)
	if err != nil {
		_ = chain.Release()
		return err
	}

	p.chain = chain
	p.active = reg
	p.endedSignaled = false
	if w != p.outputWidth || h != p.outputHeight {
		p.outputWidth, p.outputHeight = w, h
		p.notify(func(l Listener) { l.OnOutputSizeChanged(w, h) })
	}
	p.log.Info("framepipe: input stream configured",
		slog.String("inputType", reg.inputType.String()),
		slog.Int("effects", len(reg.effects)),
		slog.Int("outputWidth", w),
		slog.Int("outputHeight", h))
	return nil
}

// QueueInputTexture submits one decoded frame. The texture's pixels are
// copied into a pool texture on the execution goroutine; the caller may
// reuse tex as soon as this returns.
//
// The frame's timestamp is offset by the registration's OffsetUs.
func (p *Processor) QueueInputTexture(tex *texture.Texture, presentationTimeUs int64) error {
	if p.released.Load() {
		return ErrReleased
	}
	if !p.registered.Load() {
		return fmt.Errorf("%w: no input stream registered", ErrInvalidState)
	}
	if tex == nil {
		return fmt.Errorf("%w: nil input texture", ErrUnsupported)
	}

	p.pending.Add(1)
	p.exec.SubmitDiscardable(func() error {
		defer p.pending.Add(-1)
		ts := p.active.info.OffsetUs + presentationTimeUs
		if p.chain == nil {
			return wrapProcessing("queueInputTexture", ts,
				fmt.Errorf("%w: no active chain", ErrInvalidState))
		}
		if tex.Width() != p.active.info.Width || tex.Height() != p.active.info.Height {
			return wrapProcessing("queueInputTexture", ts,
				fmt.Errorf("%w: frame %dx%d does not match registered %dx%d",
					ErrUnsupported, tex.Width(), tex.Height(),
					p.active.info.Width, p.active.info.Height))
		}
		frame, err := p.pool.Acquire(tex.Width(), tex.Height())
		if err != nil {
			return wrapProcessing("queueInputTexture", ts, err)
		}
		frame.CopyFrom(tex)
		p.state.Store(uint32(StateProcessing))
		if err := p.chain.QueueInputFrame(shader.Frame{
			Texture:            frame,
			PresentationTimeUs: ts,
		}); err != nil {
			return wrapProcessing("drawFrame", ts, err)
		}
		return nil
	}, func() { p.pending.Add(-1) })
	return nil
}

// QueueInputBitmap submits a still image as a synthesized frame sequence:
// frames at OffsetUs, OffsetUs + 1/rate, OffsetUs + 2/rate and so on,
// strictly below OffsetUs + durationUs. A final partial period is
// truncated, never rounded up.
func (p *Processor) QueueInputBitmap(img image.Image, durationUs int64, frameRate float64) error {
	if p.released.Load() {
		return ErrReleased
	}
	if !p.registered.Load() {
		return fmt.Errorf("%w: no input stream registered", ErrInvalidState)
	}
	if img == nil {
		return fmt.Errorf("%w: nil input bitmap", ErrUnsupported)
	}
	if durationUs <= 0 || frameRate <= 0 {
		return fmt.Errorf("%w: bitmap duration %dus at %vfps", ErrUnsupported, durationUs, frameRate)
	}

	timestamps := bitmapTimestamps(durationUs, frameRate)
	p.pending.Add(int64(len(timestamps)))
	p.exec.SubmitDiscardable(func() error {
		if p.chain == nil {
			p.pending.Add(int64(-len(timestamps)))
			return wrapProcessing("queueInputBitmap", UnknownTimestamp,
				fmt.Errorf("%w: no active chain", ErrInvalidState))
		}
		for i, ts := range timestamps {
			streamTs := p.active.info.OffsetUs + ts
			frame, err := p.pool.Acquire(p.active.info.Width, p.active.info.Height)
			if err != nil {
				p.pending.Add(int64(-(len(timestamps) - i)))
				return wrapProcessing("queueInputBitmap", streamTs, err)
			}
			frame.DrawImage(img)
			p.state.Store(uint32(StateProcessing))
			p.pending.Add(-1)
			if err := p.chain.QueueInputFrame(shader.Frame{
				Texture:            frame,
				PresentationTimeUs: streamTs,
			}); err != nil {
				return wrapProcessing("drawFrame", streamTs, err)
			}
		}
		return nil
	}, func() { p.pending.Add(int64(-len(timestamps))) })
	return nil
}

// bitmapTimestamps synthesizes the relative frame times of a bitmap
// segment: k/rate for all k strictly below the duration. A final partial
// period is truncated.
func bitmapTimestamps(durationUs int64, frameRate float64) []int64 {
	periodUs := 1e6 / frameRate
	var out []int64
	for k := 0; ; k++ {
		ts := int64(float64(k) * periodUs)
		if ts >= durationUs {
			return out
		}
		out = append(out, ts)
	}
}

// SignalEndOfInput propagates end-of-stream through the full chain in
// order. Listener.OnEnded fires exactly once per unflushed completion.
func (p *Processor) SignalEndOfInput() error {
	if p.released.Load() {
		return ErrReleased
	}
	if !p.registered.Load() {
		return fmt.Errorf("%w: no input stream registered", ErrInvalidState)
	}
	p.exec.Submit(func() error {
		if p.chain == nil {
			return wrapProcessing("signalEndOfInput", UnknownTimestamp,
				fmt.Errorf("%w: no active chain", ErrInvalidState))
		}
		if err := p.chain.SignalEndOfCurrentInputStream(); err != nil {
			return wrapProcessing("signalEndOfInput", UnknownTimestamp, err)
		}
		return nil
	})
	return nil
}

// handleStreamEnded runs on the execution goroutine when end-of-stream
// reaches the output controller.
func (p *Processor) handleStreamEnded() error {
	if p.endedSignaled {
		return nil
	}
	p.endedSignaled = true
	p.state.Store(uint32(StateEnded))
	p.notify(func(l Listener) { l.OnEnded() })
	return nil
}

// Flush discards all queued and buffered frames across every stage and
// resets the output controller's pending queue, then blocks until the
// pipeline has settled. Frames already delivered before the flush are
// not un-delivered; a frame in flight when Flush is observed may still
// complete. That race is documented best-effort behavior.
//
// Registrations and end-of-stream signals queued behind the discarded
// frames are not discarded: they run after the flush, in submission
// order, notifying once each.
//
// Flush before any registration is an invalid-state error.
func (p *Processor) Flush() error {
	if p.released.Load() {
		return ErrReleased
	}
	if !p.registered.Load() {
		return fmt.Errorf("%w: flush before input stream registration", ErrInvalidState)
	}

	p.state.Store(uint32(StateFlushing))
	// Pending output frames are returned to the pool from this goroutine
	// first: the execution goroutine may be parked on pool backpressure,
	// and the barrier below cannot run until it is unblocked.
	p.output.beginFlush()
	p.exec.Flush(func() error {
		if p.chain != nil {
			p.chain.Flush()
		}
		p.endedSignaled = false
		p.output.endFlush()
		return nil
	})
	p.state.Store(uint32(StateReady))
	return nil
}

// RenderOutputFrame releases the oldest pending output frame. Only valid
// in controlled release mode (WithControlledRelease).
//
// renderTimeNs is the desired release time: a wall-clock timestamp in
// nanoseconds, RenderImmediately, or DropFrame. A release time already
// in the past still releases the frame, at an actual time at or after
// the current time.
//
// The release runs on the caller's goroutine and its texture returns to
// the pool immediately, so releasing stays possible while the execution
// goroutine is blocked on pool backpressure. Errors are returned
// synchronously.
func (p *Processor) RenderOutputFrame(renderTimeNs int64) error {
	if p.released.Load() {
		return ErrReleased
	}
	if !p.opts.controlled {
		return fmt.Errorf("%w: RenderOutputFrame requires controlled release mode", ErrInvalidState)
	}
	return p.output.releaseOldest(renderTimeNs)
}

// Release tears down the stage chain, the texture pool and the execution
// goroutine. Safe to call multiple times; only the first call does the
// work. Release blocks until teardown completes.
func (p *Processor) Release() {
	if !p.released.CompareAndSwap(false, true) {
		return
	}
	// Unpin pending output frames before waiting on the execution
	// goroutine; the flush window stays open for good, so frames still
	// draining through the queued tasks recycle instead of pending.
	p.output.beginFlush()
	p.exec.Release(func() error {
		if p.chain != nil {
			p.chain.Flush()
			if err := p.chain.Release(); err != nil {
				p.log.Warn("framepipe: chain release", "error", err)
			}
			p.chain = nil
		}
		return p.renderer.Release()
	})
	p.pool.Close()
}

// notify delivers one listener event on the configured listener
// executor.
func (p *Processor) notify(fn func(Listener)) {
	l := p.opts.listener
	if l == nil {
		return
	}
	p.opts.listenerExecutor(func() { fn(l) })
}

// reportError forwards execution-goroutine errors to the error listener.
func (p *Processor) reportError(err error) {
	pe := wrapProcessing("process", UnknownTimestamp, err)
	p.log.Warn("framepipe: processing error", "error", pe)
	p.notify(func(l Listener) { l.OnError(pe) })
}
