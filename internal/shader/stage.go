package shader

import (
	"log/slog"

	"github.com/gogpu/framepipe/render"
	"github.com/gogpu/framepipe/texture"
)

// Frame is one image unit flowing between stages: a texture plus its
// presentation timestamp.
//
// Ownership of the texture travels with the frame. A stage that receives
// a frame either forwards the texture downstream or releases it to the
// pool; it never does both.
type Frame struct {
	// Texture holds the pixel data. Always pool-owned inside a chain.
	Texture *texture.Texture

	// PresentationTimeUs is the frame's presentation timestamp in
	// microseconds.
	PresentationTimeUs int64
}

// Stage is one transform step in the effect chain.
//
// The contract mirrors the per-frame flow of the pipeline: Configure is
// geometry negotiation and happens before any frame of a given size,
// QueueInputFrame hands over one frame, SignalEndOfCurrentInputStream
// flushes buffered frames downstream, Flush discards them instead.
type Stage interface {
	// Configure negotiates geometry: given the input frame size it
	// returns the size of the frames this stage will emit. Called once
	// per distinct input geometry, before any frame of that geometry.
	Configure(inputWidth, inputHeight int) (outputWidth, outputHeight int, err error)

	// QueueInputFrame submits one frame. The stage takes ownership of
	// the frame's texture. Output frames, if any, are delivered to the
	// output listener before QueueInputFrame returns.
	QueueInputFrame(f Frame) error

	// SignalEndOfCurrentInputStream drains buffered frames downstream,
	// then propagates the end-of-stream signal to the output listener.
	SignalEndOfCurrentInputStream() error

	// Flush discards all buffered frames, returning their textures to
	// the pool. The stage is ready for new input afterwards.
	Flush()

	// Release frees the stage's resources. Buffered frames are
	// discarded as by Flush.
	Release() error

	// SetOutputListener wires the downstream consumer. Must be called
	// before the first frame.
	SetOutputListener(l OutputListener)
}

// OutputListener receives a stage's output frames in emission order.
type OutputListener interface {
	// OnOutputFrameAvailable delivers one finished frame; the receiver
	// takes ownership of the texture.
	OnOutputFrameAvailable(f Frame) error

	// OnCurrentOutputStreamEnded signals that the stage has emitted the
	// last frame of the current input stream.
	OnCurrentOutputStreamEnded() error
}

// Config carries the shared resources every stage draws on.
type Config struct {
	// Pool provides the textures frames are drawn into.
	Pool *texture.Pool

	// Renderer executes the draw operations.
	Renderer render.Renderer

	// Log receives per-stage debug logging. Nil discards.
	Log *slog.Logger

	// NoMerge disables the planning pass that merges adjacent compatible
	// effects into single stages. Every descriptor then gets its own
	// stage. Merging is semantically transparent, so this only matters
	// for diagnosing a suspected planner bug.
	NoMerge bool
}

func (c Config) logger() *slog.Logger {
	if c.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Log
}

// baseStage carries the listener wiring shared by all stages.
type baseStage struct {
	cfg Config
	out OutputListener
}

func (b *baseStage) SetOutputListener(l OutputListener) { b.out = l }

func (b *baseStage) emit(f Frame) error {
	if b.out == nil {
		// No consumer: recycle instead of leaking.
		return b.cfg.Pool.Release(f.Texture)
	}
	return b.out.OnOutputFrameAvailable(f)
}

func (b *baseStage) emitEnded() error {
	if b.out == nil {
		return nil
	}
	return b.out.OnCurrentOutputStreamEnded()
}

// discard returns a frame's texture to the pool, tolerating textures the
// pool does not own (client-supplied inputs).
func (b *baseStage) discard(f Frame) {
	if f.Texture == nil {
		return
	}
	_ = b.cfg.Pool.Release(f.Texture)
}
