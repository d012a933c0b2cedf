package framepipe

import (
	"fmt"
	"sync"

	"github.com/gogpu/framepipe/internal/shader"
	"github.com/gogpu/framepipe/render"
	"github.com/gogpu/framepipe/texture"
)

// Timestamp sentinels accepted by Processor.RenderOutputFrame.
const (
	// RenderImmediately releases the oldest pending frame using the
	// controller's current time.
	RenderImmediately int64 = -1

	// DropFrame discards the oldest pending frame without rendering it.
	DropFrame int64 = -2
)

// outputController receives finished frames from the tail of the stage
// chain and either renders them immediately (automatic mode) or holds
// them in a FIFO pending queue for explicit client release (controlled
// mode).
//
// Frames arrive from chain processing on the execution goroutine, but
// releaseOldest and beginFlush run on client goroutines: pending textures
// must be returnable to the pool even while the execution goroutine is
// blocked on pool backpressure, so the pending queue carries its own
// lock instead of relying on execution-goroutine ownership.
type outputController struct {
	pool     *texture.Pool
	renderer render.Renderer
	target   render.RenderTarget
	notify   func(func(Listener))
	now      func() int64

	controlled bool

	mu      sync.Mutex
	pending []shader.Frame
	// flushing diverts frames completing during a flush window straight
	// back to the pool, so they cannot pin pool capacity from the
	// pending queue while the flush barrier is still waiting to run.
	flushing bool

	// onEnded is the processor's end-of-stream hook, set before the
	// controller is wired into a chain.
	onEnded func() error
}

// OnOutputFrameAvailable implements shader.OutputListener.
//
// In controlled mode the frame joins the pending queue before the
// availability callback fires, so a listener may call RenderOutputFrame
// from inside the callback.
func (c *outputController) OnOutputFrameAvailable(f shader.Frame) error {
	ts := f.PresentationTimeUs
	if c.controlled {
		c.mu.Lock()
		if c.flushing {
			c.mu.Unlock()
			return c.pool.Release(f.Texture)
		}
		c.pending = append(c.pending, f)
		c.mu.Unlock()
		c.notify(func(l Listener) { l.OnOutputFrameAvailableForRendering(ts) })
		return nil
	}
	c.notify(func(l Listener) { l.OnOutputFrameAvailableForRendering(ts) })
	// Automatic mode reuses the frame's own timestamp as release time.
	return c.render(f, f.PresentationTimeUs*1000)
}

// OnCurrentOutputStreamEnded implements shader.OutputListener. The
// processor handles end-of-stream bookkeeping through onEnded.
func (c *outputController) OnCurrentOutputStreamEnded() error {
	if c.onEnded != nil {
		return c.onEnded()
	}
	return nil
}

// releaseOldest releases the oldest pending frame per the controlled
// release contract: DropFrame discards silently, RenderImmediately and
// elapsed timestamps release at the current time, future timestamps
// release at the requested time.
//
// Runs on the caller's goroutine. Returning the texture from here is
// what unblocks an execution goroutine parked on pool backpressure.
func (c *outputController) releaseOldest(renderTimeNs int64) error {
	if !c.controlled {
		return fmt.Errorf("%w: RenderOutputFrame requires controlled release mode", ErrInvalidState)
	}
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: no output frame pending release", ErrInvalidState)
	}
	f := c.pending[0]
	copy(c.pending, c.pending[1:])
	c.pending = c.pending[:len(c.pending)-1]
	c.mu.Unlock()

	if renderTimeNs == DropFrame {
		return c.pool.Release(f.Texture)
	}

	actual := renderTimeNs
	if now := c.now(); renderTimeNs == RenderImmediately || renderTimeNs < now {
		// Late release still succeeds, at a time at or after "now".
		actual = now
	}
	return c.render(f, actual)
}

// render draws the frame into the target, recycles the texture and fires
// the rendered callback.
func (c *outputController) render(f shader.Frame, releaseTimeNs int64) error {
	if c.target != nil {
		if err := c.renderer.Blit(f.Texture, c.target); err != nil {
			_ = c.pool.Release(f.Texture)
			return err
		}
	}
	if err := c.pool.Release(f.Texture); err != nil {
		return err
	}
	c.notify(func(l Listener) { l.OnOutputFrameRendered(releaseTimeNs) })
	return nil
}

// beginFlush discards all pending frames and opens the flush window:
// until endFlush, frames completing on the execution goroutine go
// straight back to the pool instead of the pending queue. Runs on the
// flushing client's goroutine.
func (c *outputController) beginFlush() {
	c.mu.Lock()
	c.flushing = true
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, f := range pending {
		_ = c.pool.Release(f.Texture)
	}
}

// endFlush closes the flush window. Runs inside the flush barrier on the
// execution goroutine, after the chain's buffers are cleared.
func (c *outputController) endFlush() {
	c.mu.Lock()
	c.flushing = false
	c.mu.Unlock()
}

// pendingCount reports the frames awaiting controlled release.
func (c *outputController) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
