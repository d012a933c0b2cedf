package framepipe

import (
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/texture"
)

// recorder is a Listener capturing every event for assertions.
type recorder struct {
	mu         sync.Mutex
	registered int
	sizes      [][2]int
	available  []int64
	rendered   []int64
	errs       []error
	ended      int
}

func (r *recorder) OnInputStreamRegistered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered++
}

func (r *recorder) OnOutputSizeChanged(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes = append(r.sizes, [2]int{w, h})
}

func (r *recorder) OnOutputFrameAvailableForRendering(us int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = append(r.available, us)
}

func (r *recorder) OnOutputFrameRendered(ns int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, ns)
}

func (r *recorder) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) OnEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *recorder) snapshot() (registered int, available, rendered []int64, ended int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered,
		append([]int64(nil), r.available...),
		append([]int64(nil), r.rendered...),
		r.ended
}

func (r *recorder) errCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func newTestProcessor(t *testing.T, rec *recorder, opts ...Option) *Processor {
	t.Helper()
	p, err := New(append([]Option{WithListener(rec)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Release)
	return p
}

func registerStream(t *testing.T, p *Processor, w, h int, effects ...effect.Effect) {
	t.Helper()
	err := p.RegisterInputStream(InputTypeSurface, effects, FrameInfo{Width: w, Height: h})
	if err != nil {
		t.Fatalf("RegisterInputStream: %v", err)
	}
}

func inputFrame(w, h int) *texture.Texture {
	tex := texture.New(w, h)
	for i := range tex.Data() {
		tex.Data()[i] = uint8(i)
	}
	return tex
}

func TestFlushBeforeRegistrationFails(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)

	if err := p.Flush(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Flush before registration = %v, want ErrInvalidState", err)
	}
}

func TestQueueBeforeRegistrationFails(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)

	if err := p.QueueInputTexture(inputFrame(4, 4), 0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("QueueInputTexture before registration = %v, want ErrInvalidState", err)
	}
	if err := p.SignalEndOfInput(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("SignalEndOfInput before registration = %v, want ErrInvalidState", err)
	}
}

func TestAutomaticModeDeliversFramesInOrder(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)
	registerStream(t, p, 4, 4)

	times := []int64{0, 33333, 66666}
	for _, ts := range times {
		if err := p.QueueInputTexture(inputFrame(4, 4), ts); err != nil {
			t.Fatalf("QueueInputTexture: %v", err)
		}
	}
	if err := p.SignalEndOfInput(); err != nil {
		t.Fatalf("SignalEndOfInput: %v", err)
	}

	waitFor(t, func() bool {
		_, _, _, ended := rec.snapshot()
		return ended == 1
	}, "end of stream")

	_, available, rendered, _ := rec.snapshot()
	if len(available) != len(times) {
		t.Fatalf("available = %v, want timestamps %v", available, times)
	}
	for i, ts := range times {
		if available[i] != ts {
			t.Fatalf("available[%d] = %d, want %d", i, available[i], ts)
		}
	}
	// Automatic mode renders every frame, reusing its own timestamp.
	if len(rendered) != len(times) {
		t.Fatalf("rendered %d frames, want %d", len(rendered), len(times))
	}
	if rec.errCount() != 0 {
		t.Fatalf("unexpected errors: %d", rec.errCount())
	}
}

func TestRegistrationNotificationsInSubmissionOrder(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)

	// Registrations arriving faster than frames are processed still
	// notify once each, in order.
	for i := 0; i < 5; i++ {
		registerStream(t, p, 4+i, 4+i)
	}
	waitFor(t, func() bool {
		registered, _, _, _ := rec.snapshot()
		return registered == 5
	}, "all registrations")

	if got := p.PendingInputFrameCount(); got != 0 {
		t.Fatalf("pending frames after registrations = %d, want 0", got)
	}
}

func TestRegistrationDoesNotIncreasePendingFrames(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)

	registerStream(t, p, 4, 4)
	if got := p.PendingInputFrameCount(); got != 0 {
		t.Fatalf("pending = %d immediately after registration, want 0", got)
	}
}

func TestEndedFiresExactlyOnce(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)
	registerStream(t, p, 4, 4)

	if err := p.QueueInputTexture(inputFrame(4, 4), 0); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	if err := p.SignalEndOfInput(); err != nil {
		t.Fatalf("SignalEndOfInput: %v", err)
	}
	if err := p.SignalEndOfInput(); err != nil {
		t.Fatalf("second SignalEndOfInput: %v", err)
	}

	waitFor(t, func() bool {
		_, _, _, ended := rec.snapshot()
		return ended >= 1
	}, "end of stream")
	time.Sleep(20 * time.Millisecond)

	if _, _, _, ended := rec.snapshot(); ended != 1 {
		t.Fatalf("ended fired %d times, want exactly 1", ended)
	}
}

func TestFlushIdempotentWhenNothingPending(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)
	registerStream(t, p, 4, 4)

	if err := p.QueueInputTexture(inputFrame(4, 4), 0); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	waitFor(t, func() bool {
		_, available, _, _ := rec.snapshot()
		return len(available) == 1
	}, "frame delivery")

	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := p.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}

	// Frames delivered before the flush stay delivered; no new frames
	// appear.
	_, available, _, _ := rec.snapshot()
	if len(available) != 1 {
		t.Fatalf("available = %d frames after flush, want 1", len(available))
	}
}

func TestFlushRaceBoundedOutput(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)
	registerStream(t, p, 4, 4)

	const queued = 20
	for i := 0; i < queued; i++ {
		if err := p.QueueInputTexture(inputFrame(4, 4), int64(i)*1000); err != nil {
			t.Fatalf("QueueInputTexture: %v", err)
		}
	}
	// Race the flush against in-flight processing: the outcome is
	// nondeterministic but bounded, and never an error.
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	_, available, _, _ := rec.snapshot()
	if len(available) > queued {
		t.Fatalf("flush delivered %d frames, more than the %d queued", len(available), queued)
	}
	if rec.errCount() != 0 {
		t.Fatalf("flush race produced %d errors", rec.errCount())
	}

	// The pipeline still accepts work afterwards.
	if err := p.QueueInputTexture(inputFrame(4, 4), 999000); err != nil {
		t.Fatalf("QueueInputTexture after flush: %v", err)
	}
	waitFor(t, func() bool {
		_, av, _, _ := rec.snapshot()
		return len(av) > 0 && av[len(av)-1] == 999000
	}, "post-flush frame delivery")
}

func TestControlledReleaseUnderPoolBackpressure(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec, WithControlledRelease(), WithPoolCapacity(1))
	registerStream(t, p, 4, 4)

	if err := p.QueueInputTexture(inputFrame(4, 4), 1000); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	waitFor(t, func() bool { return p.output.pendingCount() == 1 }, "first frame pending")

	// The pending frame pins the pool's only texture, so this frame
	// parks the execution goroutine inside the pool until a release
	// comes back from the client side.
	if err := p.QueueInputTexture(inputFrame(4, 4), 2000); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}

	if err := p.RenderOutputFrame(RenderImmediately); err != nil {
		t.Fatalf("RenderOutputFrame: %v", err)
	}
	waitFor(t, func() bool {
		_, available, _, _ := rec.snapshot()
		return len(available) == 2
	}, "second frame delivery under backpressure")

	if err := p.RenderOutputFrame(DropFrame); err != nil {
		t.Fatalf("RenderOutputFrame(DropFrame): %v", err)
	}
	if got := p.output.pendingCount(); got != 0 {
		t.Fatalf("pendingCount = %d after draining, want 0", got)
	}
	if rec.errCount() != 0 {
		t.Fatalf("backpressure produced %d errors", rec.errCount())
	}
}

func TestFlushUnderPoolBackpressure(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec, WithControlledRelease(), WithPoolCapacity(1))
	registerStream(t, p, 4, 4)

	if err := p.QueueInputTexture(inputFrame(4, 4), 1000); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	waitFor(t, func() bool { return p.output.pendingCount() == 1 }, "first frame pending")

	// Park the execution goroutine on the exhausted pool, then flush
	// without ever releasing a frame explicitly: the flush itself must
	// return the pending texture and unblock the pipeline.
	if err := p.QueueInputTexture(inputFrame(4, 4), 2000); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := p.output.pendingCount(); got != 0 {
		t.Fatalf("pendingCount = %d after flush, want 0", got)
	}
	if got := p.PendingInputFrameCount(); got != 0 {
		t.Fatalf("pending input frames = %d after flush, want 0", got)
	}

	// The pipeline keeps working afterwards.
	if err := p.QueueInputTexture(inputFrame(4, 4), 999000); err != nil {
		t.Fatalf("QueueInputTexture after flush: %v", err)
	}
	waitFor(t, func() bool {
		_, available, _, _ := rec.snapshot()
		return len(available) > 0 && available[len(available)-1] == 999000
	}, "post-flush frame delivery")
	if rec.errCount() != 0 {
		t.Fatalf("flush under backpressure produced %d errors", rec.errCount())
	}
}

func TestFlushPreservesQueuedRegistrations(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec, WithControlledRelease(), WithPoolCapacity(1))
	registerStream(t, p, 4, 4)
	waitFor(t, func() bool {
		registered, _, _, _ := rec.snapshot()
		return registered == 1
	}, "first registration")

	// Frame 1 reaches the pending queue and pins the pool's only
	// texture; frame 2 parks the execution goroutine, so everything
	// submitted below is still queued when the flush arrives.
	if err := p.QueueInputTexture(inputFrame(4, 4), 1000); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	waitFor(t, func() bool { return p.output.pendingCount() == 1 }, "first frame pending")
	if err := p.QueueInputTexture(inputFrame(4, 4), 2000); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := p.QueueInputTexture(inputFrame(4, 4), 3000+int64(i)); err != nil {
			t.Fatalf("QueueInputTexture: %v", err)
		}
	}
	registerStream(t, p, 8, 8)

	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	// The queued registration survives the flush and notifies exactly
	// once, in submission order behind the first one.
	waitFor(t, func() bool {
		registered, _, _, _ := rec.snapshot()
		return registered == 2
	}, "second registration notification")
	if got := p.PendingInputFrameCount(); got != 0 {
		t.Fatalf("pending input frames = %d after flush, want 0", got)
	}

	// The surviving registration leaves a live chain for new frames.
	if err := p.QueueInputTexture(inputFrame(8, 8), 999000); err != nil {
		t.Fatalf("QueueInputTexture after flush: %v", err)
	}
	waitFor(t, func() bool {
		_, available, _, _ := rec.snapshot()
		return len(available) > 0 && available[len(available)-1] == 999000
	}, "post-flush frame delivery")

	registered, _, _, _ := rec.snapshot()
	if registered != 2 {
		t.Fatalf("registrations notified %d times, want 2", registered)
	}
	if rec.errCount() != 0 {
		t.Fatalf("flush produced %d errors", rec.errCount())
	}
}

func TestControlledDropRendersNothing(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec, WithControlledRelease())
	registerStream(t, p, 4, 4)

	if err := p.QueueInputTexture(inputFrame(4, 4), 1000); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	waitFor(t, func() bool {
		_, available, _, _ := rec.snapshot()
		return len(available) == 1
	}, "frame availability")

	if err := p.RenderOutputFrame(DropFrame); err != nil {
		t.Fatalf("RenderOutputFrame(DropFrame): %v", err)
	}
	// The dropped frame's texture returns to the pool without a render.
	waitFor(t, func() bool { return p.pool.InUse() == 0 }, "drop processing")

	if _, _, rendered, _ := rec.snapshot(); len(rendered) != 0 {
		t.Fatalf("dropped frame produced %d render callbacks, want 0", len(rendered))
	}
}

func TestControlledLateReleaseStillRenders(t *testing.T) {
	const fakeNow = int64(5_000_000_000)
	rec := &recorder{}
	p := newTestProcessor(t, rec,
		WithControlledRelease(),
		withClock(func() int64 { return fakeNow }),
	)
	registerStream(t, p, 4, 4)

	if err := p.QueueInputTexture(inputFrame(4, 4), 1000); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	waitFor(t, func() bool {
		_, available, _, _ := rec.snapshot()
		return len(available) == 1
	}, "frame availability")

	// The requested release time is far in the past; the release still
	// happens, at an actual time at or after "now".
	if err := p.RenderOutputFrame(1000); err != nil {
		t.Fatalf("RenderOutputFrame: %v", err)
	}
	waitFor(t, func() bool {
		_, _, rendered, _ := rec.snapshot()
		return len(rendered) == 1
	}, "late release")

	_, _, rendered, _ := rec.snapshot()
	if rendered[0] < fakeNow {
		t.Fatalf("actual release time %d before current time %d", rendered[0], fakeNow)
	}
}

func TestControlledFutureReleaseKeepsRequestedTime(t *testing.T) {
	const fakeNow = int64(1_000_000_000)
	rec := &recorder{}
	p := newTestProcessor(t, rec,
		WithControlledRelease(),
		withClock(func() int64 { return fakeNow }),
	)
	registerStream(t, p, 4, 4)

	if err := p.QueueInputTexture(inputFrame(4, 4), 0); err != nil {
		t.Fatalf("QueueInputTexture: %v", err)
	}
	waitFor(t, func() bool {
		_, available, _, _ := rec.snapshot()
		return len(available) == 1
	}, "frame availability")

	want := fakeNow + 500_000_000
	if err := p.RenderOutputFrame(want); err != nil {
		t.Fatalf("RenderOutputFrame: %v", err)
	}
	waitFor(t, func() bool {
		_, _, rendered, _ := rec.snapshot()
		return len(rendered) == 1
	}, "release")

	if _, _, rendered, _ := rec.snapshot(); rendered[0] != want {
		t.Fatalf("release time = %d, want requested %d", rendered[0], want)
	}
}

func TestRenderOutputFrameRequiresControlledMode(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)
	registerStream(t, p, 4, 4)

	if err := p.RenderOutputFrame(RenderImmediately); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("RenderOutputFrame in automatic mode = %v, want ErrInvalidState", err)
	}
}

func TestBitmapSequenceTimestamps(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)

	const offsetUs = int64(250_000)
	err := p.RegisterInputStream(InputTypeBitmap, nil, FrameInfo{
		Width: 4, Height: 4, OffsetUs: offsetUs,
	})
	if err != nil {
		t.Fatalf("RegisterInputStream: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	// One bitmap, one second, two frames per second: exactly two frames.
	if err := p.QueueInputBitmap(img, 1_000_000, 2); err != nil {
		t.Fatalf("QueueInputBitmap: %v", err)
	}
	if err := p.SignalEndOfInput(); err != nil {
		t.Fatalf("SignalEndOfInput: %v", err)
	}

	waitFor(t, func() bool {
		_, _, _, ended := rec.snapshot()
		return ended == 1
	}, "end of stream")

	want := []int64{offsetUs, offsetUs + 500_000}
	_, available, _, _ := rec.snapshot()
	if len(available) != len(want) {
		t.Fatalf("available = %v, want %v", available, want)
	}
	for i := range want {
		if available[i] != want[i] {
			t.Fatalf("frame %d at %d, want %d", i, available[i], want[i])
		}
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	rec := &recorder{}
	p, err := New(WithListener(rec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	registerStream(t, p, 4, 4)

	p.Release()
	p.Release()

	if err := p.QueueInputTexture(inputFrame(4, 4), 0); !errors.Is(err, ErrReleased) {
		t.Fatalf("QueueInputTexture after release = %v, want ErrReleased", err)
	}
	if err := p.Flush(); !errors.Is(err, ErrReleased) {
		t.Fatalf("Flush after release = %v, want ErrReleased", err)
	}
}

func TestEffectChainEndToEnd(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)

	err := p.RegisterInputStream(InputTypeSurface, []effect.Effect{
		effect.MatrixTransform{Matrix: effect.RotateDegrees(180)},
		effect.SpeedChange{Factor: 2},
	}, FrameInfo{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("RegisterInputStream: %v", err)
	}

	for _, ts := range []int64{0, 200_000, 400_000} {
		if err := p.QueueInputTexture(inputFrame(4, 4), ts); err != nil {
			t.Fatalf("QueueInputTexture: %v", err)
		}
	}
	if err := p.SignalEndOfInput(); err != nil {
		t.Fatalf("SignalEndOfInput: %v", err)
	}

	waitFor(t, func() bool {
		_, _, _, ended := rec.snapshot()
		return ended == 1
	}, "end of stream")

	want := []int64{0, 100_000, 200_000}
	_, available, _, _ := rec.snapshot()
	if len(available) != len(want) {
		t.Fatalf("available = %v, want %v", available, want)
	}
	for i := range want {
		if available[i] != want[i] {
			t.Fatalf("frame %d at %d, want %d", i, available[i], want[i])
		}
	}
}

func TestInvalidRegistrationRejectedSynchronously(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(t, rec)

	err := p.RegisterInputStream(InputType(99), nil, FrameInfo{Width: 4, Height: 4})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("invalid input type = %v, want ErrUnsupported", err)
	}

	err = p.RegisterInputStream(InputTypeSurface, nil, FrameInfo{Width: 0, Height: 4})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("invalid geometry = %v, want ErrUnsupported", err)
	}

	err = p.RegisterInputStream(InputTypeSurface, []effect.Effect{
		effect.FrameCache{Capacity: 0},
	}, FrameInfo{Width: 4, Height: 4})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("invalid effect = %v, want ErrUnsupported", err)
	}
}
