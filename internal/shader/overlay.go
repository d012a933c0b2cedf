package shader

import (
	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/internal/overlay"
)

// overlayStage composites the configured overlays onto every frame, in
// declaration order.
type overlayStage struct {
	baseStage
	overlays []effect.Overlay

	width  int
	height int
}

func newOverlayStage(cfg Config, e effect.OverlayEffect) *overlayStage {
	return &overlayStage{baseStage: baseStage{cfg: cfg}, overlays: e.Overlays}
}

func (s *overlayStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	s.width, s.height = inputWidth, inputHeight
	return inputWidth, inputHeight, nil
}

func (s *overlayStage) QueueInputFrame(f Frame) error {
	dst, err := s.cfg.Pool.Acquire(s.width, s.height)
	if err != nil {
		s.discard(f)
		return err
	}
	dst.CopyFrom(f.Texture)
	s.discard(f)
	if err := overlay.Composite(dst.Data(), s.width, s.height, s.overlays); err != nil {
		s.discard(Frame{Texture: dst})
		return err
	}
	return s.emit(Frame{Texture: dst, PresentationTimeUs: f.PresentationTimeUs})
}

func (s *overlayStage) SignalEndOfCurrentInputStream() error { return s.emitEnded() }

func (s *overlayStage) Flush() {}

func (s *overlayStage) Release() error { return nil }
