package shader

import (
	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/internal/filter"
)

// blurStage applies a separable Gaussian blur whose strength may vary
// with the frame's presentation time.
type blurStage struct {
	baseStage
	blur effect.Blur

	width  int
	height int
}

func newBlurStage(cfg Config, b effect.Blur) *blurStage {
	return &blurStage{baseStage: baseStage{cfg: cfg}, blur: b}
}

func (s *blurStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	s.width, s.height = inputWidth, inputHeight
	return inputWidth, inputHeight, nil
}

func (s *blurStage) QueueInputFrame(f Frame) error {
	sigmaX, sigmaY := s.blur.SigmaAt(f.PresentationTimeUs)
	if sigmaX <= 0 && sigmaY <= 0 {
		return s.emit(f)
	}
	dst, err := s.cfg.Pool.Acquire(s.width, s.height)
	if err != nil {
		s.discard(f)
		return err
	}
	filter.SeparableBlur(f.Texture.Data(), dst.Data(), s.width, s.height, sigmaX, sigmaY)
	s.discard(f)
	return s.emit(Frame{Texture: dst, PresentationTimeUs: f.PresentationTimeUs})
}

func (s *blurStage) SignalEndOfCurrentInputStream() error { return s.emitEnded() }

func (s *blurStage) Flush() {}

func (s *blurStage) Release() error { return nil }
