package shader

import (
	"fmt"

	"github.com/gogpu/framepipe/effect"
)

// transformStage draws each frame through an affine matrix. Adjacent
// matrix transforms are merged into one stage before the chain is built,
// so a single draw covers any run of rotate/scale/translate effects.
type transformStage struct {
	baseStage
	transform effect.MatrixTransform

	outWidth  int
	outHeight int
}

func newTransformStage(cfg Config, t effect.MatrixTransform) *transformStage {
	return &transformStage{baseStage: baseStage{cfg: cfg}, transform: t}
}

func (s *transformStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	if inputWidth <= 0 || inputHeight <= 0 {
		return 0, 0, fmt.Errorf("shader: invalid input size %dx%d", inputWidth, inputHeight)
	}
	s.outWidth, s.outHeight = s.transform.OutputSize(inputWidth, inputHeight)
	return s.outWidth, s.outHeight, nil
}

func (s *transformStage) QueueInputFrame(f Frame) error {
	dst, err := s.cfg.Pool.Acquire(s.outWidth, s.outHeight)
	if err != nil {
		s.discard(f)
		return err
	}
	if err := s.cfg.Renderer.DrawTransformed(f.Texture, dst, s.transform.Matrix); err != nil {
		s.discard(f)
		s.discard(Frame{Texture: dst})
		return err
	}
	s.discard(f)
	return s.emit(Frame{Texture: dst, PresentationTimeUs: f.PresentationTimeUs})
}

func (s *transformStage) SignalEndOfCurrentInputStream() error { return s.emitEnded() }

func (s *transformStage) Flush() {}

func (s *transformStage) Release() error { return nil }

// cropStage copies a fixed rectangle out of each frame.
type cropStage struct {
	baseStage
	crop effect.Crop
}

func newCropStage(cfg Config, c effect.Crop) *cropStage {
	return &cropStage{baseStage: baseStage{cfg: cfg}, crop: c}
}

func (s *cropStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	if s.crop.Width > inputWidth || s.crop.Height > inputHeight {
		return 0, 0, fmt.Errorf("shader: crop %dx%d exceeds input %dx%d",
			s.crop.Width, s.crop.Height, inputWidth, inputHeight)
	}
	return s.crop.Width, s.crop.Height, nil
}

func (s *cropStage) QueueInputFrame(f Frame) error {
	dst, err := s.cfg.Pool.Acquire(s.crop.Width, s.crop.Height)
	if err != nil {
		s.discard(f)
		return err
	}
	if err := s.cfg.Renderer.Crop(f.Texture, dst, s.crop.X, s.crop.Y); err != nil {
		s.discard(f)
		s.discard(Frame{Texture: dst})
		return err
	}
	s.discard(f)
	return s.emit(Frame{Texture: dst, PresentationTimeUs: f.PresentationTimeUs})
}

func (s *cropStage) SignalEndOfCurrentInputStream() error { return s.emitEnded() }

func (s *cropStage) Flush() {}

func (s *cropStage) Release() error { return nil }
