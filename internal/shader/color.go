package shader

import (
	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/internal/filter"
)

// colorOp applies one per-pixel color transform in place.
type colorOp func(data []byte)

// colorStage applies a sequence of per-pixel color transforms. Runs of
// adjacent color effects compile into one stage: matrix-expressible
// effects are pre-concatenated into a single color matrix by the planner,
// HSL and LUT transforms keep their own op in the sequence.
type colorStage struct {
	baseStage
	ops []colorOp

	width  int
	height int
}

func newColorStage(cfg Config, effects []effect.Effect) *colorStage {
	s := &colorStage{baseStage: baseStage{cfg: cfg}}
	for _, e := range effects {
		switch e := e.(type) {
		case effect.RGBAMatrix:
			m := e.Matrix
			s.ops = append(s.ops, func(data []byte) {
				filter.ApplyColorMatrix(m, data, data)
			})
		case effect.Contrast:
			m := e.ColorMatrix()
			s.ops = append(s.ops, func(data []byte) {
				filter.ApplyColorMatrix(m, data, data)
			})
		case effect.AlphaScale:
			m := e.ColorMatrix()
			s.ops = append(s.ops, func(data []byte) {
				filter.ApplyColorMatrix(m, data, data)
			})
		case effect.HSLAdjust:
			if e.IsNoOp() {
				continue
			}
			adj := e
			s.ops = append(s.ops, func(data []byte) {
				filter.ApplyHSL(adj, data, data)
			})
		case effect.CubeLUT:
			lut := e
			s.ops = append(s.ops, func(data []byte) {
				filter.ApplyLUT(lut, data, data)
			})
		}
	}
	return s
}

func (s *colorStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	s.width, s.height = inputWidth, inputHeight
	return inputWidth, inputHeight, nil
}

func (s *colorStage) QueueInputFrame(f Frame) error {
	dst, err := s.cfg.Pool.Acquire(s.width, s.height)
	if err != nil {
		s.discard(f)
		return err
	}
	dst.CopyFrom(f.Texture)
	s.discard(f)
	for _, op := range s.ops {
		op(dst.Data())
	}
	return s.emit(Frame{Texture: dst, PresentationTimeUs: f.PresentationTimeUs})
}

func (s *colorStage) SignalEndOfCurrentInputStream() error { return s.emitEnded() }

func (s *colorStage) Flush() {}

func (s *colorStage) Release() error { return nil }
