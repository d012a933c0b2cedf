package shader

import (
	"math"

	"github.com/gogpu/framepipe/effect"
)

// dropStage reduces the frame rate by dropping input frames. Forwarded
// frames keep their original timestamps; the stage never synthesizes new
// ones.
//
// The default strategy snaps each input timestamp to its nearest slot on
// an ideal fixed-rate grid and forwards, per slot, the frame closest to
// the slot's ideal time. A slot's winner is only known once a later slot
// is reached, so exactly one frame is held back at any time. A held
// frame whose slot never completes (end of stream) is dropped, matching
// the grid semantics: the slot's interval was not fully observed.
//
// The simple strategy decimates by the rounded input:output frame ratio.
type dropStage struct {
	baseStage
	drop effect.FrameDrop

	// Default strategy state.
	periodUs  float64
	candidate Frame
	slot      int64
	holding   bool

	// Simple strategy state.
	every int64
	index int64
}

func newDropStage(cfg Config, d effect.FrameDrop) *dropStage {
	s := &dropStage{baseStage: baseStage{cfg: cfg}, drop: d}
	switch d.Strategy {
	case effect.DropSimple:
		s.every = int64(math.Round(d.InputFrameRate / d.TargetFrameRate))
		if s.every < 1 {
			s.every = 1
		}
	default:
		s.periodUs = 1e6 / d.TargetFrameRate
	}
	return s
}

func (s *dropStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	return inputWidth, inputHeight, nil
}

func (s *dropStage) QueueInputFrame(f Frame) error {
	if s.drop.Strategy == effect.DropSimple {
		keep := s.index%s.every == 0
		s.index++
		if !keep {
			s.discard(f)
			return nil
		}
		return s.emit(f)
	}
	return s.queueDefault(f)
}

func (s *dropStage) queueDefault(f Frame) error {
	slot := int64(math.Round(float64(f.PresentationTimeUs) / s.periodUs))

	if !s.holding {
		s.candidate, s.slot, s.holding = f, slot, true
		return nil
	}

	if slot == s.slot {
		// Same slot: keep whichever frame sits closer to the slot's
		// ideal time.
		ideal := float64(s.slot) * s.periodUs
		if math.Abs(float64(f.PresentationTimeUs)-ideal) <
			math.Abs(float64(s.candidate.PresentationTimeUs)-ideal) {
			s.discard(s.candidate)
			s.candidate = f
		} else {
			s.discard(f)
		}
		return nil
	}

	// A later slot begins: the held frame won its slot.
	winner := s.candidate
	s.candidate, s.slot = f, slot
	return s.emit(winner)
}

func (s *dropStage) SignalEndOfCurrentInputStream() error {
	if s.holding {
		s.discard(s.candidate)
		s.candidate = Frame{}
		s.holding = false
	}
	s.index = 0
	return s.emitEnded()
}

func (s *dropStage) Flush() {
	if s.holding {
		s.discard(s.candidate)
		s.candidate = Frame{}
		s.holding = false
	}
	s.index = 0
}

func (s *dropStage) Release() error {
	s.Flush()
	return nil
}
