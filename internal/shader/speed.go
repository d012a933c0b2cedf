package shader

import (
	"fmt"

	"github.com/gogpu/framepipe/effect"
)

// remapStage rewrites frame timestamps through a monotonic mapping,
// passing textures through untouched. Both the constant-factor speed
// change and the arbitrary timestamp map compile to this stage. A mapping
// that moves a frame behind its predecessor is rejected, keeping the
// per-stream timestamp order intact downstream.
type remapStage struct {
	baseStage
	mapTimestamp func(int64) int64

	lastOut int64
	any     bool
}

func newSpeedStage(cfg Config, e effect.SpeedChange) *remapStage {
	return &remapStage{baseStage: baseStage{cfg: cfg}, mapTimestamp: e.MapTimestamp}
}

func newTimestampMapStage(cfg Config, e effect.TimestampMap) *remapStage {
	return &remapStage{baseStage: baseStage{cfg: cfg}, mapTimestamp: e.Func}
}

func (s *remapStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	return inputWidth, inputHeight, nil
}

func (s *remapStage) QueueInputFrame(f Frame) error {
	out := s.mapTimestamp(f.PresentationTimeUs)
	if s.any && out < s.lastOut {
		s.discard(f)
		return fmt.Errorf("shader: timestamp map moved %dus before %dus", out, s.lastOut)
	}
	s.lastOut, s.any = out, true
	f.PresentationTimeUs = out
	return s.emit(f)
}

func (s *remapStage) SignalEndOfCurrentInputStream() error {
	s.any = false
	return s.emitEnded()
}

func (s *remapStage) Flush() { s.any = false }

func (s *remapStage) Release() error { return nil }
