package shader

import "github.com/gogpu/framepipe/effect"

// cacheStage buffers up to a fixed number of frames before forwarding
// them, preserving content and timestamps exactly. Buffered frames drain
// downstream on end-of-stream and are discarded on flush.
type cacheStage struct {
	baseStage
	capacity int
	buffered []Frame
}

func newCacheStage(cfg Config, c effect.FrameCache) *cacheStage {
	return &cacheStage{baseStage: baseStage{cfg: cfg}, capacity: c.Capacity}
}

func (s *cacheStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	return inputWidth, inputHeight, nil
}

func (s *cacheStage) QueueInputFrame(f Frame) error {
	s.buffered = append(s.buffered, f)
	if len(s.buffered) <= s.capacity {
		return nil
	}
	oldest := s.buffered[0]
	copy(s.buffered, s.buffered[1:])
	s.buffered = s.buffered[:len(s.buffered)-1]
	return s.emit(oldest)
}

func (s *cacheStage) SignalEndOfCurrentInputStream() error {
	for _, f := range s.buffered {
		if err := s.emit(f); err != nil {
			s.buffered = nil
			return err
		}
	}
	s.buffered = nil
	return s.emitEnded()
}

func (s *cacheStage) Flush() {
	for _, f := range s.buffered {
		s.discard(f)
	}
	s.buffered = nil
}

func (s *cacheStage) Release() error {
	s.Flush()
	return nil
}
