package shader

import (
	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/texture"
)

// thumbnailStage renders a strip of thumbnails, one cell per requested
// timestamp. Each input frame fills the cells whose timestamps it has
// reached; whenever at least one new cell is filled, a snapshot of the
// accumulated strip is emitted at the triggering frame's timestamp.
type thumbnailStage struct {
	baseStage
	strip effect.ThumbnailStrip

	inWidth  int
	inHeight int
	outWidth int

	accum    *texture.Texture
	nextCell int
}

func newThumbnailStage(cfg Config, t effect.ThumbnailStrip) *thumbnailStage {
	return &thumbnailStage{baseStage: baseStage{cfg: cfg}, strip: t}
}

func (s *thumbnailStage) Configure(inputWidth, inputHeight int) (int, int, error) {
	s.inWidth, s.inHeight = inputWidth, inputHeight
	if s.strip.CellWidth == 0 {
		s.strip.CellWidth = inputWidth
	}
	if s.strip.CellHeight == 0 {
		s.strip.CellHeight = inputHeight
	}
	s.outWidth = s.strip.CellWidth * len(s.strip.TimestampsMs)
	return s.outWidth, s.strip.CellHeight, nil
}

func (s *thumbnailStage) QueueInputFrame(f Frame) error {
	filled := false
	for s.nextCell < len(s.strip.TimestampsMs) &&
		f.PresentationTimeUs >= s.strip.TimestampsMs[s.nextCell]*1000 {
		if err := s.fillCell(s.nextCell, f.Texture); err != nil {
			s.discard(f)
			return err
		}
		s.nextCell++
		filled = true
	}
	s.discard(f)
	if !filled {
		return nil
	}

	snapshot, err := s.cfg.Pool.Acquire(s.outWidth, s.strip.CellHeight)
	if err != nil {
		return err
	}
	snapshot.CopyFrom(s.accum)
	return s.emit(Frame{Texture: snapshot, PresentationTimeUs: f.PresentationTimeUs})
}

// fillCell scales the frame into cell index i of the accumulated strip.
func (s *thumbnailStage) fillCell(i int, src *texture.Texture) error {
	if s.accum == nil {
		accum, err := s.cfg.Pool.Acquire(s.outWidth, s.strip.CellHeight)
		if err != nil {
			return err
		}
		s.accum = accum
	}

	cell, err := s.cfg.Pool.Acquire(s.strip.CellWidth, s.strip.CellHeight)
	if err != nil {
		return err
	}
	defer func() { _ = s.cfg.Pool.Release(cell) }()

	scale := effect.Scale(
		float64(s.strip.CellWidth)/float64(s.inWidth),
		float64(s.strip.CellHeight)/float64(s.inHeight),
	)
	if err := s.cfg.Renderer.DrawTransformed(src, cell, scale); err != nil {
		return err
	}

	// Copy the cell into its column of the strip.
	xOff := i * s.strip.CellWidth * 4
	stripStride := s.accum.Stride()
	cellStride := cell.Stride()
	for y := 0; y < s.strip.CellHeight; y++ {
		copy(s.accum.Data()[y*stripStride+xOff:y*stripStride+xOff+cellStride],
			cell.Data()[y*cellStride:(y+1)*cellStride])
	}
	return nil
}

func (s *thumbnailStage) SignalEndOfCurrentInputStream() error { return s.emitEnded() }

func (s *thumbnailStage) Flush() {
	s.nextCell = 0
	if s.accum != nil {
		_ = s.cfg.Pool.Release(s.accum)
		s.accum = nil
	}
}

func (s *thumbnailStage) Release() error {
	s.Flush()
	return nil
}
