package effect

import "fmt"

// ThumbnailStrip renders selected frames side by side into a single strip
// image. For each requested timestamp the stage captures the first frame
// at or after that time; whenever one or more cells fill, a snapshot of
// the strip as filled so far is emitted at the capturing frame's
// timestamp. Frames that fill no cell are consumed silently.
type ThumbnailStrip struct {
	// TimestampsMs are the capture points, in milliseconds, in
	// non-decreasing order.
	TimestampsMs []int64

	// CellWidth and CellHeight are the per-thumbnail dimensions in the
	// strip. Zero selects the input frame size.
	CellWidth  int
	CellHeight int
}

// Kind implements Effect.
func (ThumbnailStrip) Kind() Kind { return KindThumbnailStrip }

// Validate implements Effect.
func (t ThumbnailStrip) Validate() error {
	if len(t.TimestampsMs) == 0 {
		return fmt.Errorf("effect: thumbnail strip with no timestamps")
	}
	for i := 1; i < len(t.TimestampsMs); i++ {
		if t.TimestampsMs[i] < t.TimestampsMs[i-1] {
			return fmt.Errorf("effect: thumbnail strip timestamps not sorted at index %d", i)
		}
	}
	if t.CellWidth < 0 || t.CellHeight < 0 {
		return fmt.Errorf("effect: thumbnail strip cell size %dx%d must be non-negative",
			t.CellWidth, t.CellHeight)
	}
	return nil
}
