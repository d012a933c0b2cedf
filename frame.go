package framepipe

import "fmt"

// InputType describes how frames of a registered input stream arrive.
type InputType uint8

const (
	// InputTypeSurface is a continuous stream of decoded frames, each
	// already carrying a presentation timestamp. No rate shaping is
	// applied.
	InputTypeSurface InputType = iota + 1

	// InputTypeBitmap is a sequence of still images; the pipeline
	// synthesizes frame timestamps at the registered frame rate.
	InputTypeBitmap

	// InputTypeTexture is a client-managed texture stream. Like
	// InputTypeSurface, timestamps arrive with the frames.
	InputTypeTexture
)

// String returns a human-readable name for the input type.
func (t InputType) String() string {
	switch t {
	case InputTypeSurface:
		return "Surface"
	case InputTypeBitmap:
		return "Bitmap"
	case InputTypeTexture:
		return "Texture"
	default:
		return "Unknown"
	}
}

func (t InputType) valid() bool {
	return t >= InputTypeSurface && t <= InputTypeTexture
}

// FrameInfo describes the geometry and timing of a registered input
// stream. It is immutable once frames for the registration are in
// flight.
type FrameInfo struct {
	// Width and Height are the input frame dimensions in pixels.
	Width  int
	Height int

	// OffsetUs is added to every synthesized or forwarded timestamp.
	// It anchors a stream segment on the output timeline, e.g. the
	// position of an edit-list entry.
	OffsetUs int64
}

// Validate reports whether the frame info is usable.
func (i FrameInfo) Validate() error {
	if i.Width <= 0 || i.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrUnsupported, i.Width, i.Height)
	}
	if i.OffsetUs < 0 {
		return fmt.Errorf("%w: negative stream offset %d", ErrUnsupported, i.OffsetUs)
	}
	return nil
}
