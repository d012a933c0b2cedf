package effect

import "fmt"

// FrameCache buffers up to Capacity frames before forwarding them. With a
// well-formed stream and capacity >= 1 it is a behavioral no-op on frame
// content and timestamps; it exists to decouple upstream production from
// downstream consumption.
type FrameCache struct {
	// Capacity is the number of frames buffered before the oldest is
	// forwarded.
	Capacity int
}

// Kind implements Effect.
func (FrameCache) Kind() Kind { return KindFrameCache }

// Validate implements Effect.
func (c FrameCache) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("effect: frame cache capacity %d must be at least 1", c.Capacity)
	}
	return nil
}

// DropStrategy selects how FrameDrop decides which frames to forward.
type DropStrategy uint8

const (
	// DropDefault rounds each input frame onto an ideal fixed-rate grid
	// and forwards, per grid slot, the input frame closest to the slot
	// time. Forwarded frames keep their original timestamps; a slot's
	// candidate still pending at end of stream is dropped.
	DropDefault DropStrategy = iota

	// DropSimple decimates by a fixed input:output ratio of
	// round(InputFrameRate / TargetFrameRate), forwarding every n-th
	// frame starting with the first.
	DropSimple
)

// FrameDrop reduces the frame rate by deterministically selecting which
// input frames to forward. It never synthesizes timestamps: forwarded
// frames keep the timestamp they arrived with.
type FrameDrop struct {
	// Strategy selects the dropping algorithm.
	Strategy DropStrategy

	// TargetFrameRate is the desired output rate in frames per second.
	TargetFrameRate float64

	// InputFrameRate is the expected input rate. Used by DropSimple only.
	InputFrameRate float64
}

// Kind implements Effect.
func (FrameDrop) Kind() Kind { return KindFrameDrop }

// Validate implements Effect.
func (d FrameDrop) Validate() error {
	if d.TargetFrameRate <= 0 {
		return fmt.Errorf("effect: frame drop target rate %v must be positive", d.TargetFrameRate)
	}
	if d.Strategy == DropSimple && d.InputFrameRate < d.TargetFrameRate {
		return fmt.Errorf("effect: frame drop input rate %v below target rate %v",
			d.InputFrameRate, d.TargetFrameRate)
	}
	return nil
}
