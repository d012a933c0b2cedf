package effect

import (
	"fmt"
	"image"
	"image/color"
)

// OverlaySettings positions one overlay on the frame.
type OverlaySettings struct {
	// AnchorX and AnchorY place the overlay center in normalized frame
	// coordinates: (-1, -1) is the bottom-left corner, (0, 0) the center,
	// (1, 1) the top-right corner.
	AnchorX float64
	AnchorY float64

	// Scale multiplies the overlay's natural size. Zero means 1.
	Scale float64

	// RotationDegrees rotates the overlay about its center,
	// counter-clockwise.
	RotationDegrees float64

	// Alpha multiplies the overlay's own alpha. Zero means 1 (opaque
	// overlays stay opaque); use a small positive value for near-invisible.
	Alpha float64
}

// Overlay is one element composited onto the frame: a bitmap or a text
// label. The implementation set is closed to this package.
type Overlay interface {
	// Settings returns the overlay placement.
	Settings() OverlaySettings

	validateOverlay() error
}

// BitmapOverlay composites a static image.
type BitmapOverlay struct {
	// Image is the overlay content.
	Image image.Image

	// Placement positions the overlay.
	Placement OverlaySettings
}

// Settings implements Overlay.
func (o BitmapOverlay) Settings() OverlaySettings { return o.Placement }

func (o BitmapOverlay) validateOverlay() error {
	if o.Image == nil {
		return fmt.Errorf("effect: bitmap overlay with nil image")
	}
	return nil
}

// TextOverlay composites a shaped text label.
type TextOverlay struct {
	// Text is the label content.
	Text string

	// SizePx is the text size in pixels. Zero selects a default of 32.
	SizePx float64

	// Color is the text color. A zero value renders white.
	Color color.Color

	// Language is an optional BCP-47 tag used for text shaping,
	// e.g. "en" or "tr". Empty selects English.
	Language string

	// Placement positions the overlay.
	Placement OverlaySettings
}

// Settings implements Overlay.
func (o TextOverlay) Settings() OverlaySettings { return o.Placement }

func (o TextOverlay) validateOverlay() error {
	if o.Text == "" {
		return fmt.Errorf("effect: text overlay with empty text")
	}
	if o.SizePx < 0 {
		return fmt.Errorf("effect: text overlay size %v must be non-negative", o.SizePx)
	}
	return nil
}

// OverlayEffect composites an ordered set of overlays onto the frame.
// Overlays are drawn in declaration order: the first declared is drawn
// first and appears under later ones; translucent overlays blend under
// later ones with source-over blending.
type OverlayEffect struct {
	Overlays []Overlay
}

// Kind implements Effect.
func (OverlayEffect) Kind() Kind { return KindOverlay }

// Validate implements Effect.
func (o OverlayEffect) Validate() error {
	if len(o.Overlays) == 0 {
		return fmt.Errorf("effect: overlay effect with no overlays")
	}
	for _, ov := range o.Overlays {
		if err := ov.validateOverlay(); err != nil {
			return err
		}
	}
	return nil
}
