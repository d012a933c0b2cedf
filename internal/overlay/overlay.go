// Package overlay rasterizes and composites overlay effects onto frames.
//
// Bitmap overlays are placed with a single affine transform (scale plus
// rotation about the overlay center) and resampled bilinearly. Text
// overlays are shaped with go-text/typesetting and rasterized from the Go
// regular font. Overlays blend source-over in declaration order, so the
// first declared overlay sits under later ones.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/framepipe/effect"
)

// Composite draws each overlay onto the frame buffer in declaration
// order. The buffer is width x height tightly packed RGBA.
func Composite(frame []byte, width, height int, overlays []effect.Overlay) error {
	dst := &image.RGBA{
		Pix:    frame,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	for i, ov := range overlays {
		content, err := renderContent(ov)
		if err != nil {
			return fmt.Errorf("overlay %d: %w", i, err)
		}
		drawOverlay(dst, content, ov.Settings())
	}
	return nil
}

// renderContent rasterizes the overlay at its natural size.
func renderContent(ov effect.Overlay) (image.Image, error) {
	switch o := ov.(type) {
	case effect.BitmapOverlay:
		return o.Image, nil
	case effect.TextOverlay:
		return renderText(o)
	default:
		return nil, fmt.Errorf("unknown overlay type %T", ov)
	}
}

// drawOverlay transforms content by the overlay settings and blends it
// over dst.
func drawOverlay(dst *image.RGBA, content image.Image, s effect.OverlaySettings) {
	bounds := dst.Bounds()
	cb := content.Bounds()
	scale := s.Scale
	if scale == 0 {
		scale = 1
	}

	// The anchor places the overlay center in normalized frame
	// coordinates with y up: (-1,-1) bottom-left, (1,1) top-right.
	px := (s.AnchorX + 1) / 2 * float64(bounds.Dx())
	py := (1 - (s.AnchorY+1)/2) * float64(bounds.Dy())

	// Counter-clockwise on screen is a negative angle in y-down pixel
	// space.
	theta := -s.RotationDegrees * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)

	cw := float64(cb.Dx()) / 2
	ch := float64(cb.Dy()) / 2

	// dst = T(px,py) * R(theta) * S(scale) * T(-cw,-ch), all about the
	// content center.
	m := f64.Aff3{
		cos * scale, -sin * scale, px - scale*(cos*cw-sin*ch),
		sin * scale, cos * scale, py - scale*(sin*cw+cos*ch),
	}

	alpha := s.Alpha
	if alpha == 0 {
		alpha = 1
	}

	if alpha >= 1 {
		draw.BiLinear.Transform(dst, m, content, cb, draw.Over, nil)
		return
	}

	// Transform onto a scratch layer, then blend with a uniform alpha
	// mask so the overlay's own alpha is scaled, not replaced.
	layer := image.NewRGBA(bounds)
	draw.BiLinear.Transform(layer, m, content, cb, draw.Src, nil)
	mask := image.NewUniform(color.Alpha{A: uint8(clampUnit(alpha)*255 + 0.5)})
	stddraw.DrawMask(dst, bounds, layer, bounds.Min, mask, image.Point{}, stddraw.Over)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
