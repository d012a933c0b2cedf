package effect

import "fmt"

// ColorMatrix is a 4x5 color transformation in row-major order:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
//
// The fifth column provides bias values. Channels are in [0, 255] during
// transformation and clamped back to valid range afterwards.
type ColorMatrix [20]float32

// IdentityColorMatrix returns the matrix that passes colors unchanged.
func IdentityColorMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0, // R
		0, 1, 0, 0, 0, // G
		0, 0, 1, 0, 0, // B
		0, 0, 0, 1, 0, // A
	}
}

// Concat returns the matrix equivalent to applying m after other.
// The bias column of other is transformed through m's linear part.
func (m ColorMatrix) Concat(other ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*5+k] * other[k*5+col]
			}
			if col == 4 {
				sum += m[row*5+4]
			}
			out[row*5+col] = sum
		}
	}
	return out
}

// RGBAMatrix applies a 4x5 color matrix to every pixel. Chained RGBAMatrix
// effects are associative: Plan merges adjacent ones into a single matrix
// product with identical output.
type RGBAMatrix struct {
	Matrix ColorMatrix
}

// Kind implements Effect.
func (RGBAMatrix) Kind() Kind { return KindRGBAMatrix }

// Validate implements Effect.
func (RGBAMatrix) Validate() error { return nil }

// ColorMatrix returns the effect's matrix. Implemented by every color
// effect that reduces to a matrix, enabling Plan to merge them.
func (m RGBAMatrix) ColorMatrix() ColorMatrix { return m.Matrix }

// Contrast adjusts contrast around mid-gray.
// Value ranges over [-1, 1]: -1 produces solid gray, 0 is a no-op, 1 is
// maximum contrast.
type Contrast struct {
	Value float32
}

// Kind implements Effect.
func (Contrast) Kind() Kind { return KindContrast }

// Validate implements Effect.
func (c Contrast) Validate() error {
	if c.Value < -1 || c.Value > 1 {
		return fmt.Errorf("effect: contrast %v outside [-1, 1]", c.Value)
	}
	return nil
}

// ColorMatrix returns the contrast adjustment as a color matrix.
// The transform is (channel - 128) * factor + 128 per RGB channel.
func (c Contrast) ColorMatrix() ColorMatrix {
	factor := (1 + c.Value) / (1.0001 - c.Value)
	offset := 128 * (1 - factor)
	return ColorMatrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// AlphaScale multiplies the alpha channel by a constant factor.
type AlphaScale struct {
	// Factor is the alpha multiplier; 1 is a no-op, 0 fully transparent.
	Factor float32
}

// Kind implements Effect.
func (AlphaScale) Kind() Kind { return KindAlphaScale }

// Validate implements Effect.
func (a AlphaScale) Validate() error {
	if a.Factor < 0 {
		return fmt.Errorf("effect: alpha scale %v must be non-negative", a.Factor)
	}
	return nil
}

// ColorMatrix returns the alpha scale as a color matrix.
func (a AlphaScale) ColorMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, a.Factor, 0,
	}
}

// HSLAdjust shifts hue, saturation and lightness. Unlike the matrix-backed
// color effects, HSL adjustment is non-linear and is never merged.
type HSLAdjust struct {
	// HueDegrees rotates hue, in degrees; any value is accepted and
	// wrapped to [0, 360).
	HueDegrees float32

	// Saturation adds to saturation, in percent over [-100, 100].
	Saturation float32

	// Lightness adds to lightness, in percent over [-100, 100].
	Lightness float32
}

// Kind implements Effect.
func (HSLAdjust) Kind() Kind { return KindHSLAdjust }

// Validate implements Effect.
func (h HSLAdjust) Validate() error {
	if h.Saturation < -100 || h.Saturation > 100 {
		return fmt.Errorf("effect: saturation adjustment %v outside [-100, 100]", h.Saturation)
	}
	if h.Lightness < -100 || h.Lightness > 100 {
		return fmt.Errorf("effect: lightness adjustment %v outside [-100, 100]", h.Lightness)
	}
	return nil
}

// IsNoOp reports whether the adjustment leaves every pixel unchanged.
func (h HSLAdjust) IsNoOp() bool {
	hue := h.HueDegrees
	for hue < 0 {
		hue += 360
	}
	for hue >= 360 {
		hue -= 360
	}
	return hue == 0 && h.Saturation == 0 && h.Lightness == 0
}

// matrixExpressible is implemented by color effects that reduce to a 4x5
// color matrix, making them mergeable by Plan.
type matrixExpressible interface {
	ColorMatrix() ColorMatrix
}
