package effect

import (
	"fmt"
	"math"
)

// MatrixTransform applies an affine transform (rotate, scale, translate or
// any composition) about the frame center.
//
// The output size is the bounding box of the transformed input rectangle,
// computed from geometry alone. An identity matrix is a no-op within pixel
// tolerance.
type MatrixTransform struct {
	// Matrix is the transform, applied in center-origin coordinates with
	// y up. Translation units are pixels.
	Matrix Matrix
}

// Kind implements Effect.
func (MatrixTransform) Kind() Kind { return KindMatrixTransform }

// Validate implements Effect. A non-invertible matrix would collapse the
// frame and cannot be drawn.
func (t MatrixTransform) Validate() error {
	det := t.Matrix.A*t.Matrix.E - t.Matrix.B*t.Matrix.D
	if math.Abs(det) < 1e-10 {
		return fmt.Errorf("effect: matrix transform is singular (det=%v)", det)
	}
	return nil
}

// OutputSize returns the bounding box of the transformed input rectangle.
func (t MatrixTransform) OutputSize(inputWidth, inputHeight int) (int, int) {
	hw := float64(inputWidth) / 2
	hh := float64(inputHeight) / 2

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range [4][2]float64{{-hw, -hh}, {hw, -hh}, {-hw, hh}, {hw, hh}} {
		x, y := t.Matrix.Apply(corner[0], corner[1])
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	w := int(math.Round(maxX - minX))
	h := int(math.Round(maxY - minY))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Crop extracts a pixel rectangle from the frame. The rectangle is given in
// input pixel coordinates with the origin at the top-left corner.
type Crop struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Kind implements Effect.
func (Crop) Kind() Kind { return KindCrop }

// Validate implements Effect.
func (c Crop) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("effect: crop size %dx%d must be positive", c.Width, c.Height)
	}
	if c.X < 0 || c.Y < 0 {
		return fmt.Errorf("effect: crop origin (%d,%d) must be non-negative", c.X, c.Y)
	}
	return nil
}

// CenterCrop returns a Crop of the given size centered in a frame of the
// given input size.
func CenterCrop(inputWidth, inputHeight, cropWidth, cropHeight int) Crop {
	return Crop{
		X:      (inputWidth - cropWidth) / 2,
		Y:      (inputHeight - cropHeight) / 2,
		Width:  cropWidth,
		Height: cropHeight,
	}
}
