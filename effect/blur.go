package effect

import "fmt"

// Blur applies a separable Gaussian blur: one horizontal and one vertical
// 1D convolution pass.
//
// The kernel may vary over time: when SigmaFunc is set it is evaluated at
// each frame's presentation timestamp, enabling effects like a blur that
// ramps in. Kernels are cached by quantized sigma, so a slowly varying
// function stays cheap.
type Blur struct {
	// SigmaX and SigmaY are the Gaussian standard deviations in pixels.
	SigmaX float64
	SigmaY float64

	// SigmaFunc, when non-nil, overrides SigmaX/SigmaY per frame.
	SigmaFunc func(presentationTimeUs int64) (sigmaX, sigmaY float64)
}

// Kind implements Effect.
func (Blur) Kind() Kind { return KindBlur }

// Validate implements Effect.
func (b Blur) Validate() error {
	if b.SigmaX < 0 || b.SigmaY < 0 {
		return fmt.Errorf("effect: blur sigma (%v, %v) must be non-negative", b.SigmaX, b.SigmaY)
	}
	return nil
}

// SigmaAt returns the blur strength for a frame at the given timestamp.
func (b Blur) SigmaAt(presentationTimeUs int64) (float64, float64) {
	if b.SigmaFunc != nil {
		return b.SigmaFunc(presentationTimeUs)
	}
	return b.SigmaX, b.SigmaY
}
