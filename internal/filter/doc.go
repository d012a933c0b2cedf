// Package filter implements the per-pixel math behind the color and
// convolution shader stages: separable Gaussian convolution, 4x5 color
// matrix application, HSL adjustment and 3D LUT mapping.
//
// All functions operate on tightly packed RGBA buffers, 4 bytes per pixel,
// the layout used by pipeline textures.
package filter
