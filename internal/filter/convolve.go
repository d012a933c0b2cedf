package filter

import "sync"

// SeparableBlur convolves src with 1D Gaussian kernels for sigmaX and
// sigmaY and writes the result to dst. Both buffers are width x height
// RGBA; src is left untouched. Edge pixels are handled by clamping (edge
// extension).
//
// The two-pass separable algorithm is O(w*h*(kx+ky)) instead of
// O(w*h*kx*ky) for the full 2D kernel.
func SeparableBlur(src, dst []byte, width, height int, sigmaX, sigmaY float64) {
	if sigmaX <= 0 && sigmaY <= 0 {
		copy(dst, src)
		return
	}

	temp := getTempBuffer(width, height)
	defer putTempBuffer(temp)

	// Pass 1: horizontal (src -> temp).
	if sigmaX > 0 {
		convolveRows(src, temp, width, height, CachedGaussianKernel(sigmaX))
	} else {
		for i := 0; i < width*height*4; i++ {
			temp[i] = float32(src[i])
		}
	}

	// Pass 2: vertical (temp -> dst).
	if sigmaY > 0 {
		convolveColumns(temp, dst, width, height, CachedGaussianKernel(sigmaY))
	} else {
		for i := 0; i < width*height*4; i++ {
			dst[i] = clampUint8(temp[i])
		}
	}
}

// convolveRows applies a 1D horizontal convolution, src bytes to float
// temp.
func convolveRows(src []byte, temp []float32, width, height int, kernel []float32) {
	halfKernel := len(kernel) / 2

	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k := range kernel {
				kx := x + k - halfKernel
				if kx < 0 {
					kx = 0
				} else if kx >= width {
					kx = width - 1
				}

				i := (row + kx) * 4
				w := kernel[k]
				r += float32(src[i+0]) * w
				g += float32(src[i+1]) * w
				b += float32(src[i+2]) * w
				a += float32(src[i+3]) * w
			}

			i := (row + x) * 4
			temp[i+0] = r
			temp[i+1] = g
			temp[i+2] = b
			temp[i+3] = a
		}
	}
}

// convolveColumns applies a 1D vertical convolution, float temp to dst
// bytes.
func convolveColumns(temp []float32, dst []byte, width, height int, kernel []float32) {
	halfKernel := len(kernel) / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k := range kernel {
				ky := y + k - halfKernel
				if ky < 0 {
					ky = 0
				} else if ky >= height {
					ky = height - 1
				}

				i := (ky*width + x) * 4
				w := kernel[k]
				r += temp[i+0] * w
				g += temp[i+1] * w
				b += temp[i+2] * w
				a += temp[i+3] * w
			}

			i := (y*width + x) * 4
			dst[i+0] = clampUint8(r)
			dst[i+1] = clampUint8(g)
			dst[i+2] = clampUint8(b)
			dst[i+3] = clampUint8(a)
		}
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

// Temporary buffer pool for convolution passes.
var tempBufferPool = sync.Pool{
	New: func() interface{} {
		return &floatBuffer{data: make([]float32, 1280*720*4)}
	},
}

// getTempBuffer retrieves a temporary buffer with at least
// width*height*4 elements.
func getTempBuffer(width, height int) []float32 {
	size := width * height * 4
	wrapper := tempBufferPool.Get().(*floatBuffer)

	if len(wrapper.data) < size {
		tempBufferPool.Put(wrapper)
		return make([]float32, size)
	}

	for i := 0; i < size; i++ {
		wrapper.data[i] = 0
	}

	return wrapper.data[:size]
}

// putTempBuffer returns a temporary buffer to the pool.
func putTempBuffer(buf []float32) {
	// Only pool reasonably-sized buffers.
	if cap(buf) <= 16*1024*1024 {
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}

// clampUint8 clamps a float32 to [0, 255] and rounds to uint8.
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
