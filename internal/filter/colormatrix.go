package filter

import "github.com/gogpu/framepipe/effect"

// ApplyColorMatrix transforms every pixel of src through a 4x5 color
// matrix and writes the result to dst. Channels are treated in [0, 255]
// and clamped after transformation. src and dst may be the same buffer.
func ApplyColorMatrix(m effect.ColorMatrix, src, dst []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		r := float32(src[i+0])
		g := float32(src[i+1])
		b := float32(src[i+2])
		a := float32(src[i+3])

		dst[i+0] = clampUint8(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
		dst[i+1] = clampUint8(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
		dst[i+2] = clampUint8(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
		dst[i+3] = clampUint8(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])
	}
}

// ApplyLUT maps every pixel of src through a 3D lookup table with
// trilinear interpolation. Alpha passes through unchanged.
func ApplyLUT(lut effect.CubeLUT, src, dst []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		r, g, b := lut.Sample(
			float32(src[i+0])/255,
			float32(src[i+1])/255,
			float32(src[i+2])/255,
		)
		dst[i+0] = clampUint8(r * 255)
		dst[i+1] = clampUint8(g * 255)
		dst[i+2] = clampUint8(b * 255)
		dst[i+3] = src[i+3]
	}
}
