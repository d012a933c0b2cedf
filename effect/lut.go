package effect

import (
	"fmt"
	"image"
)

// CubeLUT maps colors through a 3D lookup table with trilinear
// interpolation between lattice points.
type CubeLUT struct {
	// Size is the lattice edge length N; the table holds N^3 entries.
	Size int

	// RGB holds N^3 lattice entries, 3 float32 per entry in [0, 1], laid
	// out with red varying fastest: index = ((b*N + g)*N + r) * 3.
	RGB []float32
}

// Kind implements Effect.
func (CubeLUT) Kind() Kind { return KindLUT }

// Validate implements Effect.
func (l CubeLUT) Validate() error {
	if l.Size < 2 {
		return fmt.Errorf("effect: LUT size %d must be at least 2", l.Size)
	}
	if want := l.Size * l.Size * l.Size * 3; len(l.RGB) != want {
		return fmt.Errorf("effect: LUT data length %d, want %d for size %d",
			len(l.RGB), want, l.Size)
	}
	return nil
}

// IdentityCubeLUT returns a LUT of the given size that maps every color to
// itself (up to lattice quantization, which trilinear sampling removes).
func IdentityCubeLUT(size int) CubeLUT {
	rgb := make([]float32, size*size*size*3)
	scale := 1 / float32(size-1)
	i := 0
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				rgb[i+0] = float32(r) * scale
				rgb[i+1] = float32(g) * scale
				rgb[i+2] = float32(b) * scale
				i += 3
			}
		}
	}
	return CubeLUT{Size: size, RGB: rgb}
}

// Sample returns the trilinearly interpolated table value for an input
// color with channels in [0, 1].
func (l CubeLUT) Sample(r, g, b float32) (float32, float32, float32) {
	n := l.Size
	scale := float32(n - 1)

	fr := clamp01(r) * scale
	fg := clamp01(g) * scale
	fb := clamp01(b) * scale

	r0, g0, b0 := int(fr), int(fg), int(fb)
	r1, g1, b1 := r0+1, g0+1, b0+1
	if r1 >= n {
		r1 = n - 1
	}
	if g1 >= n {
		g1 = n - 1
	}
	if b1 >= n {
		b1 = n - 1
	}
	tr, tg, tb := fr-float32(r0), fg-float32(g0), fb-float32(b0)

	var out [3]float32
	for c := 0; c < 3; c++ {
		c000 := l.at(r0, g0, b0, c)
		c100 := l.at(r1, g0, b0, c)
		c010 := l.at(r0, g1, b0, c)
		c110 := l.at(r1, g1, b0, c)
		c001 := l.at(r0, g0, b1, c)
		c101 := l.at(r1, g0, b1, c)
		c011 := l.at(r0, g1, b1, c)
		c111 := l.at(r1, g1, b1, c)

		c00 := c000 + (c100-c000)*tr
		c10 := c010 + (c110-c010)*tr
		c01 := c001 + (c101-c001)*tr
		c11 := c011 + (c111-c011)*tr

		c0 := c00 + (c10-c00)*tg
		c1 := c01 + (c11-c01)*tg

		out[c] = c0 + (c1-c0)*tb
	}
	return out[0], out[1], out[2]
}

func (l CubeLUT) at(r, g, b, channel int) float32 {
	return l.RGB[((b*l.Size+g)*l.Size+r)*3+channel]
}

// BitmapLUT decodes a 3D LUT from a 2D strip image: N tiles of N x N pixels
// laid out horizontally, so the image is N*N wide and N tall. Tile index
// selects blue, x within a tile selects red, y selects green.
func BitmapLUT(img image.Image) (CubeLUT, error) {
	if img == nil {
		return CubeLUT{}, fmt.Errorf("effect: nil LUT bitmap")
	}
	bounds := img.Bounds()
	n := bounds.Dy()
	if n < 2 || bounds.Dx() != n*n {
		return CubeLUT{}, fmt.Errorf("effect: LUT bitmap %dx%d is not an NxN strip of N tiles",
			bounds.Dx(), bounds.Dy())
	}

	rgb := make([]float32, n*n*n*3)
	i := 0
	for b := 0; b < n; b++ {
		for g := 0; g < n; g++ {
			for r := 0; r < n; r++ {
				cr, cg, cb, _ := img.At(bounds.Min.X+b*n+r, bounds.Min.Y+g).RGBA()
				rgb[i+0] = float32(cr) / 0xffff
				rgb[i+1] = float32(cg) / 0xffff
				rgb[i+2] = float32(cb) / 0xffff
				i += 3
			}
		}
	}
	return CubeLUT{Size: n, RGB: rgb}, nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
