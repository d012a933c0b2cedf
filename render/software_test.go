// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/framepipe/effect"
	"github.com/gogpu/framepipe/texture"
)

// fillGradient writes a deterministic per-pixel pattern.
func fillGradient(t *texture.Texture) {
	data := t.Data()
	w := t.Width()
	for y := 0; y < t.Height(); y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			data[i+0] = uint8(x * 7)
			data[i+1] = uint8(y * 11)
			data[i+2] = uint8((x + y) * 3)
			data[i+3] = 255
		}
	}
}

func pixelAt(t *texture.Texture, x, y int) [4]uint8 {
	i := (y*t.Width() + x) * 4
	d := t.Data()
	return [4]uint8{d[i], d[i+1], d[i+2], d[i+3]}
}

func TestSoftwareIdentityCopy(t *testing.T) {
	src := texture.New(16, 12)
	dst := texture.New(16, 12)
	fillGradient(src)

	r := NewSoftwareRenderer()
	if err := r.DrawTransformed(src, dst, effect.Identity()); err != nil {
		t.Fatalf("DrawTransformed: %v", err)
	}

	for i, b := range src.Data() {
		if dst.Data()[i] != b {
			t.Fatalf("byte %d: got %d, want %d", i, dst.Data()[i], b)
		}
	}
}

func TestSoftwareRotate180TwiceIsIdentity(t *testing.T) {
	src := texture.New(8, 8)
	mid := texture.New(8, 8)
	dst := texture.New(8, 8)
	fillGradient(src)

	r := NewSoftwareRenderer()
	rot := effect.RotateDegrees(180)
	if err := r.DrawTransformed(src, mid, rot); err != nil {
		t.Fatalf("first rotation: %v", err)
	}
	if err := r.DrawTransformed(mid, dst, rot); err != nil {
		t.Fatalf("second rotation: %v", err)
	}

	// Two 180 degree rotations restore the original within sampling
	// tolerance.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := pixelAt(src, x, y)
			got := pixelAt(dst, x, y)
			for c := 0; c < 4; c++ {
				diff := int(got[c]) - int(want[c])
				if diff < -2 || diff > 2 {
					t.Fatalf("pixel (%d,%d) channel %d: got %d, want %d",
						x, y, c, got[c], want[c])
				}
			}
		}
	}
}

func TestSoftwareRotate90MovesCorner(t *testing.T) {
	src := texture.New(10, 10)
	dst := texture.New(10, 10)

	// One opaque red pixel in the top-left corner.
	d := src.Data()
	d[0], d[3] = 255, 255

	r := NewSoftwareRenderer()
	if err := r.DrawTransformed(src, dst, effect.RotateDegrees(90)); err != nil {
		t.Fatalf("DrawTransformed: %v", err)
	}

	// Counterclockwise 90 degrees sends the top-left corner to the
	// bottom-left corner.
	got := pixelAt(dst, 0, 9)
	if got[0] < 200 || got[3] < 200 {
		t.Fatalf("bottom-left corner = %v, want red", got)
	}
	if p := pixelAt(dst, 0, 0); p[0] > 50 {
		t.Fatalf("top-left corner = %v, want cleared", p)
	}
}

func TestSoftwareTranslateOutOfBoundsTransparent(t *testing.T) {
	src := texture.New(4, 4)
	dst := texture.New(4, 4)
	fillGradient(src)

	r := NewSoftwareRenderer()
	// Shift everything fully outside the destination.
	if err := r.DrawTransformed(src, dst, effect.Translate(100, 0)); err != nil {
		t.Fatalf("DrawTransformed: %v", err)
	}
	for i, b := range dst.Data() {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
}

func TestSoftwareCrop(t *testing.T) {
	src := texture.New(8, 8)
	dst := texture.New(3, 2)
	fillGradient(src)

	r := NewSoftwareRenderer()
	if err := r.Crop(src, dst, 2, 3); err != nil {
		t.Fatalf("Crop: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			want := pixelAt(src, x+2, y+3)
			if got := pixelAt(dst, x, y); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSoftwareCropOutOfRangeStaysClear(t *testing.T) {
	src := texture.New(4, 4)
	dst := texture.New(4, 4)
	fillGradient(src)

	r := NewSoftwareRenderer()
	if err := r.Crop(src, dst, 2, 2); err != nil {
		t.Fatalf("Crop: %v", err)
	}
	// Rows and columns past the source edge stay transparent.
	if p := pixelAt(dst, 3, 3); p != [4]uint8{} {
		t.Fatalf("out-of-range pixel = %v, want zero", p)
	}
	if p, want := pixelAt(dst, 0, 0), pixelAt(src, 2, 2); p != want {
		t.Fatalf("in-range pixel = %v, want %v", p, want)
	}
}

func TestSoftwareBlitToImageTarget(t *testing.T) {
	src := texture.New(6, 5)
	fillGradient(src)
	target := NewImageTarget(6, 5)

	r := NewSoftwareRenderer()
	if err := r.Blit(src, target); err != nil {
		t.Fatalf("Blit: %v", err)
	}
	for i, b := range src.Data() {
		if target.Pixels()[i] != b {
			t.Fatalf("byte %d: got %d, want %d", i, target.Pixels()[i], b)
		}
	}
}

func TestSoftwareBlitSizeMismatch(t *testing.T) {
	src := texture.New(6, 5)
	target := NewImageTarget(5, 5)

	r := NewSoftwareRenderer()
	if err := r.Blit(src, target); err == nil {
		t.Fatal("Blit with mismatched sizes succeeded, want error")
	}
}

func TestSoftwareCapabilities(t *testing.T) {
	caps := NewSoftwareRenderer().Capabilities()
	if caps.IsGPU {
		t.Fatal("software renderer reports IsGPU")
	}
}
