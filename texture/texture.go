// Package texture manages the GPU texture and framebuffer resources that
// flow through a frame pipeline.
//
// Textures are arena-style resources with exactly one logical owner at a
// time: the stage currently holding a texture for reading or writing. A
// Pool hands out textures and takes them back; handing a texture to the
// next stage transfers ownership, it is never aliased.
package texture

import (
	"image"

	"github.com/gogpu/gputypes"
)

// GPUBacking is implemented by renderer-owned GPU resources attached to a
// texture. The pool destroys the backing when the texture leaves the pool
// for good.
type GPUBacking interface {
	// Destroy frees the underlying GPU resource.
	Destroy()
}

// Texture is one pixel buffer flowing through the pipeline, backed by CPU
// memory on the software path and optionally by a GPU texture.
//
// The data layout is tightly packed RGBA, 4 bytes per pixel, matching
// gputypes.TextureFormatRGBA8Unorm.
type Texture struct {
	id     uint64
	width  int
	height int
	format gputypes.TextureFormat
	data   []byte

	// gpu is the renderer-attached GPU resource, nil on the software path.
	gpu GPUBacking
}

// New creates a standalone texture that is not managed by a Pool.
// Standalone textures are used for inputs the caller owns, such as
// decoded bitmaps; pipeline-internal frames come from a Pool instead.
func New(width, height int) *Texture {
	if width <= 0 || height <= 0 {
		return nil
	}
	return &Texture{
		width:  width,
		height: height,
		format: defaultFormat,
		data:   make([]byte, width*height*4),
	}
}

// ID returns the pool-assigned identifier, unique within a Pool.
func (t *Texture) ID() uint64 { return t.id }

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel format of the texture.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Data returns the raw RGBA pixel data. The slice is valid until the
// texture is released back to its pool.
func (t *Texture) Data() []byte { return t.data }

// Stride returns the number of bytes per row.
func (t *Texture) Stride() int { return t.width * 4 }

// GPU returns the attached GPU backing, or nil on the software path.
func (t *Texture) GPU() GPUBacking { return t.gpu }

// AttachGPU attaches a renderer-owned GPU resource to the texture,
// destroying any previous backing.
func (t *Texture) AttachGPU(b GPUBacking) {
	if t.gpu != nil && t.gpu != b {
		t.gpu.Destroy()
	}
	t.gpu = b
}

// Clear zeroes all pixel data.
func (t *Texture) Clear() {
	for i := range t.data {
		t.data[i] = 0
	}
}

// CopyFrom copies pixel data from src. Both textures must have identical
// dimensions; mismatched sizes copy nothing.
func (t *Texture) CopyFrom(src *Texture) {
	if src == nil || src.width != t.width || src.height != t.height {
		return
	}
	copy(t.data, src.data)
}

// ToImage copies the texture contents into a new image.
func (t *Texture) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	copy(img.Pix, t.data)
	return img
}

// DrawImage copies img into the texture, cropping to the texture bounds.
// The image is interpreted as non-premultiplied RGBA.
func (t *Texture) DrawImage(img image.Image) {
	if img == nil {
		return
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Dx() == t.width &&
		rgba.Bounds().Dy() == t.height && rgba.Stride == t.width*4 {
		copy(t.data, rgba.Pix)
		return
	}
	b := img.Bounds()
	w := min(t.width, b.Dx())
	h := min(t.height, b.Dy())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*t.width + x) * 4
			t.data[i+0] = uint8(r >> 8)
			t.data[i+1] = uint8(g >> 8)
			t.data[i+2] = uint8(bb >> 8)
			t.data[i+3] = uint8(a >> 8)
		}
	}
}

// destroy frees the GPU backing, if any. Called by the pool.
func (t *Texture) destroy() {
	if t.gpu != nil {
		t.gpu.Destroy()
		t.gpu = nil
	}
	t.data = nil
}
