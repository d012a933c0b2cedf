package effect

// Kind identifies an effect descriptor. Kinds are grouped by their high
// nibble:
//
//	0x1X: geometry (matrix transform, crop)
//	0x2X: color (RGBA matrix, contrast, HSL, LUT, alpha scale)
//	0x3X: compositing (overlay, thumbnail strip)
//	0x4X: timing (frame cache, frame drop, speed change, timestamp remap)
//	0x5X: convolution (blur)
type Kind uint8

// Kind constants for all built-in effects.
const (
	// KindMatrixTransform applies an affine transform about the frame
	// center. See MatrixTransform.
	KindMatrixTransform Kind = 0x10

	// KindCrop extracts a pixel rectangle. See Crop.
	KindCrop Kind = 0x11

	// KindRGBAMatrix applies a 4x5 color matrix. See RGBAMatrix.
	KindRGBAMatrix Kind = 0x20

	// KindContrast adjusts contrast. See Contrast.
	KindContrast Kind = 0x21

	// KindHSLAdjust shifts hue, saturation and lightness. See HSLAdjust.
	KindHSLAdjust Kind = 0x22

	// KindLUT maps colors through a 3D lookup table. See CubeLUT and
	// BitmapLUT.
	KindLUT Kind = 0x23

	// KindAlphaScale multiplies the alpha channel. See AlphaScale.
	KindAlphaScale Kind = 0x24

	// KindOverlay composites bitmap or text overlays. See OverlayEffect.
	KindOverlay Kind = 0x30

	// KindThumbnailStrip accumulates frames into a strip image. See
	// ThumbnailStrip.
	KindThumbnailStrip Kind = 0x31

	// KindFrameCache buffers frames without altering them. See FrameCache.
	KindFrameCache Kind = 0x40

	// KindFrameDrop decimates frames toward a target rate. See FrameDrop.
	KindFrameDrop Kind = 0x41

	// KindSpeedChange rescales presentation timestamps by a constant
	// factor. See SpeedChange.
	KindSpeedChange Kind = 0x42

	// KindTimestampMap remaps presentation timestamps through a monotonic
	// function. See TimestampMap.
	KindTimestampMap Kind = 0x43

	// KindBlur applies separable Gaussian blur. See Blur.
	KindBlur Kind = 0x50
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindMatrixTransform:
		return "MatrixTransform"
	case KindCrop:
		return "Crop"
	case KindRGBAMatrix:
		return "RGBAMatrix"
	case KindContrast:
		return "Contrast"
	case KindHSLAdjust:
		return "HSLAdjust"
	case KindLUT:
		return "LUT"
	case KindAlphaScale:
		return "AlphaScale"
	case KindOverlay:
		return "Overlay"
	case KindThumbnailStrip:
		return "ThumbnailStrip"
	case KindFrameCache:
		return "FrameCache"
	case KindFrameDrop:
		return "FrameDrop"
	case KindSpeedChange:
		return "SpeedChange"
	case KindTimestampMap:
		return "TimestampMap"
	case KindBlur:
		return "Blur"
	default:
		return "Unknown"
	}
}

// Effect is one visual transform in an ordered effect list. Implementations
// are value-like descriptors; they must not be mutated after being passed
// to the pipeline.
//
// The implementation set is closed to this package.
type Effect interface {
	// Kind returns the descriptor tag.
	Kind() Kind

	// Validate reports whether the descriptor's parameters are usable.
	Validate() error
}

// Validate checks every descriptor in an effect list.
func Validate(effects []Effect) error {
	for _, e := range effects {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}
