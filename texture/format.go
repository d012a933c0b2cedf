package texture

import "github.com/gogpu/gputypes"

// defaultFormat is the pixel format of all pool textures. The pipeline
// processes tightly packed 8-bit RGBA throughout.
const defaultFormat = gputypes.TextureFormatRGBA8Unorm
