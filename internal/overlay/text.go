package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	tsfont "github.com/go-text/typesetting/font"
	tslang "github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"

	"github.com/gogpu/framepipe/effect"
)

// defaultTextSizePx is used when a text overlay does not set a size.
const defaultTextSizePx = 32

// fontState holds the lazily parsed embedded font in both forms: the
// go-text font used for shaping and the opentype font used for glyph
// rasterization. tsfont.Font is read-only and safe for concurrent use.
var fontState struct {
	once   sync.Once
	err    error
	shaped *tsfont.Font
	raster *opentype.Font
}

func loadFont() error {
	fontState.once.Do(func() {
		raster, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontState.err = fmt.Errorf("parse embedded font: %w", err)
			return
		}
		// ParseTTF returns a *Face embedding the thread-safe *Font;
		// cache the Font and wrap per-call Faces around it.
		shapedFace, err := tsfont.ParseTTF(bytes.NewReader(goregular.TTF))
		if err != nil {
			fontState.err = fmt.Errorf("parse embedded font for shaping: %w", err)
			return
		}
		fontState.raster = raster
		fontState.shaped = shapedFace.Font
	})
	return fontState.err
}

// renderText shapes and rasterizes a text overlay at its natural size.
func renderText(o effect.TextOverlay) (image.Image, error) {
	if err := loadFont(); err != nil {
		return nil, err
	}

	sizePx := o.SizePx
	if sizePx == 0 {
		sizePx = defaultTextSizePx
	}

	glyphs, width, ascent, descent, err := shapeText(o.Text, sizePx, shapingLanguage(o.Language))
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(fontState.raster, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	height := int(math.Ceil(ascent + descent))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	col := o.Color
	if col == nil {
		col = color.White
	}
	src := image.NewUniform(col)

	// Draw each shaped glyph at its HarfBuzz-computed position. The
	// cluster index maps the glyph back to the source rune for the
	// x/image rasterizer.
	runes := []rune(o.Text)
	penX := fixed.I(0)
	baseline := fixed.Int26_6(ascent * 64)
	for _, g := range glyphs {
		if g.cluster >= 0 && g.cluster < len(runes) {
			dot := fixed.Point26_6{X: penX + g.xOffset, Y: baseline - g.yOffset}
			dr, mask, maskp, _, ok := face.Glyph(dot, runes[g.cluster])
			if ok {
				stddraw.DrawMask(img, dr, src, image.Point{}, mask, maskp, stddraw.Over)
			}
		}
		penX += g.xAdvance
	}

	return img, nil
}

// shapedGlyph is the subset of shaping output the rasterizer needs.
type shapedGlyph struct {
	cluster  int
	xAdvance fixed.Int26_6
	xOffset  fixed.Int26_6
	yOffset  fixed.Int26_6
}

// shapeText runs HarfBuzz shaping and returns the glyph run plus line
// metrics (total advance, ascent and descent in pixels).
func shapeText(text string, sizePx float64, lang tslang.Language) ([]shapedGlyph, int, float64, float64, error) {
	runes := []rune(text)
	face := tsfont.NewFace(fontState.shaped)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(sizePx * 64),
		Script:    tslang.Latin,
		Language:  lang,
	}

	var shaper shaping.HarfbuzzShaper
	out := shaper.Shape(input)

	glyphs := make([]shapedGlyph, 0, len(out.Glyphs))
	total := fixed.Int26_6(0)
	for _, g := range out.Glyphs {
		glyphs = append(glyphs, shapedGlyph{
			cluster:  g.ClusterIndex,
			xAdvance: g.XAdvance,
			xOffset:  g.XOffset,
			yOffset:  g.YOffset,
		})
		total += g.XAdvance
	}

	ascent := float64(out.LineBounds.Ascent) / 64
	descent := -float64(out.LineBounds.Descent) / 64
	return glyphs, total.Ceil(), ascent, descent, nil
}

// shapingLanguage converts a BCP-47 tag into a go-text language,
// defaulting to English for empty or malformed tags.
func shapingLanguage(tag string) tslang.Language {
	if tag == "" {
		return tslang.NewLanguage("en")
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return tslang.NewLanguage("en")
	}
	return tslang.NewLanguage(parsed.String())
}
