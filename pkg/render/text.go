package render

import (
	"image"
	"image/color"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontPathEnv points at a TrueType/OpenType file that takes precedence over the
// bundled Go font.
const FontPathEnv = "FONT_PATH"

var (
	fontOnce sync.Once
	baseFont *opentype.Font
)

func loadFont() *opentype.Font {
	fontOnce.Do(func() {
		if p := os.Getenv(FontPathEnv); p != "" {
			if data, err := os.ReadFile(p); err == nil {
				if f, err := opentype.Parse(data); err == nil {
					baseFont = f
					return
				}
			}
		}

		if f, err := opentype.Parse(goregular.TTF); err == nil {
			baseFont = f
		}
	})
	return baseFont
}

// Face resolves the best available face at the given pixel size. The fixed
// 7x13 bitmap face is the guaranteed fallback.
func Face(size float64) font.Face {
	if size < 8 {
		size = 8
	}

	f := loadFont()
	if f == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// TextBounds returns the box text would occupy when drawn with its top-left
// corner at pt.
func TextBounds(face font.Face, pt image.Point, text string) image.Rectangle {
	metrics := face.Metrics()
	width := font.MeasureString(face, text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	return image.Rect(pt.X, pt.Y, pt.X+width, pt.Y+height)
}

// Label draws text with its top-left corner at pt over a filled background box
// so it stays legible on any image content.
func Label(img *image.RGBA, face font.Face, pt image.Point, text string, fg, bg color.Color, padding int) image.Rectangle {
	box := TextBounds(face, pt, text)
	box.Max = box.Max.Add(image.Pt(2*padding, 2*padding))
	Fill(img, box, bg)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(pt.X+padding, pt.Y+padding+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)

	return box
}
