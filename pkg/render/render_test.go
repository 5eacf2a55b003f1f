package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrop_OriginBased(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 80))
	src.Set(30, 20, Blue)

	out := Crop(src, image.Rect(30, 20, 60, 50))
	require.Equal(t, image.Rect(0, 0, 30, 30), out.Bounds())
	assert.Equal(t, Blue, out.RGBAAt(0, 0))
}

func TestCrop_ClipsToImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))
	out := Crop(src, image.Rect(40, 40, 90, 90))
	assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
}

func TestClone_Independent(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 20, 20))
	out := Clone(src)
	out.Set(0, 0, Red)

	assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
	assert.Equal(t, color.RGBA{}, src.RGBAAt(10, 10))
}

func TestRectangle_StaysInside(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	Rectangle(img, image.Rect(5, 5, 15, 15), Green, 2)

	assert.Equal(t, Green, img.RGBAAt(5, 5))
	assert.Equal(t, Green, img.RGBAAt(14, 14))
	assert.Equal(t, Green, img.RGBAAt(6, 10))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(15, 15))

	// partially outside the image must not panic
	Rectangle(img, image.Rect(-5, -5, 30, 30), Red, 3)
}

func TestLabel_DrawsBackground(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 60))
	box := Label(img, Face(14), image.Pt(4, 4), "high", White, Blue, 2)

	assert.False(t, box.Empty())
	assert.Equal(t, Blue, img.RGBAAt(box.Min.X, box.Min.Y))
}

func TestFace_Fallback(t *testing.T) {
	assert.NotNil(t, Face(2))
	assert.NotNil(t, Face(24))
}
