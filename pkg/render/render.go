package render

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	Red    = color.RGBA{R: 255, A: 255}
	Green  = color.RGBA{G: 160, A: 255}
	Blue   = color.RGBA{B: 255, A: 255}
	Orange = color.RGBA{R: 255, G: 165, A: 255}
	Yellow = color.RGBA{R: 255, G: 215, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black  = color.RGBA{A: 255}
)

// Clone copies img into a new RGBA whose bounds start at the origin.
func Clone(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Crop copies the region r (in img's local frame, origin at img.Bounds().Min)
// into a fresh origin-based RGBA. r is clipped to the image.
func Crop(img image.Image, r image.Rectangle) *image.RGBA {
	b := img.Bounds()
	abs := r.Add(b.Min).Intersect(b)
	dst := image.NewRGBA(image.Rect(0, 0, abs.Dx(), abs.Dy()))
	draw.Draw(dst, dst.Bounds(), img, abs.Min, draw.Src)
	return dst
}

// Rectangle outlines r with the given stroke thickness, drawing inward from
// the edges. Pixels outside img are skipped.
func Rectangle(img *image.RGBA, r image.Rectangle, col color.Color, thickness int) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	if thickness < 1 {
		thickness = 1
	}

	bounds := img.Bounds()
	setPixel := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(bounds) {
			img.Set(x, y, col)
		}
	}

	x1, y1, x2, y2 := r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1
	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			setPixel(x, y1+t)
			setPixel(x, y2-t)
		}
		for y := y1; y <= y2; y++ {
			setPixel(x1+t, y)
			setPixel(x2-t, y)
		}
	}
}

// Fill paints r with col, clipped to img.
func Fill(img *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(img, r.Canon().Intersect(img.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}
