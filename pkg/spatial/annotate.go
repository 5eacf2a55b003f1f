package spatial

import (
	"fmt"
	"image"
	"image/color"

	"GridVision/pkg/confidence"
	"GridVision/pkg/render"
)

const (
	boxThickness = 3
	labelPadding = 4
)

// LevelColor is the box color used for each confidence level.
func LevelColor(level confidence.Level) color.RGBA {
	switch level {
	case confidence.Certain:
		return render.Green
	case confidence.High:
		return render.Blue
	case confidence.Medium:
		return render.Orange
	case confidence.Low:
		return render.Yellow
	default:
		return render.Red
	}
}

func LabelText(r *Result) string {
	return fmt.Sprintf("%s: %s", r.Target, r.Confidence)
}

// Annotate draws the box and label of every detected result onto dst.
func Annotate(dst *image.RGBA, results ...*Result) {
	b := dst.Bounds()
	face := render.Face(float64(max(b.Dx(), b.Dy())) / 40)

	for _, r := range results {
		if r == nil || !r.Detected {
			continue
		}

		col := LevelColor(r.Confidence)
		render.Rectangle(dst, r.BBox.Rect(), col, boxThickness)

		text := LabelText(r)
		size := render.TextBounds(face, image.Point{}, text).Size().Add(image.Pt(2*labelPadding, 2*labelPadding))

		// above the box when it fits, otherwise just inside its top edge
		pt := image.Pt(r.BBox.Left, r.BBox.Top-size.Y)
		if pt.Y < b.Min.Y {
			pt.Y = r.BBox.Top + boxThickness
		}
		if pt.X+size.X > b.Max.X {
			pt.X = max(b.Min.X, b.Max.X-size.X)
		}

		render.Label(dst, face, pt, text, render.White, col, labelPadding)
	}
}
