package grid

import (
	"fmt"
	"image"
)

// BoundingBox is a (left, top, right, bottom) pixel box. The zero value means
// no detection.
type BoundingBox struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

func (b BoundingBox) Width() int {
	return b.Right - b.Left
}

func (b BoundingBox) Height() int {
	return b.Bottom - b.Top
}

func (b BoundingBox) Area() int {
	if b.Width() <= 0 || b.Height() <= 0 {
		return 0
	}
	return b.Width() * b.Height()
}

// Offset translates the box by (dx, dy), mapping a crop-local box into the
// frame the crop was taken from.
func (b BoundingBox) Offset(p image.Point) BoundingBox {
	return BoundingBox{
		Left:   b.Left + p.X,
		Top:    b.Top + p.Y,
		Right:  b.Right + p.X,
		Bottom: b.Bottom + p.Y,
	}
}

func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

func (b BoundingBox) Min() image.Point {
	return image.Pt(b.Left, b.Top)
}

func (b BoundingBox) Slice() []int {
	return []int{b.Left, b.Top, b.Right, b.Bottom}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.Left, b.Top, b.Right, b.Bottom)
}
