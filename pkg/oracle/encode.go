package oracle

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/nfnt/resize"
)

const MimeTypePNG = "image/png"

// NewRequest PNG-encodes the annotated image for the model. When maxSide is
// positive and the image is larger, it is downscaled so its longest side is
// maxSide; cell ids are drawn into the pixels so scaling does not affect them.
func NewRequest(annotated image.Image, target string, maxSide int) (Request, error) {
	b := annotated.Bounds()
	payload := annotated

	if w, h, ok := scaledSize(b.Dx(), b.Dy(), maxSide); ok {
		payload = resize.Resize(uint(w), uint(h), annotated, resize.Bilinear)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, payload); err != nil {
		return Request{}, fmt.Errorf("encode oracle image: %w", err)
	}

	return Request{
		Image:    buf.Bytes(),
		MimeType: MimeTypePNG,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Target:   target,
	}, nil
}

// scaledSize fits w×h into maxSide keeping the aspect ratio. The short side
// never drops below one pixel.
func scaledSize(w, h, maxSide int) (int, int, bool) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h, false
	}
	if w >= h {
		return maxSide, max(1, h*maxSide/w), true
	}
	return max(1, w*maxSide/h), maxSide, true
}
