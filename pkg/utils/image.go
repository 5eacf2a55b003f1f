package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

// DecodeImage reads a JPEG, PNG or WebP image and returns it with its format
// name.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if img.Bounds().Empty() {
		return nil, "", fmt.Errorf("%w: image has no pixels", ErrUnsupportedImage)
	}
	return img, format, nil
}

func DecodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := DecodeImage(f)
	return img, err
}

// OutputExt maps a source extension to one we can encode. WebP sources are
// written back as PNG.
func OutputExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return strings.ToLower(ext)
	default:
		return ".png"
	}
}

// EncodeImage writes img in the format implied by ext.
func EncodeImage(w io.Writer, img image.Image, ext string) error {
	switch OutputExt(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	default:
		return png.Encode(w, img)
	}
}

func EncodeImageBytes(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeImage(&buf, img, ext); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func SaveImage(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := EncodeImage(f, img, filepath.Ext(path)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// SiblingPath returns "<dir>/<name>_<suffix><ext>" for a source path.
func SiblingPath(sourcePath, suffix string) string {
	ext := filepath.Ext(sourcePath)
	name := strings.TrimSuffix(filepath.Base(sourcePath), ext)
	return filepath.Join(filepath.Dir(sourcePath), name+"_"+suffix+OutputExt(ext))
}
