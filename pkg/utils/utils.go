package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const MaxUploadSize = 10 * 1024 * 1024

var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrFileTooLarge  = errors.New("file size exceeds limit")
	ErrNotAnImage    = errors.New("uploaded file is not an image")
	allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ImageExt(filename string) string
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: MaxUploadSize,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, file.Size)
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	return nil
}

// ImageExt returns the lower-cased extension of filename when it is a
// supported image type and ".jpg" otherwise.
func (u *utils) ImageExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return ".jpg"
	}
	return ext
}
