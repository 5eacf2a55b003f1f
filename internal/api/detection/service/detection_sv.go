package detectionService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"

	"GridVision/internal/api/detection"
	"GridVision/internal/entity"
	contextPkg "GridVision/pkg/context"
	"GridVision/pkg/log"
	"GridVision/pkg/oracle"
	"GridVision/pkg/spatial"
	"GridVision/pkg/utils"
	"github.com/google/uuid"
)

func (s *detectionService) DetectUpload(ctx context.Context, file *multipart.FileHeader, targets []string) (*entity.DetectionBatch, error) {
	if err := s.utils.ValidateImageFile(file); err != nil {
		switch {
		case errors.Is(err, utils.ErrNoFile):
			return nil, detection.ErrNoFile
		case errors.Is(err, utils.ErrFileTooLarge):
			return nil, detection.ErrFileTooLarge
		default:
			return nil, detection.ErrInvalidImage.Wrap(err)
		}
	}

	id := uuid.NewString()
	ext := s.utils.ImageExt(file.Filename)

	tempPath, err := s.saveTemp(file, id+ext)
	if err != nil {
		return nil, detection.ErrInternalServerError.Wrap(err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			s.log.WithFields(log.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"path":       tempPath,
				"error":      err.Error(),
			}).Warn("Failed to remove temporary upload")
		}
	}()

	img, err := utils.DecodeImageFile(tempPath)
	if err != nil {
		return nil, detection.ErrInvalidImage.Wrap(err)
	}

	return s.detect(ctx, s.detector, id, img, ext, targets)
}

func (s *detectionService) DetectImage(ctx context.Context, data []byte, targets []string, observer func(spatial.Step)) (*entity.DetectionBatch, error) {
	if len(data) > utils.MaxUploadSize {
		return nil, detection.ErrFileTooLarge
	}

	img, _, err := utils.DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, detection.ErrInvalidImage.Wrap(err)
	}

	detector := s.detector
	if observer != nil {
		detector = detector.Observe(observer)
	}

	return s.detect(ctx, detector, uuid.NewString(), img, ".png", targets)
}

func (s *detectionService) detect(ctx context.Context, detector *spatial.Detector, id string, img image.Image, ext string, targets []string) (*entity.DetectionBatch, error) {
	fields := log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"batch_id":   id,
		"targets":    targets,
	}

	s.log.WithFields(fields).Info("Starting detection")

	batch, err := detector.DetectMultiple(ctx, img, targets)
	if err != nil {
		s.log.WithFields(fields).WithError(err).Error("Detection failed")
		return nil, classify(err)
	}

	outExt := utils.OutputExt(ext)
	data, err := utils.EncodeImageBytes(batch.Composite, outExt)
	if err != nil {
		return nil, detection.ErrStoreResult.Wrap(err)
	}

	url, err := s.store.Save(ctx, fmt.Sprintf("%s_result%s", id, outExt), data, mime.TypeByExtension(outExt))
	if err != nil {
		s.log.WithFields(fields).WithError(err).Error("Failed to store result image")
		return nil, detection.ErrStoreResult.Wrap(err)
	}

	result := entity.NewDetectionBatch(id, batch)
	result.ImageURL = url

	s.log.WithFields(fields).WithFields(log.Fields{
		"detected":  result.Localized,
		"total":     result.Total(),
		"image_url": url,
	}).Info("Detection completed")

	return result, nil
}

func (s *detectionService) saveTemp(file *multipart.FileHeader, name string) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tempPath := filepath.Join(s.uploadsDir, name)
	dst, err := os.Create(tempPath)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return "", err
	}
	return tempPath, dst.Close()
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return detection.ErrDetectionTimeout.Wrap(err)
	case errors.Is(err, oracle.ErrUnavailable):
		return detection.ErrOracleUnavailable.Wrap(err)
	case errors.Is(err, spatial.ErrNoTargets):
		return detection.ErrNoTargets
	case errors.Is(err, spatial.ErrEmptyImage):
		return detection.ErrInvalidImage.Wrap(err)
	default:
		return detection.ErrInternalServerError.Wrap(err)
	}
}
