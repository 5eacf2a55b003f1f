package detectionService

import (
	"context"
	"mime/multipart"

	"GridVision/internal/entity"
	"GridVision/pkg/s3"
	"GridVision/pkg/spatial"
	"GridVision/pkg/utils"
	"github.com/sirupsen/logrus"
)

type IDetectionService interface {
	DetectUpload(ctx context.Context, file *multipart.FileHeader, targets []string) (*entity.DetectionBatch, error)
	DetectImage(ctx context.Context, data []byte, targets []string, observer func(spatial.Step)) (*entity.DetectionBatch, error)
}

type detectionService struct {
	log        *logrus.Logger
	detector   *spatial.Detector
	store      ResultStore
	utils      utils.IUtils
	uploadsDir string
}

func NewDetectionService(
	log *logrus.Logger,
	detector *spatial.Detector,
	store ResultStore,
	utils utils.IUtils,
	uploadsDir string,
) IDetectionService {
	return &detectionService{
		log:        log,
		detector:   detector,
		store:      store,
		utils:      utils,
		uploadsDir: uploadsDir,
	}
}

// NewResultStore picks S3 when a client is given and the uploads directory
// otherwise.
func NewResultStore(s3Client s3.ItfS3, uploadsDir string) ResultStore {
	if s3Client != nil {
		return NewS3Store(s3Client, "results")
	}
	return NewLocalStore(uploadsDir, "/uploads")
}
