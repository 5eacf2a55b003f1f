package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	contextPkg "GridVision/pkg/context"
	"github.com/sirupsen/logrus"
)

// VisionModel is a multimodal model that answers a text prompt about an image.
type VisionModel interface {
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType string, prompt string) (string, error)
}

type modelOracle struct {
	model VisionModel
	log   *logrus.Logger
}

func NewModelOracle(model VisionModel, log *logrus.Logger) Oracle {
	return &modelOracle{
		model: model,
		log:   log,
	}
}

func (o *modelOracle) Query(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	fields := logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"target":     req.Target,
		"image_size": fmt.Sprintf("%dx%d", req.Width, req.Height),
	}

	text, err := o.model.AnalyzeImage(ctx, req.Image, req.MimeType, BuildPrompt(req.Target))
	if err != nil {
		o.log.WithFields(fields).WithError(err).Error("Vision model call failed")
		return Response{}, errors.Join(ErrUnavailable, err)
	}

	resp, err := Decode(text)
	if err != nil {
		o.log.WithFields(fields).WithFields(logrus.Fields{
			"error":    err.Error(),
			"response": truncate(text, 512),
		}).Warn("Malformed oracle response, treating as empty")
		return Empty(), nil
	}

	o.log.WithFields(fields).WithFields(logrus.Fields{
		"cells":    resp.Cells,
		"model_ms": time.Since(start).Milliseconds(),
	}).Debug("Oracle answered")

	return resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
