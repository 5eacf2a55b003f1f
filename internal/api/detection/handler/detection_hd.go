package detectionHandler

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"GridVision/internal/api/detection"
	contextPkg "GridVision/pkg/context"
	"GridVision/pkg/handlerUtil"
	"GridVision/pkg/log"
	"GridVision/pkg/response"
	"GridVision/pkg/spatial"
	"GridVision/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func (h *DetectionHandler) Detect(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("file")
	if err != nil {
		return errHandler.Handle(ctx, requestID, detection.ErrNoFile, ctx.Path(), "read_form_file")
	}

	req := detection.DetectRequest{Targets: detection.ParseTargets(ctx.FormValue("targets"))}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
		"targets":    req.Targets,
	}).Debug("Processing detection request")

	if len(req.Targets) == 0 {
		return errHandler.Handle(ctx, requestID, detection.ErrNoTargets, ctx.Path(), "parse_targets")
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	batch, err := h.detectionService.DetectUpload(c, file, req.Targets)
	if err != nil {
		if errors.Is(c.Err(), context.DeadlineExceeded) {
			return errHandler.HandleRequestTimeout(ctx)
		}
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, detection.NewDetectResponse(batch))
}

// wsReadLimit fits one WSDetectRequest carrying a maximum size image.
var wsReadLimit = int64(base64.StdEncoding.EncodedLen(utils.MaxUploadSize) + 64<<10)

// handleDetectWebSocket accepts one WSDetectRequest per text message and
// streams a step message for every oracle round, then the result.
func (h *DetectionHandler) handleDetectWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals("X-Request-ID").(string)
	logger := h.log.WithField("request_id", requestID)

	logger.Info("Detection WebSocket client connected")
	defer logger.Info("Detection WebSocket client disconnected")

	c.SetReadLimit(wsReadLimit)

	var writeMu sync.Mutex
	write := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			return err
		}
		return c.WriteJSON(v)
	}

	for {
		var req detection.WSDetectRequest
		if err := c.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("Detection WebSocket error: %v", err)
			}
			return
		}

		if err := h.validator.Struct(req); err != nil {
			if write(detection.ErrorMessage{Type: detection.MessageTypeError, Error: "Validation failed: " + err.Error()}) != nil {
				return
			}
			continue
		}

		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			if write(detection.ErrorMessage{Type: detection.MessageTypeError, Error: detection.ErrInvalidImage.Error()}) != nil {
				return
			}
			continue
		}

		ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), h.timeout)
		batch, err := h.detectionService.DetectImage(ctx, data, req.Targets, func(step spatial.Step) {
			if err := write(detection.NewStepMessage(step)); err != nil {
				logger.Warnf("Failed to stream detection step: %v", err)
			}
		})
		cancel()

		if err != nil {
			logger.WithError(err).Warn("WebSocket detection failed")
			if write(detection.ErrorMessage{Type: detection.MessageTypeError, Error: publicMessage(err)}) != nil {
				return
			}
			continue
		}

		if err := write(detection.ResultMessage{Type: detection.MessageTypeResult, DetectResponse: detection.NewDetectResponse(batch)}); err != nil {
			logger.Errorf("Error writing result: %v", err)
			return
		}
	}
}

func publicMessage(err error) string {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		return respErr.Err.Error()
	}
	return detection.ErrInternalServerError.Error()
}
