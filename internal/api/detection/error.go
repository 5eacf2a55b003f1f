package detection

import (
	"net/http"

	"GridVision/pkg/response"
)

var (
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrNoFile              = response.NewError(http.StatusBadRequest, "no image file uploaded")
	ErrInvalidImage        = response.NewError(http.StatusBadRequest, "invalid image file")
	ErrFileTooLarge        = response.NewError(http.StatusBadRequest, "file too large, maximum size is 10MB")
	ErrNoTargets           = response.NewError(http.StatusBadRequest, "no targets specified")
	ErrOracleUnavailable   = response.NewError(http.StatusBadGateway, "vision model unavailable")
	ErrDetectionTimeout    = response.NewError(http.StatusRequestTimeout, "detection timed out")
	ErrStoreResult         = response.NewError(http.StatusInternalServerError, "failed to store result image")
)
