package eyelid

import (
	"EyelidService/pkg/response"
	"net/http"
)

var (
	ErrModelUnavailable = response.NewError(http.StatusServiceUnavailable, "eye detection model is not available")
	ErrDecodeImage      = response.NewError(http.StatusUnprocessableEntity, "image could not be decoded")
	ErrDetectionFailed  = response.NewError(http.StatusBadGateway, "eye detection failed")
	ErrInvalidImageFile = response.NewError(http.StatusBadRequest, "invalid image file")
	ErrEmptyImage       = response.NewError(http.StatusBadRequest, "image is empty")
)
