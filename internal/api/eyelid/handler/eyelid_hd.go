package eyelidHandler

import (
	"EyelidService/internal/api/eyelid"
	contextPkg "EyelidService/pkg/context"
	"EyelidService/pkg/handlerUtil"
	"EyelidService/pkg/log"
	"EyelidService/pkg/utils"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// imageFormFields are tried in order on multipart uploads.
var imageFormFields = []string{"file", "image"}

func (h *EyelidHandler) Health(ctx *fiber.Ctx) error {
	errHandler := handlerUtil.New(h.log)

	if !h.eyelidService.ModelReady() {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(eyelid.HealthResponse{
			Status:     "unavailable",
			ModelReady: false,
		})
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, eyelid.HealthResponse{
		Status:     "ok",
		ModelReady: true,
	})
}

func (h *EyelidHandler) Analyze(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := contextPkg.WithTimeout(ctx, h.requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing eyelid analysis request")

	imageData, err := h.readImage(ctx, requestID)
	if err != nil {
		return h.handleInputError(ctx, errHandler, requestID, err)
	}

	result, err := h.eyelidService.Analyze(c, imageData)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errHandler.HandleRequestTimeout(ctx)
		}
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		ctx.Set(fiber.HeaderContentType, "image/jpeg")
		ctx.Set("X-Eye-Count", strconv.Itoa(len(result.Eyes)))
		ctx.Set("X-Pixels-Per-Cm", strconv.FormatFloat(result.PixelsPerCM, 'f', -1, 64))
		return ctx.Status(fiber.StatusOK).Send(result.Image)
	}
}

func (h *EyelidHandler) Report(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := contextPkg.WithTimeout(ctx, h.requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing eyelid report request")

	imageData, err := h.readImage(ctx, requestID)
	if err != nil {
		return h.handleInputError(ctx, errHandler, requestID, err)
	}

	result, err := h.eyelidService.Analyze(c, imageData)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errHandler.HandleRequestTimeout(ctx)
		}
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		eyes := result.Eyes
		if eyes == nil {
			eyes = []eyelid.EyeReport{}
		}
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, eyelid.ReportResponse{
			Width:       result.Width,
			Height:      result.Height,
			PixelsPerCM: result.PixelsPerCM,
			EyeCount:    len(eyes),
			Eyes:        eyes,
			Summary:     result.Summary,
			ImageBase64: h.utils.EncodeBase64Image(result.Image),
		})
	}
}

// readImage accepts a multipart upload or a JSON body carrying base64.
func (h *EyelidHandler) readImage(ctx *fiber.Ctx, requestID string) ([]byte, error) {
	if strings.HasPrefix(string(ctx.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return h.readUpload(ctx, requestID)
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing JSON request")

	var req eyelid.AnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", eyelid.ErrInvalidImageFile, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	return h.utils.DecodeBase64Image(req.ImageBase64)
}

func (h *EyelidHandler) readUpload(ctx *fiber.Ctx, requestID string) ([]byte, error) {
	for _, field := range imageFormFields {
		file, err := ctx.FormFile(field)
		if err != nil {
			continue
		}

		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"field":      field,
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		if err := h.utils.ValidateImageFile(file); err != nil {
			return nil, err
		}

		fileContent, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer fileContent.Close()

		return h.utils.ReadImageFile(fileContent)
	}

	return nil, utils.ErrNoFile
}

func (h *EyelidHandler) handleInputError(ctx *fiber.Ctx, errHandler *handlerUtil.ErrorHandler, requestID string, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	var corrupt base64.CorruptInputError
	switch {
	case errors.As(err, &corrupt):
		err = fmt.Errorf("%w: %v", eyelid.ErrInvalidImageFile, err)
	case errors.Is(err, utils.ErrEmptyFile):
		err = fmt.Errorf("%w: %v", eyelid.ErrEmptyImage, err)
	case errors.Is(err, utils.ErrFileTooLarge):
		err = fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, utils.ErrNoFile), errors.Is(err, utils.ErrNotAnImage):
		err = fmt.Errorf("%w: %v", eyelid.ErrInvalidImageFile, err)
	}

	return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
}
