package config

import (
	"EyelidService/pkg/log"
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func NewFiber(logger *logrus.Logger, cfg AppConfig) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:               "Eyelid Analysis Service",
			BodyLimit:             int(cfg.MaxUploadBytes),
			DisableKeepalive:      false,
			StrictRouting:         true,
			CaseSensitive:         true,
			EnablePrintRoutes:     cfg.Env != "test",
			DisableStartupMessage: cfg.Env == "test",
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
			ErrorHandler:          errorHandler,
		})

	logger.WithFields(logrus.Fields{
		"body_limit": cfg.MaxUploadBytes,
	}).Debug("Fiber app configured")

	return app
}

// errorHandler answers errors that escaped the handlers, such as unknown
// routes, oversized bodies and refused websocket upgrades.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	traceID := log.ErrorWithTraceID(log.Fields{
		log.RequestIDKey: c.Locals(log.RequestIDKey),
		"error":          err.Error(),
		"path":           c.Path(),
	}, "Unhandled error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":    "An unexpected error occurred",
		"trace_id": traceID,
	})
}
