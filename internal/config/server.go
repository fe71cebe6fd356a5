package config

import (
	eyelidHandler "EyelidService/internal/api/eyelid/handler"
	eyelidService "EyelidService/internal/api/eyelid/service"
	"EyelidService/internal/middleware"
	"EyelidService/pkg/overlay"
	"EyelidService/pkg/utils"
	websocketPkg "EyelidService/pkg/websocket"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine     *fiber.App
	log        *logrus.Logger
	cfg        AppConfig
	middleware middleware.Middleware
	validator  *validator.Validate
	utils      utils.IUtils
	handlers   []handler
	detector   websocketPkg.IDetector
	renderer   *overlay.Renderer
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}
	if server.renderer == nil {
		return nil, fmt.Errorf("overlay renderer is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithAppConfig(cfg AppConfig) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New(s.cfg.MaxUploadBytes)
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.utils == nil {
			return fmt.Errorf("utils must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, s.utils)
		return nil
	}
}

// WithEyeDetector accepts a nil detector: the service then starts and
// answers every analysis with a model-unavailable error.
func WithEyeDetector(detector websocketPkg.IDetector) ServerOption {
	return func(s *Server) error {
		s.detector = detector
		return nil
	}
}

func WithOverlayRenderer() ServerOption {
	return func(s *Server) error {
		renderer, err := overlay.NewRenderer()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize overlay renderer: %v", err)
			}
			return fmt.Errorf("failed to create overlay renderer: %w", err)
		}
		s.renderer = renderer
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Eyelid Domain
	eyelidServices := eyelidService.NewEyelidService(s.log, s.detector, s.renderer)
	eyelidHandlers := eyelidHandler.New(s.log, s.validator, s.middleware, eyelidServices, s.utils, s.cfg.RequestTimeout)

	s.handlers = append(s.handlers, eyelidHandlers)
}

func (s *Server) Run() error {
	s.mount()

	if err := s.engine.Listen(fmt.Sprintf(":%s", s.cfg.Port)); err != nil {
		return err
	}

	return nil
}

func (s *Server) mount() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	s.setupHealthCheck()

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Shutdown() error {
	if s.detector != nil {
		s.detector.Close()
	}
	return s.engine.Shutdown()
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
