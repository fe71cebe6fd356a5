package eyelidHandler

import (
	eyelidService "EyelidService/internal/api/eyelid/service"
	"EyelidService/internal/middleware"
	"EyelidService/pkg/utils"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type EyelidHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	eyelidService  eyelidService.IEyelidService
	utils          utils.IUtils
	requestTimeout time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	es eyelidService.IEyelidService,
	utils utils.IUtils,
	requestTimeout time.Duration,
) *EyelidHandler {
	return &EyelidHandler{
		eyelidService:  es,
		log:            log,
		validator:      validator,
		middleware:     middleware,
		utils:          utils,
		requestTimeout: requestTimeout,
	}
}

func (h *EyelidHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	eyelid := srv.Group("/eyelid")
	eyelid.Get("/health", h.Health)
	eyelid.Post("/analyze", h.Analyze)
	eyelid.Post("/report", h.Report)

	eyelid.Use("/ws", wsMiddleware)
	eyelid.Get("/ws", websocket.New(h.handleWebSocket))
}
