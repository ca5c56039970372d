package drowsinessHandler

import (
	drowsinessService "WakeGuard/internal/api/drowsiness/service"
	"WakeGuard/internal/middleware"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DrowsinessHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	drowsinessService drowsinessService.IDrowsinessService
	streamInterval    time.Duration
	requireToken      bool
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds drowsinessService.IDrowsinessService,
	streamInterval time.Duration,
	requireToken bool,
) *DrowsinessHandler {
	if streamInterval <= 0 {
		streamInterval = 500 * time.Millisecond
	}

	return &DrowsinessHandler{
		drowsinessService: ds,
		log:               log,
		validator:         validator,
		middleware:        middleware,
		streamInterval:    streamInterval,
		requireToken:      requireToken,
	}
}

func (h *DrowsinessHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	drowsy := srv.Group("/drowsiness")
	drowsy.Use(h.middleware.NewRateLimiter)
	if h.requireToken {
		drowsy.Use(h.middleware.NewTokenMiddleware)
	}

	drowsy.Get("/status", h.GetStatus)
	drowsy.Get("/alerts", h.GetAlerts)
	drowsy.Use("/ws", wsMiddleware)
	drowsy.Get("/ws", websocket.New(h.handleStatusStream))
}
