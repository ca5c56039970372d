package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type middleware struct {
	rateLimitter        *rateLimiter
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
	tokenSecret         string
}

// New builds the API middleware. tokenSecret may be empty when the token
// middleware is never mounted.
func New(logger *logrus.Logger, reqRate rate.Limit, burst int, tokenSecret string) Middleware {
	return &middleware{
		rateLimitter:        newRateLimiter(reqRate, burst),
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
		tokenSecret:         tokenSecret,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}
