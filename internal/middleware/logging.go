package middleware

import (
	"WakeGuard/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, ok := c.Locals(RequestIDKey).(string)
		if !ok || requestID == "" {
			requestID = "unknown"
		}

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logFields := log.Fields{
			"request_id":    requestID,
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get("User-Agent"),
			"response_size": len(c.Response().Body()),
		}

		entry := m.log.WithFields(logFields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Debug("Success")
		}

		return err
	}
}
