package middleware

import (
	"WakeGuard/pkg/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = "X-Request-ID"

func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if requestID == "" {
			var err error
			requestID, err = utilsInstance.NewULIDFromTimestamp(time.Now())
			if err != nil {
				requestID = "unknown"
			}
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
