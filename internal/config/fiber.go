package config

import (
	"WakeGuard/pkg/handlerUtil"
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func NewFiber(logger *logrus.Logger) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:               "WakeGuard",
			BodyLimit:             1 * 1024 * 1024,
			DisableKeepalive:      false,
			DisableStartupMessage: true,
			StrictRouting:         true,
			CaseSensitive:         true,
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
			ErrorHandler: func(ctx *fiber.Ctx, err error) error {
				code := fiber.StatusInternalServerError
				var fiberErr *fiber.Error
				if errors.As(err, &fiberErr) {
					code = fiberErr.Code
				}
				if code >= fiber.StatusInternalServerError {
					logger.WithField("path", ctx.Path()).Errorf("Unhandled error: %v", err)
				}
				return ctx.Status(code).JSON(handlerUtil.ErrorResponse{Error: err.Error()})
			},
		})

	return app
}
