package handlerUtil

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/pkg/log"
	"WakeGuard/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	if errors.Is(err, drowsiness.ErrStatusNotReady) {
		h.logger.WithFields(fields).Info("Status requested before first frame")
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "Monitor has not processed a frame yet",
			Code:  "STATUS_NOT_READY",
		})
	}

	if errors.Is(err, drowsiness.ErrAlertNotFound) {
		h.logger.WithFields(fields).Warn("Alert event not found")
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "Alert event not found",
			Code:  "ALERT_NOT_FOUND",
		})
	}

	if code, ok := response.HTTPStatus(err); ok {
		fields["code"] = code
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
	}

	traceID := log.ErrorWithTraceID(h.logger, fields, "Unexpected error")
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		Details: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
		Error: utils.StatusMessage(fiber.StatusRequestTimeout),
	})
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
