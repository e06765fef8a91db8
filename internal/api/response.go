package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/applications"
	"github.com/spigell/job-agent/internal/letters"
	"github.com/spigell/job-agent/internal/logger"
	"github.com/spigell/job-agent/internal/resume"
	"github.com/spigell/job-agent/internal/storage"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respond(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(successResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, resume.ErrInvalidInput):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, applications.ErrUnknownStatus), errors.Is(err, letters.ErrUnknownKind):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)

		message := err.Error()
		if code >= fiber.StatusInternalServerError {
			fields := append(logger.RequestFields(userID(c), c.Params("id")),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			log.Error("request failed", fields...)
			message = "internal server error"
		}

		return c.Status(code).JSON(errorResponse{
			Success: false,
			Message: message,
		})
	}
}
