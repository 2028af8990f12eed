package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockhive/internal/apperrors"
	"stockhive/internal/services"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{Success: true, Message: message, Data: data})
}

// ErrorHandler is the only place failures become status codes. Internal detail is
// only included in 5xx responses when development is true. Logging is left to
// middleware.RequestLogger.
func ErrorHandler(development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if development && status >= fiber.StatusInternalServerError {
			body.Error = err.Error()
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error) (int, Response) {
	var validationErr *apperrors.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, Response{Message: validationErr.Message, Errors: validationErr.Fields}
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest, Response{Message: err.Error()}
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, Response{Message: "Invalid email or password"}
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return fiber.StatusUnauthorized, Response{Message: "Not authorized"}
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound, Response{Message: "Product not found"}
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		return fiber.StatusBadRequest, Response{Message: "User already exists with this email"}
	case errors.Is(err, apperrors.ErrTransientStore):
		return fiber.StatusServiceUnavailable, Response{Message: "Service temporarily unavailable, please retry"}
	case errors.As(err, &fiberErr):
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return fiber.StatusNotFound, Response{Message: "Route not found"}
		case fiber.StatusInternalServerError:
			return fiber.StatusInternalServerError, Response{Message: "Something went wrong!"}
		}
		return fiberErr.Code, Response{Message: fiberErr.Message}
	}
	return fiber.StatusInternalServerError, Response{Message: "Something went wrong!"}
}

func invalidBody() error {
	return apperrors.NewValidationError("Invalid request body", nil)
}
