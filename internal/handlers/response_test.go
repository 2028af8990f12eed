package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stockhive/internal/apperrors"
	"stockhive/internal/handlers"
	"stockhive/internal/middleware"
	"stockhive/internal/services"
)

func newErrorApp(development bool, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(development)})
	app.Use(middleware.RequestLogger(logger))
	app.Use(recover.New())

	app.Get("/transient", func(c *fiber.Ctx) error {
		return fmt.Errorf("failed to list products: %w: %w", apperrors.ErrTransientStore, errors.New("dial tcp: connection refused"))
	})
	app.Get("/unknown", func(c *fiber.Ctx) error {
		return fmt.Errorf("inventory stats for alice: %w", errors.New("disk on fire"))
	})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("Validation failed", map[string]string{"price": "price must be 0 or greater"})
	})
	app.Get("/credentials", func(c *fiber.Ctx) error {
		return fmt.Errorf("login: %w", services.ErrInvalidCredentials)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fmt.Errorf("failed to get product p1: %w", apperrors.ErrNotFound)
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("nil map write")
	})
	return app
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		path        string
		status      int
		message     string
		detail      string
		fields      map[string]string
	}{
		{"transient store is retryable", false, "/transient", fiber.StatusServiceUnavailable, "Service temporarily unavailable, please retry", "", nil},
		{"unknown error hides detail in production", false, "/unknown", fiber.StatusInternalServerError, "Something went wrong!", "", nil},
		{"unknown error shows detail in development", true, "/unknown", fiber.StatusInternalServerError, "Something went wrong!", "inventory stats for alice: disk on fire", nil},
		{"panic becomes 500", false, "/panic", fiber.StatusInternalServerError, "Something went wrong!", "", nil},
		{"validation keeps field errors", false, "/validation", fiber.StatusBadRequest, "Validation failed", "", map[string]string{"price": "price must be 0 or greater"}},
		{"validation never carries detail", true, "/validation", fiber.StatusBadRequest, "Validation failed", "", map[string]string{"price": "price must be 0 or greater"}},
		{"bad credentials", false, "/credentials", fiber.StatusUnauthorized, "Invalid email or password", "", nil},
		{"not found", false, "/missing", fiber.StatusNotFound, "Product not found", "", nil},
		{"fiber error keeps its code", false, "/teapot", fiber.StatusTeapot, "short and stout", "", nil},
		{"unknown route", false, "/nowhere", fiber.StatusNotFound, "Route not found", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newErrorApp(tt.development, zap.NewNop())

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.detail, body.Error)
			assert.Equal(t, tt.fields, body.Errors)
		})
	}
}

func TestServerErrorsAreLoggedOnce(t *testing.T) {
	for _, path := range []string{"/unknown", "/panic"} {
		t.Run(path, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			app := newErrorApp(false, zap.New(core))

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
			assert.Equal(t, int64(fiber.StatusInternalServerError), entries[0].ContextMap()["status"])
			assert.NotEmpty(t, entries[0].ContextMap()["error"])
		})
	}
}
