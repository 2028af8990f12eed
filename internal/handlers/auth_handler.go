package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockhive/internal/apperrors"
	"stockhive/internal/middleware"
	"stockhive/internal/models"
	"stockhive/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes. /auth/me sits behind requireAuth.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/me", requireAuth, h.HandleMe)
}

// HandleRegister handles new user registration and returns the first token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	payload, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, "User registered successfully", payload)
}

// HandleLogin handles user login and issues a new token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	payload, err := h.authService.LoginUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Login successful", payload)
}

// HandleMe returns the authenticated principal.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "", principal)
}

func currentPrincipal(c *fiber.Ctx) (models.Principal, error) {
	principal, found := middleware.PrincipalFrom(c)
	if !found {
		return models.Principal{}, apperrors.ErrUnauthenticated
	}
	return principal, nil
}
