package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes. Logout and the session
// check sit behind requireSession.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireSession fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", requireSession, h.HandleLogout)
	authRoutes.Get("/session", requireSession, h.HandleSession)
}

// HandleRegister handles new account sign-up.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	session, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, "Could not register", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"session": session,
	})
}

// HandleLogin signs in against the store API and stores the session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	session, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, "Authentication failed", err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"session": session,
	})
}

// HandleLogout forgets the session. The cart is kept.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext()); err != nil {
		return respondError(c, "Could not log out", err)
	}
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// HandleSession returns the current session.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentSession(c))
}
