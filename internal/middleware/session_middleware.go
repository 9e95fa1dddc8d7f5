package middleware

import (
	"errors"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const sessionKey = "session"

// SessionRequired is a Fiber middleware that only lets requests through while
// a usable store session is stored locally. When the store API rejects the
// session tokens during the request, the local session is dropped so the next
// request is sent to login.
func SessionRequired(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.CurrentSession(c.UserContext())
		if err != nil {
			if errors.Is(err, services.ErrNotLoggedIn) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Login required",
				})
			}
			log.WithError(err).Error("failed to load session")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not load session",
				"error":   err.Error(),
			})
		}

		// Store the session in Fiber context for subsequent handlers
		c.Locals(sessionKey, session)
		c.Locals("user_id", session.UserID)

		err = c.Next()
		if c.Response().StatusCode() == fiber.StatusUnauthorized {
			if expireErr := auth.Expire(c.UserContext()); expireErr != nil {
				log.WithError(expireErr).Warn("failed to clear rejected session")
			}
		}
		return err
	}
}

// CurrentSession returns the session stored by SessionRequired.
func CurrentSession(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(sessionKey).(*models.Session)
	return session
}
