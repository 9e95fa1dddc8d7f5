package handlers

import (
	"errors"

	"storefront/internal/apiclient"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// statusFor maps service and API errors onto the status the screen sees.
func statusFor(err error) int {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, services.ErrNotLoggedIn), errors.Is(err, apiclient.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, apiclient.ErrNotFound),
		errors.Is(err, services.ErrNotInCart),
		errors.Is(err, services.ErrUnknownRelease):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrNotSelectable),
		errors.Is(err, services.ErrOnWantList),
		errors.Is(err, services.ErrNotCancellable),
		errors.Is(err, services.ErrStockLimit),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrSearchSuperseded),
		errors.Is(err, apiclient.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrCartEmpty),
		errors.Is(err, services.ErrInvalidPromo),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, apiclient.ErrRejected):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrPaymentRedirect), errors.As(err, &apiErr):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as a JSON error body. Validation failures carry
// the per-field messages. A reservation commit the store stopped part way
// is a conflict and carries what the store accepted before it stopped.
func respondError(c *fiber.Ctx, message string, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}

	status := statusFor(err)
	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}

	var serr *services.SelectionError
	if errors.As(err, &serr) {
		body["product_id"] = serr.ProductID
	}
	var cerr *services.CommitError
	if errors.As(err, &cerr) {
		body["product_id"] = cerr.ProductID
		body["added"] = cerr.Added
		if status != fiber.StatusUnauthorized {
			status = fiber.StatusConflict
		}
	}

	entry := log.WithError(err).WithFields(log.Fields{"path": c.Path(), "status": status})
	if status >= fiber.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Debug(message)
	}
	return c.Status(status).JSON(body)
}

// badBody answers a request whose body could not be decoded.
func badBody(c *fiber.Ctx, err error) error {
	log.WithError(err).WithField("path", c.Path()).Debug("error parsing request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
