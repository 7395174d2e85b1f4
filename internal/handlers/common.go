package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/auralys/auralys-api/internal/services"
	"github.com/auralys/auralys-api/internal/utils"
	"github.com/auralys/auralys-api/internal/validation"
)

// queryInt parses an integer query parameter clamped to [min, max]
func queryInt(c *fiber.Ctx, name string, def, min, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// queryIntStrict parses an integer query parameter and reports whether it
// is inside [min, max]. Out-of-range values are a client error, not a
// clamp.
func queryIntStrict(c *fiber.Ctx, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, false
	}
	return v, true
}

// serviceErrorResponse maps service sentinel errors to HTTP responses.
// Unrecognized errors become a 500 with the given error type.
func serviceErrorResponse(c *fiber.Ctx, err error, errorType string) error {
	var vf *validation.ValidationFailed
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrForeignEntry):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, errorType)
	case errors.Is(err, services.ErrConsentRequired):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, errorType)
	case errors.Is(err, services.ErrDuplicateEntry),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrConfirmationText),
		errors.Is(err, services.ErrMissingMoodInput):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, errorType)
	case errors.As(err, &vf):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  fiber.StatusBadRequest,
			"message": "Validation failed",
			"ok":      false,
			"fields":  vf.Fields,
			"url":     c.OriginalURL(),
			"type":    errorType,
		})
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.ErrorResponse(c, fe.Message, fe.Code, errorType)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
	}
}
