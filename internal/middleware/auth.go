package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/auralys/auralys-api/internal/types"
	"github.com/auralys/auralys-api/internal/utils"
)

// RequireAuth validates the Bearer access token and stores the caller's
// user id and role in context
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Missing or malformed Authorization header",
				Type:    "auth.token",
			}
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		userID, role, err := utils.ParseAccessToken(secret, tokenStr)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Invalid or expired access token",
				Type:    "auth.token",
			}
		}

		c.Locals("userID", userID)
		c.Locals("userRole", role)

		return c.Next()
	}
}

// UserID returns the authenticated user id stored by RequireAuth
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
