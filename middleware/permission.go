package middleware

import (
	"lms/database"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that rejects users whose role is not in the
// allowed set. The role is re-read from the database so a demoted user cannot
// keep acting on an old token.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
		}

		var user models.User
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "User not found!", nil)
		}

		for _, role := range roles {
			if user.Role == role {
				c.Locals("user", user)
				return c.Next()
			}
		}

		return ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not have permission to access this resource!", nil)
	}
}
