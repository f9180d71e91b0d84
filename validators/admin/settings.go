package adminValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// UpdateSettings validates a settings snapshot replacement
func UpdateSettings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Value map[string]interface{} `json:"value"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Value == nil {
			errors["value"] = "Settings value is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSettings", reqData)
		return c.Next()
	}
}
