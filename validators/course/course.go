package courseValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse validates course creation request
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			Price        int64  `json:"price"`
			ThumbnailURL string `json:"thumbnail_url"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if reqData.Price < 0 {
			errors["price"] = "Price cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validates course update request. All fields optional; price is
// a pointer so zero (free) can be set explicitly.
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			Price        *int64 `json:"price"`
			ThumbnailURL string `json:"thumbnail_url"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != "" && len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if reqData.Price != nil && *reqData.Price < 0 {
			errors["price"] = "Price cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// CreateSection validates section creation request
func CreateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Section title is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

// UpdateSection validates section update request
func UpdateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

// Reorder validates a sibling reorder request. The full permutation check
// against the database happens in the handler.
func Reorder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			OrderedIDs []uint `json:"ordered_ids"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.OrderedIDs) == 0 {
			errors["ordered_ids"] = "ordered_ids must not be empty!"
		}
		seen := make(map[uint]bool, len(reqData.OrderedIDs))
		for _, id := range reqData.OrderedIDs {
			if id == 0 {
				errors["ordered_ids"] = "ordered_ids must not contain zero!"
				break
			}
			if seen[id] {
				errors["ordered_ids"] = "ordered_ids must not contain duplicates!"
				break
			}
			seen[id] = true
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}
