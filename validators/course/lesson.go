package courseValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

var lessonContentTypes = map[string]bool{
	"TEXT":  true,
	"VIDEO": true,
}

// CreateLesson validates lesson creation request
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			ContentType string `json:"content_type"`
			TextContent string `json:"text_content"`
			VideoURL    string `json:"video_url"`
			Duration    int    `json:"duration"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Lesson title is required!"
		}
		if reqData.ContentType == "" {
			reqData.ContentType = "TEXT"
		}
		if !lessonContentTypes[reqData.ContentType] {
			errors["content_type"] = "Content type must be TEXT or VIDEO!"
		}
		if reqData.ContentType == "VIDEO" && reqData.VideoURL == "" {
			errors["video_url"] = "Video lessons need a video URL!"
		}
		if reqData.Duration < 0 {
			errors["duration"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// UpdateLesson validates lesson update request. Empty fields keep their
// current value.
func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			ContentType string `json:"content_type"`
			TextContent string `json:"text_content"`
			VideoURL    string `json:"video_url"`
			Duration    int    `json:"duration"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ContentType != "" && !lessonContentTypes[reqData.ContentType] {
			errors["content_type"] = "Content type must be TEXT or VIDEO!"
		}
		if reqData.Duration < 0 {
			errors["duration"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}
