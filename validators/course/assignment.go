package courseValidator

import (
	"strings"
	"time"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateAssignment validates assignment creation request
func CreateAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string     `json:"title"`
			Instructions string     `json:"instructions"`
			MaxPoints    int        `json:"max_points"`
			DueDate      *time.Time `json:"due_date"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Assignment title is required!"
		}
		if reqData.MaxPoints < 1 {
			errors["max_points"] = "Max points must be at least 1!"
		}
		if reqData.DueDate != nil && reqData.DueDate.Before(time.Now()) {
			errors["due_date"] = "Due date must be in the future!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssignment", reqData)
		return c.Next()
	}
}

// SubmitAssignment validates a student submission
func SubmitAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TextAnswer string `json:"text_answer"`
			FileURL    string `json:"file_url"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.TextAnswer) == "" && reqData.FileURL == "" {
			errors["submission"] = "Provide a text answer or a file URL!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

// GradeSubmission validates grading of an assignment submission. The upper
// bound against the assignment's max points is checked in the handler.
func GradeSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Grade    int    `json:"grade"`
			Feedback string `json:"feedback"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Grade < 0 {
			errors["grade"] = "Grade cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}

// AddReview validates a course review
func AddReview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Rating < 1 || reqData.Rating > 5 {
			errors["rating"] = "Rating must be between 1 and 5!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

// RejectCertificate validates a certificate rejection
func RejectCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Reason) == "" {
			errors["reason"] = "Rejection reason is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRejection", reqData)
		return c.Next()
	}
}
