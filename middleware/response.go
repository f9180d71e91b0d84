package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ResponseMeta is attached to every JSON response so clients can correlate
// requests with server logs.
type ResponseMeta struct {
	RequestID     string `json:"requestId"`
	ExecutionTime string `json:"executionTime"`
	Timestamp     string `json:"timestamp"`
}

// RequestMeta assigns a request ID and records the start time used for the
// executionTime field of the response envelope.
func RequestMeta(c *fiber.Ctx) error {
	requestID := c.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set("X-Request-ID", requestID)
	c.Locals("requestId", requestID)
	c.Locals("requestStart", time.Now())
	return c.Next()
}

func buildMeta(c *fiber.Ctx) ResponseMeta {
	meta := ResponseMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
	if id, ok := c.Locals("requestId").(string); ok {
		meta.RequestID = id
	}
	if start, ok := c.Locals("requestStart").(time.Time); ok {
		meta.ExecutionTime = time.Since(start).String()
	}
	return meta
}

// JsonResponse writes the uniform success envelope
func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": success,
		"message": message,
		"data":    data,
		"meta":    buildMeta(c),
	})
}

// ErrorResponse writes the error envelope with a machine-readable code
func ErrorResponse(c *fiber.Ctx, statusCode int, code string, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": false,
		"code":    code,
		"message": message,
		"data":    data,
		"meta":    buildMeta(c),
	})
}

// ValidationErrorResponse reports per-field validation failures
func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "Validation failed!", errors)
}
