package authValidator

import (
	"strings"

	"lms/middleware"
	"lms/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Signup validator middleware
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name     string `json:"name" validate:"required,min=3,max=100"`
			Email    string `json:"email" validate:"required,email"`
			Mobile   string `json:"mobile" validate:"omitempty,numeric,len=10"`
			Password string `json:"password" validate:"required,min=8"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Name":
					errors["name"] = "Name must be between 3 and 100 characters!"
				case "Email":
					errors["email"] = "Invalid email!"
				case "Mobile":
					errors["mobile"] = "Mobile must be a 10 digit number!"
				case "Password":
					errors["password"] = "Password must be at least 8 characters long!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		user := &models.User{
			Name:     strings.TrimSpace(reqData.Name),
			Email:    strings.ToLower(strings.TrimSpace(reqData.Email)),
			Mobile:   reqData.Mobile,
			Password: reqData.Password,
		}
		c.Locals("validatedSignup", user)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Email == "" {
			errors["email"] = "Email is required!"
		}
		if reqData.Password == "" {
			errors["password"] = "Password is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}
