package controllers

import (
	"lms/models"

	"github.com/gofiber/fiber/v2"
	courseModels "lms/models/course"
)

// currentUser returns the user loaded by the RequireRole middleware
func currentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals("user").(models.User)
	return user, ok
}

// canManageCourse reports whether the user may modify course content.
// Admins manage everything; instructors only their own courses.
func canManageCourse(user models.User, course courseModels.Course) bool {
	if user.Role == "ADMIN" {
		return true
	}
	return user.Role == "INSTRUCTOR" && course.InstructorID == user.ID
}
