package adminRoutes

import (
	adminControllers "lms/controllers/admin"
	"lms/middleware"
	adminValidators "lms/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	settingsGroup := app.Group("/admin/settings", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))

	settingsGroup.Get("/:category", adminControllers.GetSettings)
	settingsGroup.Put("/:category", adminValidators.UpdateSettings(), adminControllers.UpdateSettings)
}
