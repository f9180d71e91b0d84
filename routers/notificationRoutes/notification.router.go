package notificationRoutes

import (
	notificationControllers "lms/controllers/notification"
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(app *fiber.App) {
	notificationGroup := app.Group("/notification", middleware.JWTMiddleware)

	notificationGroup.Get("/list", notificationControllers.ListMyNotifications)
	notificationGroup.Patch("/read/all", notificationControllers.MarkAllNotificationsRead)
	notificationGroup.Patch("/:id/read", notificationControllers.MarkNotificationRead)

	// Live push channel; token is passed as a query parameter on the upgrade
	app.Get("/ws/notifications", notificationControllers.SocketAuthMiddleware, notificationControllers.NotificationSocket)
}
