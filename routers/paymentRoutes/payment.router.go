package paymentRoutes

import (
	paymentControllers "lms/controllers/payment"
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payment")

	// Webhook is called by the gateway and authenticated by its signature
	paymentGroup.Post("/webhook", paymentControllers.PaymentWebhook)

	paymentGroup.Get("/list", middleware.JWTMiddleware, paymentControllers.GetMyPayments)
	paymentGroup.Post("/course/:id/checkout", middleware.JWTMiddleware, paymentControllers.CreateCheckout)
}
