package main

import (
	"lms/config"
	paymentControllers "lms/controllers/payment"
	"lms/database"
	"lms/middleware"
	adminRoutes "lms/routers/adminRoutes"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	notificationRoutes "lms/routers/notificationRoutes"
	paymentRoutes "lms/routers/paymentRoutes"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	config.InitLogger()
	database.ConnectDb()
	database.ConnectRedis()
	paymentControllers.InitMidtrans()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,X-Request-ID",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Use(middleware.RequestMeta)

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	notificationRoutes.SetupNotificationRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	utils.StartSchedulers()

	config.Log.Infow("Server is running", "port", config.AppConfig.Port)
	config.Log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
