package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the student-facing learning routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Static paths are registered before /:id so they are not swallowed by it
	courseGroup.Get("/list", controllers.GetPublishedCourses)
	courseGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetMyEnrollments)
	courseGroup.Get("/:id", controllers.GetCourseStructure)
	courseGroup.Get("/:id/reviews", controllers.GetCourseReviews)
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, controllers.EnrollCourse)
	courseGroup.Post("/:id/review", middleware.JWTMiddleware, validators.AddReview(), controllers.AddCourseReview)
	courseGroup.Post("/:id/certificate", middleware.JWTMiddleware, controllers.RequestCertificate)

	lessonGroup := app.Group("/lesson", middleware.JWTMiddleware)
	lessonGroup.Post("/:lesson_id/complete", controllers.CompleteLesson)

	quizGroup := app.Group("/quiz", middleware.JWTMiddleware)
	quizGroup.Post("/:quiz_id/attempt/start", controllers.StartQuizAttempt)
	quizGroup.Post("/:quiz_id/attempt/submit", validators.SubmitQuiz(), controllers.SubmitQuizAttempt)
	quizGroup.Get("/:quiz_id/attempts", controllers.GetMyQuizAttempts)

	assignmentGroup := app.Group("/assignment", middleware.JWTMiddleware)
	assignmentGroup.Post("/:assignment_id/submit", validators.SubmitAssignment(), controllers.SubmitAssignment)
}
