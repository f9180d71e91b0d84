package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all course management routes for admins and
// instructors. Ownership of individual courses is checked in the handlers.
func SetupAdminCourseRoutes(app *fiber.App) {
	manage := middleware.RequireRole("ADMIN", "INSTRUCTOR")

	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, manage)

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Get("/list", controllers.AdminGetAllCourses)
	adminGroup.Put("/:id", validators.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", controllers.AdminDeleteCourse)
	adminGroup.Get("/:id", controllers.AdminGetCourseDetails)
	adminGroup.Post("/:id/publish", controllers.AdminPublishCourse)

	// Section management
	adminGroup.Post("/:course_id/section", validators.CreateSection(), controllers.AdminCreateSection)
	adminGroup.Get("/:course_id/sections", controllers.AdminListSections)
	adminGroup.Patch("/:course_id/sections/reorder", validators.Reorder(), controllers.AdminReorderSections)
	adminGroup.Put("/:course_id/section/:section_id", validators.UpdateSection(), controllers.AdminUpdateSection)
	adminGroup.Delete("/:course_id/section/:section_id", controllers.AdminDeleteSection)

	// Lesson management
	adminGroup.Post("/:course_id/section/:section_id/lesson", validators.CreateLesson(), controllers.AdminCreateLesson)
	adminGroup.Patch("/:course_id/section/:section_id/lessons/reorder", validators.Reorder(), controllers.AdminReorderLessons)
	adminGroup.Put("/:course_id/section/:section_id/lesson/:lesson_id", validators.UpdateLesson(), controllers.AdminUpdateLesson)
	adminGroup.Post("/:course_id/section/:section_id/lesson/:lesson_id/publish", controllers.AdminPublishLesson)
	adminGroup.Delete("/:course_id/section/:section_id/lesson/:lesson_id", controllers.AdminDeleteLesson)

	// Quizzes and assignments are created under a section, then managed by id
	adminGroup.Post("/:course_id/section/:section_id/quiz", validators.CreateQuiz(), controllers.AdminCreateQuiz)
	adminGroup.Post("/:course_id/section/:section_id/assignment", validators.CreateAssignment(), controllers.AdminCreateAssignment)
	adminGroup.Delete("/:course_id/section/:section_id/assignment/:assignment_id", controllers.AdminDeleteAssignment)

	// Quiz and question management
	quizGroup := app.Group("/admin/quiz", middleware.JWTMiddleware, manage)
	quizGroup.Put("/:quiz_id", validators.UpdateQuiz(), controllers.AdminUpdateQuiz)
	quizGroup.Post("/:quiz_id/publish", controllers.AdminPublishQuiz)
	quizGroup.Delete("/:quiz_id", controllers.AdminDeleteQuiz)
	quizGroup.Post("/:quiz_id/question", validators.CreateQuestion(), controllers.AdminAddQuestion)
	quizGroup.Get("/:quiz_id/questions", controllers.AdminListQuestions)
	quizGroup.Patch("/:quiz_id/questions/reorder", validators.Reorder(), controllers.AdminReorderQuestions)
	quizGroup.Put("/:quiz_id/question/:question_id", validators.UpdateQuestion(), controllers.AdminUpdateQuestion)
	quizGroup.Delete("/:quiz_id/question/:question_id", controllers.AdminDeleteQuestion)

	// Manual grading
	attemptGroup := app.Group("/admin/attempt", middleware.JWTMiddleware, manage)
	attemptGroup.Post("/:attempt_id/grade", validators.GradeAttempt(), controllers.GradeQuizAttempt)

	assignmentGroup := app.Group("/admin/assignment", middleware.JWTMiddleware, manage)
	assignmentGroup.Get("/:assignment_id/submissions", controllers.AdminListSubmissions)

	submissionGroup := app.Group("/admin/submission", middleware.JWTMiddleware, manage)
	submissionGroup.Post("/:submission_id/grade", validators.GradeSubmission(), controllers.AdminGradeSubmission)

	// Certificate management, admin only
	adminOnly := middleware.RequireRole("ADMIN")

	certsGroup := app.Group("/admin/certificates", middleware.JWTMiddleware, adminOnly)
	certsGroup.Get("/pending", controllers.AdminGetPendingCertificates)

	certGroup := app.Group("/admin/certificate", middleware.JWTMiddleware, adminOnly)
	certGroup.Post("/:request_id/approve", controllers.AdminApproveCertificate)
	certGroup.Post("/:request_id/reject", validators.RejectCertificate(), controllers.AdminRejectCertificate)

	// Dashboard
	dashGroup := app.Group("/admin/dashboard", middleware.JWTMiddleware, adminOnly)
	dashGroup.Get("/stats", controllers.AdminDashboardStats)
}
