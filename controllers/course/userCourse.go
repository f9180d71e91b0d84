package controllers

import (
	"context"
	"fmt"
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// GetPublishedCourses lists the public catalog, paginated and cached
func GetPublishedCourses(c *fiber.Ctx) error {
	page, limit, offset := utils.Paginate(c.QueryInt("page", 1), c.QueryInt("limit", 10))

	ctx := context.Background()
	cacheKey := fmt.Sprintf("courses:list:%d:%d", page, limit)

	var cached fiber.Map
	if utils.CacheGetJSON(ctx, cacheKey, &cached) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", cached)
	}

	db := database.Database.Db

	var total int64
	db.Model(&courseModels.Course{}).Where("is_published = ? AND is_deleted = ?", true, false).Count(&total)

	var courses []courseModels.Course
	if err := db.Where("is_published = ? AND is_deleted = ?", true, false).
		Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch courses!", nil)
	}

	payload := fiber.Map{
		"courses": courses,
		"page":    page,
		"limit":   limit,
		"total":   total,
	}
	utils.CacheSetJSON(ctx, cacheKey, payload, 0)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", payload)
}

// GetCourseStructure serves the section tree of a published course
func GetCourseStructure(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}

	structure, err := loadCourseStructure(course.ID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch course structure!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":   course,
		"sections": structure,
	})
}

// EnrollCourse enrolls the student. Free courses enroll immediately; paid
// courses get a PENDING_PAYMENT enrollment and the client is sent to checkout.
func EnrollCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}

	var existing courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, course.ID, false).First(&existing).Error; err == nil {
		return middleware.ErrorResponse(c, fiber.StatusConflict, "ALREADY_ENROLLED", "You are already enrolled in this course!", existing)
	}

	var totalLessons int64
	db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_deleted = ?", course.ID, false).Count(&totalLessons)

	enrollment := courseModels.Enrollment{
		UserID:       userID,
		CourseID:     course.ID,
		TotalLessons: int(totalLessons),
	}
	if course.Price > 0 {
		enrollment.Status = "PENDING_PAYMENT"
	} else {
		enrollment.Status = "ENROLLED"
	}

	if err := db.Create(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to enroll!", nil)
	}

	if enrollment.Status == "ENROLLED" {
		utils.DispatchNotification(userID, "ENROLLMENT", "Enrollment confirmed",
			"You are enrolled in \""+course.Title+"\". Happy learning!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrollment created!", fiber.Map{
		"enrollment":       enrollment,
		"requires_payment": course.Price > 0,
	})
}

// GetMyEnrollments lists the student's enrollments with progress
func GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

// CompleteLesson marks a lesson done and recomputes enrollment progress
func CompleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	lessonID, err := c.ParamsInt("lesson_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid lesson id!", nil)
	}

	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", lessonID, false, true).First(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "LESSON_NOT_FOUND", "Lesson not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ? AND status <> ?",
		userID, lesson.CourseID, false, "PENDING_PAYMENT").First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "NOT_ENROLLED", "You are not enrolled in this course!", nil)
	}

	var existing courseModels.LessonCompletion
	if err := db.Where("user_id = ? AND lesson_id = ? AND is_deleted = ?", userID, lesson.ID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson already completed!", enrollment)
	}

	completion := courseModels.LessonCompletion{
		UserID:   userID,
		CourseID: lesson.CourseID,
		LessonID: lesson.ID,
	}
	if err := db.Create(&completion).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record completion!", nil)
	}

	// Recompute progress from the authoritative counts
	var completed, totalLessons int64
	db.Model(&courseModels.LessonCompletion{}).Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, lesson.CourseID, false).Count(&completed)
	db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_deleted = ?", lesson.CourseID, false).Count(&totalLessons)

	enrollment.CompletedLessons = int(completed)
	enrollment.TotalLessons = int(totalLessons)
	if totalLessons > 0 {
		enrollment.Progress = utils.Round2(float64(completed) / float64(totalLessons) * 100)
	}
	if enrollment.Progress >= 100 {
		enrollment.Status = "COMPLETED"
		now := time.Now()
		enrollment.CompletedAt = &now
	} else {
		enrollment.Status = "IN_PROGRESS"
	}

	if err := db.Save(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update progress!", nil)
	}

	if enrollment.Status == "COMPLETED" {
		var course courseModels.Course
		if db.Where("id = ?", lesson.CourseID).First(&course).Error == nil {
			utils.DispatchNotification(userID, "ENROLLMENT", "Course completed",
				"Congratulations, you completed \""+course.Title+"\"! You can now request your certificate.")
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", enrollment)
}
