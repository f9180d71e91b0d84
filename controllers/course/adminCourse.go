package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateCourse creates a new draft course owned by the caller
func AdminCreateCourse(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Price        int64  `json:"price"`
		ThumbnailURL string `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	course := courseModels.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Price:        reqData.Price,
		ThumbnailURL: reqData.ThumbnailURL,
		InstructorID: user.ID,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminUpdateCourse updates course metadata
func AdminUpdateCourse(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Price        *int64 `json:"price"`
		ThumbnailURL string `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}
	if reqData.ThumbnailURL != "" {
		course.ThumbnailURL = reqData.ThumbnailURL
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update course!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminPublishCourse flips a course live
func AdminPublishCourse(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
	}

	course.IsPublished = true
	course.Status = "PUBLISHED"
	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to publish course!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}

// AdminDeleteCourse soft deletes a course with no active enrollments
func AdminDeleteCourse(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
	}

	var enrollmentCount int64
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", course.ID, false).Count(&enrollmentCount)
	if enrollmentCount > 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "COURSE_HAS_ENROLLMENTS", "Course has enrollments and cannot be deleted!", fiber.Map{
			"enrollments": enrollmentCount,
		})
	}

	course.IsDeleted = true
	if err := db.Save(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete course!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AdminGetAllCourses lists courses visible to the caller, paginated
func AdminGetAllCourses(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	page, limit, offset := utils.Paginate(c.QueryInt("page", 1), c.QueryInt("limit", 10))

	db := database.Database.Db
	query := db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)
	if user.Role == "INSTRUCTOR" {
		query = query.Where("instructor_id = ?", user.ID)
	}

	var total int64
	query.Count(&total)

	var courses []courseModels.Course
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"page":    page,
		"limit":   limit,
		"total":   total,
	})
}

// AdminGetCourseDetails returns one course with its full content tree
func AdminGetCourseDetails(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
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
