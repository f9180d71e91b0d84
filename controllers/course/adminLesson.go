package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// loadManagedSection resolves :course_id/:section_id with ownership checks
func loadManagedSection(c *fiber.Ctx) (courseModels.Course, courseModels.Section, error) {
	var section courseModels.Section

	course, errResp := loadManagedCourse(c, "course_id")
	if errResp != nil {
		return course, section, errResp
	}

	sectionID, err := c.ParamsInt("section_id")
	if err != nil {
		return course, section, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid section id!", nil)
	}

	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, course.ID, false).First(&section).Error; err != nil {
		return course, section, middleware.ErrorResponse(c, fiber.StatusNotFound, "SECTION_NOT_FOUND", "Section not found!", nil)
	}

	return course, section, nil
}

// AdminCreateLesson appends a lesson to the end of the section
func AdminCreateLesson(c *fiber.Ctx) error {
	course, section, errResp := loadManagedSection(c)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title       string `json:"title"`
		ContentType string `json:"content_type"`
		TextContent string `json:"text_content"`
		VideoURL    string `json:"video_url"`
		Duration    int    `json:"duration"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	lesson := courseModels.Lesson{
		SectionID:   section.ID,
		CourseID:    course.ID,
		Title:       reqData.Title,
		ContentType: reqData.ContentType,
		TextContent: reqData.TextContent,
		VideoURL:    reqData.VideoURL,
		Duration:    reqData.Duration,
		OrderIndex:  utils.NextOrderIndex(db, &courseModels.Lesson{}, "section_id", section.ID),
	}

	if err := db.Create(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create lesson!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminUpdateLesson updates lesson fields
func AdminUpdateLesson(c *fiber.Ctx) error {
	course, section, errResp := loadManagedSection(c)
	if errResp != nil {
		return errResp
	}

	lessonID, err := c.ParamsInt("lesson_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid lesson id!", nil)
	}

	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND section_id = ? AND is_deleted = ?", lessonID, section.ID, false).First(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "LESSON_NOT_FOUND", "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title       string `json:"title"`
		ContentType string `json:"content_type"`
		TextContent string `json:"text_content"`
		VideoURL    string `json:"video_url"`
		Duration    int    `json:"duration"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.ContentType != "" {
		lesson.ContentType = reqData.ContentType
	}
	if reqData.TextContent != "" {
		lesson.TextContent = reqData.TextContent
	}
	if reqData.VideoURL != "" {
		lesson.VideoURL = reqData.VideoURL
	}
	if reqData.Duration > 0 {
		lesson.Duration = reqData.Duration
	}

	if err := db.Save(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update lesson!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// AdminPublishLesson flips a lesson visible to students
func AdminPublishLesson(c *fiber.Ctx) error {
	course, section, errResp := loadManagedSection(c)
	if errResp != nil {
		return errResp
	}

	lessonID, err := c.ParamsInt("lesson_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid lesson id!", nil)
	}

	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND section_id = ? AND is_deleted = ?", lessonID, section.ID, false).First(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "LESSON_NOT_FOUND", "Lesson not found!", nil)
	}

	lesson.IsPublished = true
	if err := db.Save(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to publish lesson!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson published successfully!", lesson)
}

// AdminDeleteLesson soft deletes a lesson nobody has completed yet and
// compacts sibling order
func AdminDeleteLesson(c *fiber.Ctx) error {
	course, section, errResp := loadManagedSection(c)
	if errResp != nil {
		return errResp
	}

	lessonID, err := c.ParamsInt("lesson_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid lesson id!", nil)
	}

	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND section_id = ? AND is_deleted = ?", lessonID, section.ID, false).First(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "LESSON_NOT_FOUND", "Lesson not found!", nil)
	}

	var completionCount int64
	db.Model(&courseModels.LessonCompletion{}).Where("lesson_id = ? AND is_deleted = ?", lesson.ID, false).Count(&completionCount)
	if completionCount > 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "LESSON_HAS_COMPLETIONS", "Lesson has student completions and cannot be deleted!", fiber.Map{
			"completions": completionCount,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&lesson).UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		return utils.CompactOrderAfter(tx, &courseModels.Lesson{}, "section_id", section.ID, lesson.OrderIndex)
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete lesson!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// AdminReorderLessons applies a full permutation of the section's lesson IDs
func AdminReorderLessons(c *fiber.Ctx) error {
	course, section, errResp := loadManagedSection(c)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedReorder").(*struct {
		OrderedIDs []uint `json:"ordered_ids"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		return utils.ReorderSiblings(tx, &courseModels.Lesson{}, "section_id", section.ID, reqData.OrderedIDs)
	})
	if err != nil {
		if errors.Is(err, utils.ErrInvalidOrderIDs) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_LESSON_IDS", "Supplied lesson ids are invalid or incomplete!", nil)
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reorder lessons!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons reordered successfully!", nil)
}
