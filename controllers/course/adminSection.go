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

// loadManagedCourse resolves the :course_id param and checks ownership.
// Returns a fiber error response when the course is not usable.
func loadManagedCourse(c *fiber.Ctx, paramName string) (courseModels.Course, error) {
	var course courseModels.Course

	user, ok := currentUser(c)
	if !ok {
		return course, middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt(paramName)
	if err != nil {
		return course, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return course, middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return course, middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
	}

	return course, nil
}

// AdminCreateSection appends a section to the end of the course
func AdminCreateSection(c *fiber.Ctx) error {
	course, errResp := loadManagedCourse(c, "course_id")
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedSection").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	section := courseModels.Section{
		CourseID:    course.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  utils.NextOrderIndex(db, &courseModels.Section{}, "course_id", course.ID),
	}

	if err := db.Create(&section).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create section!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", section)
}

// AdminUpdateSection updates section title/description
func AdminUpdateSection(c *fiber.Ctx) error {
	course, errResp := loadManagedCourse(c, "course_id")
	if errResp != nil {
		return errResp
	}

	sectionID, err := c.ParamsInt("section_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid section id!", nil)
	}

	db := database.Database.Db

	var section courseModels.Section
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, course.ID, false).First(&section).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "SECTION_NOT_FOUND", "Section not found!", nil)
	}

	reqData, ok := c.Locals("validatedSection").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		section.Title = reqData.Title
	}
	if reqData.Description != "" {
		section.Description = reqData.Description
	}

	if err := db.Save(&section).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update section!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section updated successfully!", section)
}

// AdminDeleteSection soft deletes an empty section and compacts sibling order.
// A section still holding lessons, quizzes or assignments is rejected with the
// dependent counts so the client can explain what must go first.
func AdminDeleteSection(c *fiber.Ctx) error {
	course, errResp := loadManagedCourse(c, "course_id")
	if errResp != nil {
		return errResp
	}

	sectionID, err := c.ParamsInt("section_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid section id!", nil)
	}

	db := database.Database.Db

	var section courseModels.Section
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, course.ID, false).First(&section).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "SECTION_NOT_FOUND", "Section not found!", nil)
	}

	var lessonCount, quizCount, assignmentCount int64
	db.Model(&courseModels.Lesson{}).Where("section_id = ? AND is_deleted = ?", section.ID, false).Count(&lessonCount)
	db.Model(&courseModels.Quiz{}).Where("section_id = ? AND is_deleted = ?", section.ID, false).Count(&quizCount)
	db.Model(&courseModels.Assignment{}).Where("section_id = ? AND is_deleted = ?", section.ID, false).Count(&assignmentCount)

	if lessonCount > 0 || quizCount > 0 || assignmentCount > 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "SECTION_HAS_CONTENT", "Section still has content and cannot be deleted!", fiber.Map{
			"lessons":     lessonCount,
			"quizzes":     quizCount,
			"assignments": assignmentCount,
		})
	}

	// Delete and renumber in one transaction so order stays dense
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&section).UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		return utils.CompactOrderAfter(tx, &courseModels.Section{}, "course_id", course.ID, section.OrderIndex)
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete section!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", nil)
}

// AdminReorderSections applies a full permutation of the course's section IDs
func AdminReorderSections(c *fiber.Ctx) error {
	course, errResp := loadManagedCourse(c, "course_id")
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
		return utils.ReorderSiblings(tx, &courseModels.Section{}, "course_id", course.ID, reqData.OrderedIDs)
	})
	if err != nil {
		if errors.Is(err, utils.ErrInvalidOrderIDs) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_SECTION_IDS", "Supplied section ids are invalid or incomplete!", nil)
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reorder sections!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections reordered successfully!", nil)
}

// AdminListSections returns the course's sections in order
func AdminListSections(c *fiber.Ctx) error {
	course, errResp := loadManagedCourse(c, "course_id")
	if errResp != nil {
		return errResp
	}

	var sections []courseModels.Section
	if err := database.Database.Db.
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc").Find(&sections).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch sections!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections fetched successfully!", sections)
}
