package controllers

import (
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminCreateAssignment appends an assignment to the end of the section
func AdminCreateAssignment(c *fiber.Ctx) error {
	course, section, errResp := loadManagedSection(c)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedAssignment").(*struct {
		Title        string     `json:"title"`
		Instructions string     `json:"instructions"`
		MaxPoints    int        `json:"max_points"`
		DueDate      *time.Time `json:"due_date"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	assignment := courseModels.Assignment{
		SectionID:    section.ID,
		CourseID:     course.ID,
		Title:        reqData.Title,
		Instructions: reqData.Instructions,
		MaxPoints:    reqData.MaxPoints,
		DueDate:      reqData.DueDate,
		OrderIndex:   utils.NextOrderIndex(db, &courseModels.Assignment{}, "section_id", section.ID),
	}

	if err := db.Create(&assignment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create assignment!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment created successfully!", assignment)
}

// AdminDeleteAssignment soft deletes an assignment with no submissions and
// compacts sibling order
func AdminDeleteAssignment(c *fiber.Ctx) error {
	course, section, errResp := loadManagedSection(c)
	if errResp != nil {
		return errResp
	}

	assignmentID, err := c.ParamsInt("assignment_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid assignment id!", nil)
	}

	db := database.Database.Db

	var assignment courseModels.Assignment
	if err := db.Where("id = ? AND section_id = ? AND is_deleted = ?", assignmentID, section.ID, false).First(&assignment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "ASSIGNMENT_NOT_FOUND", "Assignment not found!", nil)
	}

	var submissionCount int64
	db.Model(&courseModels.AssignmentSubmission{}).Where("assignment_id = ? AND is_deleted = ?", assignment.ID, false).Count(&submissionCount)
	if submissionCount > 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "ASSIGNMENT_HAS_SUBMISSIONS", "Assignment has submissions and cannot be deleted!", fiber.Map{
			"submissions": submissionCount,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&assignment).UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		return utils.CompactOrderAfter(tx, &courseModels.Assignment{}, "section_id", section.ID, assignment.OrderIndex)
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete assignment!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment deleted successfully!", nil)
}

// SubmitAssignment stores or replaces the student's submission
func SubmitAssignment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	assignmentID, err := c.ParamsInt("assignment_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid assignment id!", nil)
	}

	reqData, ok := c.Locals("validatedSubmission").(*struct {
		TextAnswer string `json:"text_answer"`
		FileURL    string `json:"file_url"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	var assignment courseModels.Assignment
	if err := db.Where("id = ? AND is_deleted = ?", assignmentID, false).First(&assignment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "ASSIGNMENT_NOT_FOUND", "Assignment not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ? AND status <> ?",
		userID, assignment.CourseID, false, "PENDING_PAYMENT").First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "NOT_ENROLLED", "You are not enrolled in this course!", nil)
	}

	// Resubmission before grading replaces the previous answer
	var submission courseModels.AssignmentSubmission
	if err := db.Where("user_id = ? AND assignment_id = ? AND is_deleted = ?", userID, assignment.ID, false).First(&submission).Error; err == nil {
		if submission.Status == "GRADED" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "SUBMISSION_ALREADY_GRADED", "Submission has been graded and cannot be changed!", nil)
		}
		submission.TextAnswer = reqData.TextAnswer
		submission.FileURL = reqData.FileURL
		if err := db.Save(&submission).Error; err != nil {
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update submission!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission updated successfully!", submission)
	}

	submission = courseModels.AssignmentSubmission{
		UserID:       userID,
		AssignmentID: assignment.ID,
		TextAnswer:   reqData.TextAnswer,
		FileURL:      reqData.FileURL,
	}
	if err := db.Create(&submission).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment submitted successfully!", submission)
}

// AdminGradeSubmission records a grade and feedback for a submission
func AdminGradeSubmission(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	submissionID, err := c.ParamsInt("submission_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid submission id!", nil)
	}

	reqData, ok := c.Locals("validatedGrade").(*struct {
		Grade    int    `json:"grade"`
		Feedback string `json:"feedback"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	var submission courseModels.AssignmentSubmission
	if err := db.Where("id = ? AND is_deleted = ?", submissionID, false).First(&submission).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "SUBMISSION_NOT_FOUND", "Submission not found!", nil)
	}

	var assignment courseModels.Assignment
	if err := db.Where("id = ? AND is_deleted = ?", submission.AssignmentID, false).First(&assignment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "ASSIGNMENT_NOT_FOUND", "Assignment not found!", nil)
	}
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", assignment.CourseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
	}

	if reqData.Grade > assignment.MaxPoints {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "GRADE_EXCEEDS_MAX", "Grade exceeds the assignment's max points!", fiber.Map{
			"max_points": assignment.MaxPoints,
		})
	}

	submission.Grade = &reqData.Grade
	submission.Feedback = reqData.Feedback
	submission.Status = "GRADED"
	if err := db.Save(&submission).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to grade submission!", nil)
	}

	utils.DispatchNotification(submission.UserID, "CONTENT", "Assignment graded",
		"Your submission for \""+assignment.Title+"\" has been graded.")

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded successfully!", submission)
}

// AdminListSubmissions lists all submissions of an assignment
func AdminListSubmissions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	assignmentID, err := c.ParamsInt("assignment_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid assignment id!", nil)
	}

	db := database.Database.Db

	var assignment courseModels.Assignment
	if err := db.Where("id = ? AND is_deleted = ?", assignmentID, false).First(&assignment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "ASSIGNMENT_NOT_FOUND", "Assignment not found!", nil)
	}
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", assignment.CourseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
	}

	var submissions []courseModels.AssignmentSubmission
	if err := db.Where("assignment_id = ? AND is_deleted = ?", assignment.ID, false).
		Order("created_at asc").Find(&submissions).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", submissions)
}
