package controllers

import (
	"encoding/json"
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// quizHasAttempts reports whether any attempt references the quiz. Once true,
// the scoring-relevant fields of the quiz and its questions are locked.
func quizHasAttempts(db *gorm.DB, quizID uint) bool {
	var count int64
	db.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ? AND is_deleted = ?", quizID, false).Count(&count)
	return count > 0
}

// loadManagedQuiz resolves :quiz_id and checks course ownership
func loadManagedQuiz(c *fiber.Ctx) (courseModels.Course, courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	var course courseModels.Course

	user, ok := currentUser(c)
	if !ok {
		return course, quiz, middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	quizID, err := c.ParamsInt("quiz_id")
	if err != nil {
		return course, quiz, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid quiz id!", nil)
	}

	db := database.Database.Db

	if err := db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return course, quiz, middleware.ErrorResponse(c, fiber.StatusNotFound, "QUIZ_NOT_FOUND", "Quiz not found!", nil)
	}
	if err := db.Where("id = ? AND is_deleted = ?", quiz.CourseID, false).First(&course).Error; err != nil {
		return course, quiz, middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return course, quiz, middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
	}

	return course, quiz, nil
}

// AdminCreateQuiz appends a quiz to the end of the section
func AdminCreateQuiz(c *fiber.Ctx) error {
	course, section, errResp := loadManagedSection(c)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedQuiz").(*struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		PassingScore int    `json:"passing_score"`
		MaxAttempts  int    `json:"max_attempts"`
		Duration     int    `json:"duration"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	quiz := courseModels.Quiz{
		SectionID:    section.ID,
		CourseID:     course.ID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		PassingScore: reqData.PassingScore,
		MaxAttempts:  reqData.MaxAttempts,
		Duration:     reqData.Duration,
		OrderIndex:   utils.NextOrderIndex(db, &courseModels.Quiz{}, "section_id", section.ID),
	}

	if err := db.Create(&quiz).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create quiz!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// AdminUpdateQuiz updates a quiz. Once any attempt exists, a request changing
// passing_score, max_attempts or duration is rejected in full; re-sending the
// currently stored value is allowed.
func AdminUpdateQuiz(c *fiber.Ctx) error {
	course, quiz, errResp := loadManagedQuiz(c)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedQuizUpdate").(*struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		PassingScore *int   `json:"passing_score"`
		MaxAttempts  *int   `json:"max_attempts"`
		Duration     *int   `json:"duration"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	if quizHasAttempts(db, quiz.ID) {
		locked := map[string]bool{}
		if reqData.PassingScore != nil && *reqData.PassingScore != quiz.PassingScore {
			locked["passing_score"] = true
		}
		if reqData.MaxAttempts != nil && *reqData.MaxAttempts != quiz.MaxAttempts {
			locked["max_attempts"] = true
		}
		if reqData.Duration != nil && *reqData.Duration != quiz.Duration {
			locked["duration"] = true
		}
		if len(locked) > 0 {
			// Whole request rejected, including unrelated fields
			fields := make([]string, 0, len(locked))
			for field := range locked {
				fields = append(fields, field)
			}
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "QUIZ_HAS_ATTEMPTS", "Quiz has attempts; scoring fields are locked!", fiber.Map{
				"locked_fields": fields,
			})
		}
	}

	if reqData.Title != "" {
		quiz.Title = reqData.Title
	}
	if reqData.Description != "" {
		quiz.Description = reqData.Description
	}
	if reqData.PassingScore != nil {
		quiz.PassingScore = *reqData.PassingScore
	}
	if reqData.MaxAttempts != nil {
		quiz.MaxAttempts = *reqData.MaxAttempts
	}
	if reqData.Duration != nil {
		quiz.Duration = *reqData.Duration
	}

	if err := db.Save(&quiz).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update quiz!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

// AdminPublishQuiz flips a quiz visible to students
func AdminPublishQuiz(c *fiber.Ctx) error {
	course, quiz, errResp := loadManagedQuiz(c)
	if errResp != nil {
		return errResp
	}

	quiz.IsPublished = true
	if err := database.Database.Db.Save(&quiz).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to publish quiz!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz published successfully!", quiz)
}

// AdminDeleteQuiz soft deletes a quiz with no attempts and compacts order
func AdminDeleteQuiz(c *fiber.Ctx) error {
	course, quiz, errResp := loadManagedQuiz(c)
	if errResp != nil {
		return errResp
	}

	db := database.Database.Db

	var attemptCount int64
	db.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Count(&attemptCount)
	if attemptCount > 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "QUIZ_HAS_ATTEMPTS", "Quiz has attempts and cannot be deleted!", fiber.Map{
			"attempts": attemptCount,
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&quiz).UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		return utils.CompactOrderAfter(tx, &courseModels.Quiz{}, "section_id", quiz.SectionID, quiz.OrderIndex)
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete quiz!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

// AdminAddQuestion appends a question to the end of the quiz
func AdminAddQuestion(c *fiber.Ctx) error {
	course, quiz, errResp := loadManagedQuiz(c)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedQuestion").(*struct {
		Type          string   `json:"type"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
		Points        int      `json:"points"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	options, err := optionsToJSON(reqData.Options)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid options!", nil)
	}

	question := courseModels.Question{
		QuizID:        quiz.ID,
		Type:          reqData.Type,
		Text:          reqData.Text,
		Options:       options,
		CorrectAnswer: reqData.CorrectAnswer,
		Points:        reqData.Points,
		OrderIndex:    utils.NextOrderIndex(db, &courseModels.Question{}, "quiz_id", quiz.ID),
	}

	if err := db.Create(&question).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create question!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", question)
}

// AdminUpdateQuestion updates a question. correct_answer, points and type are
// locked once the quiz has attempts; a changed locked field rejects the whole
// request.
func AdminUpdateQuestion(c *fiber.Ctx) error {
	course, quiz, errResp := loadManagedQuiz(c)
	if errResp != nil {
		return errResp
	}

	questionID, err := c.ParamsInt("question_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid question id!", nil)
	}

	db := database.Database.Db

	var question courseModels.Question
	if err := db.Where("id = ? AND quiz_id = ? AND is_deleted = ?", questionID, quiz.ID, false).First(&question).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "QUESTION_NOT_FOUND", "Question not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuestionUpdate").(*struct {
		Type          string   `json:"type"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectAnswer *string  `json:"correct_answer"`
		Points        *int     `json:"points"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	if quizHasAttempts(db, quiz.ID) {
		locked := []string{}
		if reqData.CorrectAnswer != nil && *reqData.CorrectAnswer != question.CorrectAnswer {
			locked = append(locked, "correct_answer")
		}
		if reqData.Points != nil && *reqData.Points != question.Points {
			locked = append(locked, "points")
		}
		if reqData.Type != "" && reqData.Type != question.Type {
			locked = append(locked, "type")
		}
		if len(locked) > 0 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "QUIZ_HAS_ATTEMPTS", "Quiz has attempts; scoring fields are locked!", fiber.Map{
				"locked_fields": locked,
			})
		}
	}

	if reqData.Type != "" {
		question.Type = reqData.Type
	}
	if reqData.Text != "" {
		question.Text = reqData.Text
	}
	if reqData.Options != nil {
		options, err := optionsToJSON(reqData.Options)
		if err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid options!", nil)
		}
		question.Options = options
	}
	if reqData.CorrectAnswer != nil {
		question.CorrectAnswer = *reqData.CorrectAnswer
	}
	if reqData.Points != nil {
		question.Points = *reqData.Points
	}

	if err := db.Save(&question).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update question!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

// AdminDeleteQuestion soft deletes an unanswered question and compacts order
func AdminDeleteQuestion(c *fiber.Ctx) error {
	course, quiz, errResp := loadManagedQuiz(c)
	if errResp != nil {
		return errResp
	}

	questionID, err := c.ParamsInt("question_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid question id!", nil)
	}

	db := database.Database.Db

	var question courseModels.Question
	if err := db.Where("id = ? AND quiz_id = ? AND is_deleted = ?", questionID, quiz.ID, false).First(&question).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "QUESTION_NOT_FOUND", "Question not found!", nil)
	}

	var answerCount int64
	db.Model(&courseModels.QuizAnswer{}).Where("question_id = ? AND is_deleted = ?", question.ID, false).Count(&answerCount)
	if answerCount > 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "QUESTION_HAS_ANSWERS", "Question has submitted answers and cannot be deleted!", fiber.Map{
			"answers": answerCount,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&question).UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		return utils.CompactOrderAfter(tx, &courseModels.Question{}, "quiz_id", quiz.ID, question.OrderIndex)
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete question!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

// AdminReorderQuestions applies a full permutation of the quiz's question IDs
func AdminReorderQuestions(c *fiber.Ctx) error {
	course, quiz, errResp := loadManagedQuiz(c)
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
		return utils.ReorderSiblings(tx, &courseModels.Question{}, "quiz_id", quiz.ID, reqData.OrderedIDs)
	})
	if err != nil {
		if errors.Is(err, utils.ErrInvalidOrderIDs) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_QUESTION_IDS", "Supplied question ids are invalid or incomplete!", nil)
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reorder questions!", nil)
	}

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions reordered successfully!", nil)
}

// AdminListQuestions returns the quiz's questions in order, answers included
func AdminListQuestions(c *fiber.Ctx) error {
	_, quiz, errResp := loadManagedQuiz(c)
	if errResp != nil {
		return errResp
	}

	var questions []courseModels.Question
	if err := database.Database.Db.
		Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch questions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", questions)
}

// optionsToJSON stores the option list as a JSON column value
func optionsToJSON(options []string) (datatypes.JSON, error) {
	if options == nil {
		return nil, nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
