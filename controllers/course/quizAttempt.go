package controllers

import (
	"fmt"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// nextAttemptNumber returns the attempt number the student would get for this
// quiz: the highest existing number plus one.
func nextAttemptNumber(db *gorm.DB, userID, quizID uint) int {
	var last courseModels.QuizAttempt
	err := db.Where("user_id = ? AND quiz_id = ? AND is_deleted = ?", userID, quizID, false).
		Order("attempt_number desc").First(&last).Error
	if err != nil {
		return 1
	}
	return last.AttemptNumber + 1
}

// loadEnrolledQuiz resolves :quiz_id for a student and verifies enrollment
func loadEnrolledQuiz(c *fiber.Ctx) (uint, courseModels.Quiz, error) {
	var quiz courseModels.Quiz

	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return 0, quiz, middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	quizID, err := c.ParamsInt("quiz_id")
	if err != nil {
		return 0, quiz, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid quiz id!", nil)
	}

	db := database.Database.Db

	if err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", quizID, false, true).First(&quiz).Error; err != nil {
		return 0, quiz, middleware.ErrorResponse(c, fiber.StatusNotFound, "QUIZ_NOT_FOUND", "Quiz not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ? AND status <> ?",
		userID, quiz.CourseID, false, "PENDING_PAYMENT").First(&enrollment).Error; err != nil {
		return 0, quiz, middleware.ErrorResponse(c, fiber.StatusForbidden, "NOT_ENROLLED", "You are not enrolled in this course!", nil)
	}

	return userID, quiz, nil
}

// StartQuizAttempt opens a new attempt, enforcing the max attempt limit.
// An already open attempt is returned instead of opening a second one.
func StartQuizAttempt(c *fiber.Ctx) error {
	userID, quiz, errResp := loadEnrolledQuiz(c)
	if errResp != nil {
		return errResp
	}

	db := database.Database.Db

	var open courseModels.QuizAttempt
	if err := db.Where("user_id = ? AND quiz_id = ? AND status = ? AND is_deleted = ?",
		userID, quiz.ID, courseModels.AttemptStarted, false).First(&open).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt already in progress!", open)
	}

	attemptNumber := nextAttemptNumber(db, userID, quiz.ID)
	if attemptNumber > quiz.MaxAttempts {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MAX_ATTEMPTS_EXCEEDED", "Maximum attempts reached for this quiz!", fiber.Map{
			"max_attempts": quiz.MaxAttempts,
		})
	}

	attempt := courseModels.QuizAttempt{
		UserID:        userID,
		QuizID:        quiz.ID,
		AttemptNumber: attemptNumber,
		Status:        courseModels.AttemptStarted,
		StartedAt:     time.Now(),
	}
	if err := db.Create(&attempt).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start attempt!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Attempt started!", attempt)
}

// SubmitQuizAttempt evaluates the submitted answers and closes the attempt.
// When no attempt is open, admission control runs and a new attempt row is
// created; past the max attempt limit nothing is written.
func SubmitQuizAttempt(c *fiber.Ctx) error {
	userID, quiz, errResp := loadEnrolledQuiz(c)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedSubmission").(*struct {
		Answers []struct {
			QuestionID uint   `json:"question_id"`
			Answer     string `json:"answer"`
		} `json:"answers"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	var questions []courseModels.Question
	if err := db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch questions!", nil)
	}
	questionByID := make(map[uint]courseModels.Question, len(questions))
	for _, question := range questions {
		questionByID[question.ID] = question
	}

	var attempt courseModels.QuizAttempt
	hasOpen := db.Where("user_id = ? AND quiz_id = ? AND status = ? AND is_deleted = ?",
		userID, quiz.ID, courseModels.AttemptStarted, false).First(&attempt).Error == nil

	if !hasOpen {
		attemptNumber := nextAttemptNumber(db, userID, quiz.ID)
		if attemptNumber > quiz.MaxAttempts {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MAX_ATTEMPTS_EXCEEDED", "Maximum attempts reached for this quiz!", fiber.Map{
				"max_attempts": quiz.MaxAttempts,
			})
		}
		attempt = courseModels.QuizAttempt{
			UserID:        userID,
			QuizID:        quiz.ID,
			AttemptNumber: attemptNumber,
			Status:        courseModels.AttemptStarted,
			StartedAt:     time.Now(),
		}
	}

	// Evaluate each submitted answer against its question
	answers := make([]courseModels.QuizAnswer, 0, len(reqData.Answers))
	needsManualGrading := false
	for _, submitted := range reqData.Answers {
		question, exists := questionByID[submitted.QuestionID]
		if !exists {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_QUESTION_IDS", "Answer references a question outside this quiz!", nil)
		}
		isCorrect := utils.EvaluateAnswer(question.Type, question.CorrectAnswer, submitted.Answer)
		points := 0
		if isCorrect {
			points = question.Points
		}
		answers = append(answers, courseModels.QuizAnswer{
			QuestionID:    question.ID,
			Submitted:     submitted.Answer,
			IsCorrect:     isCorrect,
			PointsAwarded: points,
		})
	}
	for _, question := range questions {
		if question.Type == courseModels.QuestionShortAnswer {
			needsManualGrading = true
		}
	}

	result := utils.CalculateQuizScore(questions, answers, quiz.PassingScore)

	now := time.Now()
	attempt.Score = result.EarnedPoints
	attempt.TotalPoints = result.TotalPoints
	attempt.Percentage = result.Percentage
	attempt.IsPassed = result.IsPassed
	attempt.SubmittedAt = &now
	// Short answer questions get a provisional auto score and wait for the
	// instructor; everything else is final immediately.
	if needsManualGrading {
		attempt.Status = courseModels.AttemptSubmitted
	} else {
		attempt.Status = courseModels.AttemptGraded
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit attempt!", nil)
	}

	notifyQuizResult(userID, quiz, attempt)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt submitted successfully!", fiber.Map{
		"attempt": attempt,
		"result":  result,
	})
}

// GetMyQuizAttempts lists the student's attempts for a quiz, newest first
func GetMyQuizAttempts(c *fiber.Ctx) error {
	userID, quiz, errResp := loadEnrolledQuiz(c)
	if errResp != nil {
		return errResp
	}

	var attempts []courseModels.QuizAttempt
	if err := database.Database.Db.
		Where("user_id = ? AND quiz_id = ? AND is_deleted = ?", userID, quiz.ID, false).
		Order("attempt_number desc").Find(&attempts).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}

// GradeQuizAttempt lets the instructor replace auto-evaluated scores with
// per-question point awards. The final score is the explicit override when
// supplied, otherwise the recomputed sum of awarded points.
func GradeQuizAttempt(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	attemptID, err := c.ParamsInt("attempt_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid attempt id!", nil)
	}

	db := database.Database.Db

	var attempt courseModels.QuizAttempt
	if err := db.Where("id = ? AND is_deleted = ?", attemptID, false).First(&attempt).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "ATTEMPT_NOT_FOUND", "Attempt not found!", nil)
	}
	if attempt.Status == courseModels.AttemptGraded {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "ATTEMPT_ALREADY_GRADED", "Attempt has already been graded!", nil)
	}

	var quiz courseModels.Quiz
	if err := db.Where("id = ? AND is_deleted = ?", attempt.QuizID, false).First(&quiz).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "QUIZ_NOT_FOUND", "Quiz not found!", nil)
	}
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", quiz.CourseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if !canManageCourse(user, course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this course!", nil)
	}

	reqData, ok := c.Locals("validatedGrading").(*struct {
		Grades []struct {
			QuestionID uint `json:"question_id"`
			Points     int  `json:"points"`
		} `json:"grades"`
		OverrideGrade *int `json:"override_grade"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	var questions []courseModels.Question
	if err := db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch questions!", nil)
	}

	var answers []courseModels.QuizAnswer
	if err := db.Where("attempt_id = ? AND is_deleted = ?", attempt.ID, false).Find(&answers).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch answers!", nil)
	}
	answerByQuestion := make(map[uint]*courseModels.QuizAnswer, len(answers))
	for i := range answers {
		answerByQuestion[answers[i].QuestionID] = &answers[i]
	}

	// Apply instructor point awards; correctness follows the awarded points
	for _, grade := range reqData.Grades {
		answer, exists := answerByQuestion[grade.QuestionID]
		if !exists {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_QUESTION_IDS", "Grade references a question without an answer!", nil)
		}
		answer.PointsAwarded = grade.Points
		answer.IsCorrect = grade.Points > 0
	}

	totalPoints := 0
	for _, question := range questions {
		totalPoints += question.Points
	}
	earnedPoints := 0
	for _, answer := range answers {
		earnedPoints += answer.PointsAwarded
	}
	if reqData.OverrideGrade != nil {
		if *reqData.OverrideGrade > totalPoints {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "GRADE_EXCEEDS_MAX", "Override grade exceeds the quiz's total points!", fiber.Map{
				"total_points": totalPoints,
			})
		}
		earnedPoints = *reqData.OverrideGrade
	}

	percentage := 0.0
	if totalPoints > 0 {
		percentage = utils.Round2(float64(earnedPoints) / float64(totalPoints) * 100)
	}
	passingPoints := (quiz.PassingScore*totalPoints + 99) / 100

	attempt.Score = earnedPoints
	attempt.TotalPoints = totalPoints
	attempt.Percentage = percentage
	attempt.IsPassed = earnedPoints >= passingPoints
	attempt.Status = courseModels.AttemptGraded

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			if err := tx.Save(&answers[i]).Error; err != nil {
				return err
			}
		}
		return tx.Save(&attempt).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to grade attempt!", nil)
	}

	notifyQuizResult(attempt.UserID, quiz, attempt)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt graded successfully!", attempt)
}

// notifyQuizResult fans out the graded result. Never blocks the response path.
func notifyQuizResult(userID uint, quiz courseModels.Quiz, attempt courseModels.QuizAttempt) {
	verdict := "did not pass"
	if attempt.IsPassed {
		verdict = "passed"
	}
	message := fmt.Sprintf("You %s \"%s\" with %.2f%% (%d/%d points).",
		verdict, quiz.Title, attempt.Percentage, attempt.Score, attempt.TotalPoints)

	utils.DispatchNotification(userID, "QUIZ_RESULT", "Quiz result: "+quiz.Title, message)

	go func() {
		var user models.User
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			return
		}
		_ = utils.SendEmail(user.Name, user.Email, "Quiz result: "+quiz.Title, "<p>"+message+"</p>")
	}()
}
