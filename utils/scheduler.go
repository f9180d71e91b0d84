package utils

import (
	"log"
	"time"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"
	"lms/models"

	"github.com/robfig/cron/v3"
)

// attemptGrace is added to the quiz duration before force-submitting, so a
// student submitting right at the deadline is not raced by the scheduler.
const attemptGrace = 2 * time.Minute

// StartSchedulers registers the background jobs
func StartSchedulers() {
	c := cron.New()

	if _, err := c.AddFunc("@every 1m", autoSubmitExpiredAttempts); err != nil {
		log.Fatalf("Failed to register attempt scheduler: %v", err)
	}
	if _, err := c.AddFunc("@hourly", expireStalePayments); err != nil {
		log.Fatalf("Failed to register payment scheduler: %v", err)
	}

	c.Start()
	log.Println("Schedulers started.")
}

// autoSubmitExpiredAttempts closes STARTED attempts whose quiz duration has
// elapsed. Whatever answers were recorded are scored; usually none, which
// grades the attempt at zero.
func autoSubmitExpiredAttempts() {
	db := database.Database.Db
	now := time.Now()

	var attempts []courseModels.QuizAttempt
	if err := db.Where("status = ? AND is_deleted = ?", courseModels.AttemptStarted, false).Find(&attempts).Error; err != nil {
		config.Log.Errorw("Scheduler failed to fetch open attempts", "error", err)
		return
	}

	for _, attempt := range attempts {
		var quiz courseModels.Quiz
		if err := db.Where("id = ? AND is_deleted = ?", attempt.QuizID, false).First(&quiz).Error; err != nil {
			continue
		}
		if quiz.Duration <= 0 {
			continue // untimed quiz
		}
		deadline := attempt.StartedAt.Add(time.Duration(quiz.Duration)*time.Minute + attemptGrace)
		if now.Before(deadline) {
			continue
		}

		var questions []courseModels.Question
		if err := db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
			Order("order_index asc").Find(&questions).Error; err != nil {
			config.Log.Errorw("Scheduler failed to fetch questions", "quiz_id", quiz.ID, "error", err)
			continue
		}
		var answers []courseModels.QuizAnswer
		db.Where("attempt_id = ? AND is_deleted = ?", attempt.ID, false).Find(&answers)

		needsManualGrading := false
		for _, question := range questions {
			if question.Type == courseModels.QuestionShortAnswer {
				needsManualGrading = true
			}
		}

		result := CalculateQuizScore(questions, answers, quiz.PassingScore)

		attempt.Score = result.EarnedPoints
		attempt.TotalPoints = result.TotalPoints
		attempt.Percentage = result.Percentage
		attempt.IsPassed = result.IsPassed
		attempt.SubmittedAt = &now
		// Same rule as a student submit: short answers wait for the
		// instructor, everything else is final immediately.
		if needsManualGrading {
			attempt.Status = courseModels.AttemptSubmitted
		} else {
			attempt.Status = courseModels.AttemptGraded
		}

		if err := db.Save(&attempt).Error; err != nil {
			config.Log.Errorw("Scheduler failed to close attempt", "attempt_id", attempt.ID, "error", err)
			continue
		}

		config.Log.Infow("Auto-submitted expired attempt", "attempt_id", attempt.ID, "quiz_id", quiz.ID, "user_id", attempt.UserID)
		DispatchNotification(attempt.UserID, "QUIZ_RESULT", "Quiz time expired",
			"Your attempt for \""+quiz.Title+"\" was submitted automatically when time ran out.")
	}
}

// expireStalePayments fails PENDING payments older than 24h
func expireStalePayments() {
	db := database.Database.Db
	cutoff := time.Now().Add(-24 * time.Hour)

	result := db.Model(&models.Payment{}).
		Where("status = ? AND is_deleted = ? AND created_at < ?", "PENDING", false, cutoff).
		Update("status", "EXPIRED")
	if result.Error != nil {
		config.Log.Errorw("Scheduler failed to expire payments", "error", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		config.Log.Infow("Expired stale payments", "count", result.RowsAffected)
	}
}
