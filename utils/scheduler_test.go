package utils

import (
	"testing"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func schedulerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{CacheTTL: 60}
	config.InitLogger()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Notification{}, &models.SystemSetting{},
		&courseModels.Quiz{}, &courseModels.Question{},
		&courseModels.QuizAttempt{}, &courseModels.QuizAnswer{},
	))
	database.Database = database.DbInstance{Db: db}
	return db
}

// seedExpiredAttempt creates a 10-minute quiz with one question and a STARTED
// attempt opened an hour ago, well past the duration and grace window.
func seedExpiredAttempt(t *testing.T, db *gorm.DB, questionType string) courseModels.QuizAttempt {
	t.Helper()

	quiz := courseModels.Quiz{Title: "Timed Checkpoint", PassingScore: 60, MaxAttempts: 1, Duration: 10, IsPublished: true}
	require.NoError(t, db.Create(&quiz).Error)
	question := courseModels.Question{QuizID: quiz.ID, Type: questionType, Text: "Q1", CorrectAnswer: "B", Points: 10, OrderIndex: 1}
	require.NoError(t, db.Create(&question).Error)

	attempt := courseModels.QuizAttempt{
		UserID: 1, QuizID: quiz.ID, AttemptNumber: 1,
		Status: courseModels.AttemptStarted, StartedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&attempt).Error)
	return attempt
}

func TestAutoSubmitGradesExpiredAttempt(t *testing.T) {
	db := schedulerTestDB(t)
	attempt := seedExpiredAttempt(t, db, courseModels.QuestionSingleChoice)

	autoSubmitExpiredAttempts()

	var closed courseModels.QuizAttempt
	require.NoError(t, db.First(&closed, attempt.ID).Error)
	assert.Equal(t, courseModels.AttemptGraded, closed.Status)
	assert.Equal(t, 0, closed.Score)
	assert.Equal(t, 10, closed.TotalPoints)
	assert.False(t, closed.IsPassed)
	require.NotNil(t, closed.SubmittedAt)
}

func TestAutoSubmitKeepsShortAnswerForManualGrading(t *testing.T) {
	db := schedulerTestDB(t)
	attempt := seedExpiredAttempt(t, db, courseModels.QuestionShortAnswer)

	autoSubmitExpiredAttempts()

	var closed courseModels.QuizAttempt
	require.NoError(t, db.First(&closed, attempt.ID).Error)
	assert.Equal(t, courseModels.AttemptSubmitted, closed.Status)
	require.NotNil(t, closed.SubmittedAt)
}

func TestAutoSubmitSkipsUntimedAndFreshAttempts(t *testing.T) {
	db := schedulerTestDB(t)

	untimed := courseModels.Quiz{Title: "Untimed", PassingScore: 60, MaxAttempts: 1, Duration: 0}
	require.NoError(t, db.Create(&untimed).Error)
	open := courseModels.QuizAttempt{
		UserID: 1, QuizID: untimed.ID, AttemptNumber: 1,
		Status: courseModels.AttemptStarted, StartedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&open).Error)

	timed := courseModels.Quiz{Title: "Timed", PassingScore: 60, MaxAttempts: 1, Duration: 30}
	require.NoError(t, db.Create(&timed).Error)
	fresh := courseModels.QuizAttempt{
		UserID: 1, QuizID: timed.ID, AttemptNumber: 1,
		Status: courseModels.AttemptStarted, StartedAt: time.Now(),
	}
	require.NoError(t, db.Create(&fresh).Error)

	autoSubmitExpiredAttempts()

	var reloaded courseModels.QuizAttempt
	require.NoError(t, db.First(&reloaded, open.ID).Error)
	assert.Equal(t, courseModels.AttemptStarted, reloaded.Status)
	var reloadedFresh courseModels.QuizAttempt
	require.NoError(t, db.First(&reloadedFresh, fresh.ID).Error)
	assert.Equal(t, courseModels.AttemptStarted, reloadedFresh.Status)
}
