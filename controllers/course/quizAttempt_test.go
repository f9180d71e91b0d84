package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	courseRoutes "lms/routers/courseRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app             *fiber.App
	db              *gorm.DB
	studentToken    string
	instructorToken string
	student         models.User
	instructor      models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTKey:    "test-secret",
		SaltRound: 4,
		CacheTTL:  60,
	}
	config.InitLogger()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Notification{}, &models.SystemSetting{},
		&courseModels.Course{}, &courseModels.Section{}, &courseModels.Lesson{},
		&courseModels.LessonCompletion{}, &courseModels.Quiz{}, &courseModels.Question{},
		&courseModels.QuizAttempt{}, &courseModels.QuizAnswer{}, &courseModels.Enrollment{},
		&courseModels.Assignment{}, &courseModels.AssignmentSubmission{},
	))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	app.Use(middleware.RequestMeta)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)

	env := &testEnv{app: app, db: db}

	env.student = models.User{Name: "Student One", Email: "student@test.io", Role: "STUDENT", Password: "x"}
	require.NoError(t, db.Create(&env.student).Error)
	env.instructor = models.User{Name: "Instructor One", Email: "instructor@test.io", Role: "INSTRUCTOR", Password: "x"}
	require.NoError(t, db.Create(&env.instructor).Error)

	env.studentToken, err = middleware.GenerateJWT(env.student.ID, env.student.Name, env.student.Role, env.student.Email)
	require.NoError(t, err)
	env.instructorToken, err = middleware.GenerateJWT(env.instructor.ID, env.instructor.Name, env.instructor.Role, env.instructor.Email)
	require.NoError(t, err)

	return env
}

// seedQuiz creates a published course/section/quiz owned by the instructor,
// with the student enrolled.
func (env *testEnv) seedQuiz(t *testing.T, maxAttempts int, questions ...courseModels.Question) courseModels.Quiz {
	t.Helper()

	course := courseModels.Course{Title: "Go Basics", InstructorID: env.instructor.ID, IsPublished: true, Status: "PUBLISHED"}
	require.NoError(t, env.db.Create(&course).Error)

	section := courseModels.Section{CourseID: course.ID, Title: "Week 1", OrderIndex: 1}
	require.NoError(t, env.db.Create(&section).Error)

	quiz := courseModels.Quiz{
		SectionID:    section.ID,
		CourseID:     course.ID,
		Title:        "Checkpoint",
		PassingScore: 60,
		MaxAttempts:  maxAttempts,
		OrderIndex:   1,
		IsPublished:  true,
	}
	require.NoError(t, env.db.Create(&quiz).Error)

	for i := range questions {
		questions[i].QuizID = quiz.ID
		questions[i].OrderIndex = i + 1
		require.NoError(t, env.db.Create(&questions[i]).Error)
	}

	enrollment := courseModels.Enrollment{UserID: env.student.ID, CourseID: course.ID, Status: "ENROLLED"}
	require.NoError(t, env.db.Create(&enrollment).Error)

	return quiz
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func singleChoice(text, correct string, points int) courseModels.Question {
	return courseModels.Question{Type: courseModels.QuestionSingleChoice, Text: text, CorrectAnswer: correct, Points: points}
}

func TestStartQuizAttemptAdmission(t *testing.T) {
	env := setupTestEnv(t)
	quiz := env.seedQuiz(t, 2, singleChoice("Q1", "B", 10))
	startPath := fmt.Sprintf("/quiz/%d/attempt/start", quiz.ID)

	// First attempt opens
	status, envelope := env.request(t, "POST", startPath, env.studentToken, nil)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, envelope["success"])

	// Second start returns the open attempt instead of opening another
	status, envelope = env.request(t, "POST", startPath, env.studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["attempt_number"])

	var count int64
	env.db.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	// Close attempts 1 and 2, then the limit kicks in
	env.db.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).
		Update("status", courseModels.AttemptGraded)
	env.db.Create(&courseModels.QuizAttempt{
		UserID: env.student.ID, QuizID: quiz.ID, AttemptNumber: 2,
		Status: courseModels.AttemptGraded, StartedAt: time.Now(),
	})

	status, envelope = env.request(t, "POST", startPath, env.studentToken, nil)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "MAX_ATTEMPTS_EXCEEDED", envelope["code"])

	// Rejection writes no attempt row
	env.db.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestStartQuizAttemptRequiresEnrollment(t *testing.T) {
	env := setupTestEnv(t)
	quiz := env.seedQuiz(t, 1, singleChoice("Q1", "B", 10))

	// Drop the enrollment back to pending payment
	env.db.Model(&courseModels.Enrollment{}).Where("user_id = ?", env.student.ID).
		Update("status", "PENDING_PAYMENT")

	status, envelope := env.request(t, "POST", fmt.Sprintf("/quiz/%d/attempt/start", quiz.ID), env.studentToken, nil)
	require.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "NOT_ENROLLED", envelope["code"])
}

func TestSubmitQuizAttemptAutoGrades(t *testing.T) {
	env := setupTestEnv(t)
	quiz := env.seedQuiz(t, 1,
		singleChoice("Q1", "B", 10),
		singleChoice("Q2", "C", 10),
		singleChoice("Q3", "A", 10),
	)

	var questions []courseModels.Question
	require.NoError(t, env.db.Where("quiz_id = ?", quiz.ID).Order("order_index asc").Find(&questions).Error)

	status, envelope := env.request(t, "POST", fmt.Sprintf("/quiz/%d/attempt/submit", quiz.ID), env.studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "answer": "B"},
			{"question_id": questions[1].ID, "answer": "C"},
			{"question_id": questions[2].ID, "answer": "D"},
		},
	})
	require.Equal(t, fiber.StatusOK, status)

	data := envelope["data"].(map[string]interface{})
	attempt := data["attempt"].(map[string]interface{})
	assert.Equal(t, courseModels.AttemptGraded, attempt["status"])
	assert.Equal(t, float64(20), attempt["score"])
	assert.Equal(t, float64(30), attempt["total_points"])
	assert.Equal(t, 66.67, attempt["percentage"])
	assert.Equal(t, true, attempt["is_passed"])
}

func TestSubmitQuizAttemptRejectsForeignQuestions(t *testing.T) {
	env := setupTestEnv(t)
	quiz := env.seedQuiz(t, 1, singleChoice("Q1", "B", 10))

	status, envelope := env.request(t, "POST", fmt.Sprintf("/quiz/%d/attempt/submit", quiz.ID), env.studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": 9999, "answer": "B"},
		},
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUESTION_IDS", envelope["code"])

	var count int64
	env.db.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func shortAnswer(text, correct string, points int) courseModels.Question {
	return courseModels.Question{Type: courseModels.QuestionShortAnswer, Text: text, CorrectAnswer: correct, Points: points}
}

func TestSubmitQuizAttemptRejectsMalformedBody(t *testing.T) {
	env := setupTestEnv(t)
	quiz := env.seedQuiz(t, 1, singleChoice("Q1", "B", 10))

	req := httptest.NewRequest("POST", fmt.Sprintf("/quiz/%d/attempt/submit", quiz.ID), bytes.NewBufferString(`{"answers":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.studentToken)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "INVALID_BODY", envelope["code"])
	assert.Equal(t, false, envelope["success"])
}

func TestGradeAttemptOverrideBoundedByQuizTotal(t *testing.T) {
	env := setupTestEnv(t)
	quiz := env.seedQuiz(t, 1,
		shortAnswer("Q1", "goroutine", 60),
		shortAnswer("Q2", "channel", 60),
	)

	// Short answers leave the attempt waiting for the instructor
	status, _ := env.request(t, "POST", fmt.Sprintf("/quiz/%d/attempt/submit", quiz.ID), env.studentToken, fiber.Map{
		"answers": []fiber.Map{},
	})
	require.Equal(t, fiber.StatusOK, status)

	var attempt courseModels.QuizAttempt
	require.NoError(t, env.db.Where("quiz_id = ?", quiz.ID).First(&attempt).Error)
	require.Equal(t, courseModels.AttemptSubmitted, attempt.Status)

	gradePath := fmt.Sprintf("/admin/attempt/%d/grade", attempt.ID)

	// Beyond the quiz's 120 points the override is rejected
	status, envelope := env.request(t, "POST", gradePath, env.instructorToken, fiber.Map{"override_grade": 130})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "GRADE_EXCEEDS_MAX", envelope["code"])

	var unchanged courseModels.QuizAttempt
	require.NoError(t, env.db.First(&unchanged, attempt.ID).Error)
	assert.Equal(t, courseModels.AttemptSubmitted, unchanged.Status)

	// 110 is a legitimate score on a 120-point quiz
	status, _ = env.request(t, "POST", gradePath, env.instructorToken, fiber.Map{"override_grade": 110})
	require.Equal(t, fiber.StatusOK, status)

	var graded courseModels.QuizAttempt
	require.NoError(t, env.db.First(&graded, attempt.ID).Error)
	assert.Equal(t, courseModels.AttemptGraded, graded.Status)
	assert.Equal(t, 110, graded.Score)
	assert.Equal(t, 120, graded.TotalPoints)
	assert.True(t, graded.IsPassed)
}

func TestUpdateQuizLocksScoringFieldsAfterAttempts(t *testing.T) {
	env := setupTestEnv(t)
	quiz := env.seedQuiz(t, 3, singleChoice("Q1", "B", 10))
	path := fmt.Sprintf("/admin/quiz/%d", quiz.ID)

	// Without attempts the scoring fields are editable
	status, _ := env.request(t, "PUT", path, env.instructorToken, fiber.Map{"passing_score": 70})
	require.Equal(t, fiber.StatusOK, status)

	env.db.Create(&courseModels.QuizAttempt{
		UserID: env.student.ID, QuizID: quiz.ID, AttemptNumber: 1,
		Status: courseModels.AttemptGraded, StartedAt: time.Now(),
	})

	// Changing a locked field rejects the whole request, title included
	status, envelope := env.request(t, "PUT", path, env.instructorToken, fiber.Map{
		"title":         "New title",
		"passing_score": 80,
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "QUIZ_HAS_ATTEMPTS", envelope["code"])

	var unchanged courseModels.Quiz
	require.NoError(t, env.db.First(&unchanged, quiz.ID).Error)
	assert.Equal(t, "Checkpoint", unchanged.Title)
	assert.Equal(t, 70, unchanged.PassingScore)

	// Re-sending the stored value is not a change
	status, _ = env.request(t, "PUT", path, env.instructorToken, fiber.Map{
		"title":         "New title",
		"passing_score": 70,
	})
	require.Equal(t, fiber.StatusOK, status)

	require.NoError(t, env.db.First(&unchanged, quiz.ID).Error)
	assert.Equal(t, "New title", unchanged.Title)
}
