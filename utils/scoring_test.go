package utils

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
)

func question(id uint, qType string, points int) courseModels.Question {
	q := courseModels.Question{Type: qType, CorrectAnswer: "B", Points: points}
	q.ID = id
	return q
}

func answer(questionID uint, correct bool) courseModels.QuizAnswer {
	return courseModels.QuizAnswer{QuestionID: questionID, IsCorrect: correct}
}

func TestEvaluateAnswer(t *testing.T) {
	// Choice types are exact match
	assert.True(t, EvaluateAnswer(courseModels.QuestionSingleChoice, "B", "B"))
	assert.False(t, EvaluateAnswer(courseModels.QuestionSingleChoice, "B", "b"))
	assert.False(t, EvaluateAnswer(courseModels.QuestionMultipleChoice, "A,C", "A, C"))

	// Text types are trimmed and case-insensitive
	assert.True(t, EvaluateAnswer(courseModels.QuestionTrueFalse, "true", "  TRUE "))
	assert.True(t, EvaluateAnswer(courseModels.QuestionShortAnswer, "Photosynthesis", "photosynthesis"))
	assert.True(t, EvaluateAnswer(courseModels.QuestionFillInBlank, " mitochondria", "Mitochondria  "))
	assert.False(t, EvaluateAnswer(courseModels.QuestionShortAnswer, "Photosynthesis", "Photo synthesis"))

	// Unknown types never pass
	assert.False(t, EvaluateAnswer("ESSAY", "B", "B"))
}

func TestCalculateQuizScore(t *testing.T) {
	questions := []courseModels.Question{
		question(1, courseModels.QuestionSingleChoice, 10),
		question(2, courseModels.QuestionSingleChoice, 10),
		question(3, courseModels.QuestionTrueFalse, 10),
	}

	t.Run("two of three correct passes at 60", func(t *testing.T) {
		score := CalculateQuizScore(questions, []courseModels.QuizAnswer{
			answer(1, true), answer(2, true), answer(3, false),
		}, 60)

		assert.Equal(t, 30, score.TotalPoints)
		assert.Equal(t, 20, score.EarnedPoints)
		assert.Equal(t, 66.67, score.Percentage)
		assert.Equal(t, 18, score.PassingPoints)
		assert.True(t, score.IsPassed)
	})

	t.Run("one of three correct fails at 60", func(t *testing.T) {
		score := CalculateQuizScore(questions, []courseModels.QuizAnswer{
			answer(1, true), answer(2, false), answer(3, false),
		}, 60)

		assert.Equal(t, 10, score.EarnedPoints)
		assert.Equal(t, 33.33, score.Percentage)
		assert.False(t, score.IsPassed)
	})

	t.Run("missing answers earn nothing", func(t *testing.T) {
		score := CalculateQuizScore(questions, []courseModels.QuizAnswer{answer(2, true)}, 60)

		assert.Equal(t, 10, score.EarnedPoints)
		assert.False(t, score.IsPassed)
	})

	t.Run("exact threshold passes", func(t *testing.T) {
		// 60% of 30 points is exactly 18
		score := CalculateQuizScore(questions, nil, 60)
		assert.Equal(t, 18, score.PassingPoints)

		uneven := []courseModels.Question{
			question(1, courseModels.QuestionSingleChoice, 3),
			question(2, courseModels.QuestionSingleChoice, 4),
		}
		// 60% of 7 is 4.2, so 5 points are needed
		score = CalculateQuizScore(uneven, nil, 60)
		assert.Equal(t, 5, score.PassingPoints)
	})

	t.Run("empty quiz", func(t *testing.T) {
		score := CalculateQuizScore(nil, nil, 60)
		assert.Equal(t, 0, score.TotalPoints)
		assert.Equal(t, 0.0, score.Percentage)
		assert.True(t, score.IsPassed) // zero needed, zero earned
	})

	t.Run("pure on re-run", func(t *testing.T) {
		answers := []courseModels.QuizAnswer{answer(1, true), answer(3, true)}
		first := CalculateQuizScore(questions, answers, 60)
		second := CalculateQuizScore(questions, answers, 60)
		assert.Equal(t, first, second)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(66.666666))
	assert.Equal(t, 33.33, Round2(33.333333))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 100.0, Round2(100))
}
