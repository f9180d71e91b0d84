package utils

import (
	"math"
	"strings"

	courseModels "lms/models/course"
)

// QuizScore is the aggregate result of scoring one attempt
type QuizScore struct {
	TotalPoints   int     `json:"total_points"`
	EarnedPoints  int     `json:"earned_points"`
	Percentage    float64 `json:"percentage"`
	PassingPoints int     `json:"passing_points"`
	IsPassed      bool    `json:"is_passed"`
}

// EvaluateAnswer decides correctness of a submitted value by question type.
// Choice questions need an exact match against the stored answer; text-like
// questions compare trimmed and case-insensitive. Unknown types are incorrect.
func EvaluateAnswer(questionType, correctAnswer, submitted string) bool {
	switch questionType {
	case courseModels.QuestionSingleChoice, courseModels.QuestionMultipleChoice:
		return submitted == correctAnswer
	case courseModels.QuestionTrueFalse, courseModels.QuestionShortAnswer, courseModels.QuestionFillInBlank:
		return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correctAnswer))
	default:
		return false
	}
}

// CalculateQuizScore aggregates points over the quiz questions in question
// order. Answers are matched by question ID; a missing or incorrect answer
// earns nothing. Pure function, safe to re-run on re-grade.
func CalculateQuizScore(questions []courseModels.Question, answers []courseModels.QuizAnswer, passingScore int) QuizScore {
	awarded := make(map[uint]courseModels.QuizAnswer, len(answers))
	for _, answer := range answers {
		awarded[answer.QuestionID] = answer
	}

	score := QuizScore{}
	for _, question := range questions {
		score.TotalPoints += question.Points
		if answer, ok := awarded[question.ID]; ok && answer.IsCorrect {
			score.EarnedPoints += question.Points
		}
	}

	if score.TotalPoints > 0 {
		score.Percentage = Round2(float64(score.EarnedPoints) / float64(score.TotalPoints) * 100)
	}

	// Integer ceiling avoids float drift (60% of 30 must be exactly 18, not 19)
	score.PassingPoints = (passingScore*score.TotalPoints + 99) / 100
	score.IsPassed = score.EarnedPoints >= score.PassingPoints

	return score
}

// Round2 rounds half-up at the second decimal
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
