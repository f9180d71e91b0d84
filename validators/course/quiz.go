package courseValidator

import (
	"strings"

	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

var questionTypes = map[string]bool{
	courseModels.QuestionSingleChoice:   true,
	courseModels.QuestionMultipleChoice: true,
	courseModels.QuestionTrueFalse:      true,
	courseModels.QuestionShortAnswer:    true,
	courseModels.QuestionFillInBlank:    true,
}

func isChoiceType(t string) bool {
	return t == courseModels.QuestionSingleChoice || t == courseModels.QuestionMultipleChoice
}

// CreateQuiz validates quiz creation request
func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			PassingScore int    `json:"passing_score"`
			MaxAttempts  int    `json:"max_attempts"`
			Duration     int    `json:"duration"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Quiz title is required!"
		}
		if reqData.PassingScore < 1 || reqData.PassingScore > 100 {
			errors["passing_score"] = "Passing score must be between 1 and 100!"
		}
		if reqData.MaxAttempts < 1 {
			errors["max_attempts"] = "Max attempts must be at least 1!"
		}
		if reqData.Duration < 0 {
			errors["duration"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

// UpdateQuiz validates quiz update request. Scoring fields are pointers: only
// the keys present in the body are treated as requested changes, which is what
// the lock check on quizzes with attempts compares against.
func UpdateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			PassingScore *int   `json:"passing_score"`
			MaxAttempts  *int   `json:"max_attempts"`
			Duration     *int   `json:"duration"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PassingScore != nil && (*reqData.PassingScore < 1 || *reqData.PassingScore > 100) {
			errors["passing_score"] = "Passing score must be between 1 and 100!"
		}
		if reqData.MaxAttempts != nil && *reqData.MaxAttempts < 1 {
			errors["max_attempts"] = "Max attempts must be at least 1!"
		}
		if reqData.Duration != nil && *reqData.Duration < 0 {
			errors["duration"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizUpdate", reqData)
		return c.Next()
	}
}

// CreateQuestion validates question creation request
func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Type          string   `json:"type"`
			Text          string   `json:"text"`
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correct_answer"`
			Points        int      `json:"points"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if !questionTypes[reqData.Type] {
			errors["type"] = "Unknown question type!"
		}
		if strings.TrimSpace(reqData.Text) == "" {
			errors["text"] = "Question text is required!"
		}
		if reqData.CorrectAnswer == "" {
			errors["correct_answer"] = "Correct answer is required!"
		}
		if reqData.Points < 1 {
			errors["points"] = "Points must be at least 1!"
		}
		if isChoiceType(reqData.Type) && len(reqData.Options) < 2 {
			errors["options"] = "Choice questions need at least 2 options!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

// UpdateQuestion validates question update request. Scoring fields are
// pointers for the same lock comparison as quiz updates.
func UpdateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Type          string   `json:"type"`
			Text          string   `json:"text"`
			Options       []string `json:"options"`
			CorrectAnswer *string  `json:"correct_answer"`
			Points        *int     `json:"points"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Type != "" && !questionTypes[reqData.Type] {
			errors["type"] = "Unknown question type!"
		}
		if reqData.CorrectAnswer != nil && *reqData.CorrectAnswer == "" {
			errors["correct_answer"] = "Correct answer cannot be empty!"
		}
		if reqData.Points != nil && *reqData.Points < 1 {
			errors["points"] = "Points must be at least 1!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuestionUpdate", reqData)
		return c.Next()
	}
}

// SubmitQuiz validates a quiz submission
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []struct {
				QuestionID uint   `json:"question_id"`
				Answer     string `json:"answer"`
			} `json:"answers"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		seen := make(map[uint]bool, len(reqData.Answers))
		for _, answer := range reqData.Answers {
			if answer.QuestionID == 0 {
				errors["answers"] = "Every answer needs a question_id!"
				break
			}
			if seen[answer.QuestionID] {
				errors["answers"] = "Duplicate answers for the same question!"
				break
			}
			seen[answer.QuestionID] = true
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

// GradeAttempt validates manual grading of a submitted attempt
func GradeAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Grades []struct {
				QuestionID uint `json:"question_id"`
				Points     int  `json:"points"`
			} `json:"grades"`
			OverrideGrade *int `json:"override_grade"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		for _, grade := range reqData.Grades {
			if grade.QuestionID == 0 {
				errors["grades"] = "Every grade needs a question_id!"
				break
			}
			if grade.Points < 0 {
				errors["grades"] = "Awarded points cannot be negative!"
				break
			}
		}
		// The upper bound depends on the quiz's total points, checked in the handler
		if reqData.OverrideGrade != nil && *reqData.OverrideGrade < 0 {
			errors["override_grade"] = "Override grade cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrading", reqData)
		return c.Next()
	}
}
