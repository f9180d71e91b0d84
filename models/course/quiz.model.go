package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question types
const (
	QuestionSingleChoice   = "SINGLE_CHOICE"
	QuestionMultipleChoice = "MULTIPLE_CHOICE"
	QuestionTrueFalse      = "TRUE_FALSE"
	QuestionShortAnswer    = "SHORT_ANSWER"
	QuestionFillInBlank    = "FILL_IN_BLANK"
)

// Attempt statuses
const (
	AttemptStarted   = "STARTED"
	AttemptSubmitted = "SUBMITTED"
	AttemptGraded    = "GRADED"
)

// Quiz represents a scored assessment within a section. PassingScore,
// MaxAttempts and Duration become immutable once any attempt references
// the quiz.
type Quiz struct {
	gorm.Model
	SectionID    uint   `json:"section_id" gorm:"index;not null"`
	CourseID     uint   `json:"course_id" gorm:"index;not null"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PassingScore int    `json:"passing_score" gorm:"default:60"` // percentage, 1-100
	MaxAttempts  int    `json:"max_attempts" gorm:"default:1"`
	Duration     int    `json:"duration" gorm:"default:0"` // minutes, 0 = unlimited
	OrderIndex   int    `json:"order_index" gorm:"default:0"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}

// Question belongs to a quiz. CorrectAnswer, Points and Type are locked once
// the quiz has attempts.
type Question struct {
	gorm.Model
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	Type          string         `json:"type" gorm:"default:'SINGLE_CHOICE'"`
	Text          string         `json:"text" gorm:"type:text"`
	Options       datatypes.JSON `json:"options"` // array of option strings for choice types
	CorrectAnswer string         `json:"correct_answer"`
	Points        int            `json:"points" gorm:"default:1"`
	OrderIndex    int            `json:"order_index" gorm:"default:0"`
	IsDeleted     bool           `gorm:"default:false"`
}
