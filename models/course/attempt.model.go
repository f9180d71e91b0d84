package course

import (
	"time"

	"gorm.io/gorm"
)

// QuizAttempt is one scored submission of a quiz by one student
type QuizAttempt struct {
	gorm.Model
	UserID        uint       `json:"user_id" gorm:"index;not null"`
	QuizID        uint       `json:"quiz_id" gorm:"index;not null"`
	AttemptNumber int        `json:"attempt_number" gorm:"default:1"`
	Score         int        `json:"score" gorm:"default:0"`        // earned points
	TotalPoints   int        `json:"total_points" gorm:"default:0"` // sum of question points
	Percentage    float64    `json:"percentage" gorm:"default:0"`
	IsPassed      bool       `json:"is_passed" gorm:"default:false"`
	Status        string     `json:"status" gorm:"default:'STARTED'"` // STARTED, SUBMITTED, GRADED
	StartedAt     time.Time  `json:"started_at"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	IsDeleted     bool       `gorm:"default:false"`
}

// QuizAnswer records the student's submitted value for one question of one
// attempt. Immutable once the attempt is graded, except through an explicit
// instructor re-grade.
type QuizAnswer struct {
	gorm.Model
	AttemptID     uint   `json:"attempt_id" gorm:"index;not null"`
	QuestionID    uint   `json:"question_id" gorm:"index;not null"`
	Submitted     string `json:"submitted" gorm:"type:text"`
	IsCorrect     bool   `json:"is_correct" gorm:"default:false"`
	PointsAwarded int    `json:"points_awarded" gorm:"default:0"`
	IsDeleted     bool   `gorm:"default:false"`
}
