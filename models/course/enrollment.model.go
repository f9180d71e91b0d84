package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"index;not null"`
	CourseID         uint       `json:"course_id" gorm:"index;not null"`
	Status           string     `json:"status" gorm:"default:'ENROLLED'"` // PENDING_PAYMENT, ENROLLED, IN_PROGRESS, COMPLETED
	Progress         float64    `json:"progress" gorm:"default:0"`        // completion percentage (0-100)
	CompletedLessons int        `json:"completed_lessons" gorm:"default:0"`
	TotalLessons     int        `json:"total_lessons" gorm:"default:0"`
	CompletedAt      *time.Time `json:"completed_at"`
	IsDeleted        bool       `gorm:"default:false"`
}
