package course

import (
	"time"

	"gorm.io/gorm"
)

// Assignment represents a manually graded task within a section
type Assignment struct {
	gorm.Model
	SectionID    uint       `json:"section_id" gorm:"index;not null"`
	CourseID     uint       `json:"course_id" gorm:"index;not null"`
	Title        string     `json:"title"`
	Instructions string     `json:"instructions" gorm:"type:text"`
	MaxPoints    int        `json:"max_points" gorm:"default:100"`
	DueDate      *time.Time `json:"due_date"`
	OrderIndex   int        `json:"order_index" gorm:"default:0"`
	IsDeleted    bool       `gorm:"default:false"`
}

// AssignmentSubmission is a student's submission for an assignment
type AssignmentSubmission struct {
	gorm.Model
	UserID       uint   `json:"user_id" gorm:"index;not null"`
	AssignmentID uint   `json:"assignment_id" gorm:"index;not null"`
	TextAnswer   string `json:"text_answer" gorm:"type:text"`
	FileURL      string `json:"file_url"`
	Status       string `json:"status" gorm:"default:'SUBMITTED'"` // SUBMITTED, GRADED
	Grade        *int   `json:"grade"`
	Feedback     string `json:"feedback"`
	IsDeleted    bool   `gorm:"default:false"`
}
