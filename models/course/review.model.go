package course

import "gorm.io/gorm"

// CourseReview is a rating and comment by an enrolled student, one per course
type CourseReview struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	Rating    int    `json:"rating"` // 1-5
	Comment   string `json:"comment" gorm:"type:text"`
	IsDeleted bool   `gorm:"default:false"`
}
