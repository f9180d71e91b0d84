package course

import "gorm.io/gorm"

// Section represents an ordered chapter within a course. OrderIndex values of
// the sections of one course always form a dense 1..N sequence.
type Section struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false"`
}
