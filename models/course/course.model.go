package course

import "gorm.io/gorm"

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	InstructorID uint    `json:"instructor_id" gorm:"index"`
	Price        int64   `json:"price" gorm:"default:0"`        // smallest currency unit, 0 = free
	Status       string  `json:"status" gorm:"default:'DRAFT'"` // DRAFT, PUBLISHED, ARCHIVED
	Rating       float64 `json:"rating" gorm:"default:0"`       // average of reviews
	ThumbnailURL string  `json:"thumbnail_url"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`
	IsDeleted    bool    `gorm:"default:false"`
}
