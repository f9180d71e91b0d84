package models

import "gorm.io/gorm"

// Notification is an in-app message delivered to a single user. Created by
// fire-and-forget dispatch, so a failed insert never fails the triggering request.
type Notification struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	Type      string `json:"type"` // QUIZ_RESULT, ENROLLMENT, PAYMENT, CONTENT, CERTIFICATE
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read" gorm:"default:false"`
	IsDeleted bool   `gorm:"default:false"`
}
