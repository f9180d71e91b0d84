package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment tracks one checkout for a paid course enrollment
type Payment struct {
	gorm.Model
	UserID    uint       `json:"user_id" gorm:"index;not null"`
	CourseID  uint       `json:"course_id" gorm:"index;not null"`
	OrderID   string     `json:"order_id" gorm:"unique;not null"` // uuid sent to the gateway
	Amount    int64      `json:"amount"`                          // smallest currency unit
	Status    string     `json:"status" gorm:"default:'PENDING'"` // PENDING, PAID, FAILED, EXPIRED
	SnapToken string     `json:"snap_token"`
	PaidAt    *time.Time `json:"paid_at"`
	IsDeleted bool       `gorm:"default:false"`
}
