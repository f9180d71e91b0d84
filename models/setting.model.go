package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SystemSetting is a versioned configuration snapshot per category. Readers go
// through the cache; writers bump Version and invalidate, last writer wins
// within a category.
type SystemSetting struct {
	gorm.Model
	Category  string         `json:"category" gorm:"unique;not null"` // GENERAL, NOTIFICATIONS, PAYMENTS, WEBHOOKS
	Value     datatypes.JSON `json:"value"`
	Version   int            `json:"version" gorm:"default:1"`
	UpdatedBy uint           `json:"updated_by"`
	IsDeleted bool           `gorm:"default:false"`
}
