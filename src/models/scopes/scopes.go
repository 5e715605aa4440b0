package scopes

import (
	"lodging/src/types"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func NotCancelled(db *gorm.DB) *gorm.DB {
	return db.Where("state <> ?", types.RESERVATION_CANCELLED)
}

func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
