package scopes

import (
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"gorm.io/gorm"
)

func WithID(id string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithStatus(status types.OrderStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

func WithCreatedStatus(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", types.ORDER_CREATED)
}

func CreatedBefore(t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at < ?", t)
	}
}

func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}
