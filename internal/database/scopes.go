package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/todo-list/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NewestFirst orders tasks by creation time, newest first.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("tasks.created_at DESC").Order("tasks.id DESC")
}
