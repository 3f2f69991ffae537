package sql

import (
	"gorm.io/gorm"
)

// payrollOrder keeps the most recently written record at index 0.
const payrollOrder = "updated_at DESC, id DESC"

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}
