package models

import (
	"time"

	"gorm.io/gorm"
)

// LabTest represents a single lab test in the catalog
type LabTest struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Price     float64        `gorm:"not null" json:"price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the LabTest model
func (LabTest) TableName() string {
	return "lab_tests"
}
