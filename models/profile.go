package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile represents a discounted bundle of lab tests.
// The bundle price is stored independently of the referenced tests' total;
// the discount is not derived server-side.
type Profile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Price       float64        `gorm:"not null" json:"price"`
	Description string         `gorm:"default:''" json:"description"`
	Tests       []LabTest      `gorm:"many2many:profile_tests" json:"tests"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}
