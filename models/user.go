package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account (patient or admin)
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	FirstName      string         `gorm:"not null" json:"firstName"`
	LastName       string         `gorm:"not null" json:"lastName"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Verified       bool           `gorm:"not null;default:false" json:"verified"`
	IsAdmin        bool           `gorm:"not null;default:false" json:"isAdmin"`
	ProfilePicture string         `gorm:"default:''" json:"profilePicture"` // filename under uploads/profiles
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// PublicUser is the display-safe subset of user fields returned to clients
type PublicUser struct {
	ID             uint   `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	IsAdmin        bool   `json:"isAdmin"`
	ProfilePicture string `json:"profilePicture"`
}

// Public returns the display-safe subset of the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		IsAdmin:        u.IsAdmin,
		ProfilePicture: u.ProfilePicture,
	}
}
