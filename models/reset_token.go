package models

import "time"

// ResetTokenTTL is how long a password-reset token stays valid
const ResetTokenTTL = time.Hour

// ResetToken is a short-lived single-use secret tied to a user, emailed as a
// password-reset link. Consumed on successful reset; expired rows are purged
// by the background sweep.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the ResetToken model
func (ResetToken) TableName() string {
	return "reset_tokens"
}

// Expired reports whether the token is past its validity window
func (t *ResetToken) Expired() bool {
	return time.Since(t.CreatedAt) > ResetTokenTTL
}
