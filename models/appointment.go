package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment lifecycle status values
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
)

// Tested flag values
const (
	TestedPending = "Pending"
	TestedDone    = "Done"
)

// Appointment represents a booking: the owning user, the selected tests and
// profiles, the visit address and the payment/report lifecycle fields.
// Status, IsPaymentDone and Tested are intentionally orthogonal; each is
// mutated by its own admin endpoint with a single-field atomic update.
type Appointment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Name          string         `gorm:"not null" json:"name"`
	Email         string         `gorm:"not null" json:"email"`
	Date          time.Time      `gorm:"not null" json:"date"`
	StreetAddress string         `json:"streetAddress"`
	RoadNo        string         `json:"roadNo"`
	City          string         `json:"city"`
	Pincode       string         `json:"pincode"`
	State         string         `json:"state"`
	DoorToDoor    string         `gorm:"not null;default:'no'" json:"dtd"` // "yes" or "no"
	Tests         []LabTest      `gorm:"many2many:appointment_tests" json:"tests"`
	Profiles      []Profile      `gorm:"many2many:appointment_profiles" json:"profiles"`
	TotalPrice    float64        `gorm:"not null;default:0" json:"totalPrice"`
	Status        string         `gorm:"not null;default:'Pending'" json:"status"` // Pending, Confirmed, Cancelled
	IsPaymentDone bool           `gorm:"not null;default:false" json:"isPaymentDone"`
	Tested        string         `gorm:"not null;default:'Pending'" json:"tested"` // Pending, Done
	OrderID       string         `gorm:"index;default:''" json:"oid"`              // gateway order id, set only after a confirmed order
	TransactionID string         `gorm:"default:''" json:"transactionId"`
	Report        string         `gorm:"index;default:''" json:"report"` // stored report filename
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// ValidStatus reports whether s is a known lifecycle status
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// ValidTested reports whether s is a known tested flag value
func ValidTested(s string) bool {
	return s == TestedPending || s == TestedDone
}
