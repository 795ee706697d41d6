package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Appointment reserves one (doctor, date, time) slot for one user.
// Only Payment and Cancelled ever change after creation, and only from false
// to true.
type Appointment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	DoctorID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	SlotDate  string          `gorm:"type:varchar(20);not null" json:"slot_date"`
	SlotTime  string          `gorm:"type:varchar(20);not null" json:"slot_time"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Payment   bool            `gorm:"not null;default:false" json:"payment"`
	Cancelled bool            `gorm:"not null;default:false;index" json:"cancelled"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Cancelled
}

// IsPaid checks if appointment payment was confirmed
func (a *Appointment) IsPaid() bool {
	return a.Payment
}

// AmountInMinorUnits converts the locked amount to the gateway's smallest
// currency unit (paise for INR).
func (a *Appointment) AmountInMinorUnits() int64 {
	return a.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
