package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a patient account
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Image     string    `gorm:"type:text" json:"image,omitempty"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Address   Address   `gorm:"type:jsonb;not null;default:'{}'" json:"address"`
	Gender    string    `gorm:"type:varchar(20);not null;default:'Not Selected'" json:"gender"`
	DOB       string    `gorm:"column:dob;type:varchar(20);not null;default:'Not Selected'" json:"dob"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
