package repository

import (
	"medique-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Appointment, error)
	FindAll(db *gorm.DB) ([]entity.Appointment, error)
	FindLatest(db *gorm.DB, limit int) ([]entity.Appointment, error)
	// MarkCancelled and MarkPaid only flip a flag that is still false and
	// report the affected rows: 1 = changed, 0 = already set or missing.
	MarkCancelled(db *gorm.DB, id uuid.UUID) (int64, error)
	MarkPaid(db *gorm.DB, id uuid.UUID) (int64, error)
	Count(db *gorm.DB) (int64, error)
}
