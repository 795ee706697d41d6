package repository

import (
	"medique-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error)
	// FindByIDForUpdate loads the doctor and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error)
	FindAll(db *gorm.DB) ([]entity.Doctor, error)
	UpdateSlots(db *gorm.DB, id uuid.UUID, slots entity.SlotMap) error
	UpdateAvailability(db *gorm.DB, id uuid.UUID, available bool) error
	Count(db *gorm.DB) (int64, error)
}
