package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// AddDoctorRequest is read from a multipart form together with the image.
type AddDoctorRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Speciality string `json:"speciality" validate:"required"`
	Degree     string `json:"degree" validate:"required"`
	Experience string `json:"experience" validate:"required"`
	About      string `json:"about" validate:"required"`
	Fees       string `json:"fees" validate:"required,numeric"`
	Address    string `json:"address" validate:"required"` // JSON object {"line1": "...", "line2": "..."}
}

type ChangeAvailabilityRequest struct {
	Available *bool `json:"available"`
}

// Response DTOs

type DoctorResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email,omitempty"`
	Image       string              `json:"image"`
	Speciality  string              `json:"speciality"`
	Degree      string              `json:"degree"`
	Experience  string              `json:"experience"`
	About       string              `json:"about"`
	Available   bool                `json:"available"`
	Fees        decimal.Decimal     `json:"fees"`
	Address     AddressResponse     `json:"address"`
	SlotsBooked map[string][]string `json:"slots_booked"`
	CreatedAt   time.Time           `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

// DoctorSummaryResponse is the doctor view embedded in appointments.
type DoctorSummaryResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Speciality string          `json:"speciality"`
	Fees       decimal.Decimal `json:"fees"`
	Address    AddressResponse `json:"address"`
}
