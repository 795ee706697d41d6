package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// BookAppointmentRequest leaves presence checks to the booking usecase so the
// caller always sees the same "fields required" error.
type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"omitempty,uuid"`
	SlotDate string `json:"slot_date" validate:"omitempty,datetime=2006-01-02"`
	SlotTime string `json:"slot_time" validate:"omitempty,max=20"`
}

type CancelAppointmentRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required,uuid"`
}

// Response DTOs

type AppointmentResponse struct {
	ID        uuid.UUID               `json:"id"`
	UserID    uuid.UUID               `json:"user_id"`
	DoctorID  uuid.UUID               `json:"doctor_id"`
	SlotDate  string                  `json:"slot_date"`
	SlotTime  string                  `json:"slot_time"`
	Amount    decimal.Decimal         `json:"amount"`
	Payment   bool                    `json:"payment"`
	Cancelled bool                    `json:"cancelled"`
	Doctor    *DoctorSummaryResponse  `json:"doctor,omitempty"`
	User      *PatientSummaryResponse `json:"user,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

// PatientSummaryResponse is the patient view embedded in admin listings.
type PatientSummaryResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image string    `json:"image,omitempty"`
	DOB   string    `json:"dob"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type DashboardResponse struct {
	Doctors            int64                 `json:"doctors"`
	Appointments       int64                 `json:"appointments"`
	Patients           int64                 `json:"patients"`
	LatestAppointments []AppointmentResponse `json:"latest_appointments"`
}
