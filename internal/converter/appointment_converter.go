package converter

import (
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Doctor and user are included when they were loaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:        appointment.ID,
		UserID:    appointment.UserID,
		DoctorID:  appointment.DoctorID,
		SlotDate:  appointment.SlotDate,
		SlotTime:  appointment.SlotTime,
		Amount:    appointment.Amount,
		Payment:   appointment.Payment,
		Cancelled: appointment.Cancelled,
		Doctor:    DoctorToSummary(appointment.Doctor),
		User:      UserToPatientSummary(appointment.User),
		CreatedAt: appointment.CreatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
