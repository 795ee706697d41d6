package converter

import (
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO.
// Email is only filled in for admin views.
func DoctorToResponse(doctor *entity.Doctor, withEmail bool) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	slots := doctor.SlotsBooked.Clone()

	response := &dto.DoctorResponse{
		ID:          doctor.ID,
		Name:        doctor.Name,
		Image:       doctor.Image,
		Speciality:  doctor.Speciality,
		Degree:      doctor.Degree,
		Experience:  doctor.Experience,
		About:       doctor.About,
		Available:   doctor.Available,
		Fees:        doctor.Fees,
		Address:     AddressToResponse(doctor.Address),
		SlotsBooked: slots,
		CreatedAt:   doctor.CreatedAt,
	}
	if withEmail {
		response.Email = doctor.Email
	}

	return response
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor, withEmail bool) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i], withEmail)
	}
	return responses
}

// DoctorToSummary is the doctor view embedded in appointments
func DoctorToSummary(doctor *entity.Doctor) *dto.DoctorSummaryResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorSummaryResponse{
		ID:         doctor.ID,
		Name:       doctor.Name,
		Image:      doctor.Image,
		Speciality: doctor.Speciality,
		Fees:       doctor.Fees,
		Address:    AddressToResponse(doctor.Address),
	}
}
