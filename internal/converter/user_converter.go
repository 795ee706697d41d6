package converter

import (
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
)

func AddressToResponse(a entity.Address) dto.AddressResponse {
	return dto.AddressResponse{Line1: a.Line1, Line2: a.Line2}
}

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Image:     user.Image,
		Phone:     user.Phone,
		Address:   AddressToResponse(user.Address),
		Gender:    user.Gender,
		DOB:       user.DOB,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UserToPatientSummary is the patient view shown to admins next to an appointment
func UserToPatientSummary(user *entity.User) *dto.PatientSummaryResponse {
	if user == nil {
		return nil
	}

	return &dto.PatientSummaryResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		DOB:   user.DOB,
	}
}
