package handler

import (
	"errors"
	"net/http"

	"medique-api/internal/delivery/dto"
	"medique-api/internal/delivery/http/middleware"
	"medique-api/internal/usecase"
	"medique-api/pkg/response"
)

type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
}

func NewProfileHandler(profileUsecase usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	profile, err := h.profileUsecase.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalServerError(w, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateProfile reads a multipart form: name, phone, dob, gender, address
// (JSON) and an optional image file.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	image, closeImage, err := readImage(r)
	if err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	defer closeImage()

	req := dto.UpdateProfileRequest{
		Name:    r.FormValue("name"),
		Phone:   r.FormValue("phone"),
		DOB:     r.FormValue("dob"),
		Gender:  r.FormValue("gender"),
		Address: r.FormValue("address"),
	}

	profile, err := h.profileUsecase.UpdateProfile(r.Context(), userID, &req, image)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDataMissing),
			errors.Is(err, usecase.ErrInvalidPhone),
			errors.Is(err, usecase.ErrInvalidAddress),
			errors.Is(err, usecase.ErrInvalidImage):
			response.BadRequest(w, err.Error())
		case errors.Is(err, usecase.ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile updated", profile)
}
