package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"medique-api/internal/delivery/dto"
	"medique-api/internal/usecase"
	"medique-api/pkg/response"
	"medique-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// AddDoctor reads a multipart form with the doctor's fields and a required image.
func (h *DoctorHandler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	image, closeImage, err := readImage(r)
	if err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	defer closeImage()

	req := dto.AddDoctorRequest{
		Name:       r.FormValue("name"),
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		Speciality: r.FormValue("speciality"),
		Degree:     r.FormValue("degree"),
		Experience: r.FormValue("experience"),
		About:      r.FormValue("about"),
		Fees:       r.FormValue("fees"),
		Address:    r.FormValue("address"),
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.AddDoctor(r.Context(), &req, image)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorEmailExists):
			response.Conflict(w, "Email already exists")
		case errors.Is(err, usecase.ErrInvalidEmail),
			errors.Is(err, usecase.ErrWeakPassword),
			errors.Is(err, usecase.ErrPasswordTooLong),
			errors.Is(err, usecase.ErrInvalidFees),
			errors.Is(err, usecase.ErrInvalidAddress),
			errors.Is(err, usecase.ErrDoctorImageMissing),
			errors.Is(err, usecase.ErrInvalidImage):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to add doctor")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Doctor added", doctor)
}

func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorUsecase.ListDoctors(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) ListAllDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorUsecase.ListAllDoctors(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

// ChangeAvailability sets availability from {"available": bool}, or toggles
// it when the body is empty.
func (h *DoctorHandler) ChangeAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	var req dto.ChangeAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}

	doctor, err := h.doctorUsecase.ChangeAvailability(r.Context(), doctorID, req.Available)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to change availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability changed", doctor)
}
