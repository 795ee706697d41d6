package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"medique-api/internal/delivery/dto"
	"medique-api/internal/delivery/http/middleware"
	"medique-api/internal/usecase"
	"medique-api/pkg/response"
	"medique-api/pkg/validator"

	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreatePaymentOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	order, err := h.paymentUsecase.CreateOrder(r.Context(), userID, appointmentID)
	if err != nil {
		writePaymentError(w, err, "Failed to create payment order")
		return
	}

	response.Success(w, http.StatusCreated, "Payment order created", order)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.paymentUsecase.VerifyPayment(r.Context(), req.OrderID)
	if err != nil {
		writePaymentError(w, err, "Failed to verify payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment successful", appointment)
}

func writePaymentError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, "Unauthorized action")
	case errors.Is(err, usecase.ErrAppointmentCancelled),
		errors.Is(err, usecase.ErrAppointmentAlreadyPaid):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrPaymentNotCompleted):
		response.BadRequest(w, "Payment failed")
	default:
		response.InternalServerError(w, fallback)
	}
}
