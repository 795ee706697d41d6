package handler

import (
	"errors"
	"net/http"
	"strconv"

	"medique-api/internal/delivery/dto"
	"medique-api/internal/usecase"
	"medique-api/pkg/response"

	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	auditLogID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || auditLogID <= 0 {
		response.BadRequest(w, "Invalid audit log ID")
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), auditLogID)
	if err != nil {
		if errors.Is(err, usecase.ErrAuditLogNotFound) {
			response.NotFound(w, "Audit log not found")
			return
		}
		response.InternalServerError(w, "Failed to get audit log")
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

// ListAuditLogs serves GET /admin/audit-logs. Supported query parameters are
// action, actor_id, entity, entity_id, appointment_id and limit.
func (h *AuditLogHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	auditLogs, err := h.auditLogUsecase.ListAuditLogs(r.Context(), dto.AuditLogQuery{
		Action:        q.Get("action"),
		ActorID:       q.Get("actor_id"),
		Entity:        q.Get("entity"),
		EntityID:      q.Get("entity_id"),
		AppointmentID: q.Get("appointment_id"),
		Limit:         q.Get("limit"),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidAuditFilter) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs)
}
