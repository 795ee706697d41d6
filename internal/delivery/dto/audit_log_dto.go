package dto

import (
	"time"

	"medique-api/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

// AuditLogQuery is read from the audit-logs query string.
type AuditLogQuery struct {
	Action        string
	ActorID       string
	Entity        string
	EntityID      string
	AppointmentID string
	Limit         string
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	ActorID   *uuid.UUID  `json:"actor_id,omitempty"`
	ActorRole string      `json:"actor_role"`
	Action    string      `json:"action"`
	Entity    string      `json:"entity,omitempty"`
	EntityID  string      `json:"entity_id,omitempty"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
