package converter

import (
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
)

// AuditLogToResponse converts an AuditLog entity, lifting the audited subject
// out of the metadata
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:        log.ID,
		ActorID:   log.ActorID,
		ActorRole: log.ActorRole,
		Action:    log.Action,
		Entity:    log.EntityName(),
		EntityID:  log.EntityID(),
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}
}

// AuditLogsToResponses converts a slice of AuditLog entities to slice of AuditLogResponse DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
