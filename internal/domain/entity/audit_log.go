package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry. ActorID is nil for actions
// performed by the configured administrator.
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID   *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ActorRole string     `gorm:"type:varchar(20);not null" json:"actor_role"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if bytes == nil {
		*j = nil
		return nil
	}

	result := map[string]interface{}{}
	err = json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Common audit actions
const (
	AuditActionUserRegister       = "user.register"
	AuditActionProfileUpdate      = "profile.update"
	AuditActionAppointmentBook    = "appointment.book"
	AuditActionAppointmentCancel  = "appointment.cancel"
	AuditActionAppointmentPayment = "appointment.payment"
	AuditActionDoctorCreate       = "doctor.create"
	AuditActionDoctorAvailability = "doctor.availability"
)

var auditActions = map[string]bool{
	AuditActionUserRegister:       true,
	AuditActionProfileUpdate:      true,
	AuditActionAppointmentBook:    true,
	AuditActionAppointmentCancel:  true,
	AuditActionAppointmentPayment: true,
	AuditActionDoctorCreate:       true,
	AuditActionDoctorAvailability: true,
}

// IsAuditAction reports whether action is one the system records.
func IsAuditAction(action string) bool {
	return auditActions[action]
}

// Subjects recorded in audit metadata under "entity"
const (
	AuditEntityUser        = "user"
	AuditEntityDoctor      = "doctor"
	AuditEntityAppointment = "appointment"
)

// AuditLogFilter narrows an audit trail query. Zero fields match everything.
// Entity and EntityID are matched against the metadata written by the audit
// service.
type AuditLogFilter struct {
	Action   string
	ActorID  *uuid.UUID
	Entity   string
	EntityID string
	Limit    int
}

// EntityName returns the audited subject stored in the metadata.
func (a *AuditLog) EntityName() string {
	v, _ := a.Metadata["entity"].(string)
	return v
}

// EntityID returns the audited subject's id stored in the metadata.
func (a *AuditLog) EntityID() string {
	v, _ := a.Metadata["entity_id"].(string)
	return v
}
