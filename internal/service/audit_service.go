package service

import (
	"context"

	"medique-api/internal/domain/entity"
	"medique-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor identifies who performed an audited action. ID is nil for the
// configured administrator.
type Actor struct {
	ID   *uuid.UUID
	Role string
}

// UserActor returns the actor for a patient account.
func UserActor(id uuid.UUID) Actor {
	return Actor{ID: &id, Role: entity.RoleUser}
}

// AdminActor returns the actor for the administrator.
func AdminActor() Actor {
	return Actor{Role: entity.RoleAdmin}
}

const auditSavePoint = "audit_log"

// AuditService writes audit rows on the caller's transaction. A failed write
// is rolled back to a savepoint so the caller can treat it as non-fatal and
// still commit.
type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, actor Actor, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, actor Actor, action string, entityName string, entityID string, oldValue, newValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, actor Actor, action string, entityName string, entityID string, newValue interface{}) error {
	return s.write(tx, actor, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, actor Actor, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.write(tx, actor, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

func (s *auditService) write(tx *gorm.DB, actor Actor, action string, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    action,
		Metadata:  metadata,
	}

	if tx != nil {
		if err := tx.SavePoint(auditSavePoint).Error; err != nil {
			s.log.Warnf("Failed to create audit savepoint: %+v", err)
			return err
		}
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		if tx != nil {
			if rbErr := tx.RollbackTo(auditSavePoint).Error; rbErr != nil {
				s.log.Warnf("Failed to roll back audit savepoint: %+v", rbErr)
			}
		}
		return err
	}

	return nil
}
