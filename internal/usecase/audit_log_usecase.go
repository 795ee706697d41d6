package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"medique-api/internal/converter"
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
	"medique-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultAuditLogLimit = 100
	maxAuditLogLimit     = 500
)

var (
	ErrAuditLogNotFound   = errors.New("audit log not found")
	ErrInvalidAuditFilter = errors.New("invalid audit log filter")
)

type AuditLogUsecase interface {
	ListAuditLogs(ctx context.Context, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		tx:           tx,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// ListAuditLogs returns the newest audit rows matching query. An appointment
// id narrows the trail to that appointment's booking, payment and
// cancellation.
func (u *auditLogUsecase) ListAuditLogs(ctx context.Context, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	filter, err := parseAuditLogQuery(query)
	if err != nil {
		return nil, err
	}

	logs, err := u.auditLogRepo.Find(u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}

func parseAuditLogQuery(q dto.AuditLogQuery) (entity.AuditLogFilter, error) {
	filter := entity.AuditLogFilter{
		Action:   strings.TrimSpace(q.Action),
		Entity:   strings.TrimSpace(q.Entity),
		EntityID: strings.TrimSpace(q.EntityID),
		Limit:    defaultAuditLogLimit,
	}

	if filter.Action != "" && !entity.IsAuditAction(filter.Action) {
		return filter, invalidAuditFilter("unknown action " + strconv.Quote(filter.Action))
	}

	if raw := strings.TrimSpace(q.ActorID); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return filter, invalidAuditFilter("actor_id must be a UUID")
		}
		filter.ActorID = &actorID
	}

	if raw := strings.TrimSpace(q.AppointmentID); raw != "" {
		appointmentID, err := uuid.Parse(raw)
		if err != nil {
			return filter, invalidAuditFilter("appointment_id must be a UUID")
		}
		if filter.Entity != "" && filter.Entity != entity.AuditEntityAppointment {
			return filter, invalidAuditFilter("appointment_id conflicts with entity")
		}
		filter.Entity = entity.AuditEntityAppointment
		filter.EntityID = appointmentID.String()
	}

	if raw := strings.TrimSpace(q.Limit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, invalidAuditFilter("limit must be a positive integer")
		}
		if limit > maxAuditLogLimit {
			limit = maxAuditLogLimit
		}
		filter.Limit = limit
	}

	return filter, nil
}

func invalidAuditFilter(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidAuditFilter, reason)
}
