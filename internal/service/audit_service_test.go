package service

import (
	"context"
	"errors"
	"testing"

	"medique-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeAuditRepo struct {
	logs []entity.AuditLog
	err  error
}

func (f *fakeAuditRepo) Create(_ *gorm.DB, log *entity.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeAuditRepo) Find(_ *gorm.DB, _ entity.AuditLogFilter) ([]entity.AuditLog, error) {
	return f.logs, nil
}

func (f *fakeAuditRepo) FindByID(_ *gorm.DB, id int64) (*entity.AuditLog, error) {
	return nil, nil
}

func TestLogUpdateRecordsActorAndValues(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(newTestLogger(), repo)
	userID := uuid.New()

	err := svc.LogUpdate(context.Background(), nil, UserActor(userID), entity.AuditActionAppointmentCancel,
		"appointment", "appt-1", map[string]interface{}{"cancelled": false}, map[string]interface{}{"cancelled": true})
	if err != nil {
		t.Fatalf("LogUpdate: %v", err)
	}

	if len(repo.logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(repo.logs))
	}
	got := repo.logs[0]
	if got.ActorID == nil || *got.ActorID != userID || got.ActorRole != entity.RoleUser {
		t.Errorf("unexpected actor: %v %q", got.ActorID, got.ActorRole)
	}
	if got.Action != entity.AuditActionAppointmentCancel || got.Metadata["entity_id"] != "appt-1" {
		t.Errorf("unexpected row: %+v", got)
	}
}

func TestLogCreateAdminHasNoActorID(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(newTestLogger(), repo)

	if err := svc.LogCreate(context.Background(), nil, AdminActor(), entity.AuditActionDoctorCreate, "doctor", "d-1", nil); err != nil {
		t.Fatalf("LogCreate: %v", err)
	}
	if repo.logs[0].ActorID != nil || repo.logs[0].ActorRole != entity.RoleAdmin {
		t.Errorf("unexpected admin actor: %+v", repo.logs[0])
	}
}

func TestAuditFailureIsReturned(t *testing.T) {
	want := errors.New("insert failed")
	svc := NewAuditService(newTestLogger(), &fakeAuditRepo{err: want})

	if err := svc.LogCreate(context.Background(), nil, AdminActor(), "x", "y", "z", nil); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
