package usecase

import (
	"context"
	"errors"
	"strings"

	"medique-api/internal/converter"
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
	"medique-api/internal/domain/repository"
	"medique-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrFieldsRequired              = errors.New("fields required")
	ErrDoctorNotAvailable          = errors.New("doctor not available")
	ErrSlotNotAvailable            = errors.New("slot not available")
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrAppointmentNotOwned         = errors.New("unauthorized action")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
)

// activeSlotIndex is the partial unique index over live appointments.
const activeSlotIndex = "uq_appointments_active_slot"

// Requester is who asks for a cancellation. Admins may cancel any appointment.
type Requester struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, userID uuid.UUID, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, requester Requester, appointmentID uuid.UUID) error
	ListUserAppointments(ctx context.Context, userID uuid.UUID) (*dto.AppointmentListResponse, error)
	ListAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	tx              repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	userRepo        repository.UserRepository
	auditService    service.AuditService
	slotLock        *service.SlotLockService
	notifier        service.NotificationService
}

func NewAppointmentUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	slotLock *service.SlotLockService,
	notifier service.NotificationService,
) AppointmentUsecase {
	return &appointmentUsecase{
		tx:              tx,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		userRepo:        userRepo,
		auditService:    auditService,
		slotLock:        slotLock,
		notifier:        notifier,
	}
}

// BookAppointment reserves (doctor, date, time) for the user.
//
// Flow:
// 1. Per-doctor in-process lock (serialises slot map read-modify-write)
// 2. DB transaction: lock doctor row, check availability and slot, write slot
//    map and appointment together
// 3. After commit: confirmation mail in the background
//
// The partial unique index on live appointments is the last line of defence;
// a violation surfaces as ErrSlotNotAvailable.
func (u *appointmentUsecase) BookAppointment(ctx context.Context, userID uuid.UUID, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	slotDate := strings.TrimSpace(req.SlotDate)
	slotTime := strings.TrimSpace(req.SlotTime)
	rawDoctorID := strings.TrimSpace(req.DoctorID)

	if userID == uuid.Nil || rawDoctorID == "" || slotDate == "" || slotTime == "" {
		return nil, ErrFieldsRequired
	}

	doctorID, err := uuid.Parse(rawDoctorID)
	if err != nil {
		return nil, ErrDoctorNotAvailable
	}

	var (
		appointment *entity.Appointment
		doctor      *entity.Doctor
		user        *entity.User
	)

	err = u.slotLock.WithDoctorLock(ctx, doctorID, func() error {
		return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
			var err error

			user, err = u.userRepo.FindByID(tx, userID)
			if err != nil {
				u.log.Warnf("Failed to find user %s: %+v", userID, err)
				return err
			}
			if user == nil {
				return ErrUserNotFound
			}

			doctor, err = u.doctorRepo.FindByIDForUpdate(tx, doctorID)
			if err != nil {
				u.log.Warnf("Failed to lock doctor %s: %+v", doctorID, err)
				return err
			}
			if doctor == nil || !doctor.Available {
				return ErrDoctorNotAvailable
			}

			slots := doctor.SlotsBooked.Clone()
			if !slots.Add(slotDate, slotTime) {
				return ErrSlotNotAvailable
			}

			if err := u.doctorRepo.UpdateSlots(tx, doctorID, slots); err != nil {
				u.log.Warnf("Failed to update slots of doctor %s: %+v", doctorID, err)
				return err
			}
			doctor.SlotsBooked = slots

			// Price is locked at booking time
			appointment = &entity.Appointment{
				UserID:   userID,
				DoctorID: doctorID,
				SlotDate: slotDate,
				SlotTime: slotTime,
				Amount:   doctor.Fees,
			}

			if err := u.appointmentRepo.Create(tx, appointment); err != nil {
				if isDuplicateKeyError(err, activeSlotIndex) {
					return ErrSlotNotAvailable
				}
				if isForeignKeyError(err, "user") {
					return ErrUserNotFound
				}
				u.log.Warnf("Failed to create appointment: %+v", err)
				return err
			}

			_ = u.auditService.LogCreate(ctx, tx, service.UserActor(userID), entity.AuditActionAppointmentBook,
				entity.AuditEntityAppointment, appointment.ID.String(), map[string]interface{}{
					"doctor_id": doctorID.String(),
					"slot_date": slotDate,
					"slot_time": slotTime,
					"amount":    appointment.Amount.String(),
				})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"doctor_id":      doctorID,
		"slot_date":      slotDate,
		"slot_time":      slotTime,
	}).Info("Appointment booked")

	u.notifier.BookingConfirmed(appointmentNotice(user, doctor, appointment))

	appointment.Doctor = doctor
	return converter.AppointmentToResponse(appointment), nil
}

// CancelAppointment marks the appointment cancelled and releases its slot.
// Non-admin requesters may only cancel their own appointments.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, requester Requester, appointmentID uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(u.tx.Conn(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if !requester.IsAdmin && appointment.UserID != requester.UserID {
		u.log.Warnf("User %s tried to cancel appointment %s owned by %s", requester.UserID, appointmentID, appointment.UserID)
		return ErrAppointmentNotOwned
	}
	if appointment.IsCancelled() {
		return ErrAppointmentAlreadyCancelled
	}

	actor := service.UserActor(requester.UserID)
	if requester.IsAdmin {
		actor = service.AdminActor()
	}

	var doctor *entity.Doctor

	err = u.slotLock.WithDoctorLock(ctx, appointment.DoctorID, func() error {
		return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
			// Conditional update: only the first of two racing cancels wins
			rows, err := u.appointmentRepo.MarkCancelled(tx, appointmentID)
			if err != nil {
				u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
				return err
			}
			if rows == 0 {
				return ErrAppointmentAlreadyCancelled
			}

			doctor, err = u.doctorRepo.FindByIDForUpdate(tx, appointment.DoctorID)
			if err != nil {
				u.log.Warnf("Failed to lock doctor %s: %+v", appointment.DoctorID, err)
				return err
			}

			if doctor != nil {
				slots := doctor.SlotsBooked.Clone()
				if !slots.Remove(appointment.SlotDate, appointment.SlotTime) {
					u.log.Warnf("Slot %s %s of appointment %s was not in doctor %s slot map",
						appointment.SlotDate, appointment.SlotTime, appointmentID, appointment.DoctorID)
				}
				if err := u.doctorRepo.UpdateSlots(tx, doctor.ID, slots); err != nil {
					u.log.Warnf("Failed to release slot of doctor %s: %+v", doctor.ID, err)
					return err
				}
				doctor.SlotsBooked = slots
			}

			_ = u.auditService.LogUpdate(ctx, tx, actor, entity.AuditActionAppointmentCancel,
				entity.AuditEntityAppointment, appointmentID.String(),
				map[string]interface{}{"cancelled": false},
				map[string]interface{}{"cancelled": true})
			return nil
		})
	})
	if err != nil {
		return err
	}

	appointment.Cancelled = true
	u.log.WithFields(logrus.Fields{
		"appointment_id": appointmentID,
		"by_admin":       requester.IsAdmin,
	}).Info("Appointment cancelled")

	user, err := u.userRepo.FindByID(u.tx.Conn(ctx), appointment.UserID)
	if err != nil || user == nil {
		u.log.Warnf("Skipping cancellation mail for appointment %s: user lookup failed: %v", appointmentID, err)
		return nil
	}
	if doctor == nil {
		doctor = appointment.Doctor
	}
	u.notifier.BookingCancelled(appointmentNotice(user, doctor, appointment), requester.IsAdmin)

	return nil
}

// ListUserAppointments returns the user's appointments, most recent first,
// with the doctor's current display fields.
func (u *appointmentUsecase) ListUserAppointments(ctx context.Context, userID uuid.UUID) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByUserID(u.tx.Conn(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) ListAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func appointmentNotice(user *entity.User, doctor *entity.Doctor, appointment *entity.Appointment) service.AppointmentNotice {
	notice := service.AppointmentNotice{
		SlotDate: appointment.SlotDate,
		SlotTime: appointment.SlotTime,
		Amount:   appointment.Amount.StringFixed(2),
	}
	if user != nil {
		notice.PatientName = user.Name
		notice.PatientEmail = user.Email
	}
	if doctor != nil {
		notice.DoctorName = doctor.Name
		notice.Speciality = doctor.Speciality
	}
	return notice
}
